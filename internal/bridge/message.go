package bridge

import "context"

// InboundMessage is a message seen on either side, as handed to the Router.
type InboundMessage struct {
	Side       Side
	ChatID     string // room or channel the message was posted in
	SenderID   string
	SenderName string
	Body       string
	Direct     bool // private conversation with the bridge
	FromBot    bool
}

// RoutingKey returns the key the message is looked up by. Direct messages are
// keyed by their sender, everything else by the room it was posted in.
func (m InboundMessage) RoutingKey() RoutingKey {
	if m.Direct {
		return Key(m.Side, m.SenderID)
	}
	return Key(m.Side, m.ChatID)
}

// Sender returns the name used for {sender} in templates.
func (m InboundMessage) Sender() string {
	if m.SenderName != "" {
		return m.SenderName
	}
	return m.SenderID
}

// Outbound is a rendered message bound for one side.
type Outbound struct {
	Side         Side
	ChatID       string
	Content      string
	AllowImages  bool
	AllowLinks   bool
	AllowThreads bool
}

// Outbox accepts rendered messages for asynchronous delivery. It must not
// wait for the transport.
type Outbox interface {
	PublishOutbound(ctx context.Context, msg Outbound) error
}

// InboundSource yields inbound messages until it is closed or ctx ends.
type InboundSource interface {
	ConsumeInbound(ctx context.Context) (InboundMessage, bool)
}
