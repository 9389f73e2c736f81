package channel

import (
	"context"

	"github.com/joebot/discordbridge/internal/bridge"
	"github.com/joebot/discordbridge/internal/bus"
)

// Channel is the interface for the transports on either side of the bridge.
type Channel interface {
	Name() string
	Side() bridge.Side
	Start(ctx context.Context) error
	Stop() error
	Send(ctx context.Context, msg *bus.OutboundMessage) error
}

// Publisher accepts messages a channel has received.
type Publisher interface {
	PublishInbound(ctx context.Context, msg bridge.InboundMessage) error
}

// IdentitySink is told the bridge's own id on a side once it is known.
type IdentitySink interface {
	SetSelf(side bridge.Side, id string)
}

// Register subscribes ch to its side's outbound queue.
func Register(b *bus.MessageBus, ch Channel) {
	b.Subscribe(ch.Side(), ch.Send)
}
