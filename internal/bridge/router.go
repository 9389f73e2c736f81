package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Outcome is what the Router decided for one inbound message.
type Outcome int

const (
	OutcomeForwarded Outcome = iota
	OutcomeEmpty
	OutcomeSelf
	OutcomeBot
	OutcomeNoRoute
	OutcomeReplyUnimplemented
	OutcomeUndelivered
)

func (o Outcome) String() string {
	switch o {
	case OutcomeForwarded:
		return "forwarded"
	case OutcomeEmpty:
		return "empty"
	case OutcomeSelf:
		return "self"
	case OutcomeBot:
		return "bot"
	case OutcomeNoRoute:
		return "no_route"
	case OutcomeReplyUnimplemented:
		return "reply_unimplemented"
	case OutcomeUndelivered:
		return "undelivered"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Router matches inbound messages against the destination table and hands
// rendered messages to an Outbox.
type Router struct {
	cfg    atomic.Pointer[Config]
	outbox Outbox

	selfMu sync.RWMutex
	self   map[Side]string
}

// NewRouter creates a router over cfg. The table is compiled here so that
// the first message does not pay for it.
func NewRouter(cfg *Config, outbox Outbox) *Router {
	r := &Router{
		outbox: outbox,
		self:   make(map[Side]string, len(Sides)),
	}
	cfg.Destinations()
	r.cfg.Store(cfg)
	return r
}

// Config returns the active configuration.
func (r *Router) Config() *Config { return r.cfg.Load() }

// Swap installs a new configuration. In-flight lookups keep using the table
// they started with.
func (r *Router) Swap(cfg *Config) *Config {
	cfg.Destinations()
	return r.cfg.Swap(cfg)
}

// SetSelf records the bridge's own identity on a side.
func (r *Router) SetSelf(side Side, id string) {
	r.selfMu.Lock()
	defer r.selfMu.Unlock()
	r.self[side] = id
}

func (r *Router) isSelf(side Side, id string) bool {
	r.selfMu.RLock()
	defer r.selfMu.RUnlock()
	self, ok := r.self[side]
	return ok && self != "" && self == id
}

// Run handles messages from src until it is exhausted or ctx is cancelled.
func (r *Router) Run(ctx context.Context, src InboundSource) {
	slog.Info("Router started", "routes", r.Config().Destinations().Len())
	for {
		msg, ok := src.ConsumeInbound(ctx)
		if !ok {
			slog.Info("Router stopping")
			return
		}
		r.handleIsolated(ctx, msg)
	}
}

func (r *Router) handleIsolated(ctx context.Context, msg InboundMessage) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("Router panic while handling message", "side", msg.Side, "chat", msg.ChatID, "panic", p)
		}
	}()
	r.Handle(ctx, msg)
}

// Handle routes a single message.
func (r *Router) Handle(ctx context.Context, msg InboundMessage) Outcome {
	cfg := r.cfg.Load()

	if msg.Body == "" {
		slog.Debug("Empty message, ignoring", "side", msg.Side, "chat", msg.ChatID)
		return OutcomeEmpty
	}
	if cfg.General.IgnoreMessagesFromSelf && r.isSelf(msg.Side, msg.SenderID) {
		slog.Debug("Message from the bridge itself, discarding", "side", msg.Side)
		return OutcomeSelf
	}
	if cfg.General.IgnoreAllBots && msg.FromBot {
		slog.Debug("Message from a bot, discarding", "side", msg.Side, "sender", msg.SenderID)
		return OutcomeBot
	}

	key := msg.RoutingKey()
	route, ok := cfg.Destinations().Lookup(key)
	if !ok {
		slog.Debug("No destination for message", "key", key)
		return OutcomeNoRoute
	}

	switch rt := route.(type) {
	case OneWayRoute:
		return r.forward(ctx, key, msg, rt.Destination)
	case TwoWayRoute:
		return r.forward(ctx, key, msg, rt.Destination)
	case ReplyRoute:
		slog.Warn("Reply bridge not implemented, message not forwarded", "key", key, "mode", rt.Mode)
		return OutcomeReplyUnimplemented
	default:
		panic(fmt.Sprintf("bridge: unhandled route type %T", route))
	}
}

func (r *Router) forward(ctx context.Context, key RoutingKey, msg InboundMessage, dst DestinationOptions) Outcome {
	out := Outbound{
		Side:         dst.Side,
		ChatID:       dst.Identifier,
		Content:      dst.MessageTemplate.Render(msg.Sender(), msg.Body),
		AllowImages:  dst.AllowImages,
		AllowLinks:   dst.AllowLinks,
		AllowThreads: dst.AllowThreads,
	}
	if err := r.outbox.PublishOutbound(ctx, out); err != nil {
		slog.Error("Queueing bridged message failed", "key", key, "to", dst.Key(), "err", err)
		return OutcomeUndelivered
	}
	slog.Info("Bridged message", "key", key, "to", dst.Key(), "content", out.Content)
	return OutcomeForwarded
}
