package bus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/joebot/discordbridge/internal/bridge"
)

var (
	// ErrBusClosed is returned when publishing to a closed MessageBus.
	ErrBusClosed = errors.New("message bus closed")
	// ErrQueueFull is returned when a side's outbound queue has no room.
	ErrQueueFull = errors.New("outbound queue full")
)

const truncatedMarker = "\n[message truncated]"

// OutboundHandler delivers an outbound message to its transport.
type OutboundHandler func(ctx context.Context, msg *OutboundMessage) error

// MessageBus decouples the transports from the router. Inbound messages from
// every side share one queue; each side has its own outbound queue and
// dispatcher so a slow transport never holds up the other.
type MessageBus struct {
	inbound  chan bridge.InboundMessage
	outbound map[bridge.Side]chan *OutboundMessage
	done     chan struct{}
	closed   atomic.Bool

	mu          sync.RWMutex
	subscribers map[bridge.Side][]OutboundHandler
	limits      map[bridge.Side]int
}

// NewMessageBus creates a bus with buffered queues for every known side.
func NewMessageBus() *MessageBus {
	b := &MessageBus{
		inbound:     make(chan bridge.InboundMessage, 64),
		outbound:    make(map[bridge.Side]chan *OutboundMessage, len(bridge.Sides)),
		done:        make(chan struct{}),
		subscribers: make(map[bridge.Side][]OutboundHandler),
		limits:      make(map[bridge.Side]int),
	}
	for _, side := range bridge.Sides {
		b.outbound[side] = make(chan *OutboundMessage, 64)
	}
	return b
}

// PublishInbound queues a message from a transport for the router.
func (b *MessageBus) PublishInbound(ctx context.Context, msg bridge.InboundMessage) error {
	if b.closed.Load() {
		return ErrBusClosed
	}
	select {
	case b.inbound <- msg:
		return nil
	case <-b.done:
		return ErrBusClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ConsumeInbound returns the next inbound message. ok is false once the bus
// is closed or ctx is cancelled.
func (b *MessageBus) ConsumeInbound(ctx context.Context) (bridge.InboundMessage, bool) {
	select {
	case msg := <-b.inbound:
		return msg, true
	case <-b.done:
		return bridge.InboundMessage{}, false
	case <-ctx.Done():
		return bridge.InboundMessage{}, false
	}
}

// PublishOutbound queues a rendered message without waiting for delivery.
func (b *MessageBus) PublishOutbound(_ context.Context, out bridge.Outbound) error {
	if b.closed.Load() {
		return ErrBusClosed
	}
	q, ok := b.outbound[out.Side]
	if !ok {
		return fmt.Errorf("no outbound queue for side %q", out.Side)
	}
	msg := &OutboundMessage{
		ID:       uuid.NewString(),
		Queued:   time.Now(),
		Outbound: out,
	}
	select {
	case q <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe registers a handler for outbound messages on a side.
func (b *MessageBus) Subscribe(side bridge.Side, handler OutboundHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[side] = append(b.subscribers[side], handler)
}

// SetMaxLength sets the longest message, in runes, a side accepts. A failed
// delivery of a longer message is retried once truncated. Zero means no limit.
func (b *MessageBus) SetMaxLength(side bridge.Side, n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.limits[side] = n
}

// DispatchOutbound runs one dispatcher per side and blocks until ctx is
// cancelled or the bus is closed.
func (b *MessageBus) DispatchOutbound(ctx context.Context) {
	var wg sync.WaitGroup
	for side, q := range b.outbound {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.dispatch(ctx, side, q)
		}()
	}
	wg.Wait()
}

func (b *MessageBus) dispatch(ctx context.Context, side bridge.Side, q <-chan *OutboundMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.done:
			return
		case msg := <-q:
			b.deliver(ctx, side, msg)
		}
	}
}

func (b *MessageBus) deliver(ctx context.Context, side bridge.Side, msg *OutboundMessage) {
	b.mu.RLock()
	handlers := b.subscribers[side]
	limit := b.limits[side]
	b.mu.RUnlock()

	if len(handlers) == 0 {
		slog.Warn("No sender for side, dropping message", "side", side, "chat", msg.ChatID, "id", msg.ID)
		return
	}
	for _, h := range handlers {
		if err := safeSend(ctx, h, msg); err != nil {
			slog.Warn("Delivery failed, attempting recovery", "side", side, "chat", msg.ChatID, "id", msg.ID, "err", err)
			b.recoverSend(ctx, h, msg, limit, err)
		}
	}
}

// recoverSend retries an oversized message truncated to the side's limit.
func (b *MessageBus) recoverSend(ctx context.Context, h OutboundHandler, original *OutboundMessage, limit int, originalErr error) {
	if limit > 0 && utf8.RuneCountInString(original.Content) > limit {
		truncated := *original
		truncated.Content = truncate(original.Content, limit)
		if err := safeSend(ctx, h, &truncated); err == nil {
			slog.Info("Recovery: sent truncated message", "side", original.Side, "id", original.ID)
			return
		}
	}
	slog.Error("Delivery failed", "side", original.Side, "chat", original.ChatID, "id", original.ID, "err", originalErr)
}

func safeSend(ctx context.Context, h OutboundHandler, msg *OutboundMessage) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("sender panic: %v", p)
		}
	}()
	return h(ctx, msg)
}

func truncate(s string, limit int) string {
	keep := limit - utf8.RuneCountInString(truncatedMarker)
	if keep < 0 {
		keep = 0
	}
	runes := []rune(s)
	if len(runes) <= keep {
		return s
	}
	return string(runes[:keep]) + truncatedMarker
}

// Close stops the dispatchers and rejects further publishes.
func (b *MessageBus) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.done)
	}
}
