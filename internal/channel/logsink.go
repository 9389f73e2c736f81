package channel

import (
	"context"
	"log/slog"

	"github.com/joebot/discordbridge/internal/bridge"
	"github.com/joebot/discordbridge/internal/bus"
)

// LogSink stands in for the err side when running headless. It never
// produces messages and logs everything delivered to it.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink() *LogSink {
	return &LogSink{log: slog.With("side", bridge.SideErr)}
}

func (l *LogSink) Name() string      { return "log" }
func (l *LogSink) Side() bridge.Side { return bridge.SideErr }

func (l *LogSink) Start(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (l *LogSink) Stop() error { return nil }

func (l *LogSink) Send(_ context.Context, msg *bus.OutboundMessage) error {
	l.log.Info("Delivered", "chat", msg.ChatID, "id", msg.ID, "content", msg.Content)
	return nil
}
