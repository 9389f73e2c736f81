package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// ANSI color codes.
const (
	ansiReset   = "\033[0m"
	ansiRed     = "\033[31m"
	ansiYellow  = "\033[33m"
	ansiBlue    = "\033[34m"
	ansiMagenta = "\033[35m"
	ansiCyan    = "\033[36m"
	ansiGray    = "\033[90m"

	padding = "  "
)

// Message text is rendered as an indented block below the log line instead
// of an inline key=value pair.
var blockKeys = map[string]bool{
	"body":    true,
	"content": true,
}

// sideKey is rendered as a bracketed tag in front of the message.
const sideKey = "side"

// Options configures a Handler.
type Options struct {
	Level slog.Leveler
	Color bool
}

// Handler is a compact, optionally colored slog handler.
type Handler struct {
	w     io.Writer
	mu    *sync.Mutex
	level slog.Leveler
	color bool
	attrs []slog.Attr
}

// NewHandler creates a new log handler.
func NewHandler(w io.Writer, opts *Options) *Handler {
	if opts == nil {
		opts = &Options{}
	}
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}
	return &Handler{
		w:     w,
		mu:    &sync.Mutex{},
		level: level,
		color: opts.Color,
	}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var ts string
	if h.color {
		ts = r.Time.Format("15:04:05")
	} else {
		ts = r.Time.Format("2006-01-02 15:04:05")
	}

	var (
		side   string
		inline strings.Builder
		blocks []string
	)
	collect := func(a slog.Attr) bool {
		switch {
		case a.Key == sideKey:
			side = a.Value.String()
		case blockKeys[a.Key]:
			blocks = append(blocks, a.Value.String())
		default:
			inline.WriteString(h.fmtAttr(a))
		}
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(collect)

	var sb strings.Builder
	sb.WriteString(padding)
	if h.color {
		sb.WriteString(ansiGray + ts + ansiReset + " " + colorLevel(r.Level, levelLabel(r.Level)) + " ")
	} else {
		sb.WriteString(ts + " " + levelLabel(r.Level) + " ")
	}
	if side != "" {
		sb.WriteString(h.fmtSide(side) + " ")
	}
	sb.WriteString(r.Message)
	sb.WriteString(inline.String())
	sb.WriteByte('\n')

	for _, text := range blocks {
		for _, line := range strings.Split(text, "\n") {
			if h.color {
				sb.WriteString(fmt.Sprintf("%s  %s│%s %s\n", padding, ansiGray, ansiReset, line))
			} else {
				sb.WriteString(fmt.Sprintf("%s  | %s\n", padding, line))
			}
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, sb.String())
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	combined := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(combined, h.attrs)
	copy(combined[len(h.attrs):], attrs)
	return &Handler{w: h.w, mu: h.mu, level: h.level, color: h.color, attrs: combined}
}

func (h *Handler) WithGroup(string) slog.Handler {
	return h
}

func (h *Handler) fmtAttr(a slog.Attr) string {
	if h.color {
		return fmt.Sprintf(" %s%s%s=%s", ansiGray, a.Key, ansiReset, a.Value.String())
	}
	return fmt.Sprintf(" %s=%s", a.Key, a.Value.String())
}

func (h *Handler) fmtSide(side string) string {
	tag := "[" + side + "]"
	if !h.color {
		return tag
	}
	switch side {
	case "discord":
		return ansiBlue + tag + ansiReset
	case "err":
		return ansiMagenta + tag + ansiReset
	default:
		return ansiGray + tag + ansiReset
	}
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERR"
	case level >= slog.LevelWarn:
		return "WRN"
	case level >= slog.LevelInfo:
		return "INF"
	default:
		return "DBG"
	}
}

func colorLevel(level slog.Level, label string) string {
	switch {
	case level >= slog.LevelError:
		return ansiRed + label + ansiReset
	case level >= slog.LevelWarn:
		return ansiYellow + label + ansiReset
	case level >= slog.LevelInfo:
		return ansiCyan + label + ansiReset
	default:
		return ansiGray + label + ansiReset
	}
}
