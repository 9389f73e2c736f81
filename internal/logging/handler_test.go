package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerPlain(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, &Options{Level: slog.LevelDebug}))

	log.With("side", "discord").Info("Bridged message", "key", "discord-1", "content", "alice: hi\nsecond line")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], " INF [discord] Bridged message key=discord-1")
	assert.NotContains(t, lines[0], "content=")
	assert.Equal(t, "    | alice: hi", lines[1])
	assert.Equal(t, "    | second line", lines[2])
	assert.NotContains(t, buf.String(), "\033[")
}

func TestHandlerLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, &Options{Level: slog.LevelWarn}))

	log.Info("hidden")
	log.Debug("hidden")
	log.Error("shown", "err", "boom")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "ERR shown err=boom")
}

func TestHandlerColor(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, &Options{Color: true}))
	log.Warn("careful", "side", "err")

	assert.Contains(t, buf.String(), ansiYellow+"WRN"+ansiReset)
	assert.Contains(t, buf.String(), ansiMagenta+"[err]"+ansiReset)
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}
