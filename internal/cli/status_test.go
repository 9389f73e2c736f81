package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joebot/discordbridge/internal/bridge"
	"github.com/joebot/discordbridge/internal/config"
)

func TestRenderRoutes(t *testing.T) {
	cfg, err := bridge.LoadBytes(bridge.ExampleConfig)
	require.NoError(t, err)

	out := RenderRoutes(cfg.Destinations())
	for _, want := range []string{
		"KEY", "DESTINATION",
		"err-#announcements", "discord-123456789012345678", "**{sender}**: {message}",
		"err-#general", "discord-234567890123456789",
		"reply (thread)", "err-#helpdesk",
		"images,links",
	} {
		assert.Contains(t, out, want)
	}
}

func TestPrintCheck(t *testing.T) {
	cfg, err := bridge.LoadBytes([]byte(`
OneWay:
  - source: {identifier: "#a"}
    destination: {identifier: "1"}
  - source: {identifier: "#a"}
    destination: {identifier: "2"}
`))
	require.NoError(t, err)

	var buf bytes.Buffer
	assert.True(t, PrintCheck(&buf, "bridge.yaml", cfg, nil))
	assert.Contains(t, buf.String(), "2 one-way, 0 two-way, 0 reply")
	assert.Contains(t, buf.String(), "1 routing keys")
	assert.Contains(t, buf.String(), "err-#a is declared more than once")
}

func TestPrintCheckFailures(t *testing.T) {
	_, err := bridge.LoadBytes([]byte("OneWay:\n  - source: {side: irc}\n"))
	require.Error(t, err)

	var buf bytes.Buffer
	assert.False(t, PrintCheck(&buf, "bridge.yaml", nil, err))
	assert.Contains(t, buf.String(), `invalid value "irc"`)

	buf.Reset()
	assert.False(t, PrintCheck(&buf, "missing.yaml", nil, errors.New("open missing.yaml: no such file")))
	assert.Contains(t, buf.String(), "no such file")
}

func TestPrintStatus(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Bridge.ConfigFile = "/nonexistent/bridge.yaml"

	var buf bytes.Buffer
	PrintStatus(&buf, cfg)
	assert.Contains(t, buf.String(), "/nonexistent/bridge.yaml")
	assert.Contains(t, buf.String(), "no bot token")
	assert.Contains(t, buf.String(), cfg.Err.Identity)
}
