package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joebot/discordbridge/internal/bridge"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DISCORD_BOT_TOKEN", "token")
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--env", filepath.Join(t.TempDir(), "missing.env")))
	err := cmd.Execute()
	return out.String(), err
}

func writeBridge(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const oneRule = `
TwoWay:
  - source: {identifier: "#general"}
    destination: {identifier: "555"}
`

func TestCheckCommand(t *testing.T) {
	out, err := execute(t, "check", "--config", writeBridge(t, oneRule))
	require.NoError(t, err)
	assert.Contains(t, out, "0 one-way, 1 two-way, 0 reply")
	assert.Contains(t, out, "2 routing keys")
}

func TestCheckCommandReportsViolations(t *testing.T) {
	out, err := execute(t, "check", "--config", writeBridge(t, "OneWay: []\ncolour: blue\n"))
	assert.ErrorIs(t, err, errCheckFailed)
	assert.Contains(t, out, bridge.NoRulesViolation)
	assert.Contains(t, out, `unknown field "colour"`)
}

func TestRoutesCommand(t *testing.T) {
	out, err := execute(t, "routes", "-c", writeBridge(t, oneRule))
	require.NoError(t, err)
	assert.Contains(t, out, "err-#general")
	assert.Contains(t, out, "discord-555")
}

func TestRoutesCommandFailsOnInvalidConfig(t *testing.T) {
	_, err := execute(t, "routes", "-c", writeBridge(t, "{}"))
	var ve *bridge.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{bridge.NoRulesViolation}, ve.Violations)
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	_, err := execute(t, "init", path)
	require.NoError(t, err)

	_, err = bridge.LoadFile(path)
	assert.NoError(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "discordbridge v")
}

func TestReloadKeepsTableOnError(t *testing.T) {
	path := writeBridge(t, oneRule)
	cfg, err := bridge.LoadFile(path)
	require.NoError(t, err)
	router := bridge.NewRouter(cfg, nil)

	require.NoError(t, os.WriteFile(path, []byte("TwoWay: nope\n"), 0o644))
	assert.False(t, reload(router, path))
	assert.Same(t, cfg, router.Config())

	require.NoError(t, os.WriteFile(path, []byte(`
OneWay:
  - source: {identifier: "#ops"}
    destination: {identifier: "777"}
`), 0o644))
	assert.True(t, reload(router, path))
	_, ok := router.Config().Destinations().Lookup(bridge.Key(bridge.SideErr, "#ops"))
	assert.True(t, ok)
}
