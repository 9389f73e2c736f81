package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joebot/discordbridge/internal/bridge"
)

func TestRunInitWritesExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bridge.yaml")

	var buf bytes.Buffer
	require.NoError(t, RunInit(&buf, path, false))
	assert.Contains(t, buf.String(), "Wrote bridge config")

	_, err := bridge.LoadFile(path)
	assert.NoError(t, err)
}

func TestRunInitForceOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("OneWay: []\n"), 0o644))

	require.NoError(t, RunInit(&bytes.Buffer{}, path, true))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, bridge.ExampleConfig, data)
}

func TestInitModel(t *testing.T) {
	m := newInitModel("bridge.yaml")
	assert.Contains(t, m.View(), "already exists at")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, choiceKeep, next.(initModel).choice)
	require.NotNil(t, cmd)

	next, _ = newInitModel("bridge.yaml").Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, choiceOverwrite, next.(initModel).choice)

	next, _ = newInitModel("bridge.yaml").Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, choiceKeep, next.(initModel).choice)
	assert.Empty(t, next.View())
}
