package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickReportsChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	var calls []string
	s := NewService(path, time.Minute, func(_ context.Context, p string) { calls = append(calls, p) })
	ctx := context.Background()

	assert.False(t, s.tick(ctx), "baseline is not a change")

	require.NoError(t, os.WriteFile(path, []byte("longer"), 0o644))
	assert.True(t, s.tick(ctx))
	assert.False(t, s.tick(ctx))

	require.NoError(t, os.Remove(path))
	assert.False(t, s.tick(ctx))

	require.NoError(t, os.WriteFile(path, []byte("back"), 0o644))
	assert.True(t, s.tick(ctx))

	assert.Equal(t, []string{path, path}, calls)
}

func TestTickNotifiesOnModTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("same"), 0o644))
	s := NewService(path, time.Minute, nil)

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))
	assert.True(t, s.tick(context.Background()))
}

func TestRunDisabled(t *testing.T) {
	s := NewService("missing", 0, func(context.Context, string) { t.Fatal("called") })
	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run with no interval did not return")
	}
}
