package watch

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// OnChange is called when the watched file has changed since the last tick.
type OnChange func(ctx context.Context, path string)

// Service polls a file and reports modifications.
type Service struct {
	path     string
	interval time.Duration
	onChange OnChange

	modTime time.Time
	size    int64
}

// NewService creates a poller for path. The current state of the file is
// the baseline, so nothing fires until it changes.
func NewService(path string, interval time.Duration, cb OnChange) *Service {
	s := &Service{
		path:     path,
		interval: interval,
		onChange: cb,
	}
	s.modTime, s.size = s.stat()
	return s
}

// Run starts the poll loop. It blocks until ctx is cancelled; a non-positive
// interval disables polling.
func (s *Service) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	slog.Info("Watching bridge config", "path", s.path, "interval", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick reports whether the file changed.
func (s *Service) tick(ctx context.Context) bool {
	modTime, size := s.stat()
	if modTime.Equal(s.modTime) && size == s.size {
		return false
	}
	s.modTime, s.size = modTime, size
	if modTime.IsZero() {
		// Removed or unreadable; wait for it to come back.
		slog.Warn("Bridge config disappeared", "path", s.path)
		return false
	}

	slog.Debug("Bridge config changed", "path", s.path, "mod_time", modTime)
	if s.onChange != nil {
		s.onChange(ctx, s.path)
	}
	return true
}

func (s *Service) stat() (time.Time, int64) {
	info, err := os.Stat(s.path)
	if err != nil {
		return time.Time{}, -1
	}
	return info.ModTime(), info.Size()
}
