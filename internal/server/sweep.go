package server

import (
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Sweeper periodically deletes stale files from the upload and output
// directories. It is best-effort maintenance, uncoordinated with in-flight
// jobs; the stores are ephemeral caches, not durable storage.
type Sweeper struct {
	dirs     []string
	maxAge   time.Duration
	interval time.Duration
	logger   hclog.Logger
}

// NewSweeper creates a sweeper over the given directories.
func NewSweeper(dirs []string, maxAge, interval time.Duration, logger hclog.Logger) *Sweeper {
	return &Sweeper{
		dirs:     dirs,
		maxAge:   maxAge,
		interval: interval,
		logger:   logger.Named("sweeper"),
	}
}

// Run sweeps on every tick until the process exits.
func (s *Sweeper) Run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for range ticker.C {
		s.Sweep()
	}
}

// Sweep deletes every regular file older than maxAge in the swept
// directories. Missing directories and unreadable entries are skipped.
func (s *Sweeper) Sweep() {
	cutoff := time.Now().Add(-s.maxAge)

	for _, dir := range s.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				s.logger.Warn("failed to read directory", "dir", dir, "error", err)
			}
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if info.ModTime().After(cutoff) {
				continue
			}

			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil {
				s.logger.Warn("failed to remove stale file", "path", path, "error", err)
				continue
			}
			s.logger.Info("cleaned up old file", "path", path)
		}
	}
}
