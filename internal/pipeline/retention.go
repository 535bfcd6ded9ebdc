package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ironsheep/image-cross/internal/logging"
)

// Retention defaults.
const (
	DefaultMaxAge        = 24 * time.Hour
	DefaultSweepInterval = time.Hour
)

// CleanOldFiles removes pipeline files in dir whose modification time is more
// than maxAge before now. Only names accepted by IsManagedName are touched;
// other files, subdirectories and their contents are left alone.
// A missing directory is not an error.
//
// Returns the removed paths in name order. Removal failures do not stop the
// sweep; they are joined into the returned error.
func CleanOldFiles(dir string, maxAge time.Duration, now time.Time) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var (
		removed []string
		errs    []error
	)
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !IsManagedName(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, err)
			}
			continue
		}
		if now.Sub(info.ModTime()) <= maxAge {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, path)
	}
	sort.Strings(removed)
	return removed, errors.Join(errs...)
}

// Sweeper periodically removes expired files from an output directory.
type Sweeper struct {
	Dir      string
	MaxAge   time.Duration
	Interval time.Duration
	Logger   *slog.Logger

	now func() time.Time
}

// Sweep runs one cleanup pass.
func (s *Sweeper) Sweep() ([]string, error) {
	maxAge := s.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	return CleanOldFiles(s.Dir, maxAge, now())
}

// Run sweeps immediately and then once per Interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	logger := s.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logging.WithComponent(logger, "retention")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		removed, err := s.Sweep()
		if err != nil {
			logger.Warn("retention sweep failed", "dir", s.Dir, "error", err)
		}
		if len(removed) > 0 {
			logger.Info("removed expired files", "dir", s.Dir, "count", len(removed))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
