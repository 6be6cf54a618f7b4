package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/battery-reminder/internal/errors"
	"github.com/unclebandit/battery-reminder/internal/model"
)

// StaleLockScanner walks every page of the lock table and returns the locks
// whose last battery check is older than the threshold.
type StaleLockScanner struct {
	Source LockSource
	Logger *zap.Logger
	Now    func() time.Time
}

// Threshold is the instant before which a battery check counts as stale.
func Threshold(now time.Time, thresholdDays int) time.Time {
	return now.UTC().Add(-time.Duration(thresholdDays) * 24 * time.Hour)
}

func (s *StaleLockScanner) FindStaleLocks(ctx context.Context, thresholdDays int) ([]model.Lock, error) {
	threshold := Threshold(s.now(), thresholdDays)
	s.Logger.Info("scanning for stale locks",
		zap.Int("threshold_days", thresholdDays),
		zap.Time("threshold", threshold))

	seen := make(map[int64]struct{})
	var (
		locks  []model.Lock
		cursor model.PageCursor
		pages  int
	)
	for {
		page, err := s.Source.ScanPage(ctx, model.ScanRequest{Threshold: threshold, Cursor: cursor})
		if err != nil {
			return nil, appErrors.NewBackend("scan stale locks", err)
		}
		pages++

		for _, l := range page.Locks {
			if _, dup := seen[l.LockID]; dup {
				continue
			}
			seen[l.LockID] = struct{}{}
			locks = append(locks, l)
		}
		s.Logger.Debug("scanned page",
			zap.Int("page", pages),
			zap.Int("page_locks", len(page.Locks)),
			zap.Int("total", len(locks)))

		if page.Next == nil {
			break
		}
		cursor = page.Next
	}

	s.Logger.Info("stale lock scan finished", zap.Int("pages", pages), zap.Int("stale_locks", len(locks)))
	return locks, nil
}

func (s *StaleLockScanner) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
