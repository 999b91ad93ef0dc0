package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// CleanupService periodically removes expired refresh tokens
type CleanupService struct {
	refresh  RefreshStore
	interval time.Duration
	now      func() time.Time
	log      *logrus.Entry
}

func NewCleanupService(refresh RefreshStore, interval time.Duration, log *logrus.Entry) *CleanupService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &CleanupService{
		refresh:  refresh,
		interval: interval,
		now:      time.Now,
		log:      log,
	}
}

// Start runs the cleanup loop until ctx is cancelled
func (w *CleanupService) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.WithField("interval", w.interval.String()).Info("refresh token cleanup started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info("refresh token cleanup stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce deletes every refresh token already past its expiration
func (w *CleanupService) RunOnce(ctx context.Context) int64 {
	n, err := w.refresh.DeleteExpired(ctx, w.now())
	if err != nil {
		w.log.WithError(err).Error("failed to delete expired refresh tokens")
		return 0
	}
	if n > 0 {
		w.log.WithField("deleted", n).Info("deleted expired refresh tokens")
	}
	return n
}
