package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultRequestRetention is how long counted requests are kept. It covers
// the year time frame plus a month of slack.
const DefaultRequestRetention = 400 * 24 * time.Hour

// RequestPruner deletes counted requests older than a cutoff.
type RequestPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RequestRetentionJob creates a job that removes request counts older than
// retention. A non-positive retention uses DefaultRequestRetention.
func RequestRetentionJob(store RequestPruner, retention time.Duration, logger *zap.Logger) Job {
	if retention <= 0 {
		retention = DefaultRequestRetention
	}
	return Job{
		Name:     "request-retention",
		Interval: 6 * time.Hour,
		Run: func(ctx context.Context) error {
			cutoff := time.Now().Add(-retention)
			deleted, err := store.DeleteOlderThan(ctx, cutoff)
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.Info("pruned old request counts",
					zap.Int64("deleted", deleted),
					zap.Time("cutoff", cutoff))
			}
			return nil
		},
	}
}
