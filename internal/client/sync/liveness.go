package sync

import (
	"context"
	"time"

	"github.com/yuizumi/chatspace/internal/client/api"
	"github.com/yuizumi/chatspace/internal/common/logger"
)

type Toucher interface {
	UpdateUserLastSeen(ctx context.Context, id string) (api.User, error)
}

// Liveness touches the current user's lastSeen on a fixed interval,
// independent of any other activity. Failures are logged and skipped; the
// next tick tries again.
type Liveness struct {
	api      Toucher
	userID   string
	interval time.Duration
	log      *logger.Logger
}

func NewLiveness(apiClient Toucher, userID string, interval time.Duration, log *logger.Logger) *Liveness {
	return &Liveness{api: apiClient, userID: userID, interval: interval, log: log}
}

func (l *Liveness) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := l.api.UpdateUserLastSeen(ctx, l.userID); err != nil && ctx.Err() == nil {
				l.log.Warnf("liveness touch failed: %v", err)
			}
		}
	}
}
