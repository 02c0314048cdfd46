package sync

import (
	"context"
	"time"

	"github.com/yuizumi/chatspace/internal/client/api"
	"github.com/yuizumi/chatspace/internal/common/logger"
)

// Fetcher is the slice of the API client the sync layer needs.
type Fetcher interface {
	Messages(ctx context.Context) ([]api.Message, error)
	Users(ctx context.Context) ([]api.User, error)
}

// Strategy keeps the store in sync until ctx is cancelled. Polling and push
// are interchangeable implementations.
type Strategy interface {
	Run(ctx context.Context) error
}

type Intervals struct {
	Messages time.Duration
	Users    time.Duration
}

// Poller refreshes the message and user lists on independent fixed intervals.
// The timers are not coordinated and a failed fetch simply waits for the next
// tick.
type Poller struct {
	api   Fetcher
	store *Store
	ivals Intervals
	log   *logger.Logger
}

func NewPoller(apiClient Fetcher, store *Store, ivals Intervals, log *logger.Logger) *Poller {
	return &Poller{api: apiClient, store: store, ivals: ivals, log: log}
}

func (p *Poller) Run(ctx context.Context) error {
	// Both lists are loaded once up front so the view is not empty for a
	// full poll interval.
	p.refreshMessages(ctx)
	p.refreshUsers(ctx)

	messageTicker := time.NewTicker(p.ivals.Messages)
	defer messageTicker.Stop()
	userTicker := time.NewTicker(p.ivals.Users)
	defer userTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-messageTicker.C:
			p.refreshMessages(ctx)
		case <-userTicker.C:
			p.refreshUsers(ctx)
		}
	}
}

// RefreshNow reloads both lists out-of-band, used right after a successful
// send so the new message shows up without waiting for the timers.
func (p *Poller) RefreshNow(ctx context.Context) {
	p.refreshMessages(ctx)
	p.refreshUsers(ctx)
}

func (p *Poller) refreshMessages(ctx context.Context) {
	messages, err := p.api.Messages(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.log.Warnf("message poll failed: %v", err)
		}
		return
	}
	p.store.SetMessages(messages)
}

func (p *Poller) refreshUsers(ctx context.Context) {
	users, err := p.api.Users(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.log.Warnf("user poll failed: %v", err)
		}
		return
	}
	p.store.SetUsers(users)
}
