// Package sysinfo polls the backend's system-info snapshot and filters logs.
package sysinfo

import (
	"context"
	"log/slog"
	"time"

	"github.com/prabalesh/aideck/internal/models"
)

// DefaultInterval is the fixed system-info refresh period.
const DefaultInterval = 5 * time.Second

// FetchFunc retrieves one snapshot.
type FetchFunc func(ctx context.Context) (models.SystemInfo, error)

// Poller fetches a snapshot immediately and then on a fixed interval. There
// is no jitter and no backoff: a failed fetch is logged and retried on the
// next tick, and the last good snapshot is kept.
type Poller struct {
	fetch    FetchFunc
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

func NewPoller(fetch FetchFunc, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		fetch:    fetch,
		interval: interval,
		timeout:  interval,
		logger:   logger,
	}
}

// Run polls until ctx is cancelled, calling deliver with every successful
// snapshot. deliver is never called after Run returns.
func (p *Poller) Run(ctx context.Context, deliver func(models.SystemInfo)) {
	p.poll(ctx, deliver)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx, deliver)
		}
	}
}

func (p *Poller) poll(ctx context.Context, deliver func(models.SystemInfo)) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	info, err := p.fetch(fetchCtx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		p.logger.Error("Error fetching system info", "error", err)
		return
	}
	deliver(info)
}
