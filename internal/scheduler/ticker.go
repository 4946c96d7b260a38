package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Ticker is the tick driver: it invokes the publisher's Process step at a
// fixed period from a single goroutine, so invocations never overlap.
//
// The tick interval is finer than the release interval (default 1m vs 32m);
// the gate enforces the actual cadence in software, the ticker just makes
// sure the gate is checked often enough.
type Ticker struct {
	pub      *Publisher
	interval time.Duration
	logger   *zap.Logger
}

func NewTicker(pub *Publisher, interval time.Duration, logger *zap.Logger) *Ticker {
	return &Ticker{pub: pub, interval: interval, logger: logger}
}

// Run ticks every interval until ctx is cancelled. A failing tick is logged
// and never stops the loop; the store naturally retries on the next tick.
func (t *Ticker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.logger.Info("scheduler started",
		zap.Duration("tick_interval", t.interval),
		zap.Duration("release_interval", t.pub.Gate().Interval()),
	)

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("scheduler stopping")
			return
		case <-ticker.C:
			if err := t.pub.Process(ctx, time.Now().UTC()); err != nil {
				t.logger.Error("tick failed", zap.Error(err))
			}
		}
	}
}
