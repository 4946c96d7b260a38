package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pulsefeed/autopub/internal/adapter"
	"github.com/pulsefeed/autopub/internal/domain"
	"github.com/pulsefeed/autopub/internal/gate"
	"github.com/pulsefeed/autopub/internal/store"
)

// Hooks carries the metric callback functions injected by main.
// Using a struct keeps the publisher constructor signature clean.
type Hooks struct {
	OnPublished func(platform domain.Platform, latency time.Duration)
	OnFailed    func(platform domain.Platform)
}

// Publisher is the queue manager: it owns the release gate, selects the next
// pending post, drives its status transitions, and dispatches it through the
// matching platform adapter.
//
// Process handles at most one post per invocation, so a backlog drains at
// one post per release interval. Steady cadence takes priority over
// throughput.
type Publisher struct {
	store    store.PostStore
	registry *adapter.Registry
	gate     *gate.ReleaseGate
	timeout  time.Duration
	logger   *zap.Logger
	hooks    Hooks

	// Serializes Process against re-entrant invocation. The ticker already
	// calls sequentially from one goroutine; the mutex guards any other
	// caller (manual trigger, tests) so only one post is ever in
	// processing status.
	mu sync.Mutex
}

func NewPublisher(
	st store.PostStore,
	registry *adapter.Registry,
	g *gate.ReleaseGate,
	timeout time.Duration,
	logger *zap.Logger,
	hooks Hooks,
) *Publisher {
	if hooks.OnPublished == nil {
		hooks.OnPublished = func(domain.Platform, time.Duration) {}
	}
	if hooks.OnFailed == nil {
		hooks.OnFailed = func(domain.Platform) {}
	}
	return &Publisher{
		store:    st,
		registry: registry,
		gate:     g,
		timeout:  timeout,
		logger:   logger,
		hooks:    hooks,
	}
}

// Gate exposes the release gate for the reporting API's next-release hint.
func (pub *Publisher) Gate() *gate.ReleaseGate {
	return pub.gate
}

// Process runs one scheduling step:
//
//  1. No-op while the release gate is closed.
//  2. Pop the oldest pending post; no-op when the queue is empty.
//  3. Mark it processing, dispatch through its platform adapter under a
//     bounded timeout, then mark it done or failed.
//  4. Record the release on both outcomes, so a failing backend is retried
//     at cadence instead of tick frequency.
//
// Store errors before dispatch abort the step without advancing the gate
// clock: the same post stays pending and is retried on the next tick.
func (pub *Publisher) Process(ctx context.Context, now time.Time) error {
	pub.mu.Lock()
	defer pub.mu.Unlock()

	if !pub.gate.CanRelease(now) {
		return nil
	}

	p, err := pub.store.DequeueNext(ctx)
	if errors.Is(err, domain.ErrNoPending) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("dequeue next: %w", err)
	}

	if err := pub.store.UpdateStatus(ctx, p.ID, domain.StatusProcessing); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// The store and the scheduler disagree about a post we just
			// selected; this indicates a bug, not a transient condition.
			pub.logger.Error("dequeued post vanished before processing",
				zap.Int64("post_id", p.ID), zap.Error(err))
		}
		return fmt.Errorf("mark processing: %w", err)
	}

	start := time.Now()
	res, pubErr := pub.dispatch(ctx, p)
	latency := time.Since(start)

	log := pub.logger.With(
		zap.Int64("post_id", p.ID),
		zap.String("platform", string(p.Platform)),
	)

	if pubErr != nil {
		errMsg := pubErr.Error()
		if err := pub.store.SetResult(ctx, p.ID, domain.StatusFailed, nil, &errMsg); err != nil {
			log.Error("failed to mark post as failed", zap.Error(err))
		}
		log.Warn("publish failed", zap.Error(pubErr), zap.Duration("latency", latency))
		pub.hooks.OnFailed(p.Platform)
	} else {
		ref := res.ExternalRef
		if err := pub.store.SetResult(ctx, p.ID, domain.StatusDone, &ref, nil); err != nil {
			log.Error("failed to mark post as done", zap.Error(err))
		}
		log.Info("post published", zap.String("external_ref", ref), zap.Duration("latency", latency))
		pub.hooks.OnPublished(p.Platform, latency)
	}

	pub.gate.RecordRelease(now)
	return nil
}

// dispatch resolves the adapter and invokes it with a bounded timeout.
// Adapter panics are converted to errors so a misbehaving adapter fails the
// post instead of killing the tick loop.
func (pub *Publisher) dispatch(ctx context.Context, p *domain.Post) (res *adapter.Result, err error) {
	a, err := pub.registry.Resolve(p.Platform)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("adapter panic: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, pub.timeout)
	defer cancel()
	return a.Publish(ctx, p)
}
