package scheduler_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pulsefeed/autopub/internal/adapter"
	"github.com/pulsefeed/autopub/internal/domain"
	"github.com/pulsefeed/autopub/internal/gate"
	"github.com/pulsefeed/autopub/internal/scheduler"
	"github.com/pulsefeed/autopub/internal/store"
)

const interval = 32 * time.Minute

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// stubAdapter records which posts it was asked to publish.
type stubAdapter struct {
	published []int64
	err       error
	panicMsg  string
	onPublish func(p *domain.Post)
}

func (s *stubAdapter) Publish(_ context.Context, p *domain.Post) (*adapter.Result, error) {
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if s.onPublish != nil {
		s.onPublish(p)
	}
	if s.err != nil {
		return nil, s.err
	}
	s.published = append(s.published, p.ID)
	return &adapter.Result{ExternalRef: "ref-1"}, nil
}

type fixture struct {
	store *store.MockPostStore
	stub  *stubAdapter
	pub   *scheduler.Publisher
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: store.NewMockPostStore(),
		stub:  &stubAdapter{},
		clock: base,
	}
	f.store.Now = func() time.Time {
		f.clock = f.clock.Add(time.Millisecond)
		return f.clock
	}

	reg := adapter.NewRegistry()
	reg.Register(domain.PlatformTwitter, f.stub)
	reg.Register(domain.PlatformTelegram, f.stub)

	f.pub = scheduler.NewPublisher(
		f.store, reg, gate.New(interval), 5*time.Second, zap.NewNop(), scheduler.Hooks{},
	)
	return f
}

func (f *fixture) enqueue(t *testing.T, platform domain.Platform, priority int) *domain.Post {
	t.Helper()
	p := &domain.Post{Content: "content", Platform: platform, Priority: priority}
	if err := f.store.Enqueue(context.Background(), p); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	return p
}

func (f *fixture) status(t *testing.T, id int64) domain.Status {
	t.Helper()
	p, err := f.store.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get post %d: %v", id, err)
	}
	return p.Status
}

func TestPublisher_DispatchesOldestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Higher priority on later posts must not reorder dispatch.
	a := f.enqueue(t, domain.PlatformTwitter, 1)
	b := f.enqueue(t, domain.PlatformTwitter, 9)
	c := f.enqueue(t, domain.PlatformTelegram, 5)

	for i := 0; i < 3; i++ {
		now := base.Add(time.Duration(i) * interval)
		if err := f.pub.Process(ctx, now); err != nil {
			t.Fatalf("process %d: %v", i, err)
		}
	}

	want := []int64{a.ID, b.ID, c.ID}
	if len(f.stub.published) != 3 {
		t.Fatalf("expected 3 dispatches, got %d", len(f.stub.published))
	}
	for i, id := range want {
		if f.stub.published[i] != id {
			t.Fatalf("dispatch order %v, want %v", f.stub.published, want)
		}
	}
}

// With an unbounded backlog and a tick every second, exactly one post is
// released per interval.
func TestPublisher_ReleaseRate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		f.enqueue(t, domain.PlatformTwitter, 1)
	}

	shortInterval := time.Minute
	reg := adapter.NewRegistry()
	reg.Register(domain.PlatformTwitter, f.stub)
	pub := scheduler.NewPublisher(
		f.store, reg, gate.New(shortInterval), 5*time.Second, zap.NewNop(), scheduler.Hooks{},
	)

	for elapsed := time.Duration(0); elapsed < 3*shortInterval; elapsed += time.Second {
		if err := pub.Process(ctx, base.Add(elapsed)); err != nil {
			t.Fatalf("process at %v: %v", elapsed, err)
		}
	}

	if got := len(f.stub.published); got != 3 {
		t.Fatalf("expected exactly 3 dispatches over 3 intervals, got %d", got)
	}
}

func TestPublisher_GateClosedIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.enqueue(t, domain.PlatformTwitter, 1)
	f.enqueue(t, domain.PlatformTwitter, 1)

	if err := f.pub.Process(ctx, base); err != nil {
		t.Fatalf("first process: %v", err)
	}
	if err := f.pub.Process(ctx, base.Add(time.Second)); err != nil {
		t.Fatalf("second process: %v", err)
	}

	if got := len(f.stub.published); got != 1 {
		t.Fatalf("expected 1 dispatch while gate is closed, got %d", got)
	}
}

func TestPublisher_EmptyQueueIsNoop(t *testing.T) {
	f := newFixture(t)

	if err := f.pub.Process(context.Background(), base); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.pub.Gate().LastRelease().IsZero() {
		t.Fatal("expected gate clock untouched on empty queue")
	}
}

// A (twitter) is enqueued before B (telegram); the first
// tick dispatches only A, the second tick after the interval dispatches B.
func TestPublisher_TwoPlatformScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.enqueue(t, domain.PlatformTwitter, 1)
	b := f.enqueue(t, domain.PlatformTelegram, 1)

	if err := f.pub.Process(ctx, base); err != nil {
		t.Fatalf("first process: %v", err)
	}
	if got := f.status(t, a.ID); got != domain.StatusDone {
		t.Fatalf("A: expected done, got %s", got)
	}
	if got := f.status(t, b.ID); got != domain.StatusPending {
		t.Fatalf("B: expected still pending after first tick, got %s", got)
	}

	if err := f.pub.Process(ctx, base.Add(interval)); err != nil {
		t.Fatalf("second process: %v", err)
	}
	if got := f.status(t, b.ID); got != domain.StatusDone {
		t.Fatalf("B: expected done after second tick, got %s", got)
	}
}

func TestPublisher_UnsupportedPlatformFailsWithoutDispatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// No adapter registered for webhook in this fixture.
	c := f.enqueue(t, domain.PlatformWebhook, 1)

	if err := f.pub.Process(ctx, base); err != nil {
		t.Fatalf("process: %v", err)
	}

	if got := f.status(t, c.ID); got != domain.StatusFailed {
		t.Fatalf("expected failed, got %s", got)
	}
	if len(f.stub.published) != 0 {
		t.Fatal("expected no adapter invocation for unsupported platform")
	}
	if f.pub.Gate().LastRelease().IsZero() {
		t.Fatal("expected gate clock to advance even on unsupported platform")
	}

	p, _ := f.store.GetByID(ctx, c.ID)
	if p.ErrorMessage == nil || !strings.Contains(*p.ErrorMessage, "unsupported platform") {
		t.Fatalf("expected unsupported-platform error message, got %v", p.ErrorMessage)
	}
}

func TestPublisher_AdapterErrorMarksFailed(t *testing.T) {
	f := newFixture(t)
	f.stub.err = context.DeadlineExceeded
	ctx := context.Background()

	p := f.enqueue(t, domain.PlatformTwitter, 1)

	if err := f.pub.Process(ctx, base); err != nil {
		t.Fatalf("process: %v", err)
	}
	if got := f.status(t, p.ID); got != domain.StatusFailed {
		t.Fatalf("expected failed, got %s", got)
	}
	if f.pub.Gate().LastRelease().IsZero() {
		t.Fatal("expected gate clock to advance on dispatch failure")
	}

	// Failed is terminal: no automatic retry on later ticks.
	if err := f.pub.Process(ctx, base.Add(interval)); err != nil {
		t.Fatalf("second process: %v", err)
	}
	if got := f.status(t, p.ID); got != domain.StatusFailed {
		t.Fatalf("expected failed to stay terminal, got %s", got)
	}
}

func TestPublisher_AdapterPanicMarksFailed(t *testing.T) {
	f := newFixture(t)
	f.stub.panicMsg = "adapter exploded"
	ctx := context.Background()

	p := f.enqueue(t, domain.PlatformTwitter, 1)

	if err := f.pub.Process(ctx, base); err != nil {
		t.Fatalf("expected panic to be contained, got tick error: %v", err)
	}
	if got := f.status(t, p.ID); got != domain.StatusFailed {
		t.Fatalf("expected failed, got %s", got)
	}

	got, _ := f.store.GetByID(ctx, p.ID)
	if got.ErrorMessage == nil || !strings.Contains(*got.ErrorMessage, "adapter exploded") {
		t.Fatalf("expected panic message recorded, got %v", got.ErrorMessage)
	}
}

func TestPublisher_TerminalStatusesNeverChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	done := f.enqueue(t, domain.PlatformTwitter, 1)
	if err := f.pub.Process(ctx, base); err != nil {
		t.Fatalf("process: %v", err)
	}

	for i := 1; i <= 3; i++ {
		if err := f.pub.Process(ctx, base.Add(time.Duration(i)*interval)); err != nil {
			t.Fatalf("process %d: %v", i, err)
		}
	}
	if got := f.status(t, done.ID); got != domain.StatusDone {
		t.Fatalf("expected done to stay terminal, got %s", got)
	}
}

func TestPublisher_StoreErrorAbortsTickWithoutAdvancingGate(t *testing.T) {
	t.Run("dequeue error", func(t *testing.T) {
		f := newFixture(t)
		f.enqueue(t, domain.PlatformTwitter, 1)
		f.store.DequeueNextErr = context.DeadlineExceeded

		if err := f.pub.Process(context.Background(), base); err == nil {
			t.Fatal("expected tick error on store failure")
		}
		if !f.pub.Gate().LastRelease().IsZero() {
			t.Fatal("expected gate clock untouched on store failure")
		}
	})

	t.Run("mark-processing error leaves post pending", func(t *testing.T) {
		f := newFixture(t)
		p := f.enqueue(t, domain.PlatformTwitter, 1)
		f.store.UpdateStatusErr = context.DeadlineExceeded

		if err := f.pub.Process(context.Background(), base); err == nil {
			t.Fatal("expected tick error on store failure")
		}
		if !f.pub.Gate().LastRelease().IsZero() {
			t.Fatal("expected gate clock untouched on store failure")
		}
		if got := f.status(t, p.ID); got != domain.StatusPending {
			t.Fatalf("expected post to stay pending, got %s", got)
		}

		// Next tick retries the same post once the store recovers.
		f.store.UpdateStatusErr = nil
		if err := f.pub.Process(context.Background(), base); err != nil {
			t.Fatalf("retry tick: %v", err)
		}
		if got := f.status(t, p.ID); got != domain.StatusDone {
			t.Fatalf("expected done after retry tick, got %s", got)
		}
	})
}

// While the adapter is mid-publish, exactly one post is in processing status.
func TestPublisher_AtMostOneProcessing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		f.enqueue(t, domain.PlatformTwitter, 1)
	}

	f.stub.onPublish = func(_ *domain.Post) {
		stats, err := f.store.Stats(ctx)
		if err != nil {
			t.Errorf("stats during publish: %v", err)
			return
		}
		if stats.Processing != 1 {
			t.Errorf("expected exactly 1 processing during dispatch, got %d", stats.Processing)
		}
	}

	for i := 0; i < 5; i++ {
		if err := f.pub.Process(ctx, base.Add(time.Duration(i)*interval)); err != nil {
			t.Fatalf("process %d: %v", i, err)
		}
	}
	if len(f.stub.published) != 5 {
		t.Fatalf("expected 5 dispatches, got %d", len(f.stub.published))
	}
}

func TestPublisher_RecordsExternalRef(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.enqueue(t, domain.PlatformTwitter, 1)
	if err := f.pub.Process(ctx, base); err != nil {
		t.Fatalf("process: %v", err)
	}

	got, _ := f.store.GetByID(ctx, p.ID)
	if got.ExternalRef == nil || *got.ExternalRef != "ref-1" {
		t.Fatalf("expected external ref recorded, got %v", got.ExternalRef)
	}
}

func TestPublisher_MetricHooks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var published, failed int
	reg := adapter.NewRegistry()
	reg.Register(domain.PlatformTwitter, f.stub)
	pub := scheduler.NewPublisher(
		f.store, reg, gate.New(interval), 5*time.Second, zap.NewNop(),
		scheduler.Hooks{
			OnPublished: func(domain.Platform, time.Duration) { published++ },
			OnFailed:    func(domain.Platform) { failed++ },
		},
	)

	f.enqueue(t, domain.PlatformTwitter, 1)
	f.enqueue(t, domain.PlatformTelegram, 1) // not registered on this publisher

	_ = pub.Process(ctx, base)
	_ = pub.Process(ctx, base.Add(interval))

	if published != 1 || failed != 1 {
		t.Fatalf("expected published=1 failed=1, got %d/%d", published, failed)
	}
}
