package application

import (
	"sync"
	"time"

	"go.uber.org/zap"

	analytics "healthwatch-cloud/internal/analytics/domain"
	"healthwatch-cloud/internal/observability/metrics"
	vitals "healthwatch-cloud/internal/vitals/domain"
)

// Clock provides time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Aggregator maintains the live minute bucket and the rolling window, and
// answers on-demand window reports from the durable store. All mutation of
// the live bucket and window happens under one mutex; partial updates are
// never observable.
type Aggregator struct {
	mu     sync.Mutex
	live   analytics.MinuteBucket
	window *analytics.RollingWindow

	store  vitals.ReadingStore
	clock  Clock
	logger *zap.Logger
}

// AggregatorOption customizes the aggregator.
type AggregatorOption func(*Aggregator)

// WithClock assigns a clock.
func WithClock(clock Clock) AggregatorOption {
	return func(a *Aggregator) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// NewAggregator constructs an aggregator. store may be nil, in which case
// window reports fail with ErrStoreUnavailable but rolling aggregation
// still works.
func NewAggregator(store vitals.ReadingStore, logger *zap.Logger, opts ...AggregatorOption) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	agg := &Aggregator{
		store:  store,
		clock:  systemClock{},
		logger: logger,
		window: analytics.NewRollingWindow(analytics.RollingCapacity),
	}
	for _, opt := range opts {
		opt(agg)
	}
	agg.live = analytics.NewMinuteBucket(agg.clock.Now())
	return agg
}

// Record folds one reading into the live bucket, sealing first if the
// reading arrives past the bucket boundary. Reading arrival is irregular,
// so this path seals too, not just the periodic tick.
func (a *Aggregator) Record(reading vitals.VitalReading) {
	now := a.clock.Now()
	a.mu.Lock()
	a.sealLocked(now)
	a.live.Add(reading)
	a.mu.Unlock()
}

// Tick seals the live bucket when now has crossed its boundary. Called at
// least once per second by the coordinator's periodic task.
func (a *Aggregator) Tick(now time.Time) {
	a.mu.Lock()
	a.sealLocked(now)
	a.mu.Unlock()
}

// sealLocked seals the live bucket once now has crossed its boundary and
// opens the next one. Empty minutes in between produce empty summaries so
// the rolling view shows gaps; a gap longer than the whole window only
// needs its tail.
func (a *Aggregator) sealLocked(now time.Time) {
	now = now.UTC()
	if now.Before(a.live.TimeEnd) {
		return
	}

	summary := a.live.Summary()
	a.window.Push(summary)
	metrics.IncBucketSealed()
	a.logger.Debug("minute bucket sealed",
		zap.Time("time_start", summary.TimeStart),
		zap.Int("sample_count", summary.SampleCount),
		zap.Int("fall_count", summary.FallCount),
	)

	next := a.live.TimeEnd
	if now.Sub(next) > analytics.RollingCapacity*analytics.BucketWidth {
		next = now.Truncate(analytics.BucketWidth).Add(-analytics.RollingCapacity * analytics.BucketWidth)
	}
	for !now.Before(next.Add(analytics.BucketWidth)) {
		a.window.Push(analytics.BucketSummary{TimeStart: next, TimeEnd: next.Add(analytics.BucketWidth)})
		next = next.Add(analytics.BucketWidth)
	}
	a.live = analytics.MinuteBucket{TimeStart: next, TimeEnd: next.Add(analytics.BucketWidth)}
}

// RollingSummary returns the finalized buckets, oldest first, at most the
// window capacity.
func (a *Aggregator) RollingSummary() []analytics.BucketSummary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.window.Buckets()
}

// LiveBucket returns a snapshot of the accumulating bucket, for tests and
// the live view.
func (a *Aggregator) LiveBucket() analytics.MinuteBucket {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live
}
