package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"healthwatch-cloud/internal/observability/metrics"
	"healthwatch-cloud/internal/streaming"
	vitals "healthwatch-cloud/internal/vitals/domain"
)

// AggregateRecorder folds accepted readings into the rolling aggregates.
type AggregateRecorder interface {
	Record(reading vitals.VitalReading)
	Tick(now time.Time)
}

// AlarmEvaluator runs the fall state machine over an accepted reading and
// reports whether a fall alarm is active afterwards.
type AlarmEvaluator interface {
	EvaluateReading(ctx context.Context, reading vitals.VitalReading) bool
}

// ViewerBroadcaster fans annotated readings out to viewer channels.
type ViewerBroadcaster interface {
	BroadcastToViewers(msg streaming.Message)
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Coordinator is the single ingestion path for device readings: validate,
// persist, aggregate, evaluate alarms, broadcast. A reading that clears
// validation is never lost to a downstream failure; persistence errors are
// absorbed and the in-memory pipeline continues.
type Coordinator struct {
	store      vitals.ReadingStore
	aggregator AggregateRecorder
	alarms     AlarmEvaluator
	viewers    ViewerBroadcaster
	ranges     vitals.Ranges

	clock  Clock
	logger *zap.Logger
}

// CoordinatorOption customizes the coordinator.
type CoordinatorOption func(*Coordinator)

// WithClock assigns a clock.
func WithClock(clock Clock) CoordinatorOption {
	return func(c *Coordinator) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithRanges overrides the classification ranges.
func WithRanges(ranges vitals.Ranges) CoordinatorOption {
	return func(c *Coordinator) { c.ranges = ranges }
}

// NewCoordinator constructs the ingestion coordinator. store and viewers may
// be nil; aggregator and alarms are required.
func NewCoordinator(
	store vitals.ReadingStore,
	aggregator AggregateRecorder,
	alarms AlarmEvaluator,
	viewers ViewerBroadcaster,
	logger *zap.Logger,
	opts ...CoordinatorOption,
) (*Coordinator, error) {
	if aggregator == nil {
		return nil, errors.New("vitals: nil aggregator")
	}
	if alarms == nil {
		return nil, errors.New("vitals: nil alarm evaluator")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	coordinator := &Coordinator{
		store:      store,
		aggregator: aggregator,
		alarms:     alarms,
		viewers:    viewers,
		ranges:     vitals.DefaultRanges(),
		clock:      systemClock{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(coordinator)
	}
	return coordinator, nil
}

// Ingest runs one raw reading through the full pipeline and returns the
// normalized reading. Malformed input is counted, logged, and dropped.
func (c *Coordinator) Ingest(ctx context.Context, raw vitals.RawReading) (vitals.VitalReading, error) {
	started := c.clock.Now()

	reading, err := vitals.Validate(raw, started)
	if err != nil {
		metrics.IncReadingDropped("malformed")
		metrics.ObserveIngest(metrics.ResultError, c.clock.Now().Sub(started))
		c.logger.Warn("reading rejected",
			zap.String("device_id", raw.DeviceID),
			zap.Error(err),
		)
		return vitals.VitalReading{}, err
	}

	if c.store != nil {
		if err := c.store.AppendReading(ctx, reading); err != nil {
			metrics.IncStoreError("append_reading")
			c.logger.Warn("reading not persisted, pipeline continues",
				zap.String("device_id", reading.DeviceID),
				zap.Error(err),
			)
		}
	}

	c.aggregator.Record(reading)
	fallActive := c.alarms.EvaluateReading(ctx, reading)
	status := c.ranges.Classify(reading)

	if c.viewers != nil {
		c.viewers.BroadcastToViewers(streaming.NewReadingMessage(streaming.ReadingPayload{
			VitalReading: reading,
			Status:       status,
			FallActive:   fallActive,
		}))
	}

	metrics.ObserveIngest(metrics.ResultSuccess, c.clock.Now().Sub(started))
	return reading, nil
}

// RunTicker drives the aggregator's bucket boundary checks until ctx is
// cancelled. Without it an idle stream would never seal buckets.
func (c *Coordinator) RunTicker(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.aggregator.Tick(c.clock.Now())
		}
	}
}
