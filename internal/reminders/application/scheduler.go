package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"healthwatch-cloud/internal/observability/metrics"
	reminders "healthwatch-cloud/internal/reminders/domain"
)

// AlarmEmitter is the alarm engine surface the scheduler drives.
type AlarmEmitter interface {
	FireReminder(ctx context.Context, medicine, timeOfDay string)
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Scheduler periodically compares wall-clock time against stored reminders
// and fires each at most once per matching day. Tolerant of any tick
// frequency up to once per minute: the dedupe key is date-grained and the
// store's MarkFired compare-and-set makes firing exactly-once even under
// overlapping ticks.
type Scheduler struct {
	store   reminders.Store
	emitter AlarmEmitter

	interval time.Duration
	clock    Clock
	logger   *zap.Logger
}

// SchedulerOption customizes the scheduler.
type SchedulerOption func(*Scheduler)

// WithClock assigns a clock.
func WithClock(clock Clock) SchedulerOption {
	return func(s *Scheduler) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithInterval sets the tick interval.
func WithInterval(interval time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// NewScheduler constructs a reminder scheduler.
func NewScheduler(store reminders.Store, emitter AlarmEmitter, logger *zap.Logger, opts ...SchedulerOption) (*Scheduler, error) {
	if store == nil {
		return nil, errors.New("reminders: nil store")
	}
	if emitter == nil {
		return nil, errors.New("reminders: nil alarm emitter")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	scheduler := &Scheduler{
		store:    store,
		emitter:  emitter,
		interval: time.Second,
		clock:    systemClock{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(scheduler)
	}
	return scheduler, nil
}

// Run ticks the scheduler until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CheckOnce(ctx, s.clock.Now())
		}
	}
}

// CheckOnce evaluates every stored reminder against now. Reminders are
// independent: one reminder's firing or failure never affects another's
// evaluation in the same pass. A store failure is logged and retried on
// the next tick.
func (s *Scheduler) CheckOnce(ctx context.Context, now time.Time) {
	metrics.IncReminderCheck()

	list, err := s.store.ListReminders(ctx)
	if err != nil {
		metrics.IncStoreError("list_reminders")
		s.logger.Warn("reminder list failed, skipping pass", zap.Error(err))
		return
	}

	today := now.Format(reminders.DateLayout)
	for _, reminder := range list {
		if !reminder.Matches(now) {
			continue
		}
		// Claim the firing before emitting: the compare-and-set loses
		// against any other tick that already claimed today.
		fired, err := s.store.MarkFired(ctx, reminder.ID, today)
		if err != nil {
			metrics.IncStoreError("mark_fired")
			s.logger.Warn("reminder claim failed",
				zap.String("reminder_id", reminder.ID),
				zap.Error(err),
			)
			continue
		}
		if !fired {
			continue
		}
		metrics.IncReminderFired()
		s.emitter.FireReminder(ctx, reminder.Medicine, reminder.TimeOfDay)
	}
}
