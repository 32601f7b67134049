package application

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"healthwatch-cloud/internal/observability/metrics"
	vitals "healthwatch-cloud/internal/vitals/domain"
)

// EventType tags alarm lifecycle events.
type EventType string

const (
	// EventFall is emitted once when a fall alarm is promoted.
	EventFall EventType = "fall"
	// EventStopAlarm is emitted when an active alarm is explicitly reset.
	EventStopAlarm EventType = "stop_alarm"
	// EventMedicine is emitted when a reminder fires.
	EventMedicine EventType = "medicine"
)

// Event is one alarm lifecycle update handed to the notifier.
type Event struct {
	Type      EventType
	At        time.Time
	Medicine  string
	TimeOfDay string
}

// Notifier delivers alarm lifecycle events to connected channels.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// State is a snapshot of the engine's process-wide alarm flags.
type State struct {
	FallActive      bool `json:"fall_active"`
	MaintenanceMode bool `json:"maintenance_mode"`
}

// Engine owns the fall-alert state machine and maintenance-mode flag.
// Construct one per process; tests construct independent instances.
type Engine struct {
	mu          sync.Mutex
	fallActive  bool
	maintenance bool

	notifier Notifier
	clock    Clock
	logger   *zap.Logger
}

// EngineOption customizes the engine.
type EngineOption func(*Engine)

// WithNotifier assigns a notifier.
func WithNotifier(notifier Notifier) EngineOption {
	return func(e *Engine) { e.notifier = notifier }
}

// WithClock assigns a clock.
func WithClock(clock Clock) EngineOption {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// NewEngine constructs an alarm engine in the Idle state.
func NewEngine(logger *zap.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := &Engine{clock: systemClock{}, logger: logger}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// EvaluateReading runs the fall state machine over one reading and returns
// whether a fall alarm is active afterwards. At most one outstanding fall
// alarm: once active, further fall signals are swallowed. While maintenance
// mode is on, fall signals are never promoted to an alarm.
func (e *Engine) EvaluateReading(ctx context.Context, reading vitals.VitalReading) bool {
	e.mu.Lock()
	promote := reading.FallDetected && !e.maintenance && !e.fallActive
	suppressed := reading.FallDetected && e.maintenance
	if promote {
		e.fallActive = true
	}
	active := e.fallActive
	e.mu.Unlock()

	if suppressed {
		metrics.IncAlarmEvent("fall_suppressed")
		e.logger.Debug("fall signal suppressed by maintenance mode",
			zap.String("device_id", reading.DeviceID),
		)
	}
	if promote {
		metrics.IncAlarmEvent("fall_active")
		e.logger.Warn("fall alarm promoted",
			zap.String("device_id", reading.DeviceID),
			zap.Time("at", reading.Timestamp),
		)
		e.notify(ctx, Event{Type: EventFall, At: e.clock.Now()})
	}
	return active
}

// ResetFall returns the engine to Idle and emits STOP_ALARM. Reports
// whether an alarm was actually active.
func (e *Engine) ResetFall(ctx context.Context) bool {
	e.mu.Lock()
	wasActive := e.fallActive
	e.fallActive = false
	e.mu.Unlock()

	if !wasActive {
		return false
	}
	metrics.IncAlarmEvent("fall_reset")
	e.logger.Info("fall alarm reset")
	e.notify(ctx, Event{Type: EventStopAlarm, At: e.clock.Now()})
	return true
}

// SetMaintenance toggles maintenance mode. Enabling it does not clear an
// already-active fall alarm; disabling only re-enables future detection.
func (e *Engine) SetMaintenance(enabled bool) {
	e.mu.Lock()
	changed := e.maintenance != enabled
	e.maintenance = enabled
	e.mu.Unlock()

	if changed {
		e.logger.Info("maintenance mode toggled", zap.Bool("enabled", enabled))
	}
}

// FireReminder emits the medicine alarm for a matched reminder.
func (e *Engine) FireReminder(ctx context.Context, medicine, timeOfDay string) {
	metrics.IncAlarmEvent("medicine")
	e.logger.Info("medicine alarm fired",
		zap.String("medicine", medicine),
		zap.String("time_of_day", timeOfDay),
	)
	e.notify(ctx, Event{
		Type:      EventMedicine,
		At:        e.clock.Now(),
		Medicine:  medicine,
		TimeOfDay: timeOfDay,
	})
}

// Snapshot returns the current alarm state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{FallActive: e.fallActive, MaintenanceMode: e.maintenance}
}

func (e *Engine) notify(ctx context.Context, event Event) {
	if e.notifier == nil {
		return
	}
	e.notifier.Notify(ctx, event)
}
