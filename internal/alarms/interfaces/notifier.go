package interfaces

import (
	"context"
	"errors"
	"time"

	alarmapp "healthwatch-cloud/internal/alarms/application"
	"healthwatch-cloud/internal/streaming"
)

// StreamNotifier routes alarm lifecycle events onto the connection
// registry. FALL goes to viewers; STOP_ALARM and medicine ALARM go to
// viewers and devices (devices drive the buzzer).
type StreamNotifier struct {
	registry *streaming.Registry
}

// NewStreamNotifier constructs a notifier over the registry.
func NewStreamNotifier(registry *streaming.Registry) (*StreamNotifier, error) {
	if registry == nil {
		return nil, errors.New("alarms: nil registry")
	}
	return &StreamNotifier{registry: registry}, nil
}

// Notify implements application.Notifier.
func (n *StreamNotifier) Notify(_ context.Context, event alarmapp.Event) {
	switch event.Type {
	case alarmapp.EventFall:
		n.registry.BroadcastToViewers(streaming.NewFallMessage(event.At.Format(time.RFC3339)))
	case alarmapp.EventStopAlarm:
		msg := streaming.NewStopAlarmMessage()
		n.registry.BroadcastToViewers(msg)
		n.registry.BroadcastToDevices(msg)
	case alarmapp.EventMedicine:
		msg := streaming.NewAlarmMessage(event.Medicine, event.TimeOfDay)
		n.registry.BroadcastToViewers(msg)
		n.registry.BroadcastToDevices(msg)
	}
}
