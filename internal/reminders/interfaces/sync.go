package interfaces

import (
	"errors"

	"healthwatch-cloud/internal/streaming"
)

// RegistrySyncer broadcasts SYNC_TIME envelopes to all device channels so
// their displays show the next scheduled alarm.
type RegistrySyncer struct {
	registry *streaming.Registry
}

// NewRegistrySyncer constructs a syncer over the registry.
func NewRegistrySyncer(registry *streaming.Registry) (*RegistrySyncer, error) {
	if registry == nil {
		return nil, errors.New("reminders: nil registry")
	}
	return &RegistrySyncer{registry: registry}, nil
}

// SyncTime implements application.DeviceSyncer.
func (s *RegistrySyncer) SyncTime(timeOfDay string) {
	s.registry.BroadcastToDevices(streaming.NewSyncTimeMessage(timeOfDay))
}
