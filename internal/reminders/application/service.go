package application

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	reminders "healthwatch-cloud/internal/reminders/domain"
)

// DeviceSyncer pushes the reminder schedule to connected devices.
type DeviceSyncer interface {
	SyncTime(timeOfDay string)
}

// Service handles the reminder control surface: list, add, delete. Adding
// a reminder immediately syncs its time to all connected devices.
type Service struct {
	store  reminders.Store
	syncer DeviceSyncer
	logger *zap.Logger
}

// NewService constructs a reminder service. syncer may be nil when no
// device transport is attached (tests).
func NewService(store reminders.Store, syncer DeviceSyncer, logger *zap.Logger) (*Service, error) {
	if store == nil {
		return nil, errors.New("reminders: nil store")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, syncer: syncer, logger: logger}, nil
}

// List returns all stored reminders.
func (s *Service) List(ctx context.Context) ([]reminders.Reminder, error) {
	return s.store.ListReminders(ctx)
}

// Add validates, stores, and device-syncs a new reminder.
func (s *Service) Add(ctx context.Context, medicine, timeOfDay string) (reminders.Reminder, error) {
	if medicine == "" {
		return reminders.Reminder{}, errors.New("reminders: medicine required")
	}
	normalized, err := reminders.NormalizeTimeOfDay(timeOfDay)
	if err != nil {
		return reminders.Reminder{}, err
	}

	reminder, err := s.store.InsertReminder(ctx, medicine, normalized)
	if err != nil {
		return reminders.Reminder{}, fmt.Errorf("reminders: insert: %w", err)
	}
	s.logger.Info("reminder added",
		zap.String("reminder_id", reminder.ID),
		zap.String("medicine", reminder.Medicine),
		zap.String("time_of_day", reminder.TimeOfDay),
	)
	if s.syncer != nil {
		s.syncer.SyncTime(reminder.TimeOfDay)
	}
	return reminder, nil
}

// Delete removes a reminder by id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("reminders: id required")
	}
	return s.store.DeleteReminder(ctx, id)
}
