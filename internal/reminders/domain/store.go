package reminders

import "context"

// Store is the durable-store contract for reminders. MarkFired is a
// compare-and-set on LastFiredDate: it returns false when the reminder
// already fired on date, which is what structurally prevents double-firing
// under concurrent scheduler ticks.
type Store interface {
	ListReminders(ctx context.Context) ([]Reminder, error)
	InsertReminder(ctx context.Context, medicine, timeOfDay string) (Reminder, error)
	DeleteReminder(ctx context.Context, id string) error
	MarkFired(ctx context.Context, id, date string) (bool, error)
}
