package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	reminders "healthwatch-cloud/internal/reminders/domain"
)

// Repository is an in-memory reminder store. Used when no database is
// configured and as the backing store in tests.
type Repository struct {
	mu    sync.RWMutex
	order []string
	data  map[string]reminders.Reminder
}

// NewRepository constructs a repository.
func NewRepository() *Repository {
	return &Repository{data: make(map[string]reminders.Reminder)}
}

// ListReminders returns all reminders in insertion order.
func (r *Repository) ListReminders(ctx context.Context) ([]reminders.Reminder, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]reminders.Reminder, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.data[id])
	}
	return result, nil
}

// InsertReminder stores a new reminder with a generated id.
func (r *Repository) InsertReminder(ctx context.Context, medicine, timeOfDay string) (reminders.Reminder, error) {
	_ = ctx
	reminder := reminders.Reminder{
		ID:        uuid.NewString(),
		Medicine:  medicine,
		TimeOfDay: timeOfDay,
	}
	r.mu.Lock()
	r.data[reminder.ID] = reminder
	r.order = append(r.order, reminder.ID)
	r.mu.Unlock()
	return reminder, nil
}

// DeleteReminder removes a reminder by id.
func (r *Repository) DeleteReminder(ctx context.Context, id string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return reminders.ErrNotFound
	}
	delete(r.data, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// MarkFired sets LastFiredDate to date only if it is not already date.
// Returns true when this call won the claim.
func (r *Repository) MarkFired(ctx context.Context, id, date string) (bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	reminder, ok := r.data[id]
	if !ok {
		return false, reminders.ErrNotFound
	}
	if reminder.LastFiredDate == date {
		return false, nil
	}
	reminder.LastFiredDate = date
	r.data[id] = reminder
	return true, nil
}
