package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	reminders "healthwatch-cloud/internal/reminders/domain"
)

// Repository is a Postgres reminder store. last_fired_date is stored as
// text (YYYY-MM-DD) and updated with a compare-and-set so concurrent
// scheduler ticks cannot both claim the same day.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs a repository.
func NewRepository(db *sql.DB) (*Repository, error) {
	if db == nil {
		return nil, errors.New("reminder repo: nil db")
	}
	return &Repository{db: db}, nil
}

// EnsureSchema creates the reminders table when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS reminders (
	id TEXT PRIMARY KEY,
	medicine TEXT NOT NULL,
	time_of_day TEXT NOT NULL,
	last_fired_date TEXT
)`)
	return err
}

// ListReminders returns all reminders ordered by time of day.
func (r *Repository) ListReminders(ctx context.Context) ([]reminders.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, medicine, time_of_day, COALESCE(last_fired_date, '')
FROM reminders
ORDER BY time_of_day ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []reminders.Reminder
	for rows.Next() {
		var reminder reminders.Reminder
		if err := rows.Scan(&reminder.ID, &reminder.Medicine, &reminder.TimeOfDay, &reminder.LastFiredDate); err != nil {
			return nil, err
		}
		result = append(result, reminder)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// InsertReminder stores a new reminder with a generated id.
func (r *Repository) InsertReminder(ctx context.Context, medicine, timeOfDay string) (reminders.Reminder, error) {
	reminder := reminders.Reminder{
		ID:        uuid.NewString(),
		Medicine:  medicine,
		TimeOfDay: timeOfDay,
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO reminders (id, medicine, time_of_day)
VALUES ($1, $2, $3)`, reminder.ID, reminder.Medicine, reminder.TimeOfDay)
	if err != nil {
		return reminders.Reminder{}, err
	}
	return reminder, nil
}

// DeleteReminder removes a reminder by id.
func (r *Repository) DeleteReminder(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return reminders.ErrNotFound
	}
	return nil
}

// MarkFired claims the firing for date. The WHERE clause makes the update
// a no-op when the reminder already fired on date; RowsAffected tells the
// caller whether it won.
func (r *Repository) MarkFired(ctx context.Context, id, date string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
UPDATE reminders
SET last_fired_date = $2
WHERE id = $1 AND (last_fired_date IS NULL OR last_fired_date <> $2)`, id, date)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
