package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	reminders "healthwatch-cloud/internal/reminders/domain"
	"healthwatch-cloud/internal/reminders/infrastructure/memory"
)

type firedAlarm struct {
	Medicine  string
	TimeOfDay string
}

type recordingEmitter struct {
	mu    sync.Mutex
	fired []firedAlarm
}

func (e *recordingEmitter) FireReminder(ctx context.Context, medicine, timeOfDay string) {
	_ = ctx
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fired = append(e.fired, firedAlarm{Medicine: medicine, TimeOfDay: timeOfDay})
}

func (e *recordingEmitter) all() []firedAlarm {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]firedAlarm(nil), e.fired...)
}

func TestSchedulerFiresExactlyOncePerMatchingMinute(t *testing.T) {
	store := memory.NewRepository()
	_, err := store.InsertReminder(context.Background(), "Dolo-650", "14:30")
	require.NoError(t, err)

	emitter := &recordingEmitter{}
	scheduler, err := NewScheduler(store, emitter, zap.NewNop())
	require.NoError(t, err)

	// One tick per second across the whole matching minute.
	start := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	for second := 0; second < 60; second++ {
		scheduler.CheckOnce(context.Background(), start.Add(time.Duration(second)*time.Second))
	}

	fired := emitter.all()
	require.Len(t, fired, 1)
	assert.Equal(t, firedAlarm{Medicine: "Dolo-650", TimeOfDay: "14:30"}, fired[0])

	// The next minute is quiet.
	scheduler.CheckOnce(context.Background(), start.Add(time.Minute))
	assert.Len(t, emitter.all(), 1)
}

func TestSchedulerReArmsNextDay(t *testing.T) {
	store := memory.NewRepository()
	_, err := store.InsertReminder(context.Background(), "Metformin", "08:00")
	require.NoError(t, err)

	emitter := &recordingEmitter{}
	scheduler, err := NewScheduler(store, emitter, zap.NewNop())
	require.NoError(t, err)

	day1 := time.Date(2026, 3, 10, 8, 0, 5, 0, time.UTC)
	scheduler.CheckOnce(context.Background(), day1)
	scheduler.CheckOnce(context.Background(), day1.Add(10*time.Second))
	scheduler.CheckOnce(context.Background(), day1.Add(24*time.Hour))

	assert.Len(t, emitter.all(), 2)
}

func TestSchedulerFiresEachReminderIndependently(t *testing.T) {
	store := memory.NewRepository()
	_, err := store.InsertReminder(context.Background(), "Dolo-650", "14:30")
	require.NoError(t, err)
	_, err = store.InsertReminder(context.Background(), "Aspirin", "14:30")
	require.NoError(t, err)

	emitter := &recordingEmitter{}
	scheduler, err := NewScheduler(store, emitter, zap.NewNop())
	require.NoError(t, err)

	scheduler.CheckOnce(context.Background(), time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC))

	fired := emitter.all()
	require.Len(t, fired, 2)
	medicines := []string{fired[0].Medicine, fired[1].Medicine}
	assert.ElementsMatch(t, []string{"Dolo-650", "Aspirin"}, medicines)
}

type failingStore struct{}

func (failingStore) ListReminders(ctx context.Context) ([]reminders.Reminder, error) {
	return nil, errors.New("connection refused")
}

func (failingStore) InsertReminder(ctx context.Context, medicine, timeOfDay string) (reminders.Reminder, error) {
	return reminders.Reminder{}, errors.New("connection refused")
}

func (failingStore) DeleteReminder(ctx context.Context, id string) error {
	return errors.New("connection refused")
}

func (failingStore) MarkFired(ctx context.Context, id, date string) (bool, error) {
	return false, errors.New("connection refused")
}

func TestSchedulerSkipsPassOnStoreFailure(t *testing.T) {
	emitter := &recordingEmitter{}
	scheduler, err := NewScheduler(failingStore{}, emitter, zap.NewNop())
	require.NoError(t, err)

	scheduler.CheckOnce(context.Background(), time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC))
	assert.Empty(t, emitter.all())
}

func TestNewSchedulerValidatesDependencies(t *testing.T) {
	_, err := NewScheduler(nil, &recordingEmitter{}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewScheduler(memory.NewRepository(), nil, zap.NewNop())
	assert.Error(t, err)
}
