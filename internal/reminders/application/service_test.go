package application

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	reminders "healthwatch-cloud/internal/reminders/domain"
	"healthwatch-cloud/internal/reminders/infrastructure/memory"
)

type recordingSyncer struct {
	mu    sync.Mutex
	times []string
}

func (s *recordingSyncer) SyncTime(timeOfDay string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.times = append(s.times, timeOfDay)
}

func (s *recordingSyncer) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.times...)
}

func TestServiceAddNormalizesAndSyncsDevices(t *testing.T) {
	syncer := &recordingSyncer{}
	service, err := NewService(memory.NewRepository(), syncer, zap.NewNop())
	require.NoError(t, err)

	reminder, err := service.Add(context.Background(), "Dolo-650", "02:30 PM")
	require.NoError(t, err)

	assert.NotEmpty(t, reminder.ID)
	assert.Equal(t, "Dolo-650", reminder.Medicine)
	assert.Equal(t, "14:30", reminder.TimeOfDay)
	assert.Equal(t, []string{"14:30"}, syncer.all())

	list, err := service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, reminder, list[0])
}

func TestServiceAddRejectsInvalidInput(t *testing.T) {
	service, err := NewService(memory.NewRepository(), nil, zap.NewNop())
	require.NoError(t, err)

	_, err = service.Add(context.Background(), "", "14:30")
	assert.Error(t, err)

	_, err = service.Add(context.Background(), "Dolo-650", "half past two")
	assert.Error(t, err)

	list, err := service.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestServiceDelete(t *testing.T) {
	service, err := NewService(memory.NewRepository(), nil, zap.NewNop())
	require.NoError(t, err)

	reminder, err := service.Add(context.Background(), "Aspirin", "09:00")
	require.NoError(t, err)

	require.NoError(t, service.Delete(context.Background(), reminder.ID))

	err = service.Delete(context.Background(), reminder.ID)
	assert.ErrorIs(t, err, reminders.ErrNotFound)
}
