package memory

import (
	"context"
	"sync"
	"time"

	vitals "healthwatch-cloud/internal/vitals/domain"
)

const defaultCapacity = 10000

// Store is a bounded in-memory reading log. Used when no database is
// configured; oldest readings fall off once capacity is reached.
type Store struct {
	mu       sync.RWMutex
	capacity int
	readings []vitals.VitalReading
}

// StoreOption configures the store.
type StoreOption func(*Store)

// WithCapacity bounds the retained readings.
func WithCapacity(capacity int) StoreOption {
	return func(s *Store) {
		if capacity > 0 {
			s.capacity = capacity
		}
	}
}

// NewStore constructs a bounded store.
func NewStore(opts ...StoreOption) *Store {
	store := &Store{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// AppendReading records one reading, evicting the oldest past capacity.
func (s *Store) AppendReading(ctx context.Context, reading vitals.VitalReading) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings = append(s.readings, reading)
	if len(s.readings) > s.capacity {
		s.readings = s.readings[len(s.readings)-s.capacity:]
	}
	return nil
}

// ListRecentReadings returns up to limit readings, newest first.
func (s *Store) ListRecentReadings(ctx context.Context, limit int) ([]vitals.VitalReading, error) {
	_ = ctx
	if limit <= 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.readings)
	if limit > n {
		limit = n
	}
	result := make([]vitals.VitalReading, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		result = append(result, s.readings[i])
	}
	return result, nil
}

// ListReadingsSince returns readings with timestamp >= since, oldest first.
func (s *Store) ListReadingsSince(ctx context.Context, since time.Time) ([]vitals.VitalReading, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []vitals.VitalReading
	for _, reading := range s.readings {
		if !reading.Timestamp.Before(since) {
			result = append(result, reading)
		}
	}
	return result, nil
}
