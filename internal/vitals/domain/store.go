package vitals

import (
	"context"
	"time"
)

// ReadingStore is the narrow durable-store contract the core reads and
// writes vital history through. Failures are recoverable: ingestion
// continues in-memory when Append fails.
type ReadingStore interface {
	AppendReading(ctx context.Context, reading VitalReading) error
	ListRecentReadings(ctx context.Context, limit int) ([]VitalReading, error)
	ListReadingsSince(ctx context.Context, since time.Time) ([]VitalReading, error)
}
