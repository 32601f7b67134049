package analytics

import (
	"time"

	vitals "healthwatch-cloud/internal/vitals/domain"
)

// BucketWidth is the fixed width of a rolling aggregation bucket.
const BucketWidth = time.Minute

// RollingCapacity bounds the finalized bucket history (the "last 10
// minutes" view).
const RollingCapacity = 10

// MinuteBucket is the live accumulator for one wall-clock minute.
// Invariant: TimeEnd = TimeStart + BucketWidth.
type MinuteBucket struct {
	TimeStart time.Time
	TimeEnd   time.Time

	SumHR     float64
	CountHR   int
	SumSpO2   float64
	CountSpO2 int
	SumTemp   float64
	CountTemp int

	FallCount   int
	SampleCount int
}

// NewMinuteBucket opens a live bucket at the minute boundary containing at.
func NewMinuteBucket(at time.Time) MinuteBucket {
	start := at.UTC().Truncate(BucketWidth)
	return MinuteBucket{TimeStart: start, TimeEnd: start.Add(BucketWidth)}
}

// Add accumulates one reading. Absent fields are skipped; SampleCount is
// incremented unconditionally. Fall signals are counted regardless of
// maintenance mode, which suppresses alarming only.
func (b *MinuteBucket) Add(reading vitals.VitalReading) {
	if reading.HeartRate != nil {
		b.SumHR += float64(*reading.HeartRate)
		b.CountHR++
	}
	if reading.SpO2 != nil {
		b.SumSpO2 += float64(*reading.SpO2)
		b.CountSpO2++
	}
	if reading.Temperature != nil {
		b.SumTemp += *reading.Temperature
		b.CountTemp++
	}
	if reading.FallDetected {
		b.FallCount++
	}
	b.SampleCount++
}

// BucketSummary is a sealed, immutable bucket with computed averages.
// An average is nil, never zero, when the field had no samples.
type BucketSummary struct {
	TimeStart      time.Time `json:"time_start"`
	TimeEnd        time.Time `json:"time_end"`
	AvgHeartRate   *float64  `json:"avg_heart_rate"`
	AvgSpO2        *float64  `json:"avg_spo2"`
	AvgTemperature *float64  `json:"avg_temp"`
	FallCount      int       `json:"fall_count"`
	SampleCount    int       `json:"sample_count"`
}

// Summary seals the accumulator into its immutable form.
func (b MinuteBucket) Summary() BucketSummary {
	return BucketSummary{
		TimeStart:      b.TimeStart,
		TimeEnd:        b.TimeEnd,
		AvgHeartRate:   avg(b.SumHR, b.CountHR),
		AvgSpO2:        avg(b.SumSpO2, b.CountSpO2),
		AvgTemperature: avg(b.SumTemp, b.CountTemp),
		FallCount:      b.FallCount,
		SampleCount:    b.SampleCount,
	}
}

func avg(sum float64, count int) *float64 {
	if count == 0 {
		return nil
	}
	value := sum / float64(count)
	return &value
}

// RollingWindow is a bounded FIFO of finalized buckets, oldest first.
type RollingWindow struct {
	capacity int
	buckets  []BucketSummary
}

// NewRollingWindow constructs a window with the given capacity.
func NewRollingWindow(capacity int) *RollingWindow {
	if capacity <= 0 {
		capacity = RollingCapacity
	}
	return &RollingWindow{capacity: capacity}
}

// Push appends a finalized bucket, evicting the oldest beyond capacity.
func (w *RollingWindow) Push(summary BucketSummary) {
	w.buckets = append(w.buckets, summary)
	if len(w.buckets) > w.capacity {
		w.buckets = w.buckets[len(w.buckets)-w.capacity:]
	}
}

// Buckets returns the finalized buckets oldest to newest.
func (w *RollingWindow) Buckets() []BucketSummary {
	out := make([]BucketSummary, len(w.buckets))
	copy(out, w.buckets)
	return out
}

// Len returns the number of retained buckets.
func (w *RollingWindow) Len() int { return len(w.buckets) }
