package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vitals "healthwatch-cloud/internal/vitals/domain"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestNewMinuteBucketAlignsToBoundary(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 120, time.UTC)
	bucket := NewMinuteBucket(at)

	assert.Equal(t, time.Date(2026, 3, 14, 9, 26, 0, 0, time.UTC), bucket.TimeStart)
	assert.Equal(t, bucket.TimeStart.Add(time.Minute), bucket.TimeEnd)
}

func TestBucketAddSkipsAbsentFields(t *testing.T) {
	bucket := NewMinuteBucket(time.Now())

	bucket.Add(vitals.VitalReading{HeartRate: intPtr(75), SpO2: intPtr(98), Temperature: floatPtr(36.8)})
	bucket.Add(vitals.VitalReading{HeartRate: intPtr(150), SpO2: intPtr(90), Temperature: floatPtr(37.0), FallDetected: true})
	bucket.Add(vitals.VitalReading{Temperature: floatPtr(36.9)})

	assert.Equal(t, 2, bucket.CountHR)
	assert.Equal(t, 3, bucket.CountTemp)
	assert.Equal(t, 3, bucket.SampleCount)
	assert.Equal(t, 1, bucket.FallCount)
	assert.GreaterOrEqual(t, bucket.SampleCount, bucket.CountHR)
	assert.GreaterOrEqual(t, bucket.SampleCount, bucket.CountSpO2)
	assert.GreaterOrEqual(t, bucket.SampleCount, bucket.CountTemp)
}

func TestSummaryAveragesPresentValuesOnly(t *testing.T) {
	bucket := NewMinuteBucket(time.Now())
	bucket.Add(vitals.VitalReading{HeartRate: intPtr(75)})
	bucket.Add(vitals.VitalReading{HeartRate: intPtr(150)})

	summary := bucket.Summary()
	require.NotNil(t, summary.AvgHeartRate)
	assert.InDelta(t, 112.5, *summary.AvgHeartRate, 1e-9)
	assert.Nil(t, summary.AvgSpO2, "field with zero samples reports nil, never zero")
	assert.Nil(t, summary.AvgTemperature)
	assert.Equal(t, 2, summary.SampleCount)
}

func TestRollingWindowEvictsOldestBeyondCapacity(t *testing.T) {
	window := NewRollingWindow(RollingCapacity)
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	for i := 0; i < RollingCapacity+1; i++ {
		window.Push(BucketSummary{
			TimeStart: start.Add(time.Duration(i) * time.Minute),
			TimeEnd:   start.Add(time.Duration(i+1) * time.Minute),
		})
	}

	buckets := window.Buckets()
	require.Len(t, buckets, RollingCapacity)
	assert.Equal(t, start.Add(time.Minute), buckets[0].TimeStart, "exactly the oldest is evicted")
	assert.Equal(t, start.Add(10*time.Minute), buckets[len(buckets)-1].TimeStart)
}
