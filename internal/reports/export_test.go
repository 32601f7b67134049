package reports

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	analytics "healthwatch-cloud/internal/analytics/domain"
	vitals "healthwatch-cloud/internal/vitals/domain"
)

func TestBuildHistoryXLSX(t *testing.T) {
	hr := 75
	spo2 := 98
	readings := []vitals.VitalReading{
		{
			DeviceID:  "wristband-7",
			Timestamp: time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC),
			HeartRate: &hr,
			SpO2:      &spo2,
		},
		{
			DeviceID:     "wristband-7",
			Timestamp:    time.Date(2026, 3, 10, 14, 30, 1, 0, time.UTC),
			FallDetected: true,
		},
	}

	data, err := BuildHistoryXLSX(readings)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("history")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Device", rows[0][0])
	assert.Equal(t, "wristband-7", rows[1][0])
	assert.Equal(t, "75", rows[1][2])
	assert.Equal(t, "TRUE", rows[2][5])
}

func TestBuildHistoryXLSXEmpty(t *testing.T) {
	data, err := BuildHistoryXLSX(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestBuildRollingSummaryPDF(t *testing.T) {
	avgHR := 112.5
	start := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	buckets := []analytics.BucketSummary{
		{
			TimeStart:    start,
			TimeEnd:      start.Add(time.Minute),
			AvgHeartRate: &avgHR,
			FallCount:    1,
			SampleCount:  2,
		},
		{
			TimeStart: start.Add(time.Minute),
			TimeEnd:   start.Add(2 * time.Minute),
		},
	}

	data, err := BuildRollingSummaryPDF(buckets, start.Add(2*time.Minute))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
