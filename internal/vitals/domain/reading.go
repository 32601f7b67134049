package vitals

import (
	"fmt"
	"time"
)

// Physical plausibility bounds. Values outside these bands cannot come from
// a live sensor and are rejected as malformed rather than classified.
const (
	MinHeartRate = 20
	MaxHeartRate = 300

	MinSpO2 = 50
	MaxSpO2 = 100

	MinTemperature = 30.0
	MaxTemperature = 45.0
)

// VitalReading is one normalized sample from a device. Optional vitals are
// pointers; a nil field means the device omitted it and downstream renders
// it as unknown. Immutable once ingested.
type VitalReading struct {
	DeviceID     string    `json:"device_id"`
	Timestamp    time.Time `json:"timestamp"`
	HeartRate    *int      `json:"heart_rate,omitempty"`
	SpO2         *int      `json:"spo2,omitempty"`
	Temperature  *float64  `json:"temp,omitempty"`
	FallDetected bool      `json:"fall_detected"`
}

// RawReading is the wire-level record as produced by a device, before
// validation. Timestamp is the producer's RFC3339 stamp and may be empty.
type RawReading struct {
	DeviceID     string   `json:"device_id"`
	Timestamp    string   `json:"timestamp"`
	HeartRate    *int     `json:"heart_rate"`
	SpO2         *int     `json:"spo2"`
	Temperature  *float64 `json:"temp"`
	FallDetected bool     `json:"fall_detected"`
}

// Validate normalizes and range-checks a raw reading. Partial readings are
// accepted; out-of-bounds values are rejected wrapping ErrMalformedReading.
// Readings without a producer timestamp are stamped with now. Pure: errors
// are returned to the caller and must not affect any other device's stream.
func Validate(raw RawReading, now time.Time) (VitalReading, error) {
	if raw.DeviceID == "" {
		return VitalReading{}, fmt.Errorf("%w: missing device_id", ErrMalformedReading)
	}
	if raw.HeartRate != nil {
		if hr := *raw.HeartRate; hr < MinHeartRate || hr > MaxHeartRate {
			return VitalReading{}, fmt.Errorf("%w: heart_rate %d out of bounds", ErrMalformedReading, hr)
		}
	}
	if raw.SpO2 != nil {
		if s := *raw.SpO2; s < MinSpO2 || s > MaxSpO2 {
			return VitalReading{}, fmt.Errorf("%w: spo2 %d out of bounds", ErrMalformedReading, s)
		}
	}
	if raw.Temperature != nil {
		if t := *raw.Temperature; t < MinTemperature || t > MaxTemperature {
			return VitalReading{}, fmt.Errorf("%w: temp %.1f out of bounds", ErrMalformedReading, t)
		}
	}

	ts := now.UTC()
	if raw.Timestamp != "" {
		parsed, err := parseTimestamp(raw.Timestamp)
		if err != nil {
			return VitalReading{}, fmt.Errorf("%w: %v", ErrMalformedReading, err)
		}
		ts = parsed
	}

	return VitalReading{
		DeviceID:     raw.DeviceID,
		Timestamp:    ts,
		HeartRate:    raw.HeartRate,
		SpO2:         raw.SpO2,
		Temperature:  raw.Temperature,
		FallDetected: raw.FallDetected,
	}, nil
}

func parseTimestamp(value string) (time.Time, error) {
	layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", value)
}
