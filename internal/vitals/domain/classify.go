package vitals

// VitalStatus classifies one vital field of a reading.
type VitalStatus string

const (
	StatusNormal   VitalStatus = "normal"
	StatusAbnormal VitalStatus = "abnormal"
	StatusUnknown  VitalStatus = "unknown"
)

// Range is an inclusive normal band; both boundary values classify normal.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether value lies inside the band, boundaries included.
func (r Range) Contains(value float64) bool {
	return value >= r.Min && value <= r.Max
}

// Ranges bundles the normal bands used to classify a reading.
type Ranges struct {
	HeartRate   Range `yaml:"heart_rate"`
	SpO2        Range `yaml:"spo2"`
	Temperature Range `yaml:"temperature"`
}

// DefaultRanges returns the resting-adult normal bands.
func DefaultRanges() Ranges {
	return Ranges{
		HeartRate:   Range{Min: 60, Max: 100},
		SpO2:        Range{Min: 95, Max: 100},
		Temperature: Range{Min: 36.1, Max: 37.2},
	}
}

// ReadingStatus carries the per-field classification of one reading.
type ReadingStatus struct {
	HeartRate   VitalStatus `json:"heart_rate"`
	SpO2        VitalStatus `json:"spo2"`
	Temperature VitalStatus `json:"temp"`
}

// Classify evaluates each present field against its normal band. Absent
// fields classify unknown, never abnormal.
func (rs Ranges) Classify(reading VitalReading) ReadingStatus {
	status := ReadingStatus{
		HeartRate:   StatusUnknown,
		SpO2:        StatusUnknown,
		Temperature: StatusUnknown,
	}
	if reading.HeartRate != nil {
		status.HeartRate = classify(rs.HeartRate, float64(*reading.HeartRate))
	}
	if reading.SpO2 != nil {
		status.SpO2 = classify(rs.SpO2, float64(*reading.SpO2))
	}
	if reading.Temperature != nil {
		status.Temperature = classify(rs.Temperature, *reading.Temperature)
	}
	return status
}

func classify(band Range, value float64) VitalStatus {
	if band.Contains(value) {
		return StatusNormal
	}
	return StatusAbnormal
}
