package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	vitals "healthwatch-cloud/internal/vitals/domain"
)

// ReadingRepository is the Postgres reading log backing history queries and
// on-demand window aggregation.
type ReadingRepository struct {
	db *sql.DB
}

// NewReadingRepository constructs a repository.
func NewReadingRepository(db *sql.DB) (*ReadingRepository, error) {
	if db == nil {
		return nil, errors.New("reading repo: nil db")
	}
	return &ReadingRepository{db: db}, nil
}

// EnsureSchema creates the vital_logs table when missing.
func (r *ReadingRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS vital_logs (
	id BIGSERIAL PRIMARY KEY,
	device_id TEXT NOT NULL,
	ts TIMESTAMPTZ NOT NULL,
	heart_rate INTEGER,
	spo2 INTEGER,
	temp DOUBLE PRECISION,
	fall_detected BOOLEAN NOT NULL DEFAULT FALSE
)`)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
CREATE INDEX IF NOT EXISTS vital_logs_ts_idx ON vital_logs (ts)`)
	return err
}

// AppendReading inserts one reading.
func (r *ReadingRepository) AppendReading(ctx context.Context, reading vitals.VitalReading) error {
	heartRate := sql.NullInt64{}
	if reading.HeartRate != nil {
		heartRate = sql.NullInt64{Int64: int64(*reading.HeartRate), Valid: true}
	}
	spo2 := sql.NullInt64{}
	if reading.SpO2 != nil {
		spo2 = sql.NullInt64{Int64: int64(*reading.SpO2), Valid: true}
	}
	temp := sql.NullFloat64{}
	if reading.Temperature != nil {
		temp = sql.NullFloat64{Float64: *reading.Temperature, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO vital_logs (device_id, ts, heart_rate, spo2, temp, fall_detected)
VALUES ($1, $2, $3, $4, $5, $6)`,
		reading.DeviceID, reading.Timestamp, heartRate, spo2, temp, reading.FallDetected)
	return err
}

// ListRecentReadings returns up to limit readings, newest first.
func (r *ReadingRepository) ListRecentReadings(ctx context.Context, limit int) ([]vitals.VitalReading, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT device_id, ts, heart_rate, spo2, temp, fall_detected
FROM vital_logs
ORDER BY ts DESC, id DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReadings(rows)
}

// ListReadingsSince returns readings with ts >= since, oldest first.
func (r *ReadingRepository) ListReadingsSince(ctx context.Context, since time.Time) ([]vitals.VitalReading, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT device_id, ts, heart_rate, spo2, temp, fall_detected
FROM vital_logs
WHERE ts >= $1
ORDER BY ts ASC, id ASC`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReadings(rows)
}

func scanReadings(rows *sql.Rows) ([]vitals.VitalReading, error) {
	var result []vitals.VitalReading
	for rows.Next() {
		var reading vitals.VitalReading
		var heartRate, spo2 sql.NullInt64
		var temp sql.NullFloat64
		if err := rows.Scan(
			&reading.DeviceID,
			&reading.Timestamp,
			&heartRate,
			&spo2,
			&temp,
			&reading.FallDetected,
		); err != nil {
			return nil, err
		}
		if heartRate.Valid {
			v := int(heartRate.Int64)
			reading.HeartRate = &v
		}
		if spo2.Valid {
			v := int(spo2.Int64)
			reading.SpO2 = &v
		}
		if temp.Valid {
			v := temp.Float64
			reading.Temperature = &v
		}
		reading.Timestamp = reading.Timestamp.UTC()
		result = append(result, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
