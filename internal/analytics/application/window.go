package application

import (
	"context"
	"fmt"
	"time"

	analytics "healthwatch-cloud/internal/analytics/domain"
	vitals "healthwatch-cloud/internal/vitals/domain"
)

// SlotAggregate is one fixed-width slot of an on-demand window report.
// Slots are aligned to the window start, not to calendar boundaries.
type SlotAggregate struct {
	Slot           int       `json:"slot"`
	TimeStart      time.Time `json:"time_start"`
	TimeEnd        time.Time `json:"time_end"`
	AvgHeartRate   *float64  `json:"avg_heart_rate"`
	AvgSpO2        *float64  `json:"avg_spo2"`
	AvgTemperature *float64  `json:"avg_temp"`
	FallCount      int       `json:"fall_count"`
	SampleCount    int       `json:"sample_count"`
}

// WindowReport aggregates all raw readings in [now-lookback, now] into
// contiguous fixed-width slots.
type WindowReport struct {
	WindowStart time.Time       `json:"window_start"`
	WindowEnd   time.Time       `json:"window_end"`
	SlotWidth   time.Duration   `json:"slot_width"`
	Slots       []SlotAggregate `json:"slots"`
	TotalRaw    int             `json:"total_raw"`
}

// AggregateWindow partitions the raw readings of the lookback window into
// slots of slotWidth and computes per-slot averages of present values.
// Slot width is the caller's policy so slot counts stay bounded.
func (a *Aggregator) AggregateWindow(ctx context.Context, lookback, slotWidth time.Duration) (WindowReport, error) {
	if lookback <= 0 || slotWidth <= 0 {
		return WindowReport{}, fmt.Errorf("analytics: invalid window %v/%v", lookback, slotWidth)
	}
	if slotWidth > lookback {
		slotWidth = lookback
	}
	if a.store == nil {
		return WindowReport{}, fmt.Errorf("%w: no reading store configured", vitals.ErrStoreUnavailable)
	}

	now := a.clock.Now().UTC()
	start := now.Add(-lookback)

	readings, err := a.store.ListReadingsSince(ctx, start)
	if err != nil {
		return WindowReport{}, fmt.Errorf("%w: %v", vitals.ErrStoreUnavailable, err)
	}

	slotCount := int((lookback + slotWidth - 1) / slotWidth)
	accumulators := make([]analytics.MinuteBucket, slotCount)
	for i := range accumulators {
		accumulators[i].TimeStart = start.Add(time.Duration(i) * slotWidth)
		accumulators[i].TimeEnd = accumulators[i].TimeStart.Add(slotWidth)
	}
	if slotCount > 0 {
		// now itself belongs to the last slot.
		accumulators[slotCount-1].TimeEnd = now
	}

	total := 0
	for _, reading := range readings {
		ts := reading.Timestamp.UTC()
		if ts.Before(start) || ts.After(now) {
			continue
		}
		idx := int(ts.Sub(start) / slotWidth)
		if idx >= slotCount {
			idx = slotCount - 1
		}
		accumulators[idx].Add(reading)
		total++
	}

	slots := make([]SlotAggregate, slotCount)
	for i, acc := range accumulators {
		summary := acc.Summary()
		slots[i] = SlotAggregate{
			Slot:           i + 1,
			TimeStart:      acc.TimeStart,
			TimeEnd:        acc.TimeEnd,
			AvgHeartRate:   summary.AvgHeartRate,
			AvgSpO2:        summary.AvgSpO2,
			AvgTemperature: summary.AvgTemperature,
			FallCount:      summary.FallCount,
			SampleCount:    summary.SampleCount,
		}
	}

	return WindowReport{
		WindowStart: start,
		WindowEnd:   now,
		SlotWidth:   slotWidth,
		Slots:       slots,
		TotalRaw:    total,
	}, nil
}

// Named lookback windows exposed on the control surface.
const (
	WindowMinute = "minute"
	WindowHour   = "hour"
)

// NamedWindow resolves a named lookback window to its lookback and slot
// width policy: finer slots for the minute view than the hour view.
func NamedWindow(name string) (lookback, slotWidth time.Duration, err error) {
	switch name {
	case WindowMinute:
		return time.Minute, 10 * time.Second, nil
	case WindowHour:
		return time.Hour, 5 * time.Minute, nil
	default:
		return 0, 0, fmt.Errorf("analytics: unknown window %q", name)
	}
}
