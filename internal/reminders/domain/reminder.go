package reminders

import (
	"fmt"
	"strings"
	"time"
)

// Layouts for reminder fields. TimeOfDay is minute-grained wall-clock;
// LastFiredDate is a calendar date, the dedupe key that guarantees
// at-most-once firing per day.
const (
	TimeOfDayLayout = "15:04"
	DateLayout      = "2006-01-02"
)

// Reminder is one stored medicine reminder. LastFiredDate is empty until
// the reminder first fires and is rewritten exactly once per firing day.
type Reminder struct {
	ID            string `json:"id"`
	Medicine      string `json:"medicine"`
	TimeOfDay     string `json:"time_of_day"`
	LastFiredDate string `json:"last_fired_date,omitempty"`
}

// Matches reports whether the reminder is due at now: wall-clock truncated
// to minute precision equals TimeOfDay and the reminder has not fired today.
func (r Reminder) Matches(now time.Time) bool {
	if r.TimeOfDay != now.Format(TimeOfDayLayout) {
		return false
	}
	return r.LastFiredDate != now.Format(DateLayout)
}

// NormalizeTimeOfDay parses a reminder time in 24-hour ("14:30") or
// 12-hour ("02:30 PM") form and returns the canonical 24-hour form.
func NormalizeTimeOfDay(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range []string{TimeOfDayLayout, "03:04 PM", "3:04 PM"} {
		if parsed, err := time.Parse(layout, strings.ToUpper(trimmed)); err == nil {
			return parsed.Format(TimeOfDayLayout), nil
		}
	}
	return "", fmt.Errorf("reminders: unparseable time of day %q", value)
}
