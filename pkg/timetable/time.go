package timetable

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const halfMinutesPerDay = 24 * 60 * 2

// Time is a point in a service day counted in half minutes from midnight.
// Values of 24:00 and above belong to the next calendar day.
type Time int

func NewTime(hours int, minutes int, halfMinute bool) Time {
	t := Time(hours*120 + minutes*2)
	if halfMinute {
		t++
	}
	return t
}

// TimeFromClock takes the wall clock reading of t, rounding seconds to the
// nearest half minute below
func TimeFromClock(t time.Time) Time {
	return NewTime(t.Hour(), t.Minute(), t.Second() >= 30)
}

// ParseHHMM reads a timetable time in HHMM form with an optional trailing H
// for a half minute. When previous is given and the parsed time is earlier,
// the time is moved onto the next day.
func ParseHHMM(value string, previous *Time) (Time, error) {
	value = strings.TrimSpace(value)
	if len(value) < 4 {
		return 0, fmt.Errorf("invalid time %q", value)
	}

	hours, err := strconv.Atoi(value[0:2])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", value, err)
	}
	minutes, err := strconv.Atoi(value[2:4])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", value, err)
	}
	if hours > 23 || minutes > 59 {
		return 0, fmt.Errorf("invalid time %q", value)
	}

	t := NewTime(hours, minutes, len(value) > 4 && value[4] == 'H')

	if previous != nil {
		for t < *previous {
			t += halfMinutesPerDay
		}
	}

	return t, nil
}

func (t Time) HalfMinutes() int {
	return int(t)
}

func (t Time) Hours() int {
	return int(t) / 120
}

func (t Time) Minutes() int {
	return int(t) % 120 / 2
}

func (t Time) IsHalfMinute() bool {
	return int(t)%2 == 1
}

func (t Time) Duration() time.Duration {
	return time.Duration(t) * 30 * time.Second
}

// WithinDay strips any whole days from t
func (t Time) WithinDay() Time {
	return Time(((int(t) % halfMinutesPerDay) + halfMinutesPerDay) % halfMinutesPerDay)
}

func (t Time) Add(halfMinutes int) Time {
	return t + Time(halfMinutes)
}

func (t Time) Ptr() *Time {
	return &t
}

func (t Time) String() string {
	clock := t.WithinDay()
	result := fmt.Sprintf("%02d:%02d", clock.Hours(), clock.Minutes())
	if t.IsHalfMinute() {
		result += "½"
	}
	return result
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Time) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	value = strings.ReplaceAll(value, ":", "")
	value = strings.ReplaceAll(value, "½", "H")
	parsed, err := ParseHHMM(value, nil)
	if err != nil {
		return err
	}
	*t = parsed

	return nil
}

// TimePtrEqual compares two optional times
func TimePtrEqual(a *Time, b *Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
