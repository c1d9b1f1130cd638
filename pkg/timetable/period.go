package timetable

import "time"

// Weekdays is indexed by time.Weekday, so Sunday is at 0
type Weekdays [7]bool

// ParseWeekdays reads a Monday first mask such as "1111100"
func ParseWeekdays(mask string) Weekdays {
	var weekdays Weekdays
	for i, ch := range mask {
		if i >= 7 {
			break
		}
		weekdays[time.Weekday((i+1)%7)] = ch == '1'
	}
	return weekdays
}

// EveryDay runs on all seven days of the week
var EveryDay = Weekdays{true, true, true, true, true, true, true}

func (w Weekdays) String() string {
	mask := make([]byte, 7)
	for i := 0; i < 7; i++ {
		if w[time.Weekday((i+1)%7)] {
			mask[i] = '1'
		} else {
			mask[i] = '0'
		}
	}
	return string(mask)
}

// SingleDay is true when exactly one weekday is set
func (w Weekdays) SingleDay() bool {
	count := 0
	for _, day := range w {
		if day {
			count++
		}
	}
	return count == 1
}

type Period struct {
	From     Date     `json:"from" bson:"from"`
	To       Date     `json:"to" bson:"to"`
	Weekdays Weekdays `json:"weekdays" bson:"weekdays"`
}

func (p Period) IsActive(date Date) bool {
	return !date.Before(p.From) && !date.After(p.To) && p.Weekdays[date.Weekday()]
}

// Overlaps reports whether any day between from and to falls inside the
// period range, ignoring weekdays
func (p Period) Overlaps(from Date, to Date) bool {
	return !p.From.After(to) && !p.To.Before(from)
}
