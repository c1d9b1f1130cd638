package timetable

import (
	"fmt"
	"time"
)

// AbsoluteZone returns a fixed zone carrying the UK offset in force at the
// moment a train leaves its origin. Every time on that train is then read
// against this zone, so a service running through a clock change keeps a
// continuous timeline.
func AbsoluteZone(date Date, departure Time) *time.Location {
	clock := departure.WithinDay()
	instant := time.Date(date.Year, date.Month, date.Day, clock.Hours(), clock.Minutes(), 0, 0, londonLocation)
	if clock.IsHalfMinute() {
		instant = instant.Add(30 * time.Second)
	}

	_, offset := instant.Zone()

	// A departure inside the missing spring hour is normalised forward by an
	// hour, which the offset needs to give back
	offset += (clock.HalfMinutes() - TimeFromClock(instant).HalfMinutes()) * 30

	return fixedZone(offset)
}

func fixedZone(offset int) *time.Location {
	if offset == 0 {
		return time.UTC
	}

	sign := '+'
	abs := offset
	if abs < 0 {
		sign = '-'
		abs = -abs
	}

	return time.FixedZone(fmt.Sprintf("%c%02d:%02d", sign, abs/3600, abs%3600/60), offset)
}

// publishedInUTC covers London Overground night services on the autumn clock
// change Sunday, which are supplied in UTC rather than local time
func publishedInUTC(service *Service, departure Time) bool {
	period := service.Period
	return service.TOC == "LO" &&
		service.ShortTermPlanning == New &&
		period.From == period.To &&
		period.Weekdays.SingleDay() && period.Weekdays[time.Sunday] &&
		period.From.Month == time.October && period.From.Day >= 25 &&
		departure.WithinDay().Hours() == 1
}
