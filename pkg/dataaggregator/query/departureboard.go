package query

import (
	"time"

	iso8601 "github.com/senseyeio/duration"
	"github.com/travigo/railtimetable/pkg/timetable"
)

type DepartureBoard struct {
	Station       string
	StartDateTime time.Time
	Period        iso8601.Duration
	TimeType      timetable.TimeType

	Destination         string
	PermanentOnly       bool
	IncludeNonPassenger bool
}

// BoardLayout is a departure board laid out against a station axis
type BoardLayout struct {
	DepartureBoard
}
