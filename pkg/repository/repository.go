package repository

import (
	"context"
	"time"

	"github.com/travigo/railtimetable/pkg/timetable"
)

// ScheduleLookup is the read side of a timetable store. Service lookups apply
// the overlay rule and return nil without an error when nothing runs.
type ScheduleLookup interface {
	Service(ctx context.Context, uid string, date timetable.Date, permanentOnly bool) (*timetable.DatedService, error)
	Services(ctx context.Context, keys []timetable.ServiceKey, permanentOnly bool) (map[timetable.ServiceKey]*timetable.DatedService, error)

	// AssociationEntries returns every association naming uid on either side
	// whose period touches the day before, the day of, or the day after date
	AssociationEntries(ctx context.Context, uid string, date timetable.Date) ([]timetable.AssociationEntry, error)
	AssociationEntriesForServices(ctx context.Context, services []*timetable.DatedService) (map[timetable.ServiceKey][]timetable.AssociationEntry, error)
}

// BoardSource narrows down which services can possibly call at a station
type BoardSource interface {
	CandidateIdentifiers(ctx context.Context, crs string, timeType timetable.TimeType, from time.Time, to time.Time) ([]string, error)
}

type RetailLookup interface {
	ServicesByRSID(ctx context.Context, rsid string, date timetable.Date, permanentOnly bool) ([]*timetable.DatedService, error)
}

// GeneratedDateReader reports the date the loaded timetable was extracted on
type GeneratedDateReader interface {
	GeneratedDate(ctx context.Context) (timetable.Date, error)
}

// Store is a complete timetable store
type Store interface {
	ScheduleLookup
	BoardSource
	RetailLookup

	InsertServices(ctx context.Context, services []timetable.ServiceEntry) error
	InsertAssociations(ctx context.Context, associations []timetable.AssociationEntry) error
	GeneratedDateReader
	SetGeneratedDate(ctx context.Context, date timetable.Date) error
}

// AssociationWindow reports whether an association period touches the day
// before, the day of or the day after date
func AssociationWindow(entry timetable.AssociationEntry, date timetable.Date) bool {
	return entry.Header().Period.Overlaps(date.AddDays(-1), date.AddDays(1))
}

// CandidateDates lists the service dates that can have a call inside
// [from, to): services starting the previous day can run past midnight
func CandidateDates(from time.Time, to time.Time) []timetable.Date {
	first := timetable.DateFromTime(from.In(timetable.London())).AddDays(-1)
	last := timetable.DateFromTime(to.In(timetable.London()))

	var dates []timetable.Date
	for date := first; !date.After(last); date = date.AddDays(1) {
		dates = append(dates, date)
	}
	return dates
}
