package timetablelookup

import (
	"context"
	"fmt"
	"reflect"

	"github.com/travigo/railtimetable/pkg/dataaggregator"
	"github.com/travigo/railtimetable/pkg/dataaggregator/query"
	"github.com/travigo/railtimetable/pkg/departureboard"
	"github.com/travigo/railtimetable/pkg/repository"
	"github.com/travigo/railtimetable/pkg/servicegraph"
	"github.com/travigo/railtimetable/pkg/stationorder"
	"github.com/travigo/railtimetable/pkg/timetable"
)

type Source struct {
	Schedules repository.ScheduleLookup
	Retail    repository.RetailLookup
	Boards    *departureboard.Generator
}

// New reads schedules from the store and board candidates from boards,
// which is usually a cache in front of the same store
func New(store repository.Store, boards repository.BoardSource, library *stationorder.RouteLibrary) Source {
	return Source{
		Schedules: store,
		Retail:    store,
		Boards: &departureboard.Generator{
			Lookup:  store,
			Source:  boards,
			Library: library,
		},
	}
}

func (s Source) GetName() string {
	return "Timetable Lookup"
}

func (s Source) Supports() []reflect.Type {
	return []reflect.Type{
		reflect.TypeOf(timetable.DepartureBoard{}),
		reflect.TypeOf(departureboard.BoardLayout{}),
		reflect.TypeOf(timetable.FullService{}),
		reflect.TypeOf([]*timetable.FullService{}),
	}
}

func (s Source) Lookup(ctx context.Context, q any) (interface{}, error) {
	switch q := q.(type) {
	case query.DepartureBoard:
		return s.Boards.Board(ctx, boardQuery(q))
	case query.BoardLayout:
		board, layout, err := s.Boards.Layout(ctx, boardQuery(q.DepartureBoard))
		if err != nil {
			return nil, err
		}
		return &departureboard.BoardLayout{Board: board, Layout: layout}, nil
	case query.Service:
		return s.ServiceQuery(ctx, q)
	case query.ServicesByRSID:
		return s.ServicesByRSIDQuery(ctx, q)
	default:
		return nil, dataaggregator.ErrUnsupportedSource
	}
}

func boardQuery(q query.DepartureBoard) departureboard.Query {
	from, to := departureboard.Window(q.StartDateTime, q.Period, q.TimeType)

	return departureboard.Query{
		Station:             q.Station,
		From:                from,
		To:                  to,
		TimeType:            q.TimeType,
		Destination:         q.Destination,
		PermanentOnly:       q.PermanentOnly,
		IncludeNonPassenger: q.IncludeNonPassenger,
	}
}

func (s Source) ServiceQuery(ctx context.Context, q query.Service) (*timetable.FullService, error) {
	dated, err := s.Schedules.Service(ctx, q.UID, q.Date, q.PermanentOnly)
	if err != nil {
		return nil, err
	}
	if dated == nil {
		return nil, fmt.Errorf("%s on %s: %w", q.UID, q.Date, dataaggregator.ErrNotFound)
	}

	resolver := &servicegraph.Resolver{
		Lookup:              s.Schedules,
		PermanentOnly:       q.PermanentOnly,
		IncludeNonPassenger: q.IncludeNonPassenger,
	}
	return resolver.FullService(ctx, dated)
}

func (s Source) ServicesByRSIDQuery(ctx context.Context, q query.ServicesByRSID) ([]*timetable.FullService, error) {
	dateds, err := s.Retail.ServicesByRSID(ctx, q.RSID, q.Date, q.PermanentOnly)
	if err != nil {
		return nil, err
	}

	running := make([]*timetable.DatedService, 0, len(dateds))
	for _, dated := range dateds {
		if dated.IsRunning() {
			running = append(running, dated)
		}
	}

	resolver := &servicegraph.Resolver{
		Lookup:              s.Schedules,
		PermanentOnly:       q.PermanentOnly,
		IncludeNonPassenger: q.IncludeNonPassenger,
	}
	return resolver.FullServices(ctx, running)
}
