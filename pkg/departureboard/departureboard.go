package departureboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	iso8601 "github.com/senseyeio/duration"
	"github.com/travigo/railtimetable/pkg/repository"
	"github.com/travigo/railtimetable/pkg/servicegraph"
	"github.com/travigo/railtimetable/pkg/stationorder"
	"github.com/travigo/railtimetable/pkg/timetable"
)

const DefaultPeriod = "PT2H"

// Window works out the bounds of a board requested at a given time.
// Departure boards look forward from the start of the minute, arrival
// boards look back and include the requested minute.
func Window(at time.Time, period iso8601.Duration, timeType timetable.TimeType) (time.Time, time.Time) {
	start := at.Truncate(time.Minute)

	if timeType.IsArrival() {
		span := period.Shift(start).Sub(start)
		return start.Add(-span), start.Add(time.Minute)
	}
	return start, period.Shift(start)
}

// ModeTimeType picks the time a board is ordered by from the departures,
// arrivals or passes mode. Passes are only shown on working boards.
func ModeTimeType(mode string, working bool) (timetable.TimeType, error) {
	switch {
	case mode == "departures" && working:
		return timetable.WorkingDeparture, nil
	case mode == "departures":
		return timetable.PublicDeparture, nil
	case mode == "arrivals" && working:
		return timetable.WorkingArrival, nil
	case mode == "arrivals":
		return timetable.PublicArrival, nil
	case mode == "passes" && working:
		return timetable.Pass, nil
	default:
		return "", fmt.Errorf("board mode %q should be departures or arrivals, or passes on a working board", mode)
	}
}

type Query struct {
	Station  string
	From     time.Time
	To       time.Time
	TimeType timetable.TimeType

	// Destination keeps only trains going on to, or on an arrival board
	// coming from, this station
	Destination string

	PermanentOnly       bool
	IncludeNonPassenger bool
}

// BoardLayout is a board together with its station ordered grid
type BoardLayout struct {
	Board  *timetable.DepartureBoard `json:"board" groups:"basic"`
	Layout *stationorder.Layout      `json:"layout" groups:"basic"`
}

// Generator builds departure and arrival boards from a timetable store
type Generator struct {
	Lookup  repository.ScheduleLookup
	Source  repository.BoardSource
	Library *stationorder.RouteLibrary
}

func (g *Generator) Board(ctx context.Context, query Query) (*timetable.DepartureBoard, error) {
	board := &timetable.DepartureBoard{
		CRS:      query.Station,
		From:     query.From,
		To:       query.To,
		TimeType: query.TimeType,
	}

	uids, err := g.Source.CandidateIdentifiers(ctx, query.Station, query.TimeType, query.From, query.To)
	if err != nil {
		return nil, fmt.Errorf("could not find candidate services: %w", err)
	}
	if len(uids) == 0 {
		return board, nil
	}

	dates := repository.CandidateDates(query.From, query.To)
	keys := make([]timetable.ServiceKey, 0, len(uids)*len(dates))
	for _, uid := range uids {
		for _, date := range dates {
			keys = append(keys, timetable.ServiceKey{UID: uid, Date: date})
		}
	}

	services, err := g.Lookup.Services(ctx, keys, query.PermanentOnly)
	if err != nil {
		return nil, fmt.Errorf("could not load candidate services: %w", err)
	}

	var calling []*timetable.DatedService
	for _, key := range keys {
		dated := services[key]
		if dated == nil || !dated.IsRunning() {
			continue
		}

		own, err := dated.Calls(query.TimeType, query.Station, &query.From, &query.To)
		if err != nil {
			return nil, err
		}
		if len(own) > 0 {
			calling = append(calling, dated)
		}
	}

	resolver := &servicegraph.Resolver{
		Lookup:              g.Lookup,
		PermanentOnly:       query.PermanentOnly,
		IncludeNonPassenger: query.IncludeNonPassenger,
	}
	fullServices, err := resolver.FullServices(ctx, calling)
	if err != nil {
		return nil, fmt.Errorf("could not resolve services: %w", err)
	}

	for _, fullService := range fullServices {
		calls, err := fullService.Calls(query.TimeType, query.Station, &query.From, &query.To, true)
		if err != nil {
			return nil, err
		}

		// the other portions are on the board in their own right
		for _, call := range calls {
			if call.Key() == fullService.Key() {
				board.Calls = append(board.Calls, call)
			}
		}
	}

	sort.SliceStable(board.Calls, func(i, j int) bool {
		return board.Calls[i].Timestamp.Before(board.Calls[j].Timestamp)
	})

	log.Debug().
		Str("station", query.Station).
		Str("type", string(query.TimeType)).
		Int("candidates", len(uids)).
		Int("calls", len(board.Calls)).
		Msg("Generated board")

	if query.Destination != "" {
		board = board.FilterByDestination(query.Destination)
	}

	return board, nil
}

// Layout generates a board and places its calls against a common station axis
func (g *Generator) Layout(ctx context.Context, query Query) (*timetable.DepartureBoard, *stationorder.Layout, error) {
	board, err := g.Board(ctx, query)
	if err != nil {
		return nil, nil, err
	}

	layout, err := stationorder.Generate(board, g.Library)
	if err != nil {
		return nil, nil, fmt.Errorf("could not lay out board at %s: %w", query.Station, err)
	}

	return board, layout, nil
}
