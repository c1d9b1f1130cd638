package timetable

import (
	"fmt"
	"sort"
	"time"
)

// FullAssociation is a dated association whose two sides have been resolved
// into full services
type FullAssociation struct {
	Association *Association
	Primary     *FullService
	Secondary   *FullService
}

// FullService is a running dated service together with the portions it
// divides from, joins to, and gains or loses along the way
type FullService struct {
	DatedService

	DivideFrom *FullAssociation
	EnRoute    []*FullAssociation
	JoinTo     *FullAssociation
}

func NewFullService(dated *DatedService) (*FullService, error) {
	service := dated.Service()
	if service == nil {
		return nil, fmt.Errorf("%s: %w", dated.ID(), ErrNotRunningService)
	}
	if service.Origin() == nil || service.Destination() == nil {
		return nil, fmt.Errorf("%s has no origin or destination: %w", dated.ID(), ErrNotRunningService)
	}

	return &FullService{DatedService: *dated}, nil
}

func (f *FullService) Dated() *DatedService {
	return &f.DatedService
}

// AssociationPoint is where the association takes effect on this service
func (f *FullService) AssociationPoint(association *FullAssociation) Point {
	return f.Service().AssociationPoint(association.Association)
}

// Origins lists every portion making up the train at the given time, keyed by
// portion, with the origin each started from. A nil time includes every
// portion that ever joins.
func (f *FullService) Origins(at *Time) PortionEnds {
	return f.origins(at, map[ServiceKey]bool{})
}

func (f *FullService) origins(at *Time, visited map[ServiceKey]bool) PortionEnds {
	if visited[f.Key()] {
		return nil
	}
	visited[f.Key()] = true

	var result PortionEnds
	var portions []*FullService

	if f.DivideFrom == nil {
		result = PortionEnds{{UID: f.UID(), Point: f.Service().Origin()}}
	} else {
		portions = append(portions, f.DivideFrom.Primary)
	}

	for _, association := range f.EnRoute {
		if association.Association.Category != Join {
			continue
		}
		if at != nil {
			point, ok := f.AssociationPoint(association).(DeparturePoint)
			if !ok || point.PublicOrWorkingDeparture() > *at {
				continue
			}
		}
		portions = append(portions, association.Secondary)
	}

	for _, portion := range portions {
		result = result.merge(portion.origins(nil, visited))
	}

	return result
}

// Destinations lists every portion making up the train at the given time with
// the destination it is heading for. A nil time includes every portion that
// ever divides.
func (f *FullService) Destinations(at *Time) PortionEnds {
	return f.destinations(at, map[ServiceKey]bool{})
}

func (f *FullService) destinations(at *Time, visited map[ServiceKey]bool) PortionEnds {
	if visited[f.Key()] {
		return nil
	}
	visited[f.Key()] = true

	var result PortionEnds
	var portions []*FullService

	if f.JoinTo == nil {
		result = PortionEnds{{UID: f.UID(), Point: f.Service().Destination()}}
	} else {
		portions = append(portions, f.JoinTo.Primary)
	}

	for _, association := range f.EnRoute {
		if association.Association.Category != Divide {
			continue
		}
		if at != nil {
			point, ok := f.AssociationPoint(association).(ArrivalPoint)
			if !ok || point.PublicOrWorkingArrival() < *at {
				continue
			}
		}
		portions = append(portions, association.Secondary)
	}

	for _, portion := range portions {
		result = result.merge(portion.destinations(nil, visited))
	}

	return result
}

// Calls merges the calls of this service and every associated portion that
// fall inside [from, to), sorted by time. Either bound may be nil. With a
// narrative each call also lists what the train does before and after it.
func (f *FullService) Calls(timeType TimeType, crs string, from *time.Time, to *time.Time, withNarrative bool) ([]*ServiceCall, error) {
	return f.calls(timeType, crs, from, to, withNarrative, nil, map[ServiceKey]bool{})
}

func (f *FullService) calls(
	timeType TimeType,
	crs string,
	from *time.Time,
	to *time.Time,
	withNarrative bool,
	base *time.Time,
	emitted map[ServiceKey]bool,
) ([]*ServiceCall, error) {
	if emitted[f.Key()] {
		return nil, nil
	}
	emitted[f.Key()] = true

	own, err := f.DatedService.Calls(timeType, crs, from, to)
	if err != nil {
		return nil, err
	}

	for _, call := range own {
		call.Origins = f.Origins(&call.Time)
		call.Destinations = f.Destinations(&call.Time)

		if !withNarrative {
			continue
		}

		timestamp := call.Timestamp
		after := timestamp.Add(time.Second)

		call.Preceding, err = f.calls(timeType.precedingType(), "", nil, &timestamp, false, &timestamp, map[ServiceKey]bool{})
		if err != nil {
			return nil, err
		}
		call.Subsequent, err = f.calls(timeType.subsequentType(), "", &after, nil, false, &timestamp, map[ServiceKey]bool{})
		if err != nil {
			return nil, err
		}
	}

	var divided []*ServiceCall
	if f.DivideFrom != nil {
		primary := f.DivideFrom.Primary
		if point, ok := primary.AssociationPoint(f.DivideFrom).(ArrivalPoint); ok {
			divideTimestamp := primary.Timestamp(point.PublicOrWorkingArrival())
			divided, err = primary.calls(timeType, crs, from, earlier(to, divideTimestamp), withNarrative, nil, emitted)
			if err != nil {
				return nil, err
			}
		}
	}

	var joined []*ServiceCall
	if f.JoinTo != nil {
		primary := f.JoinTo.Primary
		if point, ok := primary.AssociationPoint(f.JoinTo).(DeparturePoint); ok {
			joinTimestamp := primary.Timestamp(point.PublicOrWorkingDeparture())
			joined, err = primary.calls(timeType, crs, later(from, joinTimestamp), to, withNarrative, nil, emitted)
			if err != nil {
				return nil, err
			}
		}
	}

	var others []*ServiceCall
	for _, association := range f.EnRoute {
		child := association.Secondary
		point := f.AssociationPoint(association)

		var portion []*ServiceCall

		switch association.Association.Category {
		case Divide:
			arrival, ok := point.(ArrivalPoint)
			if !ok {
				continue
			}
			divideTimestamp := f.Timestamp(arrival.PublicOrWorkingArrival())
			if (from != nil && divideTimestamp.Before(*from)) || (base != nil && divideTimestamp.Before(*base)) {
				continue
			}

			childFrom := child.Timestamp(child.Service().Origin().PublicOrWorkingDeparture())
			portion, err = child.calls(timeType, crs, later(from, childFrom), to, withNarrative, nil, emitted)
		case Join:
			departure, ok := point.(DeparturePoint)
			if !ok {
				continue
			}
			joinTimestamp := f.Timestamp(departure.PublicOrWorkingDeparture())
			if (to != nil && joinTimestamp.After(*to)) || (base != nil && joinTimestamp.After(*base)) {
				continue
			}

			childTo := child.Timestamp(child.Service().Destination().PublicOrWorkingArrival())
			portion, err = child.calls(timeType, crs, from, earlier(to, childTo), withNarrative, nil, emitted)
		default:
			continue
		}

		if err != nil {
			return nil, err
		}
		others = append(others, portion...)
	}

	result := make([]*ServiceCall, 0, len(divided)+len(own)+len(joined)+len(others))
	result = append(result, divided...)
	result = append(result, own...)
	result = append(result, joined...)
	result = append(result, others...)

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})

	return result, nil
}

func later(bound *time.Time, instant time.Time) *time.Time {
	if bound != nil && bound.After(instant) {
		return bound
	}
	return &instant
}

func earlier(bound *time.Time, instant time.Time) *time.Time {
	if bound != nil && bound.Before(instant) {
		return bound
	}
	return &instant
}
