package servicegraph

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/railtimetable/pkg/repository"
	"github.com/travigo/railtimetable/pkg/timetable"
)

// Resolver expands dated services into full services by following their
// divide and join associations
type Resolver struct {
	Lookup repository.ScheduleLookup

	PermanentOnly       bool
	IncludeNonPassenger bool
}

// FullService resolves a single dated service
func (r *Resolver) FullService(ctx context.Context, dated *timetable.DatedService) (*timetable.FullService, error) {
	return r.resolve(ctx, dated, nil, false, map[timetable.ServiceKey]*timetable.FullService{})
}

// FullServices resolves many dated services, loading their associations in
// bulk. Services reached from more than one of them are only resolved once.
func (r *Resolver) FullServices(ctx context.Context, dateds []*timetable.DatedService) ([]*timetable.FullService, error) {
	associations, err := r.AssociationsForServices(ctx, dateds)
	if err != nil {
		return nil, err
	}

	resolved := map[timetable.ServiceKey]*timetable.FullService{}
	result := make([]*timetable.FullService, 0, len(dateds))

	for i, dated := range dateds {
		fullService, err := r.resolve(ctx, dated, associations[i], true, resolved)
		if err != nil {
			return nil, err
		}
		result = append(result, fullService)
	}

	return result, nil
}

func (r *Resolver) resolve(
	ctx context.Context,
	dated *timetable.DatedService,
	associations []*timetable.DatedAssociation,
	preloaded bool,
	resolved map[timetable.ServiceKey]*timetable.FullService,
) (*timetable.FullService, error) {
	if node, ok := resolved[dated.Key()]; ok {
		return node, nil
	}

	node, err := timetable.NewFullService(dated)
	if err != nil {
		return nil, err
	}
	resolved[dated.Key()] = node

	if !preloaded {
		associations, err = r.Associations(ctx, dated)
		if err != nil {
			return nil, err
		}
	}

	divideFrom, enRoute, joinTo := classify(node, associations)

	if divideFrom != nil {
		node.DivideFrom, err = r.expand(ctx, divideFrom, resolved)
		if err != nil {
			return nil, err
		}
	}

	for _, association := range enRoute {
		expanded, err := r.expand(ctx, association, resolved)
		if err != nil {
			return nil, err
		}
		if expanded != nil {
			node.EnRoute = append(node.EnRoute, expanded)
		}
	}

	if joinTo != nil {
		node.JoinTo, err = r.expand(ctx, joinTo, resolved)
		if err != nil {
			return nil, err
		}
	}

	sortEnRoute(node)

	return node, nil
}

// expand resolves both sides of an association, reusing any node already
// built or being built in this query
func (r *Resolver) expand(
	ctx context.Context,
	association *timetable.DatedAssociation,
	resolved map[timetable.ServiceKey]*timetable.FullService,
) (*timetable.FullAssociation, error) {
	primary, err := r.resolve(ctx, association.Primary, nil, false, resolved)
	if err == nil {
		var secondary *timetable.FullService
		secondary, err = r.resolve(ctx, association.Secondary, nil, false, resolved)
		if err == nil {
			return &timetable.FullAssociation{
				Association: association.Association,
				Primary:     primary,
				Secondary:   secondary,
			}, nil
		}
	}

	if errors.Is(err, timetable.ErrNotRunningService) {
		log.Debug().Err(err).Msg("Ignoring association to incomplete service")
		return nil, nil
	}
	return nil, err
}

// classify picks out the association this service divides from, the one it
// joins to and those where it is the primary. Associations recorded at a
// point the train does not call at, or whose secondary does not start or end
// at the association point, are ignored.
func classify(node *timetable.FullService, associations []*timetable.DatedAssociation) (
	divideFrom *timetable.DatedAssociation,
	enRoute []*timetable.DatedAssociation,
	joinTo *timetable.DatedAssociation,
) {
	service := node.Service()

	for _, dated := range associations {
		association := dated.Association

		if association.SecondaryUID == service.UID && dated.Secondary.Date == node.Date {
			switch association.Category {
			case timetable.Divide:
				if divideFrom == nil && validSecondaryEnd(dated, service.Origin()) {
					divideFrom = dated
				}
			case timetable.Join:
				if joinTo == nil && validSecondaryEnd(dated, service.Destination()) {
					joinTo = dated
				}
			}
		}

		if association.PrimaryUID == service.UID && dated.Primary.Date == node.Date {
			if validEnRoute(dated, service) {
				enRoute = append(enRoute, dated)
			}
		}
	}

	return divideFrom, enRoute, joinTo
}

func validSecondaryEnd(dated *timetable.DatedAssociation, end timetable.Point) bool {
	association := dated.Association

	primary := dated.Primary.Service()
	if primary == nil {
		return false
	}
	if _, ok := primary.AssociationPoint(association).(*timetable.CallingPoint); !ok {
		logMalformed(dated, "Association point is not a call on the primary")
		return false
	}

	if !matchesAssociationPoint(end, association) {
		logMalformed(dated, "Secondary does not start or end at the association point")
		return false
	}

	return true
}

func validEnRoute(dated *timetable.DatedAssociation, service *timetable.Service) bool {
	association := dated.Association

	if _, ok := service.AssociationPoint(association).(*timetable.CallingPoint); !ok {
		logMalformed(dated, "Association point is not a call on the primary")
		return false
	}

	secondary := dated.Secondary.Service()
	if secondary == nil || secondary.Origin() == nil || secondary.Destination() == nil {
		return false
	}

	var expected timetable.Point
	switch association.Category {
	case timetable.Divide:
		expected = secondary.Origin()
	case timetable.Join:
		expected = secondary.Destination()
	default:
		return false
	}

	if !matchesAssociationPoint(expected, association) {
		logMalformed(dated, "Secondary does not start or end at the association point")
		return false
	}

	return true
}

func matchesAssociationPoint(point timetable.Point, association *timetable.Association) bool {
	if point == nil {
		return false
	}
	timing := point.Timing()
	return timing.Location.Tiploc == association.Location && timing.LocationSuffix == association.SecondarySuffix
}

func logMalformed(dated *timetable.DatedAssociation, message string) {
	log.Debug().
		Str("primary", dated.Primary.ID()).
		Str("secondary", dated.Secondary.ID()).
		Str("location", dated.Association.Location).
		Str("category", string(dated.Association.Category)).
		Msg(message)
}

// sortEnRoute orders the associations by the time they take effect, divides
// before joins, then by when the other portion starts or finishes
func sortEnRoute(node *timetable.FullService) {
	sort.SliceStable(node.EnRoute, func(i, j int) bool {
		a, b := node.EnRoute[i], node.EnRoute[j]

		aTime := timetable.EffectiveTime(node.AssociationPoint(a))
		bTime := timetable.EffectiveTime(node.AssociationPoint(b))
		if aTime != bTime {
			return aTime < bTime
		}

		if a.Association.Category != b.Association.Category {
			return a.Association.Category == timetable.Divide
		}

		aInstant, bInstant := portionInstant(a), portionInstant(b)
		if !aInstant.Equal(bInstant) {
			return aInstant.Before(bInstant)
		}

		return a.Association.SecondaryUID < b.Association.SecondaryUID
	})
}

func portionInstant(association *timetable.FullAssociation) time.Time {
	child := association.Secondary
	if association.Association.Category == timetable.Divide {
		return child.Timestamp(child.Service().Origin().PublicOrWorkingDeparture())
	}
	return child.Timestamp(child.Service().Destination().PublicOrWorkingArrival())
}
