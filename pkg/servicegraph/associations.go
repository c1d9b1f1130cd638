package servicegraph

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/travigo/railtimetable/pkg/timetable"
)

// pendingAssociation is an association waiting for the service on its other
// side to be loaded. A nil key stands for the service being resolved.
type pendingAssociation struct {
	association *timetable.Association
	primary     *timetable.ServiceKey
	secondary   *timetable.ServiceKey
}

// processAssociationEntries applies the overlay rule to the associations of a
// dated service, separately for the associations which apply on the day
// before, the day of and the day after its date, and works out the dated
// service on the other side of each one that survives.
func (r *Resolver) processAssociationEntries(dated *timetable.DatedService, entries []timetable.AssociationEntry) []pendingAssociation {
	uid := dated.UID()
	var pending []pendingAssociation

	for offset := -1; offset <= 1; offset++ {
		associationDate := dated.Date.AddDays(offset)

		var active []timetable.AssociationEntry
		for _, entry := range entries {
			if entry.Header().Period.IsActive(associationDate) {
				active = append(active, entry)
			}
		}

		for _, entry := range timetable.SelectOverlays(active, r.PermanentOnly) {
			association, ok := entry.(*timetable.Association)
			if !ok {
				continue
			}
			if association.Category == timetable.Next {
				continue
			}
			if !r.IncludeNonPassenger && association.Type != timetable.AssociationPassenger {
				continue
			}

			switch {
			case association.SecondaryUID == uid:
				// the association period is in terms of the primary's date
				if offset != -association.Day.Offset() {
					continue
				}
				pending = append(pending, pendingAssociation{
					association: association,
					primary:     &timetable.ServiceKey{UID: association.PrimaryUID, Date: associationDate},
				})
			case association.PrimaryUID == uid:
				if offset != 0 {
					continue
				}
				pending = append(pending, pendingAssociation{
					association: association,
					secondary:   &timetable.ServiceKey{UID: association.SecondaryUID, Date: dated.Date.AddDays(association.Day.Offset())},
				})
			}
		}
	}

	return pending
}

func (p pendingAssociation) keys() []timetable.ServiceKey {
	var keys []timetable.ServiceKey
	if p.primary != nil {
		keys = append(keys, *p.primary)
	}
	if p.secondary != nil {
		keys = append(keys, *p.secondary)
	}
	return keys
}

// Associations loads the running associations of a dated service along with
// the dated service on the other side of each
func (r *Resolver) Associations(ctx context.Context, dated *timetable.DatedService) ([]*timetable.DatedAssociation, error) {
	entries, err := r.Lookup.AssociationEntries(ctx, dated.UID(), dated.Date)
	if err != nil {
		return nil, err
	}

	pending := r.processAssociationEntries(dated, entries)

	var keys []timetable.ServiceKey
	for _, item := range pending {
		keys = append(keys, item.keys()...)
	}

	services, err := r.Lookup.Services(ctx, keys, r.PermanentOnly)
	if err != nil {
		return nil, err
	}

	return datedAssociations(dated, pending, services), nil
}

// AssociationsForServices does the same as Associations for many services
// with a single fetch of association entries and a single fetch of the
// services they refer to
func (r *Resolver) AssociationsForServices(ctx context.Context, dateds []*timetable.DatedService) ([][]*timetable.DatedAssociation, error) {
	entries, err := r.Lookup.AssociationEntriesForServices(ctx, dateds)
	if err != nil {
		return nil, err
	}

	pending := make([][]pendingAssociation, len(dateds))
	var keys []timetable.ServiceKey
	for i, dated := range dateds {
		pending[i] = r.processAssociationEntries(dated, entries[dated.Key()])
		for _, item := range pending[i] {
			keys = append(keys, item.keys()...)
		}
	}

	services, err := r.Lookup.Services(ctx, keys, r.PermanentOnly)
	if err != nil {
		return nil, err
	}

	result := make([][]*timetable.DatedAssociation, len(dateds))
	for i, dated := range dateds {
		result[i] = datedAssociations(dated, pending[i], services)
	}
	return result, nil
}

func datedAssociations(
	dated *timetable.DatedService,
	pending []pendingAssociation,
	services map[timetable.ServiceKey]*timetable.DatedService,
) []*timetable.DatedAssociation {
	var result []*timetable.DatedAssociation

	for _, item := range pending {
		primary := sideOf(dated, item.primary, services)
		secondary := sideOf(dated, item.secondary, services)

		if primary == nil || secondary == nil {
			log.Debug().
				Str("service", dated.ID()).
				Str("primary", item.association.PrimaryUID).
				Str("secondary", item.association.SecondaryUID).
				Msg("Associated service does not run")
			continue
		}

		result = append(result, &timetable.DatedAssociation{
			Association: item.association,
			Primary:     primary,
			Secondary:   secondary,
		})
	}

	return result
}

func sideOf(dated *timetable.DatedService, key *timetable.ServiceKey, services map[timetable.ServiceKey]*timetable.DatedService) *timetable.DatedService {
	if key == nil {
		return dated
	}
	return services[*key]
}
