package servicegraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/railtimetable/pkg/repository/memory"
	"github.com/travigo/railtimetable/pkg/timetable"
	tt "github.com/travigo/railtimetable/pkg/timetable/timetabletest"
)

var runningDate = tt.Date("2024-03-12")

func newStore(t *testing.T, services []timetable.ServiceEntry, associations []timetable.AssociationEntry) *memory.Store {
	store := memory.NewStore(nil)
	require.NoError(t, store.InsertServices(context.Background(), services))
	require.NoError(t, store.InsertAssociations(context.Background(), associations))
	return store
}

func resolve(t *testing.T, resolver *Resolver, uid string, date timetable.Date) *timetable.FullService {
	dated, err := resolver.Lookup.Service(context.Background(), uid, date, resolver.PermanentOnly)
	require.NoError(t, err)
	require.NotNil(t, dated)

	full, err := resolver.FullService(context.Background(), dated)
	require.NoError(t, err)
	return full
}

func secondaries(service *timetable.FullService) []string {
	var uids []string
	for _, association := range service.EnRoute {
		uids = append(uids, association.Secondary.UID())
	}
	return uids
}

func dividing() []timetable.ServiceEntry {
	return []timetable.ServiceEntry{
		tt.NewService("D40001", timetable.Permanent, "2024-03-01", "2024-03-31").
			Origin("AAA", "1000").Call("MMM", "1030", "1035").Destination("ZZA", "1100").Build(),
		tt.NewService("E50001", timetable.Permanent, "2024-03-01", "2024-03-31").
			Origin("MMM", "1040").Destination("ZZB", "1110").Build(),
	}
}

func TestDivide(t *testing.T) {
	store := newStore(t, dividing(), []timetable.AssociationEntry{
		tt.NewAssociation(timetable.Divide, "D40001", "E50001", "MMM", timetable.Today, "2024-03-01", "2024-03-31"),
	})
	resolver := &Resolver{Lookup: store}

	primary := resolve(t, resolver, "D40001", runningDate)
	assert.Nil(t, primary.DivideFrom)
	assert.Equal(t, []string{"E50001"}, secondaries(primary))
	assert.Same(t, primary, primary.EnRoute[0].Secondary.DivideFrom.Primary)

	secondary := resolve(t, resolver, "E50001", runningDate)
	require.NotNil(t, secondary.DivideFrom)
	assert.Equal(t, "D40001", secondary.DivideFrom.Primary.UID())
	assert.Empty(t, secondary.EnRoute)
}

func TestAssociationAwayFromSecondaryOrigin(t *testing.T) {
	services := dividing()
	services[1] = tt.NewService("E50001", timetable.Permanent, "2024-03-01", "2024-03-31").
		Origin("NNN", "1040").Destination("ZZB", "1110").Build()

	store := newStore(t, services, []timetable.AssociationEntry{
		tt.NewAssociation(timetable.Divide, "D40001", "E50001", "MMM", timetable.Today, "2024-03-01", "2024-03-31"),
	})
	resolver := &Resolver{Lookup: store}

	primary := resolve(t, resolver, "D40001", runningDate)
	assert.Empty(t, primary.EnRoute)

	secondary := resolve(t, resolver, "E50001", runningDate)
	assert.Nil(t, secondary.DivideFrom)
	assert.Nil(t, secondary.JoinTo)
}

func TestAssociationAtPointNotCalled(t *testing.T) {
	services := dividing()
	services[0] = tt.NewService("D40001", timetable.Permanent, "2024-03-01", "2024-03-31").
		Origin("AAA", "1000").Pass(tt.Tiploc("MMM"), "1030").Destination("ZZA", "1100").Build()

	store := newStore(t, services, []timetable.AssociationEntry{
		tt.NewAssociation(timetable.Divide, "D40001", "E50001", "MMM", timetable.Today, "2024-03-01", "2024-03-31"),
	})
	resolver := &Resolver{Lookup: store}

	assert.Empty(t, resolve(t, resolver, "D40001", runningDate).EnRoute)
	assert.Nil(t, resolve(t, resolver, "E50001", runningDate).DivideFrom)
}

func TestCycleTerminates(t *testing.T) {
	store := newStore(t, []timetable.ServiceEntry{
		tt.NewService("A10001", timetable.Permanent, "2024-03-01", "2024-03-31").
			Origin("MMM", "1000").Call("NNN", "1030", "1035").Destination("ZZA", "1100").Build(),
		tt.NewService("B20001", timetable.Permanent, "2024-03-01", "2024-03-31").
			Origin("NNN", "1040").Call("MMM", "1050", "1055").Destination("ZZB", "1110").Build(),
	}, []timetable.AssociationEntry{
		tt.NewAssociation(timetable.Divide, "A10001", "B20001", "NNN", timetable.Today, "2024-03-01", "2024-03-31"),
		tt.NewAssociation(timetable.Divide, "B20001", "A10001", "MMM", timetable.Today, "2024-03-01", "2024-03-31"),
	})
	resolver := &Resolver{Lookup: store}

	a := resolve(t, resolver, "A10001", runningDate)
	require.NotNil(t, a.DivideFrom)
	require.Len(t, a.EnRoute, 1)

	b := a.EnRoute[0].Secondary
	assert.Same(t, b, a.DivideFrom.Primary)
	assert.Same(t, a, b.DivideFrom.Primary)
	assert.Same(t, a, b.EnRoute[0].Secondary)

	assert.NotPanics(t, func() {
		a.Origins(nil)
		a.Destinations(nil)
	})
}

func TestEnRouteOrder(t *testing.T) {
	store := newStore(t, []timetable.ServiceEntry{
		tt.NewService("P10001", timetable.Permanent, "2024-03-01", "2024-03-31").
			Origin("AAA", "1000").Call("MMM", "1030", "1035").Call("NNN", "1100", "1105").Destination("ZZA", "1130").Build(),
		tt.NewService("X10001", timetable.Permanent, "2024-03-01", "2024-03-31").
			Origin("NNN", "1110").Destination("ZZX", "1140").Build(),
		tt.NewService("Y10001", timetable.Permanent, "2024-03-01", "2024-03-31").
			Origin("MMM", "1040").Destination("ZZY", "1110").Build(),
		tt.NewService("Y20001", timetable.Permanent, "2024-03-01", "2024-03-31").
			Origin("MMM", "1036").Destination("ZZY", "1100").Build(),
		tt.NewService("J10001", timetable.Permanent, "2024-03-01", "2024-03-31").
			Origin("BBB", "1000").Destination("MMM", "1025").Build(),
	}, []timetable.AssociationEntry{
		tt.NewAssociation(timetable.Divide, "P10001", "X10001", "NNN", timetable.Today, "2024-03-01", "2024-03-31"),
		tt.NewAssociation(timetable.Join, "P10001", "J10001", "MMM", timetable.Today, "2024-03-01", "2024-03-31"),
		tt.NewAssociation(timetable.Divide, "P10001", "Y10001", "MMM", timetable.Today, "2024-03-01", "2024-03-31"),
		tt.NewAssociation(timetable.Divide, "P10001", "Y20001", "MMM", timetable.Today, "2024-03-01", "2024-03-31"),
	})
	resolver := &Resolver{Lookup: store}

	primary := resolve(t, resolver, "P10001", runningDate)
	assert.Equal(t, []string{"Y20001", "Y10001", "J10001", "X10001"}, secondaries(primary))

	joining := resolve(t, resolver, "J10001", runningDate)
	require.NotNil(t, joining.JoinTo)
	assert.Equal(t, "P10001", joining.JoinTo.Primary.UID())
}

func TestOvernightAssociation(t *testing.T) {
	store := newStore(t, []timetable.ServiceEntry{
		tt.NewService("N10001", timetable.Permanent, "2024-03-01", "2024-03-31").
			Origin("AAA", "2300").Call("MMM", "0030", "0035").Destination("ZZA", "0100").Build(),
		tt.NewService("S10001", timetable.Permanent, "2024-03-01", "2024-03-31").
			Origin("MMM", "0040").Destination("ZZB", "0110").Build(),
	}, []timetable.AssociationEntry{
		tt.NewAssociation(timetable.Divide, "N10001", "S10001", "MMM", timetable.Tomorrow, "2024-03-01", "2024-03-31"),
	})
	resolver := &Resolver{Lookup: store}

	primary := resolve(t, resolver, "N10001", runningDate)
	require.Len(t, primary.EnRoute, 1)
	assert.Equal(t, tt.Date("2024-03-13"), primary.EnRoute[0].Secondary.Date)

	secondary := resolve(t, resolver, "S10001", tt.Date("2024-03-13"))
	require.NotNil(t, secondary.DivideFrom)
	assert.Equal(t, runningDate, secondary.DivideFrom.Primary.Date)

	// on the first day of the period there is no primary the night before
	first := resolve(t, resolver, "S10001", tt.Date("2024-03-01"))
	assert.Nil(t, first.DivideFrom)
}

func TestPermanentOnlyAssociations(t *testing.T) {
	cancellation := &timetable.AssociationCancellation{
		AssociationHeader: timetable.AssociationHeader{
			PrimaryUID:   "D40001",
			SecondaryUID: "E50001",
			Location:     tt.Tiploc("MMM"),
			Period: timetable.Period{
				From:     runningDate,
				To:       runningDate,
				Weekdays: timetable.EveryDay,
			},
			ShortTermPlanning: timetable.Cancel,
		},
	}

	store := newStore(t, dividing(), []timetable.AssociationEntry{
		tt.NewAssociation(timetable.Divide, "D40001", "E50001", "MMM", timetable.Today, "2024-03-01", "2024-03-31"),
		cancellation,
	})

	assert.Empty(t, resolve(t, &Resolver{Lookup: store}, "D40001", runningDate).EnRoute)
	assert.Len(t, resolve(t, &Resolver{Lookup: store}, "D40001", runningDate.AddDays(1)).EnRoute, 1)
	assert.Len(t, resolve(t, &Resolver{Lookup: store, PermanentOnly: true}, "D40001", runningDate).EnRoute, 1)
}

func TestNonPassengerAssociations(t *testing.T) {
	operating := tt.NewAssociation(timetable.Divide, "D40001", "E50001", "MMM", timetable.Today, "2024-03-01", "2024-03-31")
	operating.Type = timetable.AssociationOperating

	store := newStore(t, dividing(), []timetable.AssociationEntry{operating})

	assert.Empty(t, resolve(t, &Resolver{Lookup: store}, "D40001", runningDate).EnRoute)
	assert.Len(t, resolve(t, &Resolver{Lookup: store, IncludeNonPassenger: true}, "D40001", runningDate).EnRoute, 1)
}

func TestCancelledSecondaryIgnored(t *testing.T) {
	services := append(dividing(), tt.Cancellation("E50001", "2024-03-12", "2024-03-12"))

	store := newStore(t, services, []timetable.AssociationEntry{
		tt.NewAssociation(timetable.Divide, "D40001", "E50001", "MMM", timetable.Today, "2024-03-01", "2024-03-31"),
	})
	resolver := &Resolver{Lookup: store}

	assert.Empty(t, resolve(t, resolver, "D40001", runningDate).EnRoute)
	assert.Len(t, resolve(t, resolver, "D40001", runningDate.AddDays(1)).EnRoute, 1)
}

func TestFullServicesShareNodes(t *testing.T) {
	store := newStore(t, dividing(), []timetable.AssociationEntry{
		tt.NewAssociation(timetable.Divide, "D40001", "E50001", "MMM", timetable.Today, "2024-03-01", "2024-03-31"),
	})
	resolver := &Resolver{Lookup: store}

	services, err := store.Services(context.Background(), []timetable.ServiceKey{
		{UID: "D40001", Date: runningDate},
		{UID: "E50001", Date: runningDate},
	}, false)
	require.NoError(t, err)

	full, err := resolver.FullServices(context.Background(), []*timetable.DatedService{
		services[timetable.ServiceKey{UID: "D40001", Date: runningDate}],
		services[timetable.ServiceKey{UID: "E50001", Date: runningDate}],
	})
	require.NoError(t, err)
	require.Len(t, full, 2)

	assert.Same(t, full[1], full[0].EnRoute[0].Secondary)
	assert.Same(t, full[0], full[1].DivideFrom.Primary)
}
