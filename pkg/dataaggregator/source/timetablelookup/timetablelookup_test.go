package timetablelookup

import (
	"context"
	"testing"
	"time"

	iso8601 "github.com/senseyeio/duration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/railtimetable/pkg/dataaggregator"
	"github.com/travigo/railtimetable/pkg/dataaggregator/query"
	"github.com/travigo/railtimetable/pkg/departureboard"
	"github.com/travigo/railtimetable/pkg/repository/memory"
	"github.com/travigo/railtimetable/pkg/timetable"
	tt "github.com/travigo/railtimetable/pkg/timetable/timetabletest"
)

func newAggregator(t *testing.T) *dataaggregator.Aggregator {
	ctx := context.Background()
	store := memory.NewStore(nil)

	require.NoError(t, store.InsertServices(ctx, []timetable.ServiceEntry{
		tt.NewService("A10001", timetable.Permanent, "2024-03-01", "2024-03-31").
			Origin("BRD", "1000").Property(&timetable.ServiceProperty{Identity: "1A01", RSID: "GR100100"}).
			Destination("PPP", "1030").Build(),
		tt.NewService("D40001", timetable.Permanent, "2024-03-01", "2024-03-31").
			Origin("XXX", "0930").Property(&timetable.ServiceProperty{Identity: "1D40", RSID: "GR400100"}).
			Call("BRD", "1030", "1032").Call("MMM", "1045", "1050").Destination("PPP", "1110").Build(),
		tt.NewService("E50001", timetable.Permanent, "2024-03-01", "2024-03-31").
			Origin("MMM", "1055").Property(&timetable.ServiceProperty{Identity: "1D40", RSID: "GR400200"}).
			Destination("QQQ", "1120").Build(),
	}))
	require.NoError(t, store.InsertAssociations(ctx, []timetable.AssociationEntry{
		tt.NewAssociation(timetable.Divide, "D40001", "E50001", "MMM", timetable.Today, "2024-03-01", "2024-03-31"),
	}))

	aggregator := &dataaggregator.Aggregator{}
	aggregator.RegisterSource(New(store, store, nil))
	return aggregator
}

func testBoardQuery(t *testing.T) query.DepartureBoard {
	period, err := iso8601.ParseISO8601("PT2H")
	require.NoError(t, err)

	return query.DepartureBoard{
		Station:       "BRD",
		StartDateTime: time.Date(2024, time.March, 12, 10, 0, 0, 0, timetable.London()),
		Period:        period,
		TimeType:      timetable.PublicDeparture,
	}
}

func TestDepartureBoard(t *testing.T) {
	aggregator := newAggregator(t)

	board, err := dataaggregator.LookupFrom[*timetable.DepartureBoard](context.Background(), aggregator, testBoardQuery(t))
	require.NoError(t, err)
	require.Len(t, board.Calls, 2)

	assert.Equal(t, "A10001", board.Calls[0].UID)
	assert.Equal(t, "D40001", board.Calls[1].UID)
	assert.Equal(t, []string{"D40001", "E50001"}, board.Calls[1].Destinations.UIDs())
}

func TestBoardLayout(t *testing.T) {
	aggregator := newAggregator(t)

	result, err := dataaggregator.LookupFrom[*departureboard.BoardLayout](
		context.Background(), aggregator, query.BoardLayout{DepartureBoard: testBoardQuery(t)},
	)
	require.NoError(t, err)
	require.NotNil(t, result.Layout)

	assert.Len(t, result.Board.Calls, 2)
	assert.Equal(t, "BRD", result.Layout.Stations[0].CRS)
	assert.NotEmpty(t, result.Layout.Flatten())
}

func TestService(t *testing.T) {
	aggregator := newAggregator(t)

	service, err := dataaggregator.LookupFrom[*timetable.FullService](context.Background(), aggregator, query.Service{
		UID:  "E50001",
		Date: tt.Date("2024-03-12"),
	})
	require.NoError(t, err)

	assert.Equal(t, "E50001", service.Service().UID)
	require.NotNil(t, service.DivideFrom)
	assert.Equal(t, "D40001", service.DivideFrom.Primary.Service().UID)
}

func TestServiceNotFound(t *testing.T) {
	aggregator := newAggregator(t)

	_, err := dataaggregator.LookupFrom[*timetable.FullService](context.Background(), aggregator, query.Service{
		UID:  "Z99999",
		Date: tt.Date("2024-03-12"),
	})
	assert.ErrorIs(t, err, dataaggregator.ErrNotFound)

	_, err = dataaggregator.LookupFrom[*timetable.FullService](context.Background(), aggregator, query.Service{
		UID:  "A10001",
		Date: tt.Date("2024-04-12"),
	})
	assert.ErrorIs(t, err, dataaggregator.ErrNotFound)
}

func TestServicesByRSID(t *testing.T) {
	aggregator := newAggregator(t)

	services, err := dataaggregator.LookupFrom[[]*timetable.FullService](context.Background(), aggregator, query.ServicesByRSID{
		RSID: "GR4001",
		Date: tt.Date("2024-03-12"),
	})
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "D40001", services[0].Service().UID)

	services, err = dataaggregator.LookupFrom[[]*timetable.FullService](context.Background(), aggregator, query.ServicesByRSID{
		RSID: "GR1001",
		Date: tt.Date("2024-03-12"),
	})
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "A10001", services[0].Service().UID)
}
