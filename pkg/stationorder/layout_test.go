package stationorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/railtimetable/pkg/timetable"
)

func location(crs string) timetable.Location {
	return timetable.Location{Tiploc: crs + "TPL", CRS: crs, Name: crs + " Station"}
}

func portions(uids ...string) timetable.PortionEnds {
	var ends timetable.PortionEnds
	for _, uid := range uids {
		ends = append(ends, timetable.PortionEnd{UID: uid})
	}
	return ends
}

func stop(crs string, uids ...string) *timetable.ServiceCall {
	return &timetable.ServiceCall{
		UID:          uids[0],
		Point:        &timetable.CallingPoint{TimingPoint: timetable.TimingPoint{Location: location(crs)}},
		Origins:      portions(uids...),
		Destinations: portions(uids...),
	}
}

// departure builds the board call at BRD for a train going on to call at
// each of the given stations
func departure(uid string, crs ...string) *timetable.ServiceCall {
	call := stop("BRD", uid)
	for _, code := range crs {
		call.Subsequent = append(call.Subsequent, stop(code, uid))
	}
	return call
}

func arrival(uid string, crs ...string) *timetable.ServiceCall {
	call := stop("BRD", uid)
	for _, code := range crs {
		call.Preceding = append(call.Preceding, stop(code, uid))
	}
	return call
}

func crsCodes(layout *Layout) []string {
	var codes []string
	for _, station := range layout.Stations {
		codes = append(codes, station.CRS)
	}
	return codes
}

func TestGenerateDivergingServices(t *testing.T) {
	x := departure("X00001", "MMM", "PPP", "QQQ")
	y := departure("Y00001", "MMM", "RRR", "SSS")
	board := &timetable.DepartureBoard{CRS: "BRD", TimeType: timetable.PublicDeparture, Calls: []*timetable.ServiceCall{x, y}}

	layout, err := Generate(board, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"BRD", "MMM", "PPP", "QQQ", "RRR", "SSS"}, crsCodes(layout))
	require.Equal(t, 2, layout.Columns())

	assert.Equal(t, []*timetable.ServiceCall{x, y}, layout.Rows[0])
	assert.Equal(t, []*timetable.ServiceCall{x.Subsequent[0], y.Subsequent[0]}, layout.Rows[1])
	assert.Equal(t, []*timetable.ServiceCall{x.Subsequent[1], nil}, layout.Rows[2])
	assert.Equal(t, []*timetable.ServiceCall{x.Subsequent[2], nil}, layout.Rows[3])
	assert.Equal(t, []*timetable.ServiceCall{nil, y.Subsequent[1]}, layout.Rows[4])
	assert.Equal(t, []*timetable.ServiceCall{nil, y.Subsequent[2]}, layout.Rows[5])
}

func TestGenerateDividingService(t *testing.T) {
	board := stop("BRD", "A00001", "B00001")
	board.Subsequent = []*timetable.ServiceCall{
		stop("MMM", "A00001", "B00001"),
		stop("PPP", "A00001"),
		stop("RRR", "B00001"),
	}

	layout, err := Generate(&timetable.DepartureBoard{TimeType: timetable.PublicDeparture, Calls: []*timetable.ServiceCall{board}}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"BRD", "MMM", "PPP", "RRR"}, crsCodes(layout))
	require.Equal(t, 2, layout.Columns())

	assert.Equal(t, []*timetable.ServiceCall{board, board.Subsequent[0], board.Subsequent[1]}, layout.Column(0))
	assert.Equal(t, []*timetable.ServiceCall{board, board.Subsequent[0], board.Subsequent[2]}, layout.Column(1))
}

func TestGenerateArrivals(t *testing.T) {
	x := arrival("X00001", "QQQ", "PPP", "MMM")
	y := arrival("Y00001", "SSS", "RRR", "MMM")
	board := &timetable.DepartureBoard{TimeType: timetable.PublicArrival, Calls: []*timetable.ServiceCall{x, y}}

	layout, err := Generate(board, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"BRD", "QQQ", "PPP", "SSS", "RRR", "MMM"}, crsCodes(layout))
	assert.Equal(t, []*timetable.ServiceCall{x.Preceding[2], y.Preceding[2]}, layout.Rows[5])
}

func TestGenerateKeepsRepeatedStationApart(t *testing.T) {
	x := departure("X00001", "AAA", "BBB")
	y := departure("Y00001", "BBB", "AAA")
	board := &timetable.DepartureBoard{TimeType: timetable.PublicDeparture, Calls: []*timetable.ServiceCall{x, y}}

	layout, err := Generate(board, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"BRD", "AAA", "BBB", "AAA"}, crsCodes(layout))
	assert.Equal(t, []*timetable.ServiceCall{x.Subsequent[1], y.Subsequent[0]}, layout.Rows[2])
}

func TestGenerateSeedsFromLibrary(t *testing.T) {
	library, err := ParseLibrary([]byte(`
routes:
  - name: Test Line
    stations: [BRD, PPP, MMM, QQQ]
`))
	require.NoError(t, err)

	x := departure("X00001", "PPP", "QQQ")
	y := departure("Y00001", "MMM", "QQQ")
	board := &timetable.DepartureBoard{TimeType: timetable.PublicDeparture, Calls: []*timetable.ServiceCall{x, y}}

	layout, err := Generate(board, library)
	require.NoError(t, err)

	assert.Equal(t, []string{"BRD", "PPP", "MMM", "QQQ"}, crsCodes(layout))
	for _, station := range layout.Stations {
		assert.NotEmpty(t, station.Tiploc)
	}
	assert.Equal(t, []*timetable.ServiceCall{x.Subsequent[1], y.Subsequent[1]}, layout.Rows[3])
}

func TestGenerateIsDeterministic(t *testing.T) {
	build := func() *timetable.DepartureBoard {
		return &timetable.DepartureBoard{
			TimeType: timetable.PublicDeparture,
			Calls: []*timetable.ServiceCall{
				departure("X00001", "MMM", "PPP"),
				departure("Y00001", "ZZZ"),
				departure("Z00001", "MMM", "RRR", "PPP"),
				departure("W00001", "KKK", "ZZZ"),
			},
		}
	}

	first, err := Generate(build(), nil)
	require.NoError(t, err)
	second, err := Generate(build(), nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateLosesNoCalls(t *testing.T) {
	board := &timetable.DepartureBoard{
		TimeType: timetable.PublicDeparture,
		Calls: []*timetable.ServiceCall{
			departure("X00001", "MMM", "PPP"),
			departure("Y00001", "ZZZ"),
			departure("Z00001", "MMM", "RRR", "PPP"),
		},
	}

	layout, err := Generate(board, nil)
	require.NoError(t, err)

	for column, call := range board.Calls {
		expected := append([]*timetable.ServiceCall{call}, call.Subsequent...)
		assert.Equal(t, expected, layout.Column(column))
	}
	assert.Len(t, layout.Flatten(), 3+2+4)
}

func TestGenerateEmptyBoard(t *testing.T) {
	layout, err := Generate(&timetable.DepartureBoard{}, nil)
	require.NoError(t, err)
	assert.Zero(t, layout.Columns())
	assert.Empty(t, layout.Flatten())
}

func TestCollapseMovesEarlierRowDown(t *testing.T) {
	a, b, c := stop("AAA", "X"), stop("BBB", "Y"), stop("AAA", "Z")
	stations := []station{{location: location("BRD")}, {location: location("AAA")}, {location: location("BBB")}, {location: location("AAA")}}
	rows := [][]*timetable.ServiceCall{
		{stop("BRD", "X"), stop("BRD", "Y"), stop("BRD", "Z")},
		{a, nil, nil},
		{nil, b, nil},
		{nil, nil, c},
	}

	stations, rows = collapse(stations, rows, false)

	require.Len(t, stations, 3)
	assert.Equal(t, "BBB", stations[1].location.CRS)
	assert.Equal(t, []*timetable.ServiceCall{a, nil, c}, rows[2])
}

func TestDefaultLibrary(t *testing.T) {
	library, err := DefaultLibrary()
	require.NoError(t, err)
	assert.NotEmpty(t, library.Routes)
	for _, route := range library.Routes {
		assert.NotEmpty(t, route.Name)
		assert.NotEmpty(t, route.Stations)
	}
}
