package stationorder

import (
	"errors"
	"sort"

	"github.com/travigo/railtimetable/pkg/timetable"
)

// ErrInconsistentLayout is returned when a portion's calls cannot be placed
// on the station axis in the order they happen
var ErrInconsistentLayout = errors.New("calls could not be placed on the station axis")

// spacing between stations already on the axis, leaving room to slot new
// stations in before or after them
const multiplier = 1000

// Layout places every call of a board in a grid. Each column is one portion
// of one call on the board, each row a station. Row 0 is the board station
// and holds the board calls themselves.
type Layout struct {
	Stations []timetable.Location       `json:"stations" groups:"basic"`
	Rows     [][]*timetable.ServiceCall `json:"rows" groups:"basic"`
}

func (l *Layout) Columns() int {
	if len(l.Rows) == 0 {
		return 0
	}
	return len(l.Rows[0])
}

// Column returns the calls placed in a column, skipping empty cells
func (l *Layout) Column(column int) []*timetable.ServiceCall {
	var calls []*timetable.ServiceCall
	for _, row := range l.Rows {
		if call := row[column]; call != nil {
			calls = append(calls, call)
		}
	}
	return calls
}

// Flatten lists every placed call, row by row
func (l *Layout) Flatten() []*timetable.ServiceCall {
	var calls []*timetable.ServiceCall
	for _, row := range l.Rows {
		for _, call := range row {
			if call != nil {
				calls = append(calls, call)
			}
		}
	}
	return calls
}

type station struct {
	location    timetable.Location
	placeholder bool
}

func placeholders(crsCodes []string) []station {
	stations := make([]station, 0, len(crsCodes))
	for _, crs := range crsCodes {
		stations = append(stations, station{location: timetable.Location{CRS: crs}, placeholder: true})
	}
	return stations
}

type orderItem struct {
	station  station
	key      int
	assigned bool
	found    bool
}

// Generate lays out the calls of a board against a single station axis
func Generate(board *timetable.DepartureBoard, library *RouteLibrary) (*Layout, error) {
	if len(board.Calls) == 0 {
		return &Layout{}, nil
	}

	arrival := board.TimeType.IsArrival()

	stations := append(
		[]station{{location: board.Calls[0].Location()}},
		orderStations(board, library, arrival)...,
	)
	resolvePlaceholders(stations)

	matrix, columns, err := fillMatrix(board, stations, arrival)
	if err != nil {
		return nil, err
	}

	stations, rows := dropUnused(stations, matrix, columns)
	stations, rows = collapse(stations, rows, arrival)

	layout := &Layout{
		Stations: make([]timetable.Location, 0, len(stations)),
		Rows:     rows,
	}
	for _, station := range stations {
		layout.Stations = append(layout.Stations, station.location)
	}

	return layout, nil
}

func neighbourCount(call *timetable.ServiceCall, arrival bool) int {
	if arrival {
		return len(call.Preceding)
	}
	return len(call.Subsequent)
}

// orderStations builds the station axis, excluding the board station, by
// merging in each portion of each call. While any call is left, portions
// sharing nothing with the axis built so far are put aside until a pass
// makes no progress.
func orderStations(board *timetable.DepartureBoard, library *RouteLibrary, arrival bool) []station {
	pending := make([]*timetable.ServiceCall, len(board.Calls))
	copy(pending, board.Calls)

	sort.SliceStable(pending, func(i, j int) bool {
		return neighbourCount(pending[i], arrival) > neighbourCount(pending[j], arrival)
	})
	if arrival {
		pending = reversed(pending)
	}

	remaining := len(pending)
	commonCheck := true
	var stations []station

	for remaining > 0 {
		before := remaining

		for n, call := range pending {
			if call == nil {
				continue
			}

			portions := call.Portions(board.TimeType)
			portionsLeft := len(portions)

			for _, portion := range portions {
				order, foundOne := placeNeighbours(call, portion.UID, stations, board.TimeType)
				if commonCheck && !foundOne && len(stations) > 0 {
					continue
				}

				if len(stations) == 0 {
					stations = library.seed(order)
				}
				stations = mergeOrder(stations, order, arrival)
				portionsLeft--
			}

			if portionsLeft == 0 {
				pending[n] = nil
				remaining--
			}
		}

		if remaining == before {
			commonCheck = false
		}
	}

	return stations
}

// placeNeighbours finds, for each neighbour of the call in the portion, the
// position of its station on the axis. Each search starts after the last
// station found so positions only move away from the board station.
func placeNeighbours(call *timetable.ServiceCall, uid string, stations []station, timeType timetable.TimeType) ([]orderItem, bool) {
	arrival := timeType.IsArrival()

	step, i := 1, 0
	if arrival {
		step, i = -1, len(stations)-1
	}

	var order []orderItem
	foundOne := false

	for _, neighbour := range call.Neighbours(timeType) {
		location := neighbour.Location()
		if !location.HasCRS() || !neighbour.Portions(timeType).Has(uid) {
			continue
		}

		item := orderItem{station: station{location: location}}
		for k := i; k >= 0 && k < len(stations); k += step {
			if stations[k].location.CRS == location.CRS {
				item.key = k * multiplier
				item.found = true
				item.assigned = true
				i = k + step
				foundOne = true
				break
			}
		}
		order = append(order, item)
	}

	return order, foundOne
}

// mergeOrder gives every unplaced item a key next to its placed neighbours,
// or past the end of the axis, and merges the items into the axis
func mergeOrder(stations []station, order []orderItem, arrival bool) []station {
	direction := -1
	if arrival {
		direction = 1
	}

	for j, item := range order {
		if !item.found {
			continue
		}
		for k := j - 1; k >= 0 && !order[k].assigned; k-- {
			order[k].key = item.key + (multiplier-1-k)*direction
			order[k].assigned = true
		}
	}

	next := len(stations)
	for k := range order {
		if !order[k].assigned {
			order[k].key = next * multiplier * -direction
			order[k].assigned = true
			next++
		}
	}

	keyed := make(map[int]station, len(stations)+len(order))
	for index, existing := range stations {
		keyed[index*multiplier] = existing
	}
	for _, item := range order {
		keyed[item.key] = item.station
	}

	keys := make([]int, 0, len(keyed))
	for key := range keyed {
		keys = append(keys, key)
	}
	sort.Ints(keys)

	merged := make([]station, 0, len(keys))
	for _, key := range keys {
		merged = append(merged, keyed[key])
	}
	return merged
}

// resolvePlaceholders swaps stations seeded from the route library for a
// real location with the same CRS code when one is on the axis
func resolvePlaceholders(stations []station) {
	for i := range stations {
		if !stations[i].placeholder {
			continue
		}
		for _, candidate := range stations {
			if !candidate.placeholder && candidate.location.CRS == stations[i].location.CRS {
				stations[i] = candidate
			}
		}
	}
}

// fillMatrix puts each neighbour of each portion in the first row at or after
// the previous neighbour's row that has the same station
func fillMatrix(board *timetable.DepartureBoard, stations []station, arrival bool) (map[int]map[int]*timetable.ServiceCall, int, error) {
	matrix := map[int]map[int]*timetable.ServiceCall{}
	set := func(row int, column int, call *timetable.ServiceCall) {
		if matrix[row] == nil {
			matrix[row] = map[int]*timetable.ServiceCall{}
		}
		matrix[row][column] = call
	}

	column := 0
	for _, call := range board.Calls {
		narrative := call.Subsequent
		if arrival {
			narrative = call.Preceding
		}

		for _, portion := range call.Portions(board.TimeType) {
			set(0, column, call)

			j := 1
			for _, neighbour := range narrative {
				location := neighbour.Location()
				if !location.HasCRS() || !neighbour.Portions(board.TimeType).Has(portion.UID) {
					continue
				}

				for j < len(stations) && stations[j].location.CRS != location.CRS {
					j++
				}
				if j >= len(stations) {
					return nil, 0, ErrInconsistentLayout
				}

				set(j, column, neighbour)
				j++
			}

			column++
		}
	}

	return matrix, column, nil
}

// dropUnused removes stations with no calls and turns the sparse matrix into
// dense rows
func dropUnused(stations []station, matrix map[int]map[int]*timetable.ServiceCall, columns int) ([]station, [][]*timetable.ServiceCall) {
	var kept []station
	var rows [][]*timetable.ServiceCall

	for index, station := range stations {
		cells, ok := matrix[index]
		if !ok {
			continue
		}

		row := make([]*timetable.ServiceCall, columns)
		for column, call := range cells {
			row[column] = call
		}

		kept = append(kept, station)
		rows = append(rows, row)
	}

	return kept, rows
}

// collapse merges rows for the same station when no column would end up
// with two calls or have its calls reordered. Departure boards keep the
// later row, arrival boards the earlier one.
func collapse(stations []station, rows [][]*timetable.ServiceCall, arrival bool) ([]station, [][]*timetable.ServiceCall) {
	for {
		i, j, ok := findCollapsible(stations, rows, arrival)
		if !ok {
			return stations, rows
		}

		for column, call := range rows[j] {
			if call != nil {
				rows[i][column] = call
			}
		}

		stations = append(stations[:j], stations[j+1:]...)
		rows = append(rows[:j], rows[j+1:]...)
	}
}

func findCollapsible(stations []station, rows [][]*timetable.ServiceCall, arrival bool) (int, int, bool) {
	if arrival {
		for i := 1; i < len(stations); i++ {
			for j := i + 1; j < len(stations); j++ {
				if canCollapse(stations, rows, i, j) {
					return i, j, true
				}
			}
		}
		return 0, 0, false
	}

	for i := len(stations) - 1; i > 0; i-- {
		for j := i - 1; j > 0; j-- {
			if canCollapse(stations, rows, i, j) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// canCollapse checks that row j can move into row i: every column with a
// call in row j must have nothing from the row after j up to and including i
func canCollapse(stations []station, rows [][]*timetable.ServiceCall, i int, j int) bool {
	if stations[i].location.CRS != stations[j].location.CRS {
		return false
	}

	step := 1
	if j > i {
		step = -1
	}

	for column, call := range rows[j] {
		if call == nil {
			continue
		}
		for k := j + step; ; k += step {
			if rows[k][column] != nil {
				return false
			}
			if k == i {
				break
			}
		}
	}

	return true
}
