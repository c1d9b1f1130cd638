package timetable

import "time"

type DepartureBoard struct {
	CRS      string         `json:"crs" groups:"basic"`
	From     time.Time      `json:"from" groups:"basic"`
	To       time.Time      `json:"to" groups:"basic"`
	TimeType TimeType       `json:"time_type" groups:"basic"`
	Calls    []*ServiceCall `json:"calls" groups:"basic"`
}

// FilterByDestination keeps the calls whose train, in the same portion, goes
// on to call at crs. On an arrival board the train must have come from crs
// instead.
func (b *DepartureBoard) FilterByDestination(crs string) *DepartureBoard {
	filtered := &DepartureBoard{
		CRS:      b.CRS,
		From:     b.From,
		To:       b.To,
		TimeType: b.TimeType,
	}

	for _, call := range b.Calls {
		if callReaches(call, crs, b.TimeType) {
			filtered.Calls = append(filtered.Calls, call)
		}
	}

	return filtered
}

func callReaches(call *ServiceCall, crs string, timeType TimeType) bool {
	portions := call.Portions(timeType)

	for _, neighbour := range call.Neighbours(timeType) {
		if neighbour.Location().CRS != crs {
			continue
		}
		for _, portion := range portions {
			if neighbour.Portions(timeType).Has(portion.UID) {
				return true
			}
		}
	}

	return false
}
