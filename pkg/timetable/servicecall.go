package timetable

import "time"

// PortionEnd is the origin or destination of one portion of a train
type PortionEnd struct {
	UID   string `json:"uid" groups:"basic"`
	Point Point  `json:"point" groups:"basic"`
}

func (p PortionEnd) Location() Location {
	return p.Point.Timing().Location
}

// PortionEnds keeps the portions in the order they were found
type PortionEnds []PortionEnd

func (p PortionEnds) Has(uid string) bool {
	return p.index(uid) >= 0
}

func (p PortionEnds) UIDs() []string {
	uids := make([]string, 0, len(p))
	for _, end := range p {
		uids = append(uids, end.UID)
	}
	return uids
}

func (p PortionEnds) index(uid string) int {
	for i, end := range p {
		if end.UID == uid {
			return i
		}
	}
	return -1
}

// merge appends other, replacing the point of any portion already present
// without moving it
func (p PortionEnds) merge(other PortionEnds) PortionEnds {
	for _, end := range other {
		if i := p.index(end.UID); i >= 0 {
			p[i] = end
		} else {
			p = append(p, end)
		}
	}
	return p
}

type ServiceCall struct {
	Timestamp time.Time         `json:"timestamp" groups:"basic"`
	TimeType  TimeType          `json:"time_type" groups:"basic"`
	Time      Time              `json:"time" groups:"basic"`
	UID       string            `json:"uid" groups:"basic"`
	Date      Date              `json:"date" groups:"basic"`
	Point     Point             `json:"point" groups:"basic"`
	Mode      Mode              `json:"mode" groups:"basic"`
	TOC       string            `json:"toc" groups:"basic"`
	STP       ShortTermPlanning `json:"stp" groups:"detailed"`

	ServiceProperty *ServiceProperty `json:"service_property,omitempty" groups:"basic"`

	Origins      PortionEnds `json:"origins" groups:"basic"`
	Destinations PortionEnds `json:"destinations" groups:"basic"`

	// Preceding and Subsequent are what the physical train did before and
	// will do after this call, across all of its portions
	Preceding  []*ServiceCall `json:"preceding,omitempty" groups:"detailed"`
	Subsequent []*ServiceCall `json:"subsequent,omitempty" groups:"detailed"`
}

func (c *ServiceCall) Location() Location {
	return c.Point.Timing().Location
}

func (c *ServiceCall) Key() ServiceKey {
	return ServiceKey{UID: c.UID, Date: c.Date}
}

// Portions lists the portions this call belongs to on the side relevant to
// the time type: origins for arrivals, destinations otherwise
func (c *ServiceCall) Portions(timeType TimeType) PortionEnds {
	if timeType.IsArrival() {
		return c.Origins
	}
	return c.Destinations
}

// Neighbours is the narrative walked away from the board station: preceding
// calls nearest first for arrivals, subsequent calls for everything else
func (c *ServiceCall) Neighbours(timeType TimeType) []*ServiceCall {
	if !timeType.IsArrival() {
		return c.Subsequent
	}

	reversed := make([]*ServiceCall, len(c.Preceding))
	for i, call := range c.Preceding {
		reversed[len(c.Preceding)-1-i] = call
	}
	return reversed
}

// IsInPortion reports whether this call is part of the given portion
func (c *ServiceCall) IsInPortion(uid string) bool {
	return c.Origins.Has(uid) || c.Destinations.Has(uid)
}
