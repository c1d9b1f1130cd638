package timetable

import "golang.org/x/exp/slices"

// Point is one of *OriginPoint, *CallingPoint, *PassingPoint or
// *DestinationPoint
type Point interface {
	Timing() *TimingPoint
	isPoint()
}

type ArrivalPoint interface {
	Point
	WorkingArrival() Time
	PublicArrival() *Time
	PublicOrWorkingArrival() Time
}

type DeparturePoint interface {
	Point
	WorkingDeparture() Time
	PublicDeparture() *Time
	PublicOrWorkingDeparture() Time
}

type TimingPoint struct {
	Location             Location   `json:"location" groups:"basic"`
	LocationSuffix       string     `json:"location_suffix,omitempty" groups:"detailed"`
	Platform             string     `json:"platform,omitempty" groups:"basic"`
	Line                 string     `json:"line,omitempty" groups:"detailed"`
	Path                 string     `json:"path,omitempty" groups:"detailed"`
	Activities           []Activity `json:"activities,omitempty" groups:"detailed"`
	EngineeringAllowance int        `json:"engineering_allowance,omitempty" groups:"detailed"`
	PathingAllowance     int        `json:"pathing_allowance,omitempty" groups:"detailed"`
	PerformanceAllowance int        `json:"performance_allowance,omitempty" groups:"detailed"`

	// ServiceProperty is set where the train's properties change
	ServiceProperty *ServiceProperty `json:"service_property,omitempty" groups:"detailed"`
}

func (t *TimingPoint) Timing() *TimingPoint {
	return t
}

func (t *TimingPoint) IsUnadvertised() bool {
	return slices.Contains(t.Activities, ActivityUnadvertised)
}

func (t *TimingPoint) publicTime(value *Time) *Time {
	if value == nil || t.IsUnadvertised() {
		return nil
	}
	return value
}

type OriginPoint struct {
	TimingPoint
	WorkingDepartureTime Time  `json:"working_departure" groups:"detailed"`
	PublicDepartureTime  *Time `json:"public_departure,omitempty" groups:"basic"`
}

func (*OriginPoint) isPoint() {}

func (p *OriginPoint) WorkingDeparture() Time { return p.WorkingDepartureTime }
func (p *OriginPoint) PublicDeparture() *Time { return p.publicTime(p.PublicDepartureTime) }
func (p *OriginPoint) PublicOrWorkingDeparture() Time {
	return publicOrWorking(p.PublicDeparture(), p.WorkingDepartureTime)
}

type CallingPoint struct {
	TimingPoint
	WorkingArrivalTime   Time  `json:"working_arrival" groups:"detailed"`
	PublicArrivalTime    *Time `json:"public_arrival,omitempty" groups:"basic"`
	WorkingDepartureTime Time  `json:"working_departure" groups:"detailed"`
	PublicDepartureTime  *Time `json:"public_departure,omitempty" groups:"basic"`
}

func (*CallingPoint) isPoint() {}

func (p *CallingPoint) WorkingArrival() Time   { return p.WorkingArrivalTime }
func (p *CallingPoint) PublicArrival() *Time   { return p.publicTime(p.PublicArrivalTime) }
func (p *CallingPoint) WorkingDeparture() Time { return p.WorkingDepartureTime }
func (p *CallingPoint) PublicDeparture() *Time { return p.publicTime(p.PublicDepartureTime) }
func (p *CallingPoint) PublicOrWorkingArrival() Time {
	return publicOrWorking(p.PublicArrival(), p.WorkingArrivalTime)
}
func (p *CallingPoint) PublicOrWorkingDeparture() Time {
	return publicOrWorking(p.PublicDeparture(), p.WorkingDepartureTime)
}

type PassingPoint struct {
	TimingPoint
	PassTime Time `json:"pass" groups:"detailed"`
}

func (*PassingPoint) isPoint() {}

type DestinationPoint struct {
	TimingPoint
	WorkingArrivalTime Time  `json:"working_arrival" groups:"detailed"`
	PublicArrivalTime  *Time `json:"public_arrival,omitempty" groups:"basic"`
}

func (*DestinationPoint) isPoint() {}

func (p *DestinationPoint) WorkingArrival() Time { return p.WorkingArrivalTime }
func (p *DestinationPoint) PublicArrival() *Time { return p.publicTime(p.PublicArrivalTime) }
func (p *DestinationPoint) PublicOrWorkingArrival() Time {
	return publicOrWorking(p.PublicArrival(), p.WorkingArrivalTime)
}

func publicOrWorking(public *Time, working Time) Time {
	if public != nil {
		return *public
	}
	return working
}

// PointTime returns the time of the given type at a point, or nil if the
// point has no such time
func PointTime(point Point, timeType TimeType) *Time {
	switch timeType {
	case WorkingArrival:
		if arrival, ok := point.(ArrivalPoint); ok {
			return arrival.WorkingArrival().Ptr()
		}
	case PublicArrival:
		if arrival, ok := point.(ArrivalPoint); ok {
			return arrival.PublicArrival()
		}
	case Pass:
		if passing, ok := point.(*PassingPoint); ok {
			return passing.PassTime.Ptr()
		}
	case WorkingDeparture:
		if departure, ok := point.(DeparturePoint); ok {
			return departure.WorkingDeparture().Ptr()
		}
	case PublicDeparture:
		if departure, ok := point.(DeparturePoint); ok {
			return departure.PublicDeparture()
		}
	}
	return nil
}

// EffectiveTime is the time a train is at a point: its departure where it
// leaves, else its arrival, else its pass
func EffectiveTime(point Point) Time {
	switch p := point.(type) {
	case DeparturePoint:
		return p.PublicOrWorkingDeparture()
	case ArrivalPoint:
		return p.PublicOrWorkingArrival()
	case *PassingPoint:
		return p.PassTime
	}
	return 0
}

// PointKind names the variant of a point for storage and display
func PointKind(point Point) string {
	switch point.(type) {
	case *OriginPoint:
		return "origin"
	case *CallingPoint:
		return "calling"
	case *PassingPoint:
		return "passing"
	case *DestinationPoint:
		return "destination"
	}
	return ""
}
