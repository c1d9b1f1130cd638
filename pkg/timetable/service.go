package timetable

// HolidayCalendar answers whether a bank holiday exclusion applies on a date
type HolidayCalendar interface {
	IsExcluded(exclusion BankHoliday, date Date) bool
}

// ServiceEntry is either a *Service or a *ServiceCancellation
type ServiceEntry interface {
	Overlayable
	Header() *ServiceHeader
	isServiceEntry()
}

type ServiceHeader struct {
	UID                string            `json:"uid" groups:"basic"`
	Period             Period            `json:"period" groups:"detailed"`
	ExcludeBankHoliday BankHoliday       `json:"exclude_bank_holiday,omitempty" groups:"detailed"`
	ShortTermPlanning  ShortTermPlanning `json:"stp" groups:"basic"`
}

func (h *ServiceHeader) Header() *ServiceHeader {
	return h
}

func (h *ServiceHeader) STP() ShortTermPlanning {
	return h.ShortTermPlanning
}

func (h *ServiceHeader) SameIdentity(other Overlayable) bool {
	entry, ok := other.(ServiceEntry)
	return ok && entry.Header().UID == h.UID
}

// RunsOnDate checks the period and any bank holiday exclusion
func (h *ServiceHeader) RunsOnDate(date Date, holidays HolidayCalendar) bool {
	if !h.Period.IsActive(date) {
		return false
	}
	if h.ExcludeBankHoliday != RunsOnBankHolidays && holidays != nil {
		return !holidays.IsExcluded(h.ExcludeBankHoliday, date)
	}
	return true
}

type Service struct {
	ServiceHeader
	Mode   Mode    `json:"mode" groups:"basic"`
	TOC    string  `json:"toc" groups:"basic"`
	Points []Point `json:"points" groups:"detailed"`
}

func (*Service) isServiceEntry() {}

func (s *Service) Origin() *OriginPoint {
	if len(s.Points) == 0 {
		return nil
	}
	origin, _ := s.Points[0].(*OriginPoint)
	return origin
}

func (s *Service) Destination() *DestinationPoint {
	if len(s.Points) == 0 {
		return nil
	}
	destination, _ := s.Points[len(s.Points)-1].(*DestinationPoint)
	return destination
}

// ServicePropertyAt returns the properties of the train in effect at the
// given time. Without a time the origin properties are returned. A change at
// an intermediate point applies from the train's arrival there, or from its
// pass time.
func (s *Service) ServicePropertyAt(t *Time) *ServiceProperty {
	origin := s.Origin()
	if origin == nil {
		return nil
	}

	property := origin.ServiceProperty
	if t == nil {
		return property
	}

	for _, point := range s.Points {
		var reached Time
		switch p := point.(type) {
		case *CallingPoint:
			reached = p.PublicOrWorkingArrival()
		case *PassingPoint:
			reached = p.PassTime
		default:
			continue
		}

		if reached >= *t {
			break
		}
		if point.Timing().ServiceProperty != nil {
			property = point.Timing().ServiceProperty
		}
	}

	return property
}

// HasRSID checks the retail service id of the origin and every change en
// route
func (s *Service) HasRSID(rsid string) bool {
	for _, point := range s.Points {
		if point.Timing().ServiceProperty.HasRSID(rsid) {
			return true
		}
	}
	return false
}

// AssociationPoint finds the point at which an association takes effect on
// this service
func (s *Service) AssociationPoint(association *Association) Point {
	suffix := association.PrimarySuffix
	if association.SecondaryUID == s.UID {
		suffix = association.SecondarySuffix
	}

	for _, point := range s.Points {
		timing := point.Timing()
		if timing.Location.Tiploc == association.Location && timing.LocationSuffix == suffix {
			return point
		}
	}

	return nil
}

// Stations lists the CRS of every point that has one
func (s *Service) Stations() []string {
	var stations []string
	for _, point := range s.Points {
		if point.Timing().Location.HasCRS() {
			stations = append(stations, point.Timing().Location.CRS)
		}
	}
	return stations
}

type ServiceCancellation struct {
	ServiceHeader
}

func (*ServiceCancellation) isServiceEntry() {}
