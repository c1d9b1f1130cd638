package mongodb

import (
	"fmt"

	"github.com/travigo/railtimetable/pkg/timetable"
)

type serviceDocument struct {
	ImportID string `bson:"importid"`

	UID                string                      `bson:"uid"`
	Period             timetable.Period            `bson:"period"`
	ExcludeBankHoliday timetable.BankHoliday       `bson:"excludebankholiday"`
	ShortTermPlanning  timetable.ShortTermPlanning `bson:"shorttermplanning"`
	Cancelled          bool                        `bson:"cancelled"`

	Mode   timetable.Mode  `bson:"mode,omitempty"`
	TOC    string          `bson:"toc,omitempty"`
	Points []pointDocument `bson:"points,omitempty"`

	// RSIDs holds the six character prefix of every retail service id on
	// the train, for lookups covering all portions
	RSIDs []string `bson:"rsids,omitempty"`
}

type pointDocument struct {
	Kind string `bson:"kind"`

	Location             timetable.Location   `bson:"location"`
	LocationSuffix       string               `bson:"locationsuffix,omitempty"`
	Platform             string               `bson:"platform,omitempty"`
	Line                 string               `bson:"line,omitempty"`
	Path                 string               `bson:"path,omitempty"`
	Activities           []timetable.Activity `bson:"activities,omitempty"`
	EngineeringAllowance int                  `bson:"engineeringallowance,omitempty"`
	PathingAllowance     int                  `bson:"pathingallowance,omitempty"`
	PerformanceAllowance int                  `bson:"performanceallowance,omitempty"`

	WorkingArrival   *timetable.Time `bson:"workingarrival,omitempty"`
	PublicArrival    *timetable.Time `bson:"publicarrival,omitempty"`
	WorkingDeparture *timetable.Time `bson:"workingdeparture,omitempty"`
	PublicDeparture  *timetable.Time `bson:"publicdeparture,omitempty"`
	Pass             *timetable.Time `bson:"pass,omitempty"`

	ServiceProperty *timetable.ServiceProperty `bson:"serviceproperty,omitempty"`
}

// timeField is the point document field holding each kind of time
func timeField(timeType timetable.TimeType) string {
	switch timeType {
	case timetable.WorkingArrival:
		return "workingarrival"
	case timetable.PublicArrival:
		return "publicarrival"
	case timetable.Pass:
		return "pass"
	case timetable.PublicDeparture:
		return "publicdeparture"
	default:
		return "workingdeparture"
	}
}

func newServiceDocument(importID string, entry timetable.ServiceEntry) *serviceDocument {
	header := entry.Header()
	document := &serviceDocument{
		ImportID:           importID,
		UID:                header.UID,
		Period:             header.Period,
		ExcludeBankHoliday: header.ExcludeBankHoliday,
		ShortTermPlanning:  header.ShortTermPlanning,
	}

	service, ok := entry.(*timetable.Service)
	if !ok {
		document.Cancelled = true
		return document
	}

	document.Mode = service.Mode
	document.TOC = service.TOC

	for _, point := range service.Points {
		timing := point.Timing()
		pointDocument := pointDocument{
			Kind:                 timetable.PointKind(point),
			Location:             timing.Location,
			LocationSuffix:       timing.LocationSuffix,
			Platform:             timing.Platform,
			Line:                 timing.Line,
			Path:                 timing.Path,
			Activities:           timing.Activities,
			EngineeringAllowance: timing.EngineeringAllowance,
			PathingAllowance:     timing.PathingAllowance,
			PerformanceAllowance: timing.PerformanceAllowance,
			ServiceProperty:      timing.ServiceProperty,
		}

		switch p := point.(type) {
		case *timetable.OriginPoint:
			pointDocument.WorkingDeparture = p.WorkingDepartureTime.Ptr()
			pointDocument.PublicDeparture = p.PublicDepartureTime
		case *timetable.CallingPoint:
			pointDocument.WorkingArrival = p.WorkingArrivalTime.Ptr()
			pointDocument.PublicArrival = p.PublicArrivalTime
			pointDocument.WorkingDeparture = p.WorkingDepartureTime.Ptr()
			pointDocument.PublicDeparture = p.PublicDepartureTime
		case *timetable.PassingPoint:
			pointDocument.Pass = p.PassTime.Ptr()
		case *timetable.DestinationPoint:
			pointDocument.WorkingArrival = p.WorkingArrivalTime.Ptr()
			pointDocument.PublicArrival = p.PublicArrivalTime
		}

		if timing.ServiceProperty != nil && len(timing.ServiceProperty.RSID) >= 6 {
			document.RSIDs = append(document.RSIDs, timing.ServiceProperty.RSID[0:6])
		}

		document.Points = append(document.Points, pointDocument)
	}

	return document
}

func valueOrZero(t *timetable.Time) timetable.Time {
	if t == nil {
		return 0
	}
	return *t
}

func (d *pointDocument) point() (timetable.Point, error) {
	timing := timetable.TimingPoint{
		Location:             d.Location,
		LocationSuffix:       d.LocationSuffix,
		Platform:             d.Platform,
		Line:                 d.Line,
		Path:                 d.Path,
		Activities:           d.Activities,
		EngineeringAllowance: d.EngineeringAllowance,
		PathingAllowance:     d.PathingAllowance,
		PerformanceAllowance: d.PerformanceAllowance,
		ServiceProperty:      d.ServiceProperty,
	}

	switch d.Kind {
	case "origin":
		return &timetable.OriginPoint{
			TimingPoint:          timing,
			WorkingDepartureTime: valueOrZero(d.WorkingDeparture),
			PublicDepartureTime:  d.PublicDeparture,
		}, nil
	case "calling":
		return &timetable.CallingPoint{
			TimingPoint:          timing,
			WorkingArrivalTime:   valueOrZero(d.WorkingArrival),
			PublicArrivalTime:    d.PublicArrival,
			WorkingDepartureTime: valueOrZero(d.WorkingDeparture),
			PublicDepartureTime:  d.PublicDeparture,
		}, nil
	case "passing":
		return &timetable.PassingPoint{
			TimingPoint: timing,
			PassTime:    valueOrZero(d.Pass),
		}, nil
	case "destination":
		return &timetable.DestinationPoint{
			TimingPoint:        timing,
			WorkingArrivalTime: valueOrZero(d.WorkingArrival),
			PublicArrivalTime:  d.PublicArrival,
		}, nil
	default:
		return nil, fmt.Errorf("unknown point kind %q", d.Kind)
	}
}

func (d *serviceDocument) entry() (timetable.ServiceEntry, error) {
	header := timetable.ServiceHeader{
		UID:                d.UID,
		Period:             d.Period,
		ExcludeBankHoliday: d.ExcludeBankHoliday,
		ShortTermPlanning:  d.ShortTermPlanning,
	}

	if d.Cancelled {
		return &timetable.ServiceCancellation{ServiceHeader: header}, nil
	}

	service := &timetable.Service{
		ServiceHeader: header,
		Mode:          d.Mode,
		TOC:           d.TOC,
		Points:        make([]timetable.Point, 0, len(d.Points)),
	}
	for i := range d.Points {
		point, err := d.Points[i].point()
		if err != nil {
			return nil, fmt.Errorf("service %s: %w", d.UID, err)
		}
		service.Points = append(service.Points, point)
	}

	return service, nil
}

type associationDocument struct {
	ImportID string `bson:"importid"`

	PrimaryUID        string                      `bson:"primaryuid"`
	SecondaryUID      string                      `bson:"secondaryuid"`
	PrimarySuffix     string                      `bson:"primarysuffix,omitempty"`
	SecondarySuffix   string                      `bson:"secondarysuffix,omitempty"`
	Location          string                      `bson:"location"`
	Period            timetable.Period            `bson:"period"`
	ShortTermPlanning timetable.ShortTermPlanning `bson:"shorttermplanning"`
	Cancelled         bool                        `bson:"cancelled"`

	Category timetable.AssociationCategory `bson:"category,omitempty"`
	Day      timetable.AssociationDay      `bson:"day,omitempty"`
	Type     timetable.AssociationType     `bson:"type,omitempty"`
}

func newAssociationDocument(importID string, entry timetable.AssociationEntry) *associationDocument {
	header := entry.Header()
	document := &associationDocument{
		ImportID:          importID,
		PrimaryUID:        header.PrimaryUID,
		SecondaryUID:      header.SecondaryUID,
		PrimarySuffix:     header.PrimarySuffix,
		SecondarySuffix:   header.SecondarySuffix,
		Location:          header.Location,
		Period:            header.Period,
		ShortTermPlanning: header.ShortTermPlanning,
	}

	association, ok := entry.(*timetable.Association)
	if !ok {
		document.Cancelled = true
		return document
	}

	document.Category = association.Category
	document.Day = association.Day
	document.Type = association.Type

	return document
}

func (d *associationDocument) entry() timetable.AssociationEntry {
	header := timetable.AssociationHeader{
		PrimaryUID:        d.PrimaryUID,
		SecondaryUID:      d.SecondaryUID,
		PrimarySuffix:     d.PrimarySuffix,
		SecondarySuffix:   d.SecondarySuffix,
		Location:          d.Location,
		Period:            d.Period,
		ShortTermPlanning: d.ShortTermPlanning,
	}

	if d.Cancelled {
		return &timetable.AssociationCancellation{AssociationHeader: header}
	}

	return &timetable.Association{
		AssociationHeader: header,
		Category:          d.Category,
		Day:               d.Day,
		Type:              d.Type,
	}
}
