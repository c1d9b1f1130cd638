// Package timetabletest builds schedules for tests
package timetabletest

import (
	"fmt"

	"github.com/travigo/railtimetable/pkg/timetable"
)

// Tiploc is the timing point code used for a station built here
func Tiploc(crs string) string {
	return "T" + crs
}

func Station(crs string) timetable.Location {
	return timetable.Location{Tiploc: Tiploc(crs), CRS: crs, Name: crs + " Station"}
}

func Date(value string) timetable.Date {
	date, err := timetable.ParseDate(value)
	if err != nil {
		panic(err)
	}
	return date
}

// ServiceBuilder adds points in running order. Times are HHMM and roll onto
// the next day when earlier than the previous point.
type ServiceBuilder struct {
	service *timetable.Service
	last    *timetable.Time
}

func NewService(uid string, stp timetable.ShortTermPlanning, from string, to string) *ServiceBuilder {
	return &ServiceBuilder{
		service: &timetable.Service{
			ServiceHeader: timetable.ServiceHeader{
				UID: uid,
				Period: timetable.Period{
					From:     Date(from),
					To:       Date(to),
					Weekdays: timetable.EveryDay,
				},
				ShortTermPlanning: stp,
			},
			Mode: timetable.ModeTrain,
			TOC:  "XX",
		},
	}
}

func (b *ServiceBuilder) time(value string) timetable.Time {
	t, err := timetable.ParseHHMM(value, b.last)
	if err != nil {
		panic(fmt.Sprintf("bad time %q: %v", value, err))
	}
	b.last = t.Ptr()
	return t
}

func (b *ServiceBuilder) Weekdays(mask string) *ServiceBuilder {
	b.service.Period.Weekdays = timetable.ParseWeekdays(mask)
	return b
}

func (b *ServiceBuilder) TOC(toc string) *ServiceBuilder {
	b.service.TOC = toc
	return b
}

func (b *ServiceBuilder) ExcludeBankHoliday(exclusion timetable.BankHoliday) *ServiceBuilder {
	b.service.ExcludeBankHoliday = exclusion
	return b
}

func (b *ServiceBuilder) Origin(crs string, depart string) *ServiceBuilder {
	t := b.time(depart)
	b.service.Points = append(b.service.Points, &timetable.OriginPoint{
		TimingPoint:          timetable.TimingPoint{Location: Station(crs)},
		WorkingDepartureTime: t,
		PublicDepartureTime:  t.Ptr(),
	})
	return b
}

func (b *ServiceBuilder) Call(crs string, arrive string, depart string) *ServiceBuilder {
	arrival := b.time(arrive)
	departure := b.time(depart)
	b.service.Points = append(b.service.Points, &timetable.CallingPoint{
		TimingPoint:          timetable.TimingPoint{Location: Station(crs)},
		WorkingArrivalTime:   arrival,
		PublicArrivalTime:    arrival.Ptr(),
		WorkingDepartureTime: departure,
		PublicDepartureTime:  departure.Ptr(),
	})
	return b
}

// Pass adds a timing point without a station
func (b *ServiceBuilder) Pass(tiploc string, pass string) *ServiceBuilder {
	b.service.Points = append(b.service.Points, &timetable.PassingPoint{
		TimingPoint: timetable.TimingPoint{Location: timetable.Location{Tiploc: tiploc}},
		PassTime:    b.time(pass),
	})
	return b
}

func (b *ServiceBuilder) Destination(crs string, arrive string) *ServiceBuilder {
	t := b.time(arrive)
	b.service.Points = append(b.service.Points, &timetable.DestinationPoint{
		TimingPoint:        timetable.TimingPoint{Location: Station(crs)},
		WorkingArrivalTime: t,
		PublicArrivalTime:  t.Ptr(),
	})
	return b
}

// Property sets the service property on the last point added
func (b *ServiceBuilder) Property(property *timetable.ServiceProperty) *ServiceBuilder {
	b.service.Points[len(b.service.Points)-1].Timing().ServiceProperty = property
	return b
}

func (b *ServiceBuilder) Build() *timetable.Service {
	return b.service
}

func Cancellation(uid string, from string, to string) *timetable.ServiceCancellation {
	return &timetable.ServiceCancellation{
		ServiceHeader: timetable.ServiceHeader{
			UID: uid,
			Period: timetable.Period{
				From:     Date(from),
				To:       Date(to),
				Weekdays: timetable.EveryDay,
			},
			ShortTermPlanning: timetable.Cancel,
		},
	}
}

// NewAssociation builds a passenger association at the station with the
// given CRS
func NewAssociation(
	category timetable.AssociationCategory,
	primary string,
	secondary string,
	crs string,
	day timetable.AssociationDay,
	from string,
	to string,
) *timetable.Association {
	return &timetable.Association{
		AssociationHeader: timetable.AssociationHeader{
			PrimaryUID:   primary,
			SecondaryUID: secondary,
			Location:     Tiploc(crs),
			Period: timetable.Period{
				From:     Date(from),
				To:       Date(to),
				Weekdays: timetable.EveryDay,
			},
			ShortTermPlanning: timetable.Permanent,
		},
		Category: category,
		Day:      day,
		Type:     timetable.AssociationPassenger,
	}
}
