package timetable

import (
	"errors"
	"fmt"
	"time"
)

var ErrNotRunningService = errors.New("dated service does not wrap a running service")

// DatedService is a schedule entry as it applies to one calendar date
type DatedService struct {
	Entry ServiceEntry
	Date  Date
}

func NewDatedService(entry ServiceEntry, date Date) *DatedService {
	return &DatedService{Entry: entry, Date: date}
}

func (d *DatedService) UID() string {
	return d.Entry.Header().UID
}

func (d *DatedService) Key() ServiceKey {
	return ServiceKey{UID: d.UID(), Date: d.Date}
}

func (d *DatedService) ID() string {
	return d.Key().String()
}

// Service returns the running service, or nil for a cancellation
func (d *DatedService) Service() *Service {
	service, _ := d.Entry.(*Service)
	return service
}

func (d *DatedService) IsRunning() bool {
	return d.Service() != nil
}

// Zone is the fixed UTC offset used for every time on this dated service
func (d *DatedService) Zone() *time.Location {
	service := d.Service()
	if service == nil || service.Origin() == nil {
		return londonLocation
	}

	departure := service.Origin().WorkingDeparture()
	if publishedInUTC(service, departure) {
		return time.UTC
	}

	return AbsoluteZone(d.Date, departure)
}

// Timestamp converts a time on this service to an absolute instant
func (d *DatedService) Timestamp(t Time) time.Time {
	return d.Date.At(t, d.Zone())
}

// Calls lists the points of this service matching the time type and
// optional station, with their absolute time inside [from, to). Either bound
// may be nil.
func (d *DatedService) Calls(timeType TimeType, crs string, from *time.Time, to *time.Time) ([]*ServiceCall, error) {
	service := d.Service()
	if service == nil {
		return nil, fmt.Errorf("%s: %w", d.ID(), ErrNotRunningService)
	}

	zone := d.Zone()
	var calls []*ServiceCall

	for _, point := range service.Points {
		if crs != "" && point.Timing().Location.CRS != crs {
			continue
		}

		t := PointTime(point, timeType)
		if t == nil {
			continue
		}

		timestamp := d.Date.At(*t, zone)
		if from != nil && timestamp.Before(*from) {
			continue
		}
		if to != nil && !timestamp.Before(*to) {
			continue
		}

		calls = append(calls, &ServiceCall{
			Timestamp:       timestamp,
			TimeType:        timeType,
			Time:            *t,
			UID:             service.UID,
			Date:            d.Date,
			Point:           point,
			Mode:            service.Mode,
			TOC:             service.TOC,
			STP:             service.ShortTermPlanning,
			ServiceProperty: service.ServicePropertyAt(t),
		})
	}

	return calls, nil
}

// ServiceKey identifies a dated service
type ServiceKey struct {
	UID  string
	Date Date
}

func (k ServiceKey) String() string {
	return fmt.Sprintf("%s_%s", k.UID, k.Date)
}
