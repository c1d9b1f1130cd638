package memory

import (
	"context"
	"sync"
	"time"

	"github.com/travigo/railtimetable/pkg/repository"
	"github.com/travigo/railtimetable/pkg/timetable"
	"golang.org/x/exp/slices"
)

// Store keeps the whole timetable in memory. Entries are kept in the order
// they were inserted.
type Store struct {
	Holidays timetable.HolidayCalendar

	mutex         sync.RWMutex
	services      map[string][]timetable.ServiceEntry
	associations  map[string][]timetable.AssociationEntry
	generatedDate timetable.Date
}

func NewStore(holidays timetable.HolidayCalendar) *Store {
	return &Store{
		Holidays:     holidays,
		services:     map[string][]timetable.ServiceEntry{},
		associations: map[string][]timetable.AssociationEntry{},
	}
}

func (s *Store) InsertServices(_ context.Context, services []timetable.ServiceEntry) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, service := range services {
		uid := service.Header().UID
		s.services[uid] = append(s.services[uid], service)
	}
	return nil
}

func (s *Store) InsertAssociations(_ context.Context, associations []timetable.AssociationEntry) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, association := range associations {
		header := association.Header()
		s.associations[header.PrimaryUID] = append(s.associations[header.PrimaryUID], association)
		if header.SecondaryUID != header.PrimaryUID {
			s.associations[header.SecondaryUID] = append(s.associations[header.SecondaryUID], association)
		}
	}
	return nil
}

func (s *Store) GeneratedDate(_ context.Context) (timetable.Date, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.generatedDate, nil
}

func (s *Store) SetGeneratedDate(_ context.Context, date timetable.Date) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.generatedDate = date
	return nil
}

func (s *Store) Service(_ context.Context, uid string, date timetable.Date, permanentOnly bool) (*timetable.DatedService, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.service(uid, date, permanentOnly), nil
}

func (s *Store) service(uid string, date timetable.Date, permanentOnly bool) *timetable.DatedService {
	var candidates []timetable.ServiceEntry
	for _, entry := range s.services[uid] {
		if entry.Header().RunsOnDate(date, s.Holidays) {
			candidates = append(candidates, entry)
		}
	}

	winner, found := timetable.SelectOverlay(candidates, permanentOnly)
	if !found {
		return nil
	}
	return timetable.NewDatedService(winner, date)
}

func (s *Store) Services(_ context.Context, keys []timetable.ServiceKey, permanentOnly bool) (map[timetable.ServiceKey]*timetable.DatedService, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := map[timetable.ServiceKey]*timetable.DatedService{}
	for _, key := range keys {
		if _, done := result[key]; done {
			continue
		}
		if dated := s.service(key.UID, key.Date, permanentOnly); dated != nil {
			result[key] = dated
		}
	}
	return result, nil
}

func (s *Store) AssociationEntries(_ context.Context, uid string, date timetable.Date) ([]timetable.AssociationEntry, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.associationEntries(uid, date), nil
}

func (s *Store) associationEntries(uid string, date timetable.Date) []timetable.AssociationEntry {
	var result []timetable.AssociationEntry
	for _, entry := range s.associations[uid] {
		if repository.AssociationWindow(entry, date) {
			result = append(result, entry)
		}
	}
	return result
}

func (s *Store) AssociationEntriesForServices(_ context.Context, services []*timetable.DatedService) (map[timetable.ServiceKey][]timetable.AssociationEntry, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := map[timetable.ServiceKey][]timetable.AssociationEntry{}
	for _, dated := range services {
		result[dated.Key()] = s.associationEntries(dated.UID(), dated.Date)
	}
	return result, nil
}

func (s *Store) CandidateIdentifiers(_ context.Context, crs string, timeType timetable.TimeType, from time.Time, to time.Time) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	dates := repository.CandidateDates(from, to)
	first, last := dates[0], dates[len(dates)-1]

	var uids []string
	for uid, entries := range s.services {
		for _, entry := range entries {
			service, ok := entry.(*timetable.Service)
			if !ok || !service.Period.Overlaps(first, last) {
				continue
			}
			if callsAt(service, crs, timeType) {
				uids = append(uids, uid)
				break
			}
		}
	}

	slices.Sort(uids)
	return uids, nil
}

func callsAt(service *timetable.Service, crs string, timeType timetable.TimeType) bool {
	for _, point := range service.Points {
		if point.Timing().Location.CRS == crs && timetable.PointTime(point, timeType) != nil {
			return true
		}
	}
	return false
}

func (s *Store) ServicesByRSID(_ context.Context, rsid string, date timetable.Date, permanentOnly bool) ([]*timetable.DatedService, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	uids := make([]string, 0, len(s.services))
	for uid := range s.services {
		uids = append(uids, uid)
	}
	slices.Sort(uids)

	var result []*timetable.DatedService
	for _, uid := range uids {
		dated := s.service(uid, date, permanentOnly)
		if dated == nil {
			continue
		}
		if service := dated.Service(); service != nil && service.HasRSID(rsid) {
			result = append(result, dated)
		}
	}
	return result, nil
}
