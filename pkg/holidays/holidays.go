package holidays

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/travigo/railtimetable/pkg/timetable"
	resty "gopkg.in/resty.v1"
)

const DefaultURL = "https://www.gov.uk/bank-holidays.json"

const (
	EnglandAndWales = "england-and-wales"
	Scotland        = "scotland"
	NorthernIreland = "northern-ireland"
)

// Calendar holds the bank holidays of each UK division
type Calendar struct {
	mutex     sync.RWMutex
	divisions map[string]map[timetable.Date]string
}

func NewCalendar() *Calendar {
	return &Calendar{
		divisions: map[string]map[timetable.Date]string{},
	}
}

func (c *Calendar) Add(division string, date timetable.Date, title string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.divisions[division] == nil {
		c.divisions[division] = map[timetable.Date]string{}
	}
	c.divisions[division][date] = title
}

func (c *Calendar) IsHoliday(division string, date timetable.Date) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	_, ok := c.divisions[division][date]
	return ok
}

// IsExcluded answers whether a train flagged not to run on bank holidays is
// off on the given date. X trains follow England and Wales, G and E trains
// follow Scotland.
func (c *Calendar) IsExcluded(exclusion timetable.BankHoliday, date timetable.Date) bool {
	switch exclusion {
	case timetable.ExcludeBankHolidays:
		return c.IsHoliday(EnglandAndWales, date)
	case timetable.ExcludeGlasgowBankHolidays, timetable.ExcludeEdinburghBankHolidays:
		return c.IsHoliday(Scotland, date)
	default:
		return false
	}
}

type bankHolidayEvent struct {
	Title string `json:"title"`
	Date  string `json:"date"`
}

type bankHolidayDivision struct {
	Division string             `json:"division"`
	Events   []bankHolidayEvent `json:"events"`
}

// Parse reads the gov.uk bank holiday feed
func Parse(data []byte) (*Calendar, error) {
	var divisions map[string]bankHolidayDivision
	if err := json.Unmarshal(data, &divisions); err != nil {
		return nil, fmt.Errorf("could not decode bank holidays: %w", err)
	}

	calendar := NewCalendar()
	for key, division := range divisions {
		name := division.Division
		if name == "" {
			name = key
		}

		for _, event := range division.Events {
			date, err := timetable.ParseDate(event.Date)
			if err != nil {
				log.Debug().Err(err).Str("title", event.Title).Msg("Skipping bank holiday with bad date")
				continue
			}
			calendar.Add(name, date, event.Title)
		}
	}

	return calendar, nil
}

// Load downloads the bank holiday feed
func Load(ctx context.Context, url string) (*Calendar, error) {
	if url == "" {
		url = DefaultURL
	}

	resp, err := resty.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("could not download bank holidays: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("could not download bank holidays: %s", resp.Status())
	}

	calendar, err := Parse(resp.Body())
	if err != nil {
		return nil, err
	}

	log.Info().Str("url", url).Msg("Loaded bank holidays")
	return calendar, nil
}
