package cif

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/railtimetable/pkg/timetable"
	"golang.org/x/exp/slices"
)

// openEnded is the end date used by records that run until further notice
const openEnded = "999999"

// parseYYMMDD reads a schedule or association date
func parseYYMMDD(value string) (timetable.Date, error) {
	if value == openEnded {
		return timetable.NewDate(2099, time.December, 31), nil
	}
	return parseDigits(value, 0, 2, 4)
}

// parseDDMMYY reads the header extract date
func parseDDMMYY(value string) (timetable.Date, error) {
	return parseDigits(value, 4, 2, 0)
}

func parseDigits(value string, yearAt int, monthAt int, dayAt int) (timetable.Date, error) {
	if len(value) != 6 {
		return timetable.Date{}, fmt.Errorf("invalid date %q", value)
	}

	year, err := strconv.Atoi(value[yearAt : yearAt+2])
	if err != nil {
		return timetable.Date{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	month, err := strconv.Atoi(value[monthAt : monthAt+2])
	if err != nil || month < 1 || month > 12 {
		return timetable.Date{}, fmt.Errorf("invalid date %q", value)
	}
	day, err := strconv.Atoi(value[dayAt : dayAt+2])
	if err != nil || day < 1 || day > 31 {
		return timetable.Date{}, fmt.Errorf("invalid date %q", value)
	}

	return timetable.NewDate(2000+year, time.Month(month), day), nil
}

func parsePeriod(from string, to string, days string) (timetable.Period, error) {
	fromDate, err := parseYYMMDD(from)
	if err != nil {
		return timetable.Period{}, err
	}
	toDate, err := parseYYMMDD(to)
	if err != nil {
		return timetable.Period{}, err
	}

	return timetable.Period{
		From:     fromDate,
		To:       toDate,
		Weekdays: timetable.ParseWeekdays(days),
	}, nil
}

// parseAllowance reads a two character allowance into half minutes. A
// trailing H adds a half minute.
func parseAllowance(value string) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	halfMinutes := 0
	if strings.HasSuffix(value, "H") {
		halfMinutes = 1
		value = strings.TrimSuffix(value, "H")
	}
	if value == "" {
		return halfMinutes
	}

	minutes, err := strconv.Atoi(value)
	if err != nil {
		return halfMinutes
	}
	return minutes*2 + halfMinutes
}

// splitLocation separates the seven character TIPLOC from its suffix
func splitLocation(value string) (string, string) {
	if len(value) < 8 {
		return strings.TrimSpace(value), ""
	}
	return strings.TrimSpace(value[0:7]), strings.TrimSpace(value[7:8])
}

func splitCharacters(value string) []string {
	var characters []string
	for _, character := range strings.TrimSpace(value) {
		if character != ' ' {
			characters = append(characters, string(character))
		}
	}
	return characters
}

func newServiceProperty(detail ServiceDetail, rsid string) *timetable.ServiceProperty {
	property := &timetable.ServiceProperty{
		TrainCategory:            detail.TrainCategory,
		Identity:                 detail.TrainIdentity,
		Headcode:                 detail.Headcode,
		PortionID:                detail.PortionID,
		PowerType:                detail.PowerType,
		TimingLoad:               detail.TimingLoad,
		OperatingCharacteristics: splitCharacters(detail.OperatingCharacteristics),
		FirstSeating:             detail.SeatingClass == "B",
		StandardSeating:          slices.Contains([]string{"", "B", "S"}, detail.SeatingClass),
		FirstSleepers:            slices.Contains([]string{"B", "F"}, detail.Sleepers),
		StandardSleepers:         slices.Contains([]string{"B", "S"}, detail.Sleepers),
		Reservation:              timetable.Reservation(detail.Reservations),
		Catering:                 splitCharacters(detail.CateringCode),
		Branding:                 detail.ServiceBranding,
		RSID:                     rsid,
	}

	if detail.Speed != "" {
		if speed, err := strconv.Atoi(detail.Speed); err == nil {
			property.SpeedMph = speed
		}
	}

	return property
}

// publicTime reads a public time column where 0000 means the train is not
// advertised there
func publicTime(value string, previous *timetable.Time) (*timetable.Time, error) {
	if value == "" || value == "0000" {
		return nil, nil
	}
	t, err := timetable.ParseHHMM(value, previous)
	if err != nil {
		return nil, err
	}
	return t.Ptr(), nil
}

type converter struct {
	locations map[string]timetable.Location
	unknown   []string
}

func (c *converter) location(value string) (timetable.Location, string) {
	tiploc, suffix := splitLocation(value)

	location, ok := c.locations[tiploc]
	if !ok {
		c.unknown = append(c.unknown, tiploc)
		location = timetable.Location{Tiploc: tiploc}
	}
	return location, suffix
}

func (c *converter) timing(value string, platform string, line string, path string, activity string, engineering string, pathing string, performance string) timetable.TimingPoint {
	location, suffix := c.location(value)

	return timetable.TimingPoint{
		Location:             location,
		LocationSuffix:       suffix,
		Platform:             platform,
		Line:                 line,
		Path:                 path,
		Activities:           timetable.ParseActivities(activity),
		EngineeringAllowance: parseAllowance(engineering),
		PathingAllowance:     parseAllowance(pathing),
		PerformanceAllowance: parseAllowance(performance),
	}
}

func (c *converter) service(trainDef *TrainDefinitionSet) (timetable.ServiceEntry, error) {
	basicSchedule := trainDef.BasicSchedule

	period, err := parsePeriod(basicSchedule.DateRunsFrom, basicSchedule.DateRunsTo, basicSchedule.DaysRun)
	if err != nil {
		return nil, err
	}

	header := timetable.ServiceHeader{
		UID:                basicSchedule.TrainUID,
		Period:             period,
		ExcludeBankHoliday: timetable.BankHoliday(basicSchedule.BankHolidayRunning),
		ShortTermPlanning:  timetable.ShortTermPlanning(basicSchedule.STPIndicator),
	}

	if header.ShortTermPlanning == timetable.Cancel {
		return &timetable.ServiceCancellation{ServiceHeader: header}, nil
	}

	service := &timetable.Service{
		ServiceHeader: header,
		Mode:          timetable.ModeFromTrainStatus(basicSchedule.TrainStatus),
		TOC:           trainDef.BasicScheduleExtraDetails.ATOCCode,
	}

	originLocation := trainDef.OriginLocation
	departure, err := timetable.ParseHHMM(originLocation.ScheduledDepartureTime, nil)
	if err != nil {
		return nil, fmt.Errorf("origin: %w", err)
	}
	publicDeparture, err := publicTime(originLocation.PublicDepartureTime, nil)
	if err != nil {
		return nil, fmt.Errorf("origin: %w", err)
	}

	origin := &timetable.OriginPoint{
		TimingPoint: c.timing(
			originLocation.Location, originLocation.Platform, originLocation.Line, "", originLocation.Activity,
			originLocation.EngineeringAllowance, originLocation.PathingAllowance, originLocation.PerformanceAllowance,
		),
		WorkingDepartureTime: departure,
		PublicDepartureTime:  publicDeparture,
	}
	origin.ServiceProperty = newServiceProperty(basicSchedule.ServiceDetail, trainDef.BasicScheduleExtraDetails.RetailServiceID)
	service.Points = append(service.Points, origin)

	last := departure
	for i, intermediateLocation := range trainDef.IntermediateLocations {
		point, err := c.intermediate(intermediateLocation, &last)
		if err != nil {
			return nil, fmt.Errorf("intermediate %d: %w", i, err)
		}
		if change, ok := trainDef.ChangesEnRoute[i]; ok {
			point.Timing().ServiceProperty = newServiceProperty(change.ServiceDetail, change.RetailServiceID)
		}
		service.Points = append(service.Points, point)
	}

	terminatingLocation := trainDef.TerminatingLocation
	arrival, err := timetable.ParseHHMM(terminatingLocation.ScheduledArrivalTime, &last)
	if err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}
	publicArrival, err := publicTime(terminatingLocation.PublicArrivalTime, &last)
	if err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}
	service.Points = append(service.Points, &timetable.DestinationPoint{
		TimingPoint: c.timing(
			terminatingLocation.Location, terminatingLocation.Platform, "", terminatingLocation.Path, terminatingLocation.Activity,
			"", "", "",
		),
		WorkingArrivalTime: arrival,
		PublicArrivalTime:  publicArrival,
	})

	return service, nil
}

// intermediate builds a passing or calling point and moves last on to the
// time the train leaves it
func (c *converter) intermediate(location *IntermediateLocation, last *timetable.Time) (timetable.Point, error) {
	timing := c.timing(
		location.Location, location.Platform, location.Line, location.Path, location.Activity,
		location.EngineeringAllowance, location.PathingAllowance, location.PerformanceAllowance,
	)

	if location.ScheduledPass != "" {
		pass, err := timetable.ParseHHMM(location.ScheduledPass, last)
		if err != nil {
			return nil, err
		}
		*last = pass
		return &timetable.PassingPoint{TimingPoint: timing, PassTime: pass}, nil
	}

	arrival, err := timetable.ParseHHMM(location.ScheduledArrivalTime, last)
	if err != nil {
		return nil, err
	}
	departure, err := timetable.ParseHHMM(location.ScheduledDepartureTime, last)
	if err != nil {
		return nil, err
	}
	publicArrival, err := publicTime(location.PublicArrivalTime, last)
	if err != nil {
		return nil, err
	}
	publicDeparture, err := publicTime(location.PublicDepartureTime, last)
	if err != nil {
		return nil, err
	}

	*last = departure
	return &timetable.CallingPoint{
		TimingPoint:          timing,
		WorkingArrivalTime:   arrival,
		PublicArrivalTime:    publicArrival,
		WorkingDepartureTime: departure,
		PublicDepartureTime:  publicDeparture,
	}, nil
}

func association(record Association) (timetable.AssociationEntry, error) {
	period, err := parsePeriod(record.AssocStartDate, record.AssocEndDate, record.AssocDays)
	if err != nil {
		return nil, err
	}

	header := timetable.AssociationHeader{
		PrimaryUID:        record.BaseUID,
		SecondaryUID:      record.AssocUID,
		PrimarySuffix:     record.BaseLocationSuffix,
		SecondarySuffix:   record.AssocLocationSuffix,
		Location:          record.AssocLocation,
		Period:            period,
		ShortTermPlanning: timetable.ShortTermPlanning(record.STPIndicator),
	}

	if header.ShortTermPlanning == timetable.Cancel {
		return &timetable.AssociationCancellation{AssociationHeader: header}, nil
	}

	return &timetable.Association{
		AssociationHeader: header,
		Category:          timetable.AssociationCategory(record.AssocCat),
		Day:               timetable.AssociationDay(record.AssocDateInd),
		Type:              timetable.AssociationType(record.AssociationType),
	}, nil
}

// Locations joins the TIPLOC inserts with the master station names. Station
// names come from the station file where a TIPLOC is listed there.
func (c *CommonInterfaceFormat) Locations() map[string]timetable.Location {
	locations := map[string]timetable.Location{}

	for _, tiploc := range c.Tiplocs {
		locations[tiploc.TIPLOCCode] = timetable.Location{
			Tiploc: tiploc.TIPLOCCode,
			CRS:    tiploc.CRSCode,
			Name:   tiploc.Description,
			Stanox: tiploc.Stanox,
		}
	}

	for _, station := range c.PhysicalStations {
		location, ok := locations[station.TIPLOCCode]
		if !ok {
			location = timetable.Location{Tiploc: station.TIPLOCCode}
		}
		if location.CRS == "" {
			location.CRS = station.CRSCode
		}
		location.Name = station.StationName
		locations[station.TIPLOCCode] = location
	}

	return locations
}

// GeneratedDate is the date the timetable was extracted
func (c *CommonInterfaceFormat) GeneratedDate() (timetable.Date, error) {
	return parseDDMMYY(c.Header.DateOfExtract)
}

// Convert turns the parsed records into timetable entries, keeping the file
// order. Records that cannot be read are logged and skipped.
func (c *CommonInterfaceFormat) Convert(trainsOnly bool) ([]timetable.ServiceEntry, []timetable.AssociationEntry) {
	converter := &converter{locations: c.Locations()}

	services := make([]timetable.ServiceEntry, 0, len(c.TrainDefinitionSets))
	for _, trainDef := range c.TrainDefinitionSets {
		if trainDef.BasicSchedule.TransactionType == "D" {
			log.Debug().Str("trainuid", trainDef.BasicSchedule.TrainUID).Msg("Skipping deleted schedule")
			continue
		}

		service, err := converter.service(trainDef)
		if err != nil {
			log.Error().
				Err(err).
				Str("trainuid", trainDef.BasicSchedule.TrainUID).
				Str("stp", trainDef.BasicSchedule.STPIndicator).
				Msg("Failed to convert schedule")
			continue
		}
		services = append(services, service)
	}

	if trainsOnly {
		services = slices.DeleteFunc(services, func(entry timetable.ServiceEntry) bool {
			service, ok := entry.(*timetable.Service)
			return ok && service.Mode != timetable.ModeTrain
		})
	}

	associations := make([]timetable.AssociationEntry, 0, len(c.Associations))
	for _, record := range c.Associations {
		if record.TransactionType == "D" {
			continue
		}

		entry, err := association(record)
		if err != nil {
			log.Error().
				Err(err).
				Str("base", record.BaseUID).
				Str("assoc", record.AssocUID).
				Msg("Failed to convert association")
			continue
		}
		associations = append(associations, entry)
	}

	unknown := slices.Clone(converter.unknown)
	slices.Sort(unknown)
	if unknown = slices.Compact(unknown); len(unknown) > 0 {
		log.Warn().Interface("tiplocs", unknown).Msg("Could not find Tiplocs")
	}

	return services, associations
}
