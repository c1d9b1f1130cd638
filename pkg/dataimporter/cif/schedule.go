package cif

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
)

type TrainDefinitionSet struct {
	BasicSchedule             BasicSchedule
	BasicScheduleExtraDetails BasicScheduleExtraDetails
	OriginLocation            OriginLocation
	IntermediateLocations     []*IntermediateLocation
	TerminatingLocation       TerminatingLocation

	// ChangesEnRoute is keyed by the index of the intermediate location the
	// change applies from
	ChangesEnRoute map[int]*ChangesEnRoute
}

// ServiceDetail holds the train properties shared by BS and CR records
type ServiceDetail struct {
	TrainCategory            string
	TrainIdentity            string
	Headcode                 string
	CourseIndicator          string
	TrainServiceCode         string
	PortionID                string
	PowerType                string
	TimingLoad               string
	Speed                    string
	OperatingCharacteristics string
	SeatingClass             string
	Sleepers                 string
	Reservations             string
	ConnectionIndicator      string
	CateringCode             string
	ServiceBranding          string
}

type BasicSchedule struct {
	TransactionType    string
	TrainUID           string
	DateRunsFrom       string
	DateRunsTo         string
	DaysRun            string
	BankHolidayRunning string
	TrainStatus        string
	ServiceDetail
	STPIndicator string
}

type BasicScheduleExtraDetails struct {
	TractionClass           string
	UICCode                 string
	ATOCCode                string
	ApplicableTimetableCode string
	RetailServiceID         string
}

type OriginLocation struct {
	Location               string
	ScheduledDepartureTime string
	PublicDepartureTime    string
	Platform               string
	Line                   string
	EngineeringAllowance   string
	PathingAllowance       string
	Activity               string
	PerformanceAllowance   string
}

type IntermediateLocation struct {
	Location               string
	ScheduledArrivalTime   string
	ScheduledDepartureTime string
	ScheduledPass          string
	PublicArrivalTime      string
	PublicDepartureTime    string
	Platform               string
	Line                   string
	Path                   string
	Activity               string
	EngineeringAllowance   string
	PathingAllowance       string
	PerformanceAllowance   string
}

type ChangesEnRoute struct {
	Location string
	ServiceDetail
	TractionClass   string
	UICCode         string
	RetailServiceID string
}

type TerminatingLocation struct {
	Location             string
	ScheduledArrivalTime string
	PublicArrivalTime    string
	Platform             string
	Path                 string
	Activity             string
}

type Association struct {
	TransactionType     string
	BaseUID             string
	AssocUID            string
	AssocStartDate      string
	AssocEndDate        string
	AssocDays           string
	AssocCat            string
	AssocDateInd        string
	AssocLocation       string
	BaseLocationSuffix  string
	AssocLocationSuffix string
	DiagramType         string
	AssociationType     string
	STPIndicator        string
}

// TiplocInsert is a TI record describing a timing point
type TiplocInsert struct {
	TIPLOCCode  string
	NALCO       string
	Description string
	Stanox      string
	CRSCode     string
	CAPRIName   string
}

func parseServiceDetail(r record, offset int) ServiceDetail {
	return ServiceDetail{
		TrainCategory:            r.field(offset, offset+2),
		TrainIdentity:            r.field(offset+2, offset+6),
		Headcode:                 r.field(offset+6, offset+10),
		CourseIndicator:          r.field(offset+10, offset+11),
		TrainServiceCode:         r.field(offset+11, offset+19),
		PortionID:                r.field(offset+19, offset+20),
		PowerType:                r.field(offset+20, offset+23),
		TimingLoad:               r.field(offset+23, offset+27),
		Speed:                    r.field(offset+27, offset+30),
		OperatingCharacteristics: r.field(offset+30, offset+36),
		SeatingClass:             r.field(offset+36, offset+37),
		Sleepers:                 r.field(offset+37, offset+38),
		Reservations:             r.field(offset+38, offset+39),
		ConnectionIndicator:      r.field(offset+39, offset+40),
		CateringCode:             r.field(offset+40, offset+44),
		ServiceBranding:          r.field(offset+44, offset+48),
	}
}

// ParseMCA reads the records of a full or update timetable file
func (c *CommonInterfaceFormat) ParseMCA(reader io.Reader) error {
	var currentTrainDef *TrainDefinitionSet
	var pendingChange *ChangesEnRoute

	lineNumber := 0
	scanner := newScanner(reader)
	for scanner.Scan() {
		lineNumber++
		if len(scanner.Text()) < 2 {
			continue
		}
		line := newRecord(scanner.Text())

		recordIdentity := line.raw(0, 2)

		if currentTrainDef == nil {
			switch recordIdentity {
			case "BX", "LO", "LI", "CR", "LT":
				log.Debug().Int("line", lineNumber).Str("record", recordIdentity).Msg("Skipping record outside of a schedule")
				continue
			}
		}

		switch recordIdentity {
		case "HD":
			c.Header = Header{
				MainframeIdentity: line.field(2, 22),
				DateOfExtract:     line.field(22, 28),
				TimeOfExtract:     line.field(28, 32),
				CurrentFileRef:    line.field(32, 39),
				LastFileRef:       line.field(39, 46),
				UpdateIndicator:   line.field(46, 47),
				UserStartDate:     line.field(48, 54),
				UserEndDate:       line.field(54, 60),
			}
		case "TI":
			c.Tiplocs = append(c.Tiplocs, TiplocInsert{
				TIPLOCCode:  line.field(2, 9),
				NALCO:       line.field(11, 17),
				Description: line.field(18, 44),
				Stanox:      line.field(44, 49),
				CRSCode:     line.field(53, 56),
				CAPRIName:   line.field(56, 72),
			})
		case "AA":
			c.Associations = append(c.Associations, Association{
				TransactionType:     line.field(2, 3),
				BaseUID:             line.field(3, 9),
				AssocUID:            line.field(9, 15),
				AssocStartDate:      line.field(15, 21),
				AssocEndDate:        line.field(21, 27),
				AssocDays:           line.field(27, 34),
				AssocCat:            line.field(34, 36),
				AssocDateInd:        line.field(36, 37),
				AssocLocation:       line.field(37, 44),
				BaseLocationSuffix:  line.field(44, 45),
				AssocLocationSuffix: line.field(45, 46),
				DiagramType:         line.field(46, 47),
				AssociationType:     line.field(47, 48),
				STPIndicator:        line.field(79, 80),
			})
		case "BS":
			if currentTrainDef != nil {
				return fmt.Errorf("line %d: schedule %s has no terminating location", lineNumber, currentTrainDef.BasicSchedule.TrainUID)
			}

			currentTrainDef = &TrainDefinitionSet{
				BasicSchedule: BasicSchedule{
					TransactionType:    line.field(2, 3),
					TrainUID:           line.field(3, 9),
					DateRunsFrom:       line.field(9, 15),
					DateRunsTo:         line.field(15, 21),
					DaysRun:            line.field(21, 28),
					BankHolidayRunning: line.field(28, 29),
					TrainStatus:        line.field(29, 30),
					ServiceDetail:      parseServiceDetail(line, 30),
					STPIndicator:       line.field(79, 80),
				},
				ChangesEnRoute: map[int]*ChangesEnRoute{},
			}
			pendingChange = nil

			// Cancellations carry no locations
			if currentTrainDef.BasicSchedule.STPIndicator == "C" || currentTrainDef.BasicSchedule.TransactionType == "D" {
				c.TrainDefinitionSets = append(c.TrainDefinitionSets, currentTrainDef)
				currentTrainDef = nil
			}
		case "BX":
			currentTrainDef.BasicScheduleExtraDetails = BasicScheduleExtraDetails{
				TractionClass:           line.field(2, 6),
				UICCode:                 line.field(6, 11),
				ATOCCode:                line.field(11, 13),
				ApplicableTimetableCode: line.field(13, 14),
				RetailServiceID:         line.field(14, 22),
			}
		case "LO":
			currentTrainDef.OriginLocation = OriginLocation{
				Location:               line.raw(2, 10),
				ScheduledDepartureTime: line.field(10, 15),
				PublicDepartureTime:    line.field(15, 19),
				Platform:               line.field(19, 22),
				Line:                   line.field(22, 25),
				EngineeringAllowance:   line.field(25, 27),
				PathingAllowance:       line.field(27, 29),
				Activity:               line.raw(29, 41),
				PerformanceAllowance:   line.field(41, 43),
			}
		case "CR":
			pendingChange = &ChangesEnRoute{
				Location:        line.raw(2, 10),
				ServiceDetail:   parseServiceDetail(line, 10),
				TractionClass:   line.field(58, 62),
				UICCode:         line.field(62, 67),
				RetailServiceID: line.field(67, 75),
			}
		case "LI":
			intermediateLocation := &IntermediateLocation{
				Location:               line.raw(2, 10),
				ScheduledArrivalTime:   line.field(10, 15),
				ScheduledDepartureTime: line.field(15, 20),
				ScheduledPass:          line.field(20, 25),
				PublicArrivalTime:      line.field(25, 29),
				PublicDepartureTime:    line.field(29, 33),
				Platform:               line.field(33, 36),
				Line:                   line.field(36, 39),
				Path:                   line.field(39, 42),
				Activity:               line.raw(42, 54),
				EngineeringAllowance:   line.field(54, 56),
				PathingAllowance:       line.field(56, 58),
				PerformanceAllowance:   line.field(58, 60),
			}

			if pendingChange != nil {
				currentTrainDef.ChangesEnRoute[len(currentTrainDef.IntermediateLocations)] = pendingChange
				pendingChange = nil
			}
			currentTrainDef.IntermediateLocations = append(currentTrainDef.IntermediateLocations, intermediateLocation)
		case "LT":
			currentTrainDef.TerminatingLocation = TerminatingLocation{
				Location:             line.raw(2, 10),
				ScheduledArrivalTime: line.field(10, 15),
				PublicArrivalTime:    line.field(15, 19),
				Platform:             line.field(19, 22),
				Path:                 line.field(22, 25),
				Activity:             line.raw(25, 37),
			}

			c.TrainDefinitionSets = append(c.TrainDefinitionSets, currentTrainDef)
			currentTrainDef = nil
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}
	if currentTrainDef != nil {
		return fmt.Errorf("schedule %s has no terminating location", currentTrainDef.BasicSchedule.TrainUID)
	}
	return nil
}
