package timetable

import "strings"

type ShortTermPlanning string

const (
	Permanent ShortTermPlanning = "P"
	Overlay   ShortTermPlanning = "O"
	New       ShortTermPlanning = "N"
	Cancel    ShortTermPlanning = "C"
)

// rank orders the short term variants when two of them compete on the same day
func (s ShortTermPlanning) rank() int {
	switch s {
	case Cancel:
		return 0
	case New:
		return 1
	case Overlay:
		return 2
	default:
		return 3
	}
}

type Mode string

const (
	ModeTrain Mode = "train"
	ModeBus   Mode = "bus"
	ModeShip  Mode = "ship"
)

// ModeFromTrainStatus maps the CIF train status column
func ModeFromTrainStatus(status string) Mode {
	switch strings.TrimSpace(status) {
	case "B", "5":
		return ModeBus
	case "S", "4":
		return ModeShip
	default:
		return ModeTrain
	}
}

type TimeType string

const (
	WorkingArrival   TimeType = "working_arrival"
	PublicArrival    TimeType = "public_arrival"
	Pass             TimeType = "pass"
	PublicDeparture  TimeType = "public_departure"
	WorkingDeparture TimeType = "working_departure"
)

func (t TimeType) IsArrival() bool {
	return t == WorkingArrival || t == PublicArrival
}

func (t TimeType) IsDeparture() bool {
	return t == WorkingDeparture || t == PublicDeparture
}

// precedingType is used to list what a train did before a call
func (t TimeType) precedingType() TimeType {
	switch t {
	case WorkingArrival:
		return WorkingDeparture
	case PublicArrival:
		return PublicDeparture
	default:
		return t
	}
}

// subsequentType is used to list what a train will do after a call
func (t TimeType) subsequentType() TimeType {
	switch t {
	case WorkingDeparture:
		return WorkingArrival
	case PublicDeparture:
		return PublicArrival
	default:
		return t
	}
}

func ParseTimeType(value string) (TimeType, bool) {
	switch tt := TimeType(value); tt {
	case WorkingArrival, PublicArrival, Pass, PublicDeparture, WorkingDeparture:
		return tt, true
	}
	return "", false
}

type Activity string

const (
	ActivityStopsOrShuntsForOther Activity = "A"
	ActivityStopsForBanking       Activity = "BL"
	ActivityStopsToSetDown        Activity = "D"
	ActivityStopsToTakeUp         Activity = "U"
	ActivityRequestStop           Activity = "R"
	ActivityUnadvertised          Activity = "N"
	ActivityStopsToTakeUpSetDown  Activity = "T"
	ActivityTrainBegins           Activity = "TB"
	ActivityTrainFinishes         Activity = "TF"
	ActivityDetachVehicles        Activity = "-D"
	ActivityAttachVehicles        Activity = "-U"
	ActivityAttachDetachVehicles  Activity = "-T"
	ActivityOperationalStop       Activity = "OP"
)

// ParseActivities splits the twelve character CIF activity column into its
// two character codes
func ParseActivities(column string) []Activity {
	var activities []Activity
	for i := 0; i < len(column); i += 2 {
		end := i + 2
		if end > len(column) {
			end = len(column)
		}
		code := strings.TrimSpace(column[i:end])
		if code != "" {
			activities = append(activities, Activity(code))
		}
	}
	return activities
}

type BankHoliday string

const (
	RunsOnBankHolidays           BankHoliday = ""
	ExcludeBankHolidays          BankHoliday = "X"
	ExcludeGlasgowBankHolidays   BankHoliday = "G"
	ExcludeEdinburghBankHolidays BankHoliday = "E"
)

type AssociationCategory string

const (
	Join   AssociationCategory = "JJ"
	Divide AssociationCategory = "VV"
	Next   AssociationCategory = "NP"
)

// AssociationDay is the secondary's date relative to the primary's
type AssociationDay string

const (
	Yesterday AssociationDay = "P"
	Today     AssociationDay = "S"
	Tomorrow  AssociationDay = "N"
)

// Offset is the number of days the secondary runs after the primary
func (d AssociationDay) Offset() int {
	switch d {
	case Yesterday:
		return -1
	case Tomorrow:
		return 1
	default:
		return 0
	}
}

type AssociationType string

const (
	AssociationPassenger AssociationType = "P"
	AssociationOperating AssociationType = "O"
)

type Reservation string

const (
	ReservationNone        Reservation = ""
	ReservationBicycles    Reservation = "E"
	ReservationPossible    Reservation = "S"
	ReservationRecommended Reservation = "R"
	ReservationCompulsory  Reservation = "A"
)
