package timetable

import (
	"fmt"
	"time"

	_ "time/tzdata"
)

// Location is a timing point. Stations carry a CRS code, other points only a
// TIPLOC.
type Location struct {
	Tiploc string `json:"tiploc" bson:"tiploc" groups:"basic"`
	CRS    string `json:"crs,omitempty" bson:"crscode,omitempty" groups:"basic"`
	Name   string `json:"name,omitempty" bson:"name,omitempty" groups:"basic"`
	Stanox string `json:"stanox,omitempty" bson:"stanox,omitempty" groups:"detailed"`
}

func (l Location) HasCRS() bool {
	return l.CRS != ""
}

func (l Location) String() string {
	if l.Name != "" {
		return l.Name
	}
	if l.CRS != "" {
		return l.CRS
	}
	return l.Tiploc
}

type ServiceProperty struct {
	TrainCategory            string      `json:"train_category" bson:"traincategory" groups:"detailed"`
	Identity                 string      `json:"identity" bson:"identity" groups:"basic"`
	Headcode                 string      `json:"headcode,omitempty" bson:"headcode,omitempty" groups:"detailed"`
	PortionID                string      `json:"portion_id,omitempty" bson:"portionid,omitempty" groups:"detailed"`
	PowerType                string      `json:"power_type,omitempty" bson:"powertype,omitempty" groups:"detailed"`
	TimingLoad               string      `json:"timing_load,omitempty" bson:"timingload,omitempty" groups:"detailed"`
	SpeedMph                 int         `json:"speed_mph,omitempty" bson:"speedmph,omitempty" groups:"detailed"`
	OperatingCharacteristics []string    `json:"operating_characteristics,omitempty" bson:"operatingcharacteristics,omitempty" groups:"detailed"`
	FirstSeating             bool        `json:"first_seating" bson:"firstseating" groups:"detailed"`
	StandardSeating          bool        `json:"standard_seating" bson:"standardseating" groups:"detailed"`
	FirstSleepers            bool        `json:"first_sleepers" bson:"firstsleepers" groups:"detailed"`
	StandardSleepers         bool        `json:"standard_sleepers" bson:"standardsleepers" groups:"detailed"`
	Reservation              Reservation `json:"reservation,omitempty" bson:"reservation,omitempty" groups:"detailed"`
	Catering                 []string    `json:"catering,omitempty" bson:"catering,omitempty" groups:"detailed"`
	Branding                 string      `json:"branding,omitempty" bson:"branding,omitempty" groups:"detailed"`
	RSID                     string      `json:"rsid,omitempty" bson:"rsid,omitempty" groups:"basic"`
}

// HasRSID matches either a full eight character retail service id or a six
// character one that covers every portion of the train
func (p *ServiceProperty) HasRSID(rsid string) bool {
	if p == nil || p.RSID == "" {
		return false
	}
	if len(rsid) == 6 {
		return len(p.RSID) >= 6 && p.RSID[0:6] == rsid
	}
	return p.RSID == rsid
}

var londonLocation = mustLoadLocation("Europe/London")

func mustLoadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("could not load time zone %s: %s", name, err))
	}
	return location
}

// London is the zone all timetable times are published in
func London() *time.Location {
	return londonLocation
}
