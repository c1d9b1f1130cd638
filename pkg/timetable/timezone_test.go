package timetable_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/travigo/railtimetable/pkg/timetable"
	tt "github.com/travigo/railtimetable/pkg/timetable/timetabletest"
)

func offset(location *time.Location, date timetable.Date) int {
	_, seconds := time.Date(date.Year, date.Month, date.Day, 12, 0, 0, 0, location).Zone()
	return seconds
}

func TestAbsoluteZone(t *testing.T) {
	winter := tt.Date("2024-03-12")
	summer := tt.Date("2024-07-01")

	assert.Equal(t, time.UTC, timetable.AbsoluteZone(winter, timetable.NewTime(10, 0, false)))
	assert.Equal(t, 3600, offset(timetable.AbsoluteZone(summer, timetable.NewTime(10, 0, false)), summer))
}

func TestAbsoluteZoneMissingHour(t *testing.T) {
	clockChange := tt.Date("2024-03-31")

	assert.Equal(t, time.UTC, timetable.AbsoluteZone(clockChange, timetable.NewTime(1, 30, false)))
	assert.Equal(t, 3600, offset(timetable.AbsoluteZone(clockChange, timetable.NewTime(2, 30, false)), clockChange))
}

func TestZoneAcrossClockChange(t *testing.T) {
	overnight := tt.NewService("N10001", timetable.Permanent, "2024-03-30", "2024-03-30").
		Origin("BRD", "2300").Call("MMM", "0030", "0035").Destination("PPP", "0230").Build()

	dated := timetable.NewDatedService(overnight, tt.Date("2024-03-30"))
	assert.Equal(t, time.UTC, dated.Zone())

	// Read against the origin's offset, so 02:30 is 03:30 on the wall clock
	arrival := dated.Timestamp(overnight.Destination().WorkingArrival())
	assert.WithinDuration(t, time.Date(2024, time.March, 31, 2, 30, 0, 0, time.UTC), arrival, 0)
	assert.Equal(t, 3, arrival.In(timetable.London()).Hour())
}

func TestLondonOvergroundClockChange(t *testing.T) {
	night := tt.NewService("L10001", timetable.New, "2024-10-27", "2024-10-27").
		Weekdays("0000001").TOC("LO").
		Origin("HHY", "0130").Destination("NWX", "0150").Build()

	dated := timetable.NewDatedService(night, tt.Date("2024-10-27"))
	assert.Equal(t, time.UTC, dated.Zone())

	daytime := tt.NewService("L10002", timetable.New, "2024-10-27", "2024-10-27").
		Weekdays("0000001").TOC("LO").
		Origin("HHY", "1130").Destination("NWX", "1150").Build()

	dated = timetable.NewDatedService(daytime, tt.Date("2024-10-27"))
	assert.Equal(t, time.UTC, dated.Zone())

	summer := tt.NewService("L10003", timetable.New, "2024-10-20", "2024-10-20").
		Weekdays("0000001").TOC("LO").
		Origin("HHY", "0130").Destination("NWX", "0150").Build()

	dated = timetable.NewDatedService(summer, tt.Date("2024-10-20"))
	assert.Equal(t, 3600, offset(dated.Zone(), tt.Date("2024-10-20")))
}
