package timetable_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/railtimetable/pkg/timetable"
	tt "github.com/travigo/railtimetable/pkg/timetable/timetabletest"
)

func changingService() *timetable.Service {
	return tt.NewService("R10001", timetable.Permanent, "2024-03-01", "2024-03-31").
		Origin("BRD", "1000").Property(&timetable.ServiceProperty{Identity: "1A00", RSID: "GR100100"}).
		Call("MMM", "1030", "1035").Property(&timetable.ServiceProperty{Identity: "1A01", RSID: "GR100200"}).
		Destination("PPP", "1100").Build()
}

func TestServicePropertyAt(t *testing.T) {
	service := changingService()

	assert.Equal(t, "1A00", service.ServicePropertyAt(nil).Identity)

	arriving := timetable.NewTime(10, 30, false)
	assert.Equal(t, "1A00", service.ServicePropertyAt(&arriving).Identity)

	// the change applies from the arrival at MMM
	departing := timetable.NewTime(10, 35, false)
	assert.Equal(t, "1A01", service.ServicePropertyAt(&departing).Identity)

	destination := timetable.NewTime(11, 0, false)
	assert.Equal(t, "1A01", service.ServicePropertyAt(&destination).Identity)
}

func TestServicePropertyAtPassingPoint(t *testing.T) {
	service := tt.NewService("R20001", timetable.Permanent, "2024-03-01", "2024-03-31").
		Origin("BRD", "1000").Property(&timetable.ServiceProperty{Identity: "1A00"}).
		Pass(tt.Tiploc("JCT"), "1020").Property(&timetable.ServiceProperty{Identity: "1A02"}).
		Destination("PPP", "1100").Build()

	atPass := timetable.NewTime(10, 20, false)
	assert.Equal(t, "1A00", service.ServicePropertyAt(&atPass).Identity)

	afterPass := timetable.NewTime(10, 21, false)
	assert.Equal(t, "1A02", service.ServicePropertyAt(&afterPass).Identity)
}

func TestCallsCarryPropertyChange(t *testing.T) {
	dated := timetable.NewDatedService(changingService(), runningDate)

	departures, err := dated.Calls(timetable.WorkingDeparture, "MMM", nil, nil)
	require.NoError(t, err)
	require.Len(t, departures, 1)
	assert.Equal(t, "1A01", departures[0].ServiceProperty.Identity)
	assert.Equal(t, "GR100200", departures[0].ServiceProperty.RSID)

	arrivals, err := dated.Calls(timetable.PublicArrival, "MMM", nil, nil)
	require.NoError(t, err)
	require.Len(t, arrivals, 1)
	assert.Equal(t, "1A00", arrivals[0].ServiceProperty.Identity)
}

func TestHasRSID(t *testing.T) {
	service := changingService()

	assert.True(t, service.HasRSID("GR1001"))
	assert.True(t, service.HasRSID("GR1002"))
	assert.True(t, service.HasRSID("GR100200"))
	assert.False(t, service.HasRSID("GR100201"))
	assert.False(t, service.HasRSID("GR1003"))
	assert.False(t, service.HasRSID("GR10"))

	var missing *timetable.ServiceProperty
	assert.False(t, missing.HasRSID("GR1001"))
}
