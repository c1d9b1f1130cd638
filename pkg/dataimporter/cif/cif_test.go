package cif

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/railtimetable/pkg/repository/memory"
	"github.com/travigo/railtimetable/pkg/timetable"
)

// cifRecord lays out fields at their column offsets on a blank record
func cifRecord(identity string, fields map[int]string) string {
	line := []byte(strings.Repeat(" ", recordLength))
	copy(line, identity)
	for at, value := range fields {
		copy(line[at:], value)
	}
	return string(line)
}

func sampleTimetable() string {
	lines := []string{
		cifRecord("HD", map[int]string{2: "TPS.UDFROC1.PD240311", 22: "110324", 28: "2142", 46: "F", 47: "A"}),
		cifRecord("TI", map[int]string{2: "KNGX", 18: "LONDON KINGS CROSS", 44: "87701", 53: "KGX"}),
		cifRecord("TI", map[int]string{2: "HTCHNJN", 18: "HITCHIN NORTH JN", 44: "87801"}),
		cifRecord("TI", map[int]string{2: "PBRO", 18: "PETERBOROUGH", 44: "88501", 53: "PBO"}),
		cifRecord("TI", map[int]string{2: "YORK", 18: "YORK", 44: "16101", 53: "YRK"}),
		cifRecord("AA", map[int]string{2: "N", 3: "C12345", 9: "C54321", 15: "240311", 21: "241208", 27: "1111100", 34: "VV", 36: "S", 37: "PBRO", 47: "P", 79: "P"}),

		cifRecord("BS", map[int]string{
			2: "N", 3: "C12345", 9: "240311", 15: "241208", 21: "1111100", 29: "P",
			30: "XX", 32: "1S01", 41: "22209000", 50: "EMU", 53: "800", 57: "125", 60: "D",
			66: "B", 68: "S", 70: "RM", 79: "P",
		}),
		cifRecord("BX", map[int]string{11: "GR", 13: "Y", 14: "GR123400"}),
		cifRecord("LO", map[int]string{2: "KNGX", 10: "1000H", 15: "1000", 19: "1", 22: "FL", 29: "TB"}),
		cifRecord("LI", map[int]string{2: "HTCHNJN", 20: "1020", 25: "0000", 29: "0000", 54: "1H"}),
		cifRecord("CR", map[int]string{2: "PBRO", 10: "XX", 12: "1S01", 37: "100", 67: "GR123401"}),
		cifRecord("LI", map[int]string{2: "PBRO", 10: "1045", 15: "1047H", 25: "1045", 29: "1047", 33: "2", 42: "T"}),
		cifRecord("LT", map[int]string{2: "YORK", 10: "1230", 15: "1231", 19: "5", 25: "TF"}),

		cifRecord("BS", map[int]string{2: "N", 3: "C12345", 9: "240325", 15: "240325", 21: "1000000", 79: "C"}),

		cifRecord("BS", map[int]string{2: "N", 3: "B99999", 9: "240311", 15: "240311", 21: "1000000", 29: "B", 30: "BR", 32: "0B00", 79: "P"}),
		cifRecord("BX", map[int]string{11: "GR"}),
		cifRecord("LO", map[int]string{2: "KNGX", 10: "1100", 15: "1100", 29: "TB"}),
		cifRecord("LT", map[int]string{2: "PBRO", 10: "1200", 15: "1200", 25: "TF"}),

		cifRecord("BS", map[int]string{2: "N", 3: "D00001", 9: "240311", 15: "240316", 21: "1111110", 29: "P", 30: "OO", 32: "1P99", 79: "N"}),
		cifRecord("BX", map[int]string{11: "GR"}),
		cifRecord("LO", map[int]string{2: "KNGX", 10: "2350", 15: "2350", 29: "TB"}),
		cifRecord("LT", map[int]string{2: "PBRO", 10: "0030", 15: "0030", 25: "TF"}),

		"ZZ",
	}
	return strings.Join(lines, "\n") + "\n"
}

func parseSample(t *testing.T) *CommonInterfaceFormat {
	bundle := &CommonInterfaceFormat{}
	require.NoError(t, bundle.ParseMCA(strings.NewReader(sampleTimetable())))
	return bundle
}

func TestParseMCA(t *testing.T) {
	bundle := parseSample(t)

	assert.Equal(t, "110324", bundle.Header.DateOfExtract)
	assert.Len(t, bundle.Tiplocs, 4)
	assert.Len(t, bundle.Associations, 1)
	require.Len(t, bundle.TrainDefinitionSets, 4)

	trainDef := bundle.TrainDefinitionSets[0]
	assert.Equal(t, "C12345", trainDef.BasicSchedule.TrainUID)
	assert.Equal(t, "1S01", trainDef.BasicSchedule.TrainIdentity)
	assert.Equal(t, "GR", trainDef.BasicScheduleExtraDetails.ATOCCode)
	assert.Equal(t, "GR123400", trainDef.BasicScheduleExtraDetails.RetailServiceID)
	assert.Len(t, trainDef.IntermediateLocations, 2)
	assert.Equal(t, "YORK", strings.TrimSpace(trainDef.TerminatingLocation.Location))

	require.Contains(t, trainDef.ChangesEnRoute, 1)
	assert.Equal(t, "GR123401", trainDef.ChangesEnRoute[1].RetailServiceID)

	assert.Equal(t, "C", bundle.TrainDefinitionSets[1].BasicSchedule.STPIndicator)
	assert.Empty(t, bundle.TrainDefinitionSets[1].IntermediateLocations)
}

func TestParseMCAMissingTerminatingLocation(t *testing.T) {
	data := strings.Join([]string{
		cifRecord("BS", map[int]string{2: "N", 3: "C12345", 9: "240311", 15: "241208", 21: "1111100", 79: "P"}),
		cifRecord("LO", map[int]string{2: "KNGX", 10: "1000", 15: "1000"}),
	}, "\n")

	bundle := &CommonInterfaceFormat{}
	assert.Error(t, bundle.ParseMCA(strings.NewReader(data)))
}

func TestParseMSN(t *testing.T) {
	data := strings.Join([]string{
		"A                             FILE-SPEC=05 1.00 12/03/24 18.02.25   193",
		cifRecord("A", map[int]string{5: "LONDON KINGS CROSS", 35: "3", 36: "KNGX", 43: "KGX", 49: "KGX", 52: "15303", 58: "61830", 63: "15"}),
		cifRecord("L", map[int]string{5: "LONDON KINGS CROSS", 36: "KINGS CROSS"}),
	}, "\n")

	bundle := &CommonInterfaceFormat{}
	require.NoError(t, bundle.ParseMSN(strings.NewReader(data)))

	require.Len(t, bundle.PhysicalStations, 1)
	assert.Equal(t, "KNGX", bundle.PhysicalStations[0].TIPLOCCode)
	assert.Equal(t, "KGX", bundle.PhysicalStations[0].CRSCode)
	assert.Equal(t, "15", bundle.PhysicalStations[0].MinimumChangeTime)

	require.Len(t, bundle.StationAliases, 1)
	assert.Equal(t, "KINGS CROSS", bundle.StationAliases[0].StationAlias)

	bundle.Tiplocs = []TiplocInsert{{TIPLOCCode: "KNGX", Description: "LONDON KINGS X", CRSCode: "KGX", Stanox: "87701"}}
	locations := bundle.Locations()
	assert.Equal(t, timetable.Location{Tiploc: "KNGX", CRS: "KGX", Name: "LONDON KINGS CROSS", Stanox: "87701"}, locations["KNGX"])
}

func TestConvert(t *testing.T) {
	bundle := parseSample(t)

	services, associations := bundle.Convert(false)
	require.Len(t, services, 4)
	require.Len(t, associations, 1)

	service, ok := services[0].(*timetable.Service)
	require.True(t, ok)
	assert.Equal(t, "C12345", service.UID)
	assert.Equal(t, timetable.Permanent, service.ShortTermPlanning)
	assert.Equal(t, timetable.NewDate(2024, time.March, 11), service.Period.From)
	assert.Equal(t, timetable.NewDate(2024, time.December, 8), service.Period.To)
	assert.True(t, service.Period.Weekdays[time.Monday])
	assert.False(t, service.Period.Weekdays[time.Saturday])
	assert.Equal(t, "GR", service.TOC)
	assert.Equal(t, timetable.ModeTrain, service.Mode)
	require.Len(t, service.Points, 4)

	origin := service.Origin()
	require.NotNil(t, origin)
	assert.Equal(t, timetable.Location{Tiploc: "KNGX", CRS: "KGX", Name: "LONDON KINGS CROSS", Stanox: "87701"}, origin.Location)
	assert.Equal(t, timetable.NewTime(10, 0, true), origin.WorkingDepartureTime)
	assert.Equal(t, timetable.NewTime(10, 0, false).Ptr(), origin.PublicDepartureTime)
	assert.Equal(t, "1", origin.Platform)
	assert.Equal(t, "FL", origin.Line)
	assert.Equal(t, []timetable.Activity{timetable.ActivityTrainBegins}, origin.Activities)

	property := origin.ServiceProperty
	require.NotNil(t, property)
	assert.Equal(t, "1S01", property.Identity)
	assert.Equal(t, "EMU", property.PowerType)
	assert.Equal(t, 125, property.SpeedMph)
	assert.Equal(t, []string{"D"}, property.OperatingCharacteristics)
	assert.True(t, property.FirstSeating)
	assert.True(t, property.StandardSeating)
	assert.False(t, property.FirstSleepers)
	assert.Equal(t, timetable.ReservationPossible, property.Reservation)
	assert.Equal(t, []string{"R", "M"}, property.Catering)
	assert.Equal(t, "GR123400", property.RSID)

	passing, ok := service.Points[1].(*timetable.PassingPoint)
	require.True(t, ok)
	assert.Equal(t, timetable.NewTime(10, 20, false), passing.PassTime)
	assert.False(t, passing.Location.HasCRS())
	assert.Equal(t, 3, passing.EngineeringAllowance)

	calling, ok := service.Points[2].(*timetable.CallingPoint)
	require.True(t, ok)
	assert.Equal(t, "PBO", calling.Location.CRS)
	assert.Equal(t, timetable.NewTime(10, 45, false), calling.WorkingArrivalTime)
	assert.Equal(t, timetable.NewTime(10, 47, true), calling.WorkingDepartureTime)
	assert.Equal(t, timetable.NewTime(10, 47, false).Ptr(), calling.PublicDepartureTime)
	assert.Equal(t, "2", calling.Platform)
	require.NotNil(t, calling.ServiceProperty)
	assert.Equal(t, "GR123401", calling.ServiceProperty.RSID)
	assert.Equal(t, 100, calling.ServiceProperty.SpeedMph)

	destination := service.Destination()
	require.NotNil(t, destination)
	assert.Equal(t, "YRK", destination.Location.CRS)
	assert.Equal(t, timetable.NewTime(12, 30, false), destination.WorkingArrivalTime)
	assert.Equal(t, timetable.NewTime(12, 31, false).Ptr(), destination.PublicArrivalTime)
	assert.Equal(t, []timetable.Activity{timetable.ActivityTrainFinishes}, destination.Activities)

	cancellation, ok := services[1].(*timetable.ServiceCancellation)
	require.True(t, ok)
	assert.Equal(t, timetable.Cancel, cancellation.ShortTermPlanning)

	bus, ok := services[2].(*timetable.Service)
	require.True(t, ok)
	assert.Equal(t, timetable.ModeBus, bus.Mode)

	overnight, ok := services[3].(*timetable.Service)
	require.True(t, ok)
	assert.Equal(t, timetable.New, overnight.ShortTermPlanning)
	assert.Equal(t, timetable.NewTime(24, 30, false), overnight.Destination().WorkingArrivalTime)

	association, ok := associations[0].(*timetable.Association)
	require.True(t, ok)
	assert.Equal(t, "C12345", association.PrimaryUID)
	assert.Equal(t, "C54321", association.SecondaryUID)
	assert.Equal(t, "PBRO", association.Location)
	assert.Equal(t, timetable.Divide, association.Category)
	assert.Equal(t, timetable.Today, association.Day)
	assert.Equal(t, timetable.AssociationPassenger, association.Type)

	trains, _ := bundle.Convert(true)
	assert.Len(t, trains, 3)
}

func TestParseAllowance(t *testing.T) {
	assert.Equal(t, 0, parseAllowance(""))
	assert.Equal(t, 1, parseAllowance("H"))
	assert.Equal(t, 3, parseAllowance("1H"))
	assert.Equal(t, 4, parseAllowance("2"))
	assert.Equal(t, 20, parseAllowance("10"))
}

func TestGeneratedDate(t *testing.T) {
	bundle := parseSample(t)

	date, err := bundle.GeneratedDate()
	require.NoError(t, err)
	assert.Equal(t, timetable.NewDate(2024, time.March, 11), date)

	_, err = (&CommonInterfaceFormat{}).GeneratedDate()
	assert.Error(t, err)
}

func TestImport(t *testing.T) {
	bundle := parseSample(t)
	store := memory.NewStore(nil)

	importer := &Importer{Destination: store, ImportID: "test", TrainsOnly: true}
	require.NoError(t, importer.Import(context.Background(), bundle))

	ctx := context.Background()

	generated, err := store.GeneratedDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, timetable.NewDate(2024, time.March, 11), generated)

	dated, err := store.Service(ctx, "C12345", timetable.NewDate(2024, time.March, 12), false)
	require.NoError(t, err)
	require.NotNil(t, dated)
	assert.True(t, dated.IsRunning())

	dated, err = store.Service(ctx, "C12345", timetable.NewDate(2024, time.March, 25), false)
	require.NoError(t, err)
	require.NotNil(t, dated)
	assert.False(t, dated.IsRunning())

	dated, err = store.Service(ctx, "B99999", timetable.NewDate(2024, time.March, 11), false)
	require.NoError(t, err)
	assert.Nil(t, dated)

	entries, err := store.AssociationEntries(ctx, "C54321", timetable.NewDate(2024, time.March, 12))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
