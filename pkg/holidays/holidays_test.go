package holidays

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/railtimetable/pkg/timetable"
)

const feed = `{
  "england-and-wales": {
    "division": "england-and-wales",
    "events": [
      {"title": "Easter Monday", "date": "2024-04-01", "notes": "", "bunting": true},
      {"title": "Summer bank holiday", "date": "2024-08-26", "notes": "", "bunting": true}
    ]
  },
  "scotland": {
    "division": "scotland",
    "events": [
      {"title": "Summer bank holiday", "date": "2024-08-05", "notes": "", "bunting": true},
      {"title": "St Andrew’s Day", "date": "2024-12-02", "notes": "Substitute day", "bunting": true}
    ]
  }
}`

func TestIsExcluded(t *testing.T) {
	calendar, err := Parse([]byte(feed))
	require.NoError(t, err)

	easterMonday := timetable.NewDate(2024, 4, 1)
	scottishSummer := timetable.NewDate(2024, 8, 5)

	assert.True(t, calendar.IsExcluded(timetable.ExcludeBankHolidays, easterMonday))
	assert.False(t, calendar.IsExcluded(timetable.ExcludeGlasgowBankHolidays, easterMonday))
	assert.False(t, calendar.IsExcluded(timetable.RunsOnBankHolidays, easterMonday))

	assert.True(t, calendar.IsExcluded(timetable.ExcludeGlasgowBankHolidays, scottishSummer))
	assert.False(t, calendar.IsExcluded(timetable.ExcludeBankHolidays, scottishSummer))

	assert.False(t, calendar.IsExcluded(timetable.ExcludeBankHolidays, timetable.NewDate(2024, 4, 2)))
}

func TestLoad(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(feed))
	}))
	defer server.Close()

	calendar, err := Load(context.Background(), server.URL)
	require.NoError(t, err)
	assert.True(t, calendar.IsHoliday(EnglandAndWales, timetable.NewDate(2024, 8, 26)))
}

func TestLoadFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := Load(context.Background(), server.URL)
	assert.Error(t, err)
}
