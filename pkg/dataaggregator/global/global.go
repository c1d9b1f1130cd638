package global

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/travigo/railtimetable/pkg/dataaggregator"
	"github.com/travigo/railtimetable/pkg/dataaggregator/source/timetablelookup"
	"github.com/travigo/railtimetable/pkg/holidays"
	"github.com/travigo/railtimetable/pkg/redis_client"
	"github.com/travigo/railtimetable/pkg/repository"
	"github.com/travigo/railtimetable/pkg/repository/cachedsource"
	"github.com/travigo/railtimetable/pkg/repository/mongodb"
	"github.com/travigo/railtimetable/pkg/stationorder"
	"github.com/travigo/railtimetable/pkg/util"
)

// Setup registers the timetable source on the global aggregator. The
// database must already be connected. Board candidates are cached when a
// Redis client is connected.
func Setup(ctx context.Context) error {
	dataaggregator.GlobalAggregator = dataaggregator.Aggregator{}

	env := util.GetEnvironmentVariables()

	holidaysURL := holidays.DefaultURL
	if env["TRAVIGO_BANK_HOLIDAYS_URL"] != "" {
		holidaysURL = env["TRAVIGO_BANK_HOLIDAYS_URL"]
	}

	calendar, err := holidays.Load(ctx, holidaysURL)
	if err != nil {
		log.Warn().Err(err).Str("url", holidaysURL).Msg("Could not load bank holidays, services will run on them")
		calendar = holidays.NewCalendar()
	}

	library, err := stationorder.LoadLibrary(env["TRAVIGO_ROUTE_LIBRARY"])
	if err != nil {
		return err
	}

	store := mongodb.NewStore(calendar)

	var boards repository.BoardSource = store
	if redis_client.Client != nil {
		boards = cachedsource.New(redis_client.Client, store, store, cachedsource.DefaultExpiration)
	}

	dataaggregator.GlobalAggregator.RegisterSource(timetablelookup.New(store, boards, library))

	return nil
}
