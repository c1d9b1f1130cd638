// Package inspect prints boards and services from the loaded timetable on
// the command line
package inspect

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	iso8601 "github.com/senseyeio/duration"
	"github.com/travigo/railtimetable/pkg/dataaggregator"
	"github.com/travigo/railtimetable/pkg/dataaggregator/global"
	"github.com/travigo/railtimetable/pkg/dataaggregator/query"
	"github.com/travigo/railtimetable/pkg/database"
	"github.com/travigo/railtimetable/pkg/departureboard"
	"github.com/travigo/railtimetable/pkg/redis_client"
	"github.com/travigo/railtimetable/pkg/timetable"
	"github.com/urfave/cli/v2"
)

func setup(ctx context.Context) error {
	if err := database.Connect(ctx); err != nil {
		return err
	}
	if err := redis_client.Connect(ctx); err != nil {
		log.Debug().Err(err).Msg("Redis unavailable, boards will not be cached")
	}

	return global.Setup(ctx)
}

func RegisterBoardCLI() *cli.Command {
	return &cli.Command{
		Name:  "board",
		Usage: "Print the departure or arrival board for a station",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "station",
				Usage:    "CRS code of the station",
				Required: true,
			},
			&cli.TimestampFlag{
				Name:   "at",
				Usage:  "start of the board, defaults to now",
				Layout: time.RFC3339,
			},
			&cli.StringFlag{
				Name:  "period",
				Value: departureboard.DefaultPeriod,
				Usage: "ISO8601 duration the board covers",
			},
			&cli.StringFlag{
				Name:  "mode",
				Value: "departures",
				Usage: "departures, arrivals or passes",
			},
			&cli.BoolFlag{
				Name:  "working",
				Usage: "use working times and include non passenger trains",
			},
			&cli.StringFlag{
				Name:  "destination",
				Usage: "only show trains going on to (or for arrivals, coming from) this CRS code",
			},
			&cli.BoolFlag{
				Name:  "permanent-only",
				Usage: "ignore short term plans",
			},
			&cli.BoolFlag{
				Name:  "layout",
				Usage: "print the board against its stations",
			},
			&cli.StringFlag{
				Name:  "format",
				Value: "text",
				Usage: "text or csv",
			},
		},
		Action: func(c *cli.Context) error {
			timeType, err := departureboard.ModeTimeType(c.String("mode"), c.Bool("working"))
			if err != nil {
				return err
			}

			period, err := iso8601.ParseISO8601(c.String("period"))
			if err != nil {
				return err
			}

			at := time.Now()
			if c.Timestamp("at") != nil {
				at = *c.Timestamp("at")
			}

			if err := setup(c.Context); err != nil {
				return err
			}
			defer database.Disconnect(c.Context)

			boardQuery := query.DepartureBoard{
				Station:             strings.ToUpper(c.String("station")),
				StartDateTime:       at,
				Period:              period,
				TimeType:            timeType,
				Destination:         strings.ToUpper(c.String("destination")),
				PermanentOnly:       c.Bool("permanent-only"),
				IncludeNonPassenger: c.Bool("working"),
			}

			format := c.String("format")
			if format != "text" && format != "csv" {
				return fmt.Errorf("unknown format %q", format)
			}
			if format == "csv" && c.Bool("layout") {
				return errors.New("csv output is only available for boards")
			}

			if c.Bool("layout") {
				result, err := dataaggregator.Lookup[*departureboard.BoardLayout](c.Context, query.BoardLayout{DepartureBoard: boardQuery})
				if err != nil {
					return err
				}
				return PrintLayout(os.Stdout, result.Layout)
			}

			board, err := dataaggregator.Lookup[*timetable.DepartureBoard](c.Context, boardQuery)
			if err != nil {
				return err
			}
			if format == "csv" {
				return WriteBoardCSV(os.Stdout, board)
			}
			return PrintBoard(os.Stdout, board)
		},
	}
}

func RegisterServiceCLI() *cli.Command {
	return &cli.Command{
		Name:  "service",
		Usage: "Print a service with the portions it divides and joins with",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "uid",
				Usage:    "schedule UID",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "date",
				Usage: "running date as YYYY-MM-DD, defaults to today",
			},
			&cli.BoolFlag{
				Name:  "permanent-only",
				Usage: "ignore short term plans",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "dump the resolved service",
			},
		},
		Action: func(c *cli.Context) error {
			date := timetable.DateFromTime(time.Now().In(timetable.London()))
			if c.String("date") != "" {
				var err error
				date, err = timetable.ParseDate(c.String("date"))
				if err != nil {
					return err
				}
			}

			if err := setup(c.Context); err != nil {
				return err
			}
			defer database.Disconnect(c.Context)

			service, err := dataaggregator.Lookup[*timetable.FullService](c.Context, query.Service{
				UID:                 strings.ToUpper(c.String("uid")),
				Date:                date,
				PermanentOnly:       c.Bool("permanent-only"),
				IncludeNonPassenger: true,
			})
			if err != nil {
				return err
			}

			if c.Bool("debug") {
				pretty.Println(service.Service())
			}

			return PrintService(os.Stdout, service)
		},
	}
}
