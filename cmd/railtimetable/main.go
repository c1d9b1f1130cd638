package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/railtimetable/pkg/api"
	"github.com/travigo/railtimetable/pkg/dataimporter"
	"github.com/travigo/railtimetable/pkg/inspect"
	"github.com/travigo/railtimetable/pkg/util"
	"github.com/urfave/cli/v2"
)

func main() {
	util.LoadEnvironmentFile()

	if os.Getenv("TRAVIGO_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("TRAVIGO_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "railtimetable",
		Description: "Departure boards and joined up services from the GB rail timetable",

		Commands: []*cli.Command{
			dataimporter.RegisterCLI(),
			api.RegisterCLI(),
			inspect.RegisterBoardCLI(),
			inspect.RegisterServiceCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
