package dataimporter

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/travigo/railtimetable/pkg/database"
	"github.com/travigo/railtimetable/pkg/dataimporter/cif"
	"github.com/travigo/railtimetable/pkg/repository/mongodb"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "data-importer",
		Usage: "Load a rail timetable feed into the database",
		Subcommands: []*cli.Command{
			{
				Name:  "cif",
				Usage: "Import a CIF timetable (MCA schedules and MSN station names)",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "file",
						Usage:    "Path or URL of a timetable file or zip bundle, may be repeated",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "trains-only",
						Usage: "Skip bus and ship schedules",
					},
					&cli.StringFlag{
						Name:     "repeat-every",
						Usage:    "Repeat this file import every X (Go duration)",
						Required: false,
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(c.Context); err != nil {
						return err
					}
					defer database.Disconnect(c.Context)

					repeatEvery := c.String("repeat-every")
					repeat := repeatEvery != ""
					var repeatDuration time.Duration
					if repeat {
						var err error
						repeatDuration, err = time.ParseDuration(repeatEvery)

						if err != nil {
							return err
						}
					}

					for {
						startTime := time.Now()

						err := ImportCIF(c.Context, c.StringSlice("file"), c.Bool("trains-only"))
						if err != nil {
							return err
						}
						if !repeat {
							break
						}

						executionDuration := time.Since(startTime)
						log.Info().Msgf("Operation took %s", executionDuration.String())

						waitTime := repeatDuration - executionDuration

						if waitTime.Seconds() > 0 {
							select {
							case <-c.Context.Done():
								return c.Context.Err()
							case <-time.After(waitTime):
							}
						}
					}

					return nil
				},
			},
		},
	}
}

// ImportCIF parses every source into one timetable and replaces whatever
// the database held before
func ImportCIF(ctx context.Context, sources []string, trainsOnly bool) error {
	bundle := &cif.CommonInterfaceFormat{}

	for _, source := range sources {
		path, cleanup, err := Fetch(ctx, source)
		if err != nil {
			return err
		}

		err = bundle.ParseFile(path)
		cleanup()
		if err != nil {
			return err
		}
	}

	store := mongodb.NewStore(nil)
	store.ImportID = uuid.NewString()

	importer := &cif.Importer{
		Destination: store,
		ImportID:    store.ImportID,
		TrainsOnly:  trainsOnly,
	}

	return importer.Import(ctx, bundle)
}
