package api

import (
	"github.com/rs/zerolog/log"
	"github.com/travigo/railtimetable/pkg/api/routes"
	"github.com/travigo/railtimetable/pkg/dataaggregator/global"
	"github.com/travigo/railtimetable/pkg/database"
	"github.com/travigo/railtimetable/pkg/redis_client"
	"github.com/travigo/railtimetable/pkg/repository/mongodb"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the departure board and service web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(c.Context); err != nil {
						return err
					}
					defer database.Disconnect(c.Context)

					if err := redis_client.Connect(c.Context); err != nil {
						log.Warn().Err(err).Msg("Redis unavailable, departure boards will not be cached")
					}

					if err := global.Setup(c.Context); err != nil {
						return err
					}

					routes.GeneratedDateSource = mongodb.NewStore(nil)

					log.Info().Str("listen", c.String("listen")).Msg("Starting web API")

					return SetupServer(c.String("listen"))
				},
			},
		},
	}
}
