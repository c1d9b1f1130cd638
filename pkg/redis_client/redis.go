package redis_client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/railtimetable/pkg/util"
)

// Client is nil until Connect succeeds, callers fall back to uncached
// lookups without it
var Client *redis.Client

const defaultAddress = "localhost:6379"

func options() (*redis.Options, error) {
	env := util.GetEnvironmentVariables()

	opts := &redis.Options{
		Addr:     defaultAddress,
		Password: env["TRAVIGO_REDIS_PASSWORD"],
	}
	if address := env["TRAVIGO_REDIS_ADDRESS"]; address != "" {
		opts.Addr = address
	}

	if value := env["TRAVIGO_REDIS_DATABASE"]; value != "" {
		database, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("TRAVIGO_REDIS_DATABASE: %w", err)
		}
		opts.DB = database
	}

	return opts, nil
}

func Connect(ctx context.Context) error {
	opts, err := options()
	if err != nil {
		return err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return err
	}

	log.Info().Str("address", opts.Addr).Int("database", opts.DB).Msg("Connected to Redis")
	Client = client
	return nil
}
