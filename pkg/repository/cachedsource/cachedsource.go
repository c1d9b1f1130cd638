package cachedsource

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/railtimetable/pkg/repository"
	"github.com/travigo/railtimetable/pkg/timetable"
)

const DefaultExpiration = 6 * time.Hour

// Source caches the candidate services for each board in Redis. Keys carry
// the timetable generated date so a fresh import is never served stale
// candidates.
type Source struct {
	Source    repository.BoardSource
	Generated repository.GeneratedDateReader

	cache *cache.Cache[string]
}

func New(client *redis.Client, source repository.BoardSource, generated repository.GeneratedDateReader, expiration time.Duration) *Source {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(expiration))

	return &Source{
		Source:    source,
		Generated: generated,
		cache:     cache.New[string](redisStore),
	}
}

func cacheKey(generated timetable.Date, crs string, timeType timetable.TimeType, from time.Time, to time.Time) string {
	return fmt.Sprintf("board/%s/%s/%s/%d/%d", generated, crs, timeType, from.Unix(), to.Unix())
}

func (s *Source) CandidateIdentifiers(ctx context.Context, crs string, timeType timetable.TimeType, from time.Time, to time.Time) ([]string, error) {
	generated, err := s.Generated.GeneratedDate(ctx)
	if err != nil {
		return nil, err
	}
	key := cacheKey(generated, crs, timeType, from, to)

	if cached, err := s.cache.Get(ctx, key); err == nil {
		var uids []string
		if err := json.Unmarshal([]byte(cached), &uids); err == nil {
			return uids, nil
		}
		log.Warn().Str("key", key).Msg("Ignoring unreadable cached board candidates")
	}

	uids, err := s.Source.CandidateIdentifiers(ctx, crs, timeType, from, to)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(uids)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, string(encoded)); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to cache board candidates")
	}

	return uids, nil
}
