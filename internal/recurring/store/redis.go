package store

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	indexPrefix = "tally:tombstones:idx:"
	setPrefix   = "tally:tombstones:set:"
)

// Redis keeps tombstones as sets: one index set of series keys per user and
// one set of dates per series. Set keys carry the user id length so ids
// containing ':' cannot alias another user's series.
type Redis struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func indexKey(userID string) string {
	return indexPrefix + userID
}

func seriesSetKey(userID, seriesKey string) string {
	return setPrefix + strconv.Itoa(len(userID)) + ":" + userID + ":" + seriesKey
}

func (s *Redis) DeletedDates(ctx context.Context, userID string) (map[string][]string, error) {
	seriesKeys, err := s.client.SMembers(ctx, indexKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("listing tombstoned series: %w", err)
	}

	slices.Sort(seriesKeys)

	deleted := make(map[string][]string, len(seriesKeys))

	for _, key := range seriesKeys {
		dates, err := s.client.SMembers(ctx, seriesSetKey(userID, key)).Result()
		if err != nil {
			return nil, fmt.Errorf("listing tombstones for %q: %w", key, err)
		}

		slices.Sort(dates)
		deleted[key] = dates
	}

	return deleted, nil
}

func (s *Redis) AddDeletedDate(ctx context.Context, userID, seriesKey, date string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, indexKey(userID), seriesKey)
		pipe.SAdd(ctx, seriesSetKey(userID, seriesKey), date)

		return nil
	})
	if err != nil {
		return fmt.Errorf("adding tombstone: %w", err)
	}

	return nil
}
