package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// redisRotationStore keeps rotation cursors in Redis so that multiple service
// instances share one rotation state per fairness group.
type redisRotationStore struct {
	client *redis.Client
	prefix string
}

// NewRedisRotationStore builds a Redis-backed cursor store.
func NewRedisRotationStore(client *redis.Client) RotationStore {
	return &redisRotationStore{client: client, prefix: "rotation:"}
}

func (s *redisRotationStore) redisKey(key RotationKey) string {
	// String form only at the storage boundary; the typed key stays the
	// identity everywhere else.
	return fmt.Sprintf("%s%s:%s:%s", s.prefix, key.TeamID, key.Tier, key.SubCategory)
}

func (s *redisRotationStore) Cursor(ctx context.Context, key RotationKey) (int, error) {
	val, err := s.client.Get(ctx, s.redisKey(key)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	cursor, err := strconv.Atoi(val)
	if err != nil {
		return 0, nil
	}
	return cursor, nil
}

func (s *redisRotationStore) SetCursor(ctx context.Context, key RotationKey, position int) error {
	return s.client.Set(ctx, s.redisKey(key), strconv.Itoa(position), 0).Err()
}
