package identity

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/gravepaint/gravepaint"
)

// Key is the name the user ID is stored under.
const Key = "userId"

// A RedisStore holds the ID of the logged-in user in Redis
// under "<namespace>:userId".
type RedisStore struct {
	client    redis.UniversalClient
	namespace string
}

// NewRedisStore constructs a RedisStore on top of client.
// namespace separates the IDs of different devices or processes sharing a Redis.
func NewRedisStore(client redis.UniversalClient, namespace string) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: redis client cannot be nil", gravepaint.ErrBadConfig)
	}

	return &RedisStore{client: client, namespace: namespace}, nil
}

// Set records id as the logged-in user.
func (s *RedisStore) Set(ctx context.Context, id string) error {
	if id == "" {
		return s.Clear(ctx)
	}

	return s.client.Set(ctx, s.key(), id, 0).Err()
}

// Clear forgets the logged-in user.
func (s *RedisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key()).Err()
}

// UserID implements Source.
// Any failure reading from Redis is treated as no user being logged in.
func (s *RedisStore) UserID(ctx context.Context) (string, bool) {
	id, err := s.client.Get(ctx, s.key()).Result()
	if err != nil || id == "" {
		return "", false
	}

	return id, true
}

func (s *RedisStore) key() string {
	if s.namespace == "" {
		return Key
	}

	return s.namespace + ":" + Key
}
