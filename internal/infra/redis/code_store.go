package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// CodeStore is a Redis implementation of app.CodeStore. A live game code is a key with a TTL, so
// codes leaked by a crashed process expire on their own.
type CodeStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCodeStore(client *redis.Client, ttl time.Duration) *CodeStore {
	return &CodeStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *CodeStore) Reserve(ctx context.Context, code string) (bool, error) {
	return s.client.SetNX(ctx, s.key(code), "1", s.ttl).Result()
}

func (s *CodeStore) Release(ctx context.Context, code string) error {
	return s.client.Del(ctx, s.key(code)).Err()
}

func (s *CodeStore) key(code string) string {
	return "game:code:" + code
}
