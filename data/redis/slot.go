package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultSlotPrefix namespaces slot keys.
const DefaultSlotPrefix = "feedsync:slot:"

// Slot is a data.Slot stored as plain redis strings without expiry.
type Slot struct {
	client *redis.Client
	prefix string
}

func NewSlot(client *redis.Client, prefix string) *Slot {
	return &Slot{client: client, prefix: prefix}
}

func (s *Slot) key(k string) string {
	return s.prefix + k
}

func (s *Slot) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis: get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *Slot) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

func (s *Slot) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis: del %s: %w", key, err)
	}
	return nil
}

func (s *Slot) Close() error {
	return s.client.Close()
}
