package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/ncobase/feedsync/config"
	"github.com/ncobase/feedsync/data"
	"github.com/redis/go-redis/v9"
)

func init() {
	data.RegisterSlotDriver(&driver{})
}

type driver struct{}

func (d *driver) Name() string {
	return "redis"
}

func (d *driver) OpenSlot(ctx context.Context, cfg *config.Data) (data.Slot, error) {
	if cfg == nil {
		return nil, errors.New("redis: missing data configuration")
	}
	client, err := NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	return NewSlot(client, DefaultSlotPrefix), nil
}

// NewClient connects to the server and verifies it answers a ping.
func NewClient(ctx context.Context, cfg *config.Redis) (*redis.Client, error) {
	if cfg == nil || cfg.Addr == "" {
		return nil, fmt.Errorf("redis: address is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.Db,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		DialTimeout:  cfg.DialTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: failed to ping server: %w", err)
	}

	return client, nil
}
