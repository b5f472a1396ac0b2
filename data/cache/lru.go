package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

type lruEntry[T any] struct {
	value    T
	expireAt time.Time
}

// LRU is an in-process ICache bounded by entry count. Entries with an
// expiry are dropped lazily on Get.
type LRU[T any] struct {
	c   *lru.Cache
	now func() time.Time
}

// NewLRU creates an LRU holding at most size entries.
func NewLRU[T any](size int) (*LRU[T], error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru cache: %w", err)
	}
	return &LRU[T]{c: c, now: time.Now}, nil
}

func (l *LRU[T]) Get(_ context.Context, key string) (*T, error) {
	v, ok := l.c.Get(key)
	if !ok {
		return nil, nil
	}
	e := v.(lruEntry[T])
	if !e.expireAt.IsZero() && !l.now().Before(e.expireAt) {
		l.c.Remove(key)
		return nil, nil
	}
	out := e.value
	return &out, nil
}

func (l *LRU[T]) Set(_ context.Context, key string, data *T, expire ...time.Duration) error {
	if data == nil {
		l.c.Remove(key)
		return nil
	}
	e := lruEntry[T]{value: *data}
	if ttl := expiry(expire); ttl > 0 {
		e.expireAt = l.now().Add(ttl)
	}
	l.c.Add(key, e)
	return nil
}

func (l *LRU[T]) Delete(_ context.Context, key string) error {
	l.c.Remove(key)
	return nil
}

// Len reports the number of cached entries, expired ones included.
func (l *LRU[T]) Len() int {
	return l.c.Len()
}
