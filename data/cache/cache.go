package cache

import (
	"context"
	"time"
)

// ICache defines a general caching interface. Get returns nil, nil on a
// miss.
type ICache[T any] interface {
	Get(context.Context, string) (*T, error)
	Set(context.Context, string, *T, ...time.Duration) error
	Delete(context.Context, string) error
}

func expiry(expire []time.Duration) time.Duration {
	if len(expire) > 0 && expire[0] > 0 {
		return expire[0]
	}
	return 0
}
