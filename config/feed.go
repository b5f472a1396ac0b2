package config

import (
	"time"

	"github.com/spf13/viper"
)

// Toggle write strategies.
const (
	ToggleAtomic    = "atomic"
	ToggleOverwrite = "overwrite"
)

// Feed configures the pagination and mutation engine.
type Feed struct {
	PageSize         int
	NotificationSize int
	SearchPreview    int
	HistorySize      int
	FetchTimeout     time.Duration
	// ToggleMode is atomic (single-member writes) or overwrite (whole-set
	// read-modify-write).
	ToggleMode string
	// FollowCompensation undoes the first write of a follow when the second
	// fails and no transaction is available.
	FollowCompensation bool
	// AuthorWorkers bounds concurrent author lookups for notifications.
	AuthorWorkers int
	AuthorCacheTTL time.Duration
}

func getFeedConfig(v *viper.Viper) *Feed {
	mode := getStringOrDefault(v, "feed.toggle_mode", ToggleAtomic)
	if mode != ToggleOverwrite {
		mode = ToggleAtomic
	}
	return &Feed{
		PageSize:           getIntOrDefault(v, "feed.page_size", 5),
		NotificationSize:   getIntOrDefault(v, "feed.notification_size", 10),
		SearchPreview:      getIntOrDefault(v, "feed.search_preview", 5),
		HistorySize:        getIntOrDefault(v, "feed.history_size", 10),
		FetchTimeout:       getDurationOrDefault(v, "feed.fetch_timeout", 10*time.Second),
		ToggleMode:         mode,
		FollowCompensation: getBoolOrDefault(v, "feed.follow_compensation", true),
		AuthorWorkers:      getIntOrDefault(v, "feed.author_workers", 4),
		AuthorCacheTTL:     getDurationOrDefault(v, "feed.author_cache_ttl", 10*time.Minute),
	}
}

// Breaker configures the circuit breaker around the document store.
type Breaker struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

func getBreakerConfig(v *viper.Viper) *Breaker {
	return &Breaker{
		MaxRequests:  getUint32OrDefault(v, "breaker.max_requests", 100),
		Interval:     getDurationOrDefault(v, "breaker.interval", 5*time.Second),
		Timeout:      getDurationOrDefault(v, "breaker.timeout", 3*time.Second),
		MinRequests:  getUint32OrDefault(v, "breaker.min_requests", 3),
		FailureRatio: getFloat64OrDefault(v, "breaker.failure_ratio", 0.6),
	}
}
