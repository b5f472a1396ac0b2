package feed

import (
	"context"
	"errors"
	"time"

	"github.com/ncobase/feedsync/data"
	"github.com/ncobase/feedsync/ecode"
	"github.com/ncobase/feedsync/logging/observes"
	"github.com/ncobase/feedsync/paging"
	"github.com/ncobase/feedsync/structs"
	"go.opentelemetry.io/otel/attribute"
)

const tracerName = "github.com/ncobase/feedsync/feed"

// DefaultFetchTimeout bounds a page fetch when none is configured.
const DefaultFetchTimeout = 10 * time.Second

// Fetcher executes descriptors against a post store.
type Fetcher struct {
	store   data.PostStore
	timeout time.Duration
}

func NewFetcher(store data.PostStore, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Fetcher{store: store, timeout: timeout}
}

// Fetch returns the page for d and the cursor of its last item. The cursor
// is nil when fewer than d.PageSize items came back. Failures are reported
// as store-unavailable errors and never retried here.
func (f *Fetcher) Fetch(ctx context.Context, d *Descriptor) (items []*structs.Post, next *paging.Cursor, err error) {
	if d.Empty {
		return []*structs.Post{}, nil, nil
	}

	ctx, span := observes.StartSpan(ctx, tracerName, "feed.Fetch",
		attribute.String("feed.scope", d.Scope.Key()),
		attribute.Int("feed.page_size", d.PageSize),
		attribute.Bool("feed.continuation", d.Query.StartAfter != nil),
	)
	defer func() { observes.EndSpan(span, err) }()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	items, err = f.store.FindPosts(ctx, d.Query)
	if err != nil {
		return nil, nil, storeErr(err)
	}
	span.SetAttributes(attribute.Int("feed.items", len(items)))

	if len(items) < d.PageSize || len(items) == 0 {
		return items, nil, nil
	}
	last := items[len(items)-1]
	return items, &paging.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
}

func storeErr(err error) error {
	var coded *ecode.Error
	if errors.As(err, &coded) {
		return err
	}
	return ecode.StoreUnavailable(err)
}
