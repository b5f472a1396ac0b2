package feed_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ncobase/feedsync/data/memory"
	"github.com/ncobase/feedsync/ecode"
	"github.com/ncobase/feedsync/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchCursorExcludesSeenItems(t *testing.T) {
	s := memory.New()
	seed(s, 12, "u1")
	f := feed.NewFetcher(s, time.Second)
	ctx := context.Background()

	seen := map[string]bool{}
	d, err := feed.Build(feed.ByAuthor("u1"), "", 5, nil)
	require.NoError(t, err)
	pages := 0
	for {
		items, next, err := f.Fetch(ctx, d)
		require.NoError(t, err)
		pages++
		for _, p := range items {
			assert.False(t, seen[p.ID], "item %s delivered twice", p.ID)
			seen[p.ID] = true
		}
		if next == nil {
			break
		}
		last := items[len(items)-1]
		assert.Equal(t, last.ID, next.ID)
		assert.True(t, next.CreatedAt.Equal(last.CreatedAt))

		d, err = feed.Build(feed.ByAuthor("u1"), "", 5, next)
		require.NoError(t, err)
	}
	assert.Len(t, seen, 12)
	assert.Equal(t, 3, pages)
}

func TestFetchEmptyAuthorSetSkipsStore(t *testing.T) {
	s := memory.New()
	seed(s, 3, "u1")
	f := feed.NewFetcher(s, time.Second)

	d, err := feed.Build(feed.ByAuthorSet([]string{}), "me", 5, nil)
	require.NoError(t, err)
	items, next, err := f.Fetch(context.Background(), d)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Nil(t, next)
	assert.Zero(t, s.Calls("FindPosts"))
}

func TestFetchExactPageBoundary(t *testing.T) {
	s := memory.New()
	seed(s, 5, "u1")
	ctx := context.Background()
	v := feed.NewView(s, feed.Options{Scope: feed.All(), PageSize: 5})
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go v.Run(runCtx)

	res, err := v.LoadMore(ctx)
	require.NoError(t, err)
	assert.False(t, res.Exhausted, "a full page is not known to be the last")
	assert.Len(t, v.Items(), 5)

	res, err = v.LoadMore(ctx)
	require.NoError(t, err)
	assert.True(t, res.Exhausted)
	assert.Len(t, v.Items(), 5)
	assert.Equal(t, 2, s.Calls("FindPosts"))
}

func TestFetchStoreFailure(t *testing.T) {
	s := memory.New()
	s.SetFault(func(string) error { return errors.New("connection reset") })
	f := feed.NewFetcher(s, time.Second)

	d, _ := feed.Build(feed.All(), "", 5, nil)
	_, _, err := f.Fetch(context.Background(), d)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ecode.ErrStoreUnavailable))
}

func TestFetchTimeout(t *testing.T) {
	g := newGatedStore(memory.New())
	f := feed.NewFetcher(g, 20*time.Millisecond)

	d, _ := feed.Build(feed.All(), "", 5, nil)
	_, _, err := f.Fetch(context.Background(), d)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ecode.ErrStoreUnavailable))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
