package feed_test

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/ncobase/feedsync/config"
	"github.com/ncobase/feedsync/data/memory"
	"github.com/ncobase/feedsync/feed"
	"github.com/ncobase/feedsync/paging"
	"github.com/ncobase/feedsync/structs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runView(t *testing.T, v *feed.View) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go v.Run(ctx)
}

func TestViewPaginatesToExhaustion(t *testing.T) {
	s := memory.New()
	seed(s, 7, "u1")
	seed(s, 3, "u2")
	v := feed.NewView(s, feed.Options{Scope: feed.ByAuthor(""), ViewerID: "u1", PageSize: 5})
	runView(t, v)
	ctx := context.Background()

	res, err := v.LoadMore(ctx)
	require.NoError(t, err)
	assert.False(t, res.Exhausted)
	res, err = v.LoadMore(ctx)
	require.NoError(t, err)
	assert.True(t, res.Exhausted)

	items := v.Items()
	require.Len(t, items, 7)
	for i := 1; i < len(items); i++ {
		assert.True(t, items[i-1].CreatedAt.After(items[i].CreatedAt), "newest first")
	}
	for _, p := range items {
		assert.Equal(t, "u1", p.UID)
	}

	res, err = v.LoadMore(ctx)
	require.NoError(t, err)
	assert.True(t, res.Exhausted)
	assert.Equal(t, 2, s.Calls("FindPosts"), "exhausted view does not fetch")
}

func TestViewSwitchDiscardsItems(t *testing.T) {
	s := memory.New()
	seed(s, 3, "u1")
	ctx := context.Background()
	require.NoError(t, s.AddPostMember(ctx, "u1-p01", structs.FieldLikedBy, "u1"))

	v := feed.NewView(s, feed.Options{Scope: feed.ByAuthor(""), ViewerID: "u1", PageSize: 5})
	runView(t, v)
	_, err := v.LoadMore(ctx)
	require.NoError(t, err)
	assert.Len(t, v.Items(), 3)
	assert.True(t, v.Exhausted())

	v.Switch(feed.LikedBy(""))
	assert.Empty(t, v.Items())
	assert.Equal(t, feed.Idle, v.State())
	assert.Equal(t, "liked:u1", v.Scope().Key())

	_, err = v.LoadMore(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1-p01"}, ids(v.Items()))
}

func TestViewLateCompletionIsDiscarded(t *testing.T) {
	inner := memory.New()
	seed(inner, 3, "u1")
	seed(inner, 2, "u2")
	g := newGatedStore(inner)
	v := feed.NewView(g, feed.Options{Scope: feed.ByAuthor("u1"), PageSize: 5, FetchTimeout: time.Second})
	runView(t, v)

	require.True(t, v.Expose())
	<-g.entered
	v.Switch(feed.ByAuthor("u2"))
	close(g.release)

	res, err := v.LoadMore(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Exhausted)
	assert.Equal(t, []string{"u2-p01", "u2-p00"}, ids(v.Items()))
}

func TestViewToggleUsesViewer(t *testing.T) {
	s := memory.New()
	seed(s, 1, "u1")
	v := feed.NewView(s, feed.OptionsFromConfig(&config.Feed{PageSize: 5, ToggleMode: config.ToggleAtomic}, feed.All(), "me"))
	runView(t, v)
	ctx := context.Background()
	_, err := v.LoadMore(ctx)
	require.NoError(t, err)

	res, err := v.Toggle(ctx, "u1-p00", structs.FieldBookmarks)
	require.NoError(t, err)
	assert.True(t, res.Added)
	p, ok := v.Get("u1-p00")
	require.True(t, ok)
	assert.Equal(t, []string{"me"}, p.Bookmarks)
}

func TestViewSwitchDuringLoadsKeepsScope(t *testing.T) {
	s := memory.New()
	seed(s, 20, "u1")
	seed(s, 20, "u2")
	v := feed.NewView(s, feed.Options{Scope: feed.ByAuthor("u1"), PageSize: 3})
	runView(t, v)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ctx.Err() == nil {
			lctx, lcancel := context.WithTimeout(ctx, 100*time.Millisecond)
			_, _ = v.LoadMore(lctx)
			lcancel()
		}
	}()

	authors := []string{"u1", "u2"}
	for i := 0; i < 300; i++ {
		uid := authors[i%2]
		v.Switch(feed.ByAuthor(uid))
		for j := 0; j < 3; j++ {
			for _, p := range v.Items() {
				require.Equal(t, uid, p.UID, "post %s shown in the %s view", p.ID, uid)
			}
			runtime.Gosched()
		}
	}
}

func TestViewLoadMoreAfterResetReturns(t *testing.T) {
	inner := memory.New()
	seed(inner, 3, "u1")
	g := newGatedStore(inner)
	v := feed.NewView(g, feed.Options{Scope: feed.ByAuthor("u1"), PageSize: 5, FetchTimeout: time.Second})
	runView(t, v)

	done := make(chan feed.Result, 1)
	go func() {
		res, _ := v.LoadMore(context.Background())
		done <- res
	}()
	<-g.entered
	v.Reset()
	close(g.release)

	select {
	case res := <-done:
		assert.True(t, res.Stale)
	case <-time.After(2 * time.Second):
		t.Fatal("LoadMore did not return after reset")
	}
}

func TestViewSetPageSize(t *testing.T) {
	s := memory.New()
	seed(s, 6, "u1")
	v := feed.NewView(s, feed.Options{Scope: feed.All(), PageSize: 2})
	runView(t, v)

	v.SetPageSize(0)
	assert.Equal(t, 2, v.PageSize())
	v.SetPageSize(4)
	assert.Equal(t, 4, v.PageSize())

	_, err := v.LoadMore(context.Background())
	require.NoError(t, err)
	assert.Len(t, v.Items(), 4)
}

func TestViewSeekResumes(t *testing.T) {
	s := memory.New()
	seed(s, 5, "u1")
	ctx := context.Background()

	first := feed.NewView(s, feed.Options{Scope: feed.All(), PageSize: 2})
	runView(t, first)
	assert.Nil(t, first.Cursor())
	_, err := first.LoadMore(ctx)
	require.NoError(t, err)
	token := first.Cursor().Encode()
	require.NotEmpty(t, token)

	c, err := paging.DecodeCursor(token)
	require.NoError(t, err)
	second := feed.NewView(s, feed.Options{Scope: feed.All(), PageSize: 2})
	runView(t, second)
	second.Seek(c)
	_, err = second.LoadMore(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1-p02", "u1-p01"}, ids(second.Items()))

	second.Reset()
	_, err = second.LoadMore(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1-p04", "u1-p03"}, ids(second.Items()), "reset starts from the top")
}
