package feed_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ncobase/feedsync/data"
	"github.com/ncobase/feedsync/data/memory"
	"github.com/ncobase/feedsync/structs"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// seed inserts n posts by uid, one minute apart, p00 oldest.
func seed(s *memory.Store, n int, uid string) {
	for i := 0; i < n; i++ {
		s.InsertPost(&structs.Post{
			ID:        fmt.Sprintf("%s-p%02d", uid, i),
			UID:       uid,
			Name:      uid,
			Content:   fmt.Sprintf("post %d by %s", i, uid),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
}

func ids(posts []*structs.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

// gatedStore blocks FindPosts until release is closed and counts calls.
type gatedStore struct {
	*memory.Store
	calls   atomic.Int32
	entered chan struct{}
	once    sync.Once
	release chan struct{}
}

func newGatedStore(inner *memory.Store) *gatedStore {
	return &gatedStore{Store: inner, entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedStore) FindPosts(ctx context.Context, q *data.Query) ([]*structs.Post, error) {
	g.calls.Add(1)
	g.once.Do(func() { close(g.entered) })
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.Store.FindPosts(ctx, q)
}
