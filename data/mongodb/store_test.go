package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ncobase/feedsync/config"
	"github.com/ncobase/feedsync/data"
	"github.com/ncobase/feedsync/paging"
	"github.com/ncobase/feedsync/structs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitLatestKeepsNewest(t *testing.T) {
	out := make(chan []*structs.Post, 1)
	emitLatest(out, []*structs.Post{{ID: "old"}})
	emitLatest(out, []*structs.Post{{ID: "new"}})

	got := <-out
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].ID)
}

// openTestStore connects to FEEDSYNC_TEST_MONGO_URI or skips.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("FEEDSYNC_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("FEEDSYNC_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, err := Open(ctx, &config.MongoDB{
		Master:       &config.MongoNode{URI: uri},
		Database:     "feedsync_test_" + time.Now().Format("150405.000000"),
		PollInterval: 100 * time.Millisecond,
	})
	require.NoError(t, err)

	var s *Store
	switch v := st.(type) {
	case *TxStore:
		s = v.Store
	case *Store:
		s = v
	}
	t.Cleanup(func() {
		ctx := context.Background()
		_ = s.mgr.Master().Database(s.db).Drop(ctx)
		_ = s.Close(ctx)
	})
	return s
}

func TestStorePaginationIntegration(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return at }
	for i := 0; i < 7; i++ {
		_, err := s.CreatePost(ctx, &structs.Post{UID: "u1", Name: "Ann", Content: "hello"})
		require.NoError(t, err)
	}

	q := &data.Query{Collection: data.CollectionPosts, OrderBy: "createdAt", Desc: true, Limit: 5}
	first, err := s.FindPosts(ctx, q)
	require.NoError(t, err)
	require.Len(t, first, 5)

	last := first[len(first)-1]
	q2 := *q
	q2.StartAfter = &paging.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	second, err := s.FindPosts(ctx, &q2)
	require.NoError(t, err)
	require.Len(t, second, 2)

	seen := map[string]bool{}
	for _, p := range append(first, second...) {
		assert.False(t, seen[p.ID], "duplicate %s", p.ID)
		seen[p.ID] = true
	}
}

func TestStoreMembersIntegration(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p, err := s.CreatePost(ctx, &structs.Post{UID: "u1", Content: "x"})
	require.NoError(t, err)

	require.NoError(t, s.AddPostMember(ctx, p.ID, structs.FieldLikedBy, "u2"))
	require.NoError(t, s.AddPostMember(ctx, p.ID, structs.FieldLikedBy, "u2"))
	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, got.LikedBy)

	require.NoError(t, s.RemovePostMember(ctx, p.ID, structs.FieldLikedBy, "u2"))
	got, err = s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.LikedBy)

	assert.ErrorIs(t, s.AddPostMember(ctx, "missing", structs.FieldLikedBy, "u2"), data.ErrNotFound)
}

func TestStoreAccountsIntegration(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateAccount(ctx, &structs.Account{UID: "u1", Email: "Ann@Example.com", PasswordHash: "h"}))
	err := s.CreateAccount(ctx, &structs.Account{UID: "u2", Email: "ann@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, data.ErrDuplicate)

	a, err := s.GetAccountByEmail(ctx, "ANN@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", a.UID)
}
