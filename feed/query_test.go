package feed_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ncobase/feedsync/data"
	"github.com/ncobase/feedsync/ecode"
	"github.com/ncobase/feedsync/feed"
	"github.com/ncobase/feedsync/paging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildScopes(t *testing.T) {
	tests := []struct {
		name  string
		scope feed.Scope
		want  []data.Filter
	}{
		{"all", feed.All(), nil},
		{"author", feed.ByAuthor("u2"), []data.Filter{{Field: "uid", Op: data.OpEq, Value: "u2"}}},
		{"author defaults to viewer", feed.ByAuthor(""), []data.Filter{{Field: "uid", Op: data.OpEq, Value: "me"}}},
		{"liked", feed.LikedBy(""), []data.Filter{{Field: "likedBy", Op: data.OpArrayContains, Value: "me"}}},
		{"bookmarks", feed.BookmarkedBy("u3"), []data.Filter{{Field: "bookmarks", Op: data.OpArrayContains, Value: "u3"}}},
		{"authors", feed.ByAuthorSet([]string{"b", "a", "b"}), []data.Filter{{Field: "uid", Op: data.OpIn, Value: []string{"a", "b"}}}},
		{"match", feed.ContentMatch(" Go "), []data.Filter{{Field: "content", Op: data.OpContains, Value: "Go"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := feed.Build(tt.scope, "me", 5, nil)
			require.NoError(t, err)
			assert.False(t, d.Empty)
			assert.Equal(t, tt.want, d.Query.Filters)
			assert.Equal(t, "createdAt", d.Query.OrderBy)
			assert.True(t, d.Query.Desc)
			assert.Equal(t, 5, d.Query.Limit)
			assert.Nil(t, d.Query.StartAfter)
		})
	}
}

func TestBuildEmptyAuthorSet(t *testing.T) {
	d, err := feed.Build(feed.ByAuthorSet(nil), "me", 10, nil)
	require.NoError(t, err)
	assert.True(t, d.Empty)
}

func TestBuildCarriesCursor(t *testing.T) {
	c := &paging.Cursor{CreatedAt: time.Now(), ID: "p1"}
	d, err := feed.Build(feed.All(), "", 5, c)
	require.NoError(t, err)
	assert.Equal(t, c, d.Query.StartAfter)
}

func TestBuildRejects(t *testing.T) {
	_, err := feed.Build(feed.All(), "me", 0, nil)
	assert.True(t, errors.Is(err, ecode.ErrValidation))

	_, err = feed.Build(feed.LikedBy(""), "", 5, nil)
	assert.True(t, errors.Is(err, ecode.ErrValidation))

	_, err = feed.Build(feed.ContentMatch("  "), "me", 5, nil)
	assert.True(t, errors.Is(err, ecode.ErrValidation))
}

func TestBuildClampsPageSize(t *testing.T) {
	d, err := feed.Build(feed.All(), "", paging.MaxLimit+1, nil)
	require.NoError(t, err)
	assert.Equal(t, paging.MaxLimit, d.PageSize)
}

func TestScopeKeys(t *testing.T) {
	assert.Equal(t, "all", feed.All().Key())
	assert.Equal(t, "author:u1", feed.ByAuthor("u1").Key())
	assert.Equal(t, "authors:a,b", feed.ByAuthorSet([]string{"b", "a"}).Key())
	assert.NotEqual(t, feed.LikedBy("u1").Key(), feed.BookmarkedBy("u1").Key())
}
