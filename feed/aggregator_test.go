package feed_test

import (
	"testing"
	"time"

	"github.com/ncobase/feedsync/feed"
	"github.com/ncobase/feedsync/paging"
	"github.com/ncobase/feedsync/structs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func posts(idList ...string) []*structs.Post {
	out := make([]*structs.Post, len(idList))
	for i, id := range idList {
		out[i] = &structs.Post{ID: id, CreatedAt: base.Add(-time.Duration(i) * time.Minute)}
	}
	return out
}

func cursorOf(p *structs.Post) *paging.Cursor {
	return &paging.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
}

func TestAggregatorDeduplicatesFirstArrivalWins(t *testing.T) {
	a := feed.NewAggregator("all", nil)
	gen := a.Generation()

	first := posts("a", "b", "c")
	first[1].Content = "first"
	added, ok := a.AppendPage(gen, first, cursorOf(first[2]), 3)
	require.True(t, ok)
	assert.Equal(t, 3, added)

	second := []*structs.Post{{ID: "b", Content: "second"}, {ID: "d"}, {ID: "a"}}
	added, ok = a.AppendPage(gen, second, cursorOf(second[1]), 3)
	require.True(t, ok)
	assert.Equal(t, 1, added)

	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(a.Items()))
	b, _ := a.Get("b")
	assert.Equal(t, "first", b.Content)
}

func TestAggregatorExhaustion(t *testing.T) {
	a := feed.NewAggregator("all", nil)
	gen := a.Generation()

	page := posts("a", "b")
	a.AppendPage(gen, page, cursorOf(page[1]), 5)
	assert.True(t, a.Exhausted(), "short page exhausts")

	a.Reset()
	gen = a.Generation()
	page = posts("a", "b", "c", "d", "e")
	a.AppendPage(gen, page, nil, 5)
	assert.True(t, a.Exhausted(), "nil cursor exhausts")

	a.Reset()
	gen = a.Generation()
	a.AppendPage(gen, page, cursorOf(page[4]), 5)
	assert.False(t, a.Exhausted())
}

func TestAggregatorStaleGenerationDiscarded(t *testing.T) {
	a := feed.NewAggregator("all", nil)
	old := a.Generation()
	a.Reset()

	page := posts("a")
	added, ok := a.AppendPage(old, page, cursorOf(page[0]), 1)
	assert.False(t, ok)
	assert.Zero(t, added)
	assert.Zero(t, a.Len())
	assert.Nil(t, a.Cursor())
}

func TestAggregatorCursorFollowsPages(t *testing.T) {
	cursors := feed.NewCursorStore()
	a := feed.NewAggregator("author:u1", cursors)
	page := posts("a", "b")
	a.AppendPage(a.Generation(), page, cursorOf(page[1]), 2)

	assert.Equal(t, "b", a.Cursor().ID)
	assert.Equal(t, "b", cursors.Get("author:u1").ID)

	a.Rescope("liked:u1")
	assert.Nil(t, a.Cursor())
	assert.Nil(t, cursors.Get("author:u1"))
	assert.Zero(t, a.Len())
	assert.False(t, a.Exhausted())
}

func TestAggregatorMutationKeepsOrder(t *testing.T) {
	a := feed.NewAggregator("all", nil)
	page := posts("a", "b", "c")
	a.AppendPage(a.Generation(), page, cursorOf(page[2]), 3)
	before := a.Cursor()

	require.True(t, a.ApplyMutation("b", feed.AddMember(structs.FieldLikedBy, "u1")))
	require.True(t, a.ApplyMutation("b", feed.AppendComment(structs.Comment{UID: "u1", Content: "hi"})))
	assert.False(t, a.ApplyMutation("zz", feed.AddMember(structs.FieldLikedBy, "u1")))

	assert.Equal(t, []string{"a", "b", "c"}, ids(a.Items()))
	assert.Equal(t, before, a.Cursor())
	b, _ := a.Get("b")
	assert.Equal(t, []string{"u1"}, b.LikedBy)
	require.Len(t, b.Comments, 1)

	a.ApplyMutation("b", feed.RemoveMember(structs.FieldLikedBy, "u1"))
	b, _ = a.Get("b")
	assert.Empty(t, b.LikedBy)
}

func TestAggregatorItemsAreCopies(t *testing.T) {
	a := feed.NewAggregator("all", nil)
	page := posts("a")
	a.AppendPage(a.Generation(), page, nil, 1)

	page[0].Content = "changed upstream"
	items := a.Items()
	items[0].LikedBy = append(items[0].LikedBy, "x")

	got, _ := a.Get("a")
	assert.Empty(t, got.Content)
	assert.Empty(t, got.LikedBy)
}
