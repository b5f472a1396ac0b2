package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	Name string
}

func TestLRUGetSet(t *testing.T) {
	ctx := context.Background()
	c, err := NewLRU[profile](4)
	require.NoError(t, err)

	got, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, "u1", &profile{Name: "Ann"}))
	got, err = c.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ann", got.Name)

	got.Name = "changed"
	again, _ := c.Get(ctx, "u1")
	assert.Equal(t, "Ann", again.Name)

	require.NoError(t, c.Delete(ctx, "u1"))
	got, _ = c.Get(ctx, "u1")
	assert.Nil(t, got)
}

func TestLRUExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewLRU[profile](4)
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "u1", &profile{Name: "Ann"}, time.Minute))
	got, _ := c.Get(ctx, "u1")
	assert.NotNil(t, got)

	now = now.Add(time.Minute)
	got, _ = c.Get(ctx, "u1")
	assert.Nil(t, got)
	assert.Equal(t, 0, c.Len())
}

func TestLRUEvictsOldest(t *testing.T) {
	ctx := context.Background()
	c, err := NewLRU[profile](2)
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "a", &profile{Name: "a"}))
	require.NoError(t, c.Set(ctx, "b", &profile{Name: "b"}))
	_, _ = c.Get(ctx, "a")
	require.NoError(t, c.Set(ctx, "c", &profile{Name: "c"}))

	got, _ := c.Get(ctx, "b")
	assert.Nil(t, got)
	got, _ = c.Get(ctx, "a")
	assert.NotNil(t, got)
}

func TestNewLRURejectsNonPositiveSize(t *testing.T) {
	_, err := NewLRU[profile](0)
	assert.Error(t, err)
}

var _ ICache[profile] = (*LRU[profile])(nil)
var _ ICache[profile] = (*Cache[profile])(nil)
