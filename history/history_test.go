package history

import (
	"context"
	"fmt"
	"testing"

	"github.com/ncobase/feedsync/data/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMovesToFront(t *testing.T) {
	ctx := context.Background()
	h := New(memory.NewSlot(), 0)

	_, err := h.Add(ctx, "go")
	require.NoError(t, err)
	_, err = h.Add(ctx, "rust")
	require.NoError(t, err)
	got, err := h.Add(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "rust"}, got)
}

func TestAddAtCapacityEvictsOldest(t *testing.T) {
	ctx := context.Background()
	h := New(memory.NewSlot(), 10)
	for i := 0; i < 10; i++ {
		_, err := h.Add(ctx, fmt.Sprintf("t%d", i))
		require.NoError(t, err)
	}

	got, err := h.Add(ctx, "new")
	require.NoError(t, err)
	require.Len(t, got, 10)
	assert.Equal(t, "new", got[0])
	assert.Equal(t, "t1", got[9])
	assert.NotContains(t, got, "t0")

	listed, err := h.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, got, listed)
}

func TestAddIgnoresBlank(t *testing.T) {
	ctx := context.Background()
	h := New(memory.NewSlot(), 0)
	got, err := h.Add(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	slot := memory.NewSlot()
	h := New(slot, 0)
	_, _ = h.Add(ctx, "a")
	_, _ = h.Add(ctx, "b")

	got, err := h.Remove(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, got)

	require.NoError(t, h.Clear(ctx))
	_, ok, _ := slot.Get(ctx, DefaultKey)
	assert.False(t, ok)
	got, err = h.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	slot := memory.NewSlot()
	_, err := New(slot, 0).Add(ctx, "kept")
	require.NoError(t, err)

	got, err := New(slot, 0).List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, got)
}

func TestUnreadableHistoryStartsEmpty(t *testing.T) {
	ctx := context.Background()
	slot := memory.NewSlot()
	require.NoError(t, slot.Set(ctx, DefaultKey, "{broken"))

	got, err := New(slot, 0).Add(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, got)
}
