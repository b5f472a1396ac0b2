package social_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/ncobase/feedsync/ecode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTx struct {
	calls atomic.Int32
}

func (tx *recordingTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.calls.Add(1)
	return fn(ctx)
}

func TestFollowWritesBothSides(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	bob := e.register(t, "bob")
	alice := e.register(t, "alice")

	following, err := e.svc.ToggleFollow(ctx, bob.UID)
	require.NoError(t, err)
	assert.True(t, following)

	me, err := e.store.GetUser(ctx, alice.UID)
	require.NoError(t, err)
	assert.Equal(t, []string{bob.UID}, me.Following)
	them, err := e.store.GetUser(ctx, bob.UID)
	require.NoError(t, err)
	assert.Equal(t, []string{alice.UID}, them.Followers)

	card, err := e.svc.UserCard(ctx, bob.UID)
	require.NoError(t, err)
	assert.Equal(t, 1, card.Followers)
	assert.True(t, card.Followed)
	assert.False(t, card.Self)

	following, err = e.svc.ToggleFollow(ctx, bob.UID)
	require.NoError(t, err)
	assert.False(t, following)
	them, err = e.store.GetUser(ctx, bob.UID)
	require.NoError(t, err)
	assert.Empty(t, them.Followers)
}

func TestFollowSelfRejected(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "narcissus")

	card, err := e.svc.UserCard(ctx, u.UID)
	require.NoError(t, err)
	assert.True(t, card.Self)

	_, err = e.svc.ToggleFollow(ctx, u.UID)
	assert.ErrorIs(t, err, ecode.ErrValidation)
}

func TestFollowUnknownUser(t *testing.T) {
	e := newEnv(t)
	e.register(t, "lonely")
	err := e.svc.Follow(context.Background(), "nobody")
	assert.ErrorIs(t, err, ecode.ErrNotFound)
}

func failSecondAdd(e *env) error {
	boom := errors.New("followers write failed")
	var adds atomic.Int32
	e.store.SetFault(func(op string) error {
		if op == "AddUserMember" && adds.Add(1) == 2 {
			return boom
		}
		return nil
	})
	return boom
}

func TestFollowCompensatesHalfWrite(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	bob := e.register(t, "bob")
	alice := e.register(t, "alice")
	boom := failSecondAdd(e)

	following, err := e.svc.ToggleFollow(ctx, bob.UID)
	require.ErrorIs(t, err, boom)
	assert.False(t, following)

	e.store.SetFault(nil)
	me, err := e.store.GetUser(ctx, alice.UID)
	require.NoError(t, err)
	assert.Empty(t, me.Following, "first write undone")
	assert.Equal(t, 1, e.store.Calls("RemoveUserMember"))
}

func TestFollowWithoutCompensationKeepsFirstWrite(t *testing.T) {
	e := newEnv(t)
	e.cfg.FollowCompensation = false
	ctx := context.Background()
	bob := e.register(t, "bob")
	alice := e.register(t, "alice")
	boom := failSecondAdd(e)

	following, err := e.svc.ToggleFollow(ctx, bob.UID)
	require.ErrorIs(t, err, boom)
	assert.True(t, following)

	e.store.SetFault(nil)
	me, err := e.store.GetUser(ctx, alice.UID)
	require.NoError(t, err)
	assert.Equal(t, []string{bob.UID}, me.Following)
	assert.Zero(t, e.store.Calls("RemoveUserMember"))
}

func TestFollowUsesTransactor(t *testing.T) {
	tx := &recordingTx{}
	e := newEnv(t, withTx(tx))
	ctx := context.Background()
	bob := e.register(t, "bob")
	e.register(t, "alice")

	require.NoError(t, e.svc.Follow(ctx, bob.UID))
	assert.Equal(t, int32(1), tx.calls.Load())

	e.register(t, "carol")
	boom := failSecondAdd(e)
	_, err := e.svc.ToggleFollow(ctx, bob.UID)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, int32(2), tx.calls.Load())
	assert.Zero(t, e.store.Calls("RemoveUserMember"), "no compensation inside a transaction")
}
