package feed

import (
	"context"
	"errors"
	"slices"

	"github.com/ncobase/feedsync/config"
	"github.com/ncobase/feedsync/data"
	"github.com/ncobase/feedsync/ecode"
	"github.com/ncobase/feedsync/logging/logger"
	"github.com/ncobase/feedsync/structs"
)

// Toggler flips one member of a post's like or bookmark set.
type Toggler struct {
	store data.PostStore
	mode  string
}

// NewToggler writes with single-member add and remove unless mode is
// config.ToggleOverwrite, which writes the whole recomputed set.
func NewToggler(store data.PostStore, mode string) *Toggler {
	if mode != config.ToggleOverwrite {
		mode = config.ToggleAtomic
	}
	return &Toggler{store: store, mode: mode}
}

func (t *Toggler) Mode() string { return t.mode }

// ToggleResult is the outcome of a toggle. Post is the reconciled state,
// or the optimistic one when the reconcile read failed.
type ToggleResult struct {
	Added bool
	Post  *structs.Post
}

// Toggle inverts memberID's membership in field of postID. agg may be nil;
// when set, it gets the optimistic patch before the write and the
// reconciled state after it. A failed write keeps the optimistic patch
// only if the reconcile read also fails.
func (t *Toggler) Toggle(ctx context.Context, agg *Aggregator, postID, field, memberID string) (*ToggleResult, error) {
	if memberID == "" {
		return nil, ecode.ErrNoLogin
	}
	if !structs.IsPostField(field) {
		return nil, ecode.ValidationError(map[string]string{"field": ecode.FieldIsInvalid(field)})
	}

	current, err := t.current(ctx, agg, postID)
	if err != nil {
		return nil, err
	}
	added := !current.HasMember(field, memberID)

	var patch Patch
	if added {
		patch = AddMember(field, memberID)
	} else {
		patch = RemoveMember(field, memberID)
	}
	optimistic := current.Clone()
	patch(optimistic)
	if agg != nil {
		agg.ApplyMutation(postID, patch)
	}

	writeErr := t.write(ctx, postID, field, memberID, added, optimistic.Members(field))
	if writeErr != nil {
		logger.Warn(ctx, "toggle write failed", "post", postID, "field", field, logger.ErrorKey, writeErr)
	}

	fresh, err := t.store.GetPost(ctx, postID)
	if err != nil {
		logger.Warn(ctx, "toggle reconcile failed", "post", postID, logger.ErrorKey, err)
		if writeErr != nil {
			return nil, toggleErr(writeErr)
		}
		return &ToggleResult{Added: added, Post: optimistic}, nil
	}
	if agg != nil {
		agg.ApplyMutation(postID, Refresh(fresh))
	}
	if writeErr != nil {
		return nil, toggleErr(writeErr)
	}
	return &ToggleResult{Added: fresh.HasMember(field, memberID), Post: fresh}, nil
}

func (t *Toggler) current(ctx context.Context, agg *Aggregator, postID string) (*structs.Post, error) {
	if agg != nil && t.mode == config.ToggleAtomic {
		if p, ok := agg.Get(postID); ok {
			return p, nil
		}
	}
	p, err := t.store.GetPost(ctx, postID)
	if err != nil {
		return nil, toggleErr(err)
	}
	return p, nil
}

func (t *Toggler) write(ctx context.Context, postID, field, memberID string, add bool, members []string) error {
	if t.mode == config.ToggleOverwrite {
		return t.store.SetPostMembers(ctx, postID, field, slices.Clone(members))
	}
	if add {
		return t.store.AddPostMember(ctx, postID, field, memberID)
	}
	return t.store.RemovePostMember(ctx, postID, field, memberID)
}

func toggleErr(err error) error {
	if errors.Is(err, data.ErrNotFound) {
		return ecode.NotFoundError("post")
	}
	return storeErr(err)
}
