package social

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/ncobase/feedsync/ctxutil"
	"github.com/ncobase/feedsync/ecode"
	"github.com/ncobase/feedsync/logging/logger"
	"github.com/ncobase/feedsync/structs"
)

const compensateTimeout = 5 * time.Second

// UserCard is another user's profile as seen by the signed-in user.
type UserCard struct {
	User      *structs.User
	Followers int
	Following int
	// Self hides the follow toggle.
	Self bool
	// Followed reports whether the viewer follows User.
	Followed bool
}

// UserCard loads uid's profile with follower and following counts.
func (s *Service) UserCard(ctx context.Context, uid string) (*UserCard, error) {
	u, err := s.user(ctx, uid)
	if err != nil {
		return nil, err
	}
	viewer := s.session.UID()
	return &UserCard{
		User:      u,
		Followers: len(u.Followers),
		Following: len(u.Following),
		Self:      viewer != "" && viewer == uid,
		Followed:  viewer != "" && slices.Contains(u.Followers, viewer),
	}, nil
}

// ToggleFollow follows target when the signed-in user does not follow it
// yet, and unfollows it otherwise. It reports the resulting state.
func (s *Service) ToggleFollow(ctx context.Context, target string) (bool, error) {
	uid, err := s.session.Require()
	if err != nil {
		return false, err
	}
	me, err := s.user(ctx, uid)
	if err != nil {
		return false, err
	}
	return s.setFollow(ctx, uid, target, !me.IsFollowing(target))
}

// Follow makes the signed-in user follow target. It is a no-op when the
// edge exists.
func (s *Service) Follow(ctx context.Context, target string) error {
	uid, err := s.session.Require()
	if err != nil {
		return err
	}
	_, err = s.setFollow(ctx, uid, target, true)
	return err
}

// Unfollow removes the follow edge to target.
func (s *Service) Unfollow(ctx context.Context, target string) error {
	uid, err := s.session.Require()
	if err != nil {
		return err
	}
	_, err = s.setFollow(ctx, uid, target, false)
	return err
}

// setFollow writes both sides of the edge: uid's following set and
// target's followers set. With a transactor both writes commit together;
// otherwise a failed second write undoes the first when compensation is
// enabled.
func (s *Service) setFollow(ctx context.Context, uid, target string, follow bool) (bool, error) {
	if target == "" || target == uid {
		return false, ecode.ValidationError(map[string]string{"uid": "You cannot follow yourself."})
	}
	if _, err := s.user(ctx, target); err != nil {
		return false, err
	}

	write := func(ctx context.Context, owner, field, member string, add bool) error {
		if add {
			return s.store.AddUserMember(ctx, owner, field, member)
		}
		return s.store.RemoveUserMember(ctx, owner, field, member)
	}
	both := func(ctx context.Context) error {
		if err := write(ctx, uid, structs.FieldFollowing, target, follow); err != nil {
			return err
		}
		if err := write(ctx, target, structs.FieldFollowers, uid, follow); err != nil {
			return &halfWrite{err: err}
		}
		return nil
	}

	if s.tx != nil {
		if err := s.tx.WithTransaction(ctx, both); err != nil {
			return !follow, unwrapHalf(err)
		}
		logger.Info(ctx, "follow updated", "target", target, "follow", follow)
		return follow, nil
	}

	err := both(ctx)
	var half *halfWrite
	if errors.As(err, &half) && s.cfg.FollowCompensation {
		undoCtx, cancel := ctxutil.WithDetached(ctx, compensateTimeout)
		defer cancel()
		if undoErr := write(undoCtx, uid, structs.FieldFollowing, target, !follow); undoErr != nil {
			logger.Error(ctx, "follow compensation failed", "target", target, logger.ErrorKey, undoErr)
			return follow, errors.Join(half.err, undoErr)
		}
		logger.Warn(ctx, "follow compensated", "target", target, logger.ErrorKey, half.err)
		return !follow, half.err
	}
	if half != nil {
		return follow, half.err
	}
	if err != nil {
		return !follow, err
	}
	logger.Info(ctx, "follow updated", "target", target, "follow", follow)
	return follow, nil
}

// halfWrite marks a failure after the first side of a follow edge was
// written.
type halfWrite struct{ err error }

func (h *halfWrite) Error() string { return h.err.Error() }

func (h *halfWrite) Unwrap() error { return h.err }

func unwrapHalf(err error) error {
	var half *halfWrite
	if errors.As(err, &half) {
		return half.err
	}
	return err
}
