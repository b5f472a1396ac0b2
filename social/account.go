package social

import (
	"context"
	"strings"

	"github.com/ncobase/feedsync/ctxutil"
	"github.com/ncobase/feedsync/logging/logger"
	"github.com/ncobase/feedsync/structs"
	"github.com/ncobase/feedsync/validation"
)

// Register validates body, creates the account and its profile, and
// signs the new user in.
func (s *Service) Register(ctx context.Context, body structs.RegisterBody) (*structs.User, error) {
	body.Name = strings.TrimSpace(body.Name)
	body.Username = strings.TrimSpace(body.Username)
	body.Email = strings.TrimSpace(body.Email)
	if err := validation.Validate(&body); err != nil {
		return nil, err
	}

	session, err := s.session.SignUp(ctx, body.Email, body.Password)
	if err != nil {
		return nil, err
	}
	u := &structs.User{
		UID:        session.UID,
		Name:       body.Name,
		Username:   body.Username,
		Email:      session.Email,
		DOB:        body.DOB,
		ProfilePic: structs.DefaultProfilePic,
		Followers:  []string{},
		Following:  []string{},
		CreatedAt:  s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		s.undoSignUp(ctx, u.UID)
		return nil, err
	}
	if s.index != nil {
		if err := s.index.Index(ctx, u); err != nil {
			logger.Warn(ctx, "failed to index user", "uid", u.UID, logger.ErrorKey, err)
		}
	}
	logger.Info(ctx, "User registered", "uid", u.UID, "username", u.Username)
	return u, nil
}

// undoSignUp drops the account and session of a user whose profile could
// not be created, so the email can register again.
func (s *Service) undoSignUp(ctx context.Context, uid string) {
	ctx, cancel := ctxutil.WithDetached(ctx, compensateTimeout)
	defer cancel()
	if err := s.store.DeleteAccount(ctx, uid); err != nil {
		logger.Error(ctx, "failed to remove account without profile", "uid", uid, logger.ErrorKey, err)
	}
	if err := s.session.SignOut(ctx); err != nil {
		logger.Warn(ctx, "failed to sign out after registration failure", logger.ErrorKey, err)
	}
}

// Login signs in with body.
func (s *Service) Login(ctx context.Context, body structs.LoginBody) (*structs.Session, error) {
	if err := validation.Validate(&body); err != nil {
		return nil, err
	}
	return s.session.SignIn(ctx, body.Email, body.Password)
}

// Logout signs out.
func (s *Service) Logout(ctx context.Context) error {
	return s.session.SignOut(ctx)
}

// Me returns the signed-in user's profile.
func (s *Service) Me(ctx context.Context) (*structs.User, error) {
	uid, err := s.session.Require()
	if err != nil {
		return nil, err
	}
	return s.user(ctx, uid)
}
