// Package auth signs users in and out and exposes the current session
// through an explicit SessionContext.
package auth

import (
	"context"

	"github.com/ncobase/feedsync/structs"
)

// Provider is an identity provider.
type Provider interface {
	// SignIn returns a session or an ecode AuthFailed error.
	SignIn(ctx context.Context, email, password string) (*structs.Session, error)
	// SignUp creates an account and signs it in.
	SignUp(ctx context.Context, email, password string) (*structs.Session, error)
	// CurrentSession returns nil, nil when signed out.
	CurrentSession(ctx context.Context) (*structs.Session, error)
	SignOut(ctx context.Context) error
}
