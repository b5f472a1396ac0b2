package data

import (
	"context"
	"errors"

	"github.com/ncobase/feedsync/structs"
)

var (
	// ErrNotFound is returned by point reads of a missing document.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a unique key already exists.
	ErrDuplicate = errors.New("duplicate key")
)

// PostStore reads and writes post documents.
type PostStore interface {
	FindPosts(ctx context.Context, q *Query) ([]*structs.Post, error)
	GetPost(ctx context.Context, id string) (*structs.Post, error)
	// CreatePost stores p, assigning its ID and CreatedAt.
	CreatePost(ctx context.Context, p *structs.Post) (*structs.Post, error)
	// SetPostMembers overwrites the whole member set of field.
	SetPostMembers(ctx context.Context, id, field string, members []string) error
	// AddPostMember adds uid to field if absent.
	AddPostMember(ctx context.Context, id, field, uid string) error
	// RemovePostMember removes uid from field if present.
	RemovePostMember(ctx context.Context, id, field, uid string) error
	AppendComment(ctx context.Context, id string, c structs.Comment) error
	// WatchPosts emits the full result of q now and after every change that
	// may affect it, until ctx is done.
	WatchPosts(ctx context.Context, q *Query) (<-chan []*structs.Post, error)
}

// UserStore reads and writes user profiles.
type UserStore interface {
	GetUser(ctx context.Context, uid string) (*structs.User, error)
	CreateUser(ctx context.Context, u *structs.User) error
	// SearchUsers matches term case-insensitively as a substring of the
	// username or display name. An empty term matches every user and a
	// non-positive limit returns all matches.
	SearchUsers(ctx context.Context, term string, limit int) ([]*structs.User, error)
	SetUserMembers(ctx context.Context, uid, field string, members []string) error
	AddUserMember(ctx context.Context, uid, field, member string) error
	RemoveUserMember(ctx context.Context, uid, field, member string) error
}

// AccountStore holds identity provider records.
type AccountStore interface {
	CreateAccount(ctx context.Context, a *structs.Account) error
	GetAccount(ctx context.Context, uid string) (*structs.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*structs.Account, error)
	DeleteAccount(ctx context.Context, uid string) error
}

// Transactor is implemented by stores that can run several writes
// atomically.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store is the full document store.
type Store interface {
	PostStore
	UserStore
	AccountStore
	Health(ctx context.Context) error
	Close(ctx context.Context) error
}

// Slot is the local persisted key-value slot.
type Slot interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}
