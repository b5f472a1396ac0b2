// Package social implements the user-facing operations of the client:
// registration, posting, commenting, following, user search and
// notifications. Feed paging and like/bookmark toggles live in package feed.
package social

import (
	"context"
	"errors"
	"time"

	"github.com/ncobase/feedsync/auth"
	"github.com/ncobase/feedsync/concurrency/worker"
	"github.com/ncobase/feedsync/config"
	"github.com/ncobase/feedsync/data"
	"github.com/ncobase/feedsync/data/cache"
	"github.com/ncobase/feedsync/data/meili"
	"github.com/ncobase/feedsync/ecode"
	"github.com/ncobase/feedsync/feed"
	"github.com/ncobase/feedsync/history"
	"github.com/ncobase/feedsync/structs"
)

// AnonymousName is shown for authors without a profile name.
const AnonymousName = "Anonymous"

// Deps are the collaborators of a Service. Store and Session are required.
type Deps struct {
	Store   data.Store
	Session *auth.SessionContext
	// Tx runs follow writes atomically when set.
	Tx data.Transactor
	// Index serves user search when set and healthy.
	Index   *meili.UserIndex
	History *history.History
	// Authors caches profiles for notifications.
	Authors cache.ICache[structs.Profile]
	Pool    *worker.Pool
	Feed    *config.Feed
}

// Service is the social client. It is safe for concurrent use.
type Service struct {
	store   data.Store
	session *auth.SessionContext
	tx      data.Transactor
	index   *meili.UserIndex
	history *history.History
	authors cache.ICache[structs.Profile]
	pool    *worker.Pool
	cfg     *config.Feed
	now     func() time.Time
}

// New returns a Service. Missing optional dependencies fall back to
// in-process defaults.
func New(d Deps) (*Service, error) {
	if d.Store == nil || d.Session == nil {
		return nil, errors.New("social: store and session are required")
	}
	s := &Service{
		store:   d.Store,
		session: d.Session,
		tx:      d.Tx,
		index:   d.Index,
		history: d.History,
		authors: d.Authors,
		pool:    d.Pool,
		cfg:     d.Feed,
		now:     time.Now,
	}
	if s.cfg == nil {
		s.cfg = &config.Feed{
			PageSize:           5,
			NotificationSize:   10,
			SearchPreview:      5,
			HistorySize:        10,
			FetchTimeout:       10 * time.Second,
			ToggleMode:         config.ToggleAtomic,
			FollowCompensation: true,
			AuthorWorkers:      4,
			AuthorCacheTTL:     10 * time.Minute,
		}
	}
	if s.authors == nil {
		lru, err := cache.NewLRU[structs.Profile](256)
		if err != nil {
			return nil, err
		}
		s.authors = lru
	}
	return s, nil
}

// Session returns the session context.
func (s *Service) Session() *auth.SessionContext { return s.session }

// History returns the search history, or nil.
func (s *Service) History() *history.History { return s.history }

// NewView opens a feed view over scope for the signed-in user. Run must be
// started on the returned view before paging.
func (s *Service) NewView(scope feed.Scope) *feed.View {
	return feed.NewView(s.store, feed.OptionsFromConfig(s.cfg, scope, s.session.UID()))
}

// Following returns a view of posts by the users the signed-in user
// follows.
func (s *Service) Following(ctx context.Context) (*feed.View, error) {
	uid, err := s.session.Require()
	if err != nil {
		return nil, err
	}
	me, err := s.user(ctx, uid)
	if err != nil {
		return nil, err
	}
	return s.NewView(feed.ByAuthorSet(me.Following)), nil
}

func (s *Service) user(ctx context.Context, uid string) (*structs.User, error) {
	u, err := s.store.GetUser(ctx, uid)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, ecode.NotFoundError("user")
		}
		return nil, err
	}
	return u, nil
}

// displayName returns the profile name of uid or AnonymousName.
func (s *Service) displayName(ctx context.Context, uid string) string {
	u, err := s.store.GetUser(ctx, uid)
	if err != nil || u.Name == "" {
		return AnonymousName
	}
	return u.Name
}
