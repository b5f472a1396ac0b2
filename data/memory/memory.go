package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ncobase/feedsync/config"
	"github.com/ncobase/feedsync/data"
	"github.com/ncobase/feedsync/data/nanoid"
	"github.com/ncobase/feedsync/paging"
	"github.com/ncobase/feedsync/structs"
)

func init() {
	data.RegisterDriver(&driver{})
}

type driver struct{}

func (d *driver) Name() string { return "memory" }

func (d *driver) Open(_ context.Context, _ *config.Data) (data.Store, error) {
	return New(), nil
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock assigning CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is an in-process document store. It evaluates the same queries as
// the mongodb driver and backs tests and the offline mode.
type Store struct {
	mu       sync.Mutex
	posts    map[string]*structs.Post
	users    map[string]*structs.User
	accounts map[string]*structs.Account
	watchers map[*watcher]struct{}
	now      func() time.Time
	fault    func(op string) error
	calls    map[string]int
}

type watcher struct {
	q  *data.Query
	ch chan []*structs.Post
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		posts:    make(map[string]*structs.Post),
		users:    make(map[string]*structs.User),
		accounts: make(map[string]*structs.Account),
		watchers: make(map[*watcher]struct{}),
		now:      time.Now,
		calls:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetFault installs a hook consulted before every operation; a non-nil
// return fails the operation with that error.
func (s *Store) SetFault(fn func(op string) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = fn
}

// Calls returns how many times op was invoked.
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// enter records op and applies the fault hook. Callers hold s.mu.
func (s *Store) enter(ctx context.Context, op string) error {
	s.calls[op]++
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.fault != nil {
		return s.fault(op)
	}
	return nil
}

// InsertPost stores p as given, keeping its ID and CreatedAt.
func (s *Store) InsertPost(p *structs.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[p.ID] = p.Clone()
	s.notifyLocked()
}

func (s *Store) FindPosts(ctx context.Context, q *data.Query) ([]*structs.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "FindPosts"); err != nil {
		return nil, err
	}
	return s.findLocked(q), nil
}

func (s *Store) findLocked(q *data.Query) []*structs.Post {
	out := make([]*structs.Post, 0)
	for _, p := range s.posts {
		if matchPost(p, q.Filters) {
			out = append(out, p)
		}
	}
	sortPosts(out, q.Desc)

	if q.StartAfter != nil {
		kept := out[:0]
		for _, p := range out {
			if afterCursor(q.StartAfter, p, q.Desc) {
				kept = append(kept, p)
			}
		}
		out = kept
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}

	res := make([]*structs.Post, len(out))
	for i, p := range out {
		res[i] = p.Clone()
	}
	return res
}

func afterCursor(c *paging.Cursor, p *structs.Post, desc bool) bool {
	if desc {
		return c.After(p.CreatedAt, p.ID)
	}
	if p.CreatedAt.Equal(c.CreatedAt) {
		return p.ID > c.ID
	}
	return p.CreatedAt.After(c.CreatedAt)
}

func sortPosts(posts []*structs.Post, desc bool) {
	sort.Slice(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if desc {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if desc {
			return a.ID > b.ID
		}
		return a.ID < b.ID
	})
}

func (s *Store) GetPost(ctx context.Context, id string) (*structs.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "GetPost"); err != nil {
		return nil, err
	}
	p, ok := s.posts[id]
	if !ok {
		return nil, data.ErrNotFound
	}
	return p.Clone(), nil
}

func (s *Store) CreatePost(ctx context.Context, p *structs.Post) (*structs.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "CreatePost"); err != nil {
		return nil, err
	}
	id, err := nanoid.New()
	if err != nil {
		return nil, fmt.Errorf("generate post id: %w", err)
	}
	c := p.Clone()
	c.ID = id
	c.CreatedAt = s.now()
	if c.LikedBy == nil {
		c.LikedBy = []string{}
	}
	if c.Bookmarks == nil {
		c.Bookmarks = []string{}
	}
	if c.Comments == nil {
		c.Comments = []structs.Comment{}
	}
	s.posts[id] = c
	s.notifyLocked()
	return c.Clone(), nil
}

func (s *Store) mutatePost(ctx context.Context, op, id string, fn func(p *structs.Post)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, op); err != nil {
		return err
	}
	p, ok := s.posts[id]
	if !ok {
		return data.ErrNotFound
	}
	fn(p)
	s.notifyLocked()
	return nil
}

func (s *Store) SetPostMembers(ctx context.Context, id, field string, members []string) error {
	if !structs.IsPostField(field) {
		return fmt.Errorf("memory: unknown post field %q", field)
	}
	return s.mutatePost(ctx, "SetPostMembers", id, func(p *structs.Post) {
		p.SetMembers(field, slices.Clone(members))
	})
}

func (s *Store) AddPostMember(ctx context.Context, id, field, uid string) error {
	if !structs.IsPostField(field) {
		return fmt.Errorf("memory: unknown post field %q", field)
	}
	return s.mutatePost(ctx, "AddPostMember", id, func(p *structs.Post) {
		p.SetMembers(field, addToSet(p.Members(field), uid))
	})
}

func (s *Store) RemovePostMember(ctx context.Context, id, field, uid string) error {
	if !structs.IsPostField(field) {
		return fmt.Errorf("memory: unknown post field %q", field)
	}
	return s.mutatePost(ctx, "RemovePostMember", id, func(p *structs.Post) {
		p.SetMembers(field, pull(p.Members(field), uid))
	})
}

func (s *Store) AppendComment(ctx context.Context, id string, c structs.Comment) error {
	return s.mutatePost(ctx, "AppendComment", id, func(p *structs.Post) {
		p.Comments = append(p.Comments, c)
	})
}

// WatchPosts emits the current result immediately and again after every
// post write. Only the latest result is buffered.
func (s *Store) WatchPosts(ctx context.Context, q *data.Query) (<-chan []*structs.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "WatchPosts"); err != nil {
		return nil, err
	}
	w := &watcher{q: q, ch: make(chan []*structs.Post, 1)}
	s.watchers[w] = struct{}{}
	w.ch <- s.findLocked(q)

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers, w)
		close(w.ch)
		s.mu.Unlock()
	}()
	return w.ch, nil
}

func (s *Store) notifyLocked() {
	for w := range s.watchers {
		res := s.findLocked(w.q)
		select {
		case <-w.ch:
		default:
		}
		w.ch <- res
	}
}

func (s *Store) GetUser(ctx context.Context, uid string) (*structs.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "GetUser"); err != nil {
		return nil, err
	}
	u, ok := s.users[uid]
	if !ok {
		return nil, data.ErrNotFound
	}
	return u.Clone(), nil
}

func (s *Store) CreateUser(ctx context.Context, u *structs.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "CreateUser"); err != nil {
		return err
	}
	if _, ok := s.users[u.UID]; ok {
		return data.ErrDuplicate
	}
	c := u.Clone()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	if c.Followers == nil {
		c.Followers = []string{}
	}
	if c.Following == nil {
		c.Following = []string{}
	}
	s.users[u.UID] = c
	return nil
}

func (s *Store) SearchUsers(ctx context.Context, term string, limit int) ([]*structs.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "SearchUsers"); err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(term))
	out := make([]*structs.User, 0)
	for _, u := range s.users {
		if strings.Contains(strings.ToLower(u.Username), needle) || strings.Contains(strings.ToLower(u.Name), needle) {
			out = append(out, u.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) mutateUser(ctx context.Context, op, uid, field string, fn func(u *structs.User)) error {
	if !structs.IsUserField(field) {
		return fmt.Errorf("memory: unknown user field %q", field)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, op); err != nil {
		return err
	}
	u, ok := s.users[uid]
	if !ok {
		return data.ErrNotFound
	}
	fn(u)
	return nil
}

func (s *Store) SetUserMembers(ctx context.Context, uid, field string, members []string) error {
	return s.mutateUser(ctx, "SetUserMembers", uid, field, func(u *structs.User) {
		u.SetMembers(field, slices.Clone(members))
	})
}

func (s *Store) AddUserMember(ctx context.Context, uid, field, member string) error {
	return s.mutateUser(ctx, "AddUserMember", uid, field, func(u *structs.User) {
		u.SetMembers(field, addToSet(u.Members(field), member))
	})
}

func (s *Store) RemoveUserMember(ctx context.Context, uid, field, member string) error {
	return s.mutateUser(ctx, "RemoveUserMember", uid, field, func(u *structs.User) {
		u.SetMembers(field, pull(u.Members(field), member))
	})
}

func (s *Store) CreateAccount(ctx context.Context, a *structs.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "CreateAccount"); err != nil {
		return err
	}
	email := strings.ToLower(a.Email)
	for _, existing := range s.accounts {
		if existing.UID == a.UID || strings.ToLower(existing.Email) == email {
			return data.ErrDuplicate
		}
	}
	c := *a
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	s.accounts[a.UID] = &c
	return nil
}

func (s *Store) GetAccount(ctx context.Context, uid string) (*structs.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "GetAccount"); err != nil {
		return nil, err
	}
	a, ok := s.accounts[uid]
	if !ok {
		return nil, data.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*structs.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "GetAccountByEmail"); err != nil {
		return nil, err
	}
	email = strings.ToLower(email)
	for _, a := range s.accounts {
		if strings.ToLower(a.Email) == email {
			c := *a
			return &c, nil
		}
	}
	return nil, data.ErrNotFound
}

func (s *Store) DeleteAccount(ctx context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "DeleteAccount"); err != nil {
		return err
	}
	if _, ok := s.accounts[uid]; !ok {
		return data.ErrNotFound
	}
	delete(s.accounts, uid)
	return nil
}

func (s *Store) Health(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close(context.Context) error { return nil }

func addToSet(set []string, v string) []string {
	if slices.Contains(set, v) {
		return set
	}
	return append(slices.Clone(set), v)
}

func pull(set []string, v string) []string {
	out := make([]string, 0, len(set))
	for _, e := range set {
		if e != v {
			out = append(out, e)
		}
	}
	return out
}
