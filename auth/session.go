package auth

import (
	"context"
	"sync"

	"github.com/ncobase/feedsync/ctxutil"
	"github.com/ncobase/feedsync/ecode"
	"github.com/ncobase/feedsync/structs"
)

// SessionContext holds the signed-in session for one client and notifies
// subscribers when it changes.
type SessionContext struct {
	provider Provider

	mu      sync.RWMutex
	current *structs.Session
	subs    map[int]func(*structs.Session)
	nextID  int
}

// NewSessionContext returns a signed-out context over provider.
func NewSessionContext(provider Provider) *SessionContext {
	return &SessionContext{provider: provider, subs: make(map[int]func(*structs.Session))}
}

// Load restores a persisted session, if any.
func (s *SessionContext) Load(ctx context.Context) (*structs.Session, error) {
	session, err := s.provider.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	s.set(session)
	return session, nil
}

// Current returns the session or nil.
func (s *SessionContext) Current() *structs.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// UID returns the signed-in uid or "".
func (s *SessionContext) UID() string {
	if cur := s.Current(); cur != nil {
		return cur.UID
	}
	return ""
}

// Require returns the uid or ecode.ErrNoLogin.
func (s *SessionContext) Require() (string, error) {
	uid := s.UID()
	if uid == "" {
		return "", ecode.ErrNoLogin
	}
	return uid, nil
}

// WithContext tags ctx with the signed-in uid for logging.
func (s *SessionContext) WithContext(ctx context.Context) context.Context {
	if uid := s.UID(); uid != "" {
		return ctxutil.SetUserID(ctx, uid)
	}
	return ctx
}

func (s *SessionContext) SignIn(ctx context.Context, email, password string) (*structs.Session, error) {
	session, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.set(session)
	return session, nil
}

func (s *SessionContext) SignUp(ctx context.Context, email, password string) (*structs.Session, error) {
	session, err := s.provider.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.set(session)
	return session, nil
}

func (s *SessionContext) SignOut(ctx context.Context) error {
	if err := s.provider.SignOut(ctx); err != nil {
		return err
	}
	s.set(nil)
	return nil
}

// Subscribe registers fn for session changes. fn is called with nil on
// sign-out. The returned func removes the subscription.
func (s *SessionContext) Subscribe(fn func(*structs.Session)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *SessionContext) set(session *structs.Session) {
	s.mu.Lock()
	s.current = session
	subs := make([]func(*structs.Session), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(session)
	}
}
