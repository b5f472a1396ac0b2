package social_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ncobase/feedsync/auth"
	"github.com/ncobase/feedsync/concurrency/worker"
	"github.com/ncobase/feedsync/config"
	"github.com/ncobase/feedsync/data"
	"github.com/ncobase/feedsync/data/memory"
	"github.com/ncobase/feedsync/history"
	"github.com/ncobase/feedsync/social"
	"github.com/ncobase/feedsync/structs"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type env struct {
	store   *memory.Store
	slot    *memory.Slot
	session *auth.SessionContext
	svc     *social.Service
	cfg     *config.Feed
}

type envOption func(*social.Deps)

func withTx(tx data.Transactor) envOption {
	return func(d *social.Deps) { d.Tx = tx }
}

func newEnv(t *testing.T, opts ...envOption) *env {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	slot := memory.NewSlot()
	provider, err := auth.NewLocalProvider(ctx, store, slot,
		&config.Auth{JWT: &config.JWT{Secret: "test", Expire: time.Hour}},
		auth.WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)

	pool, err := worker.NewPool(&worker.Config{MaxWorkers: 2, QueueSize: 8, TaskTimeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { pool.Stop(context.Background()) })

	cfg := &config.Feed{
		PageSize:           5,
		NotificationSize:   10,
		SearchPreview:      5,
		HistorySize:        10,
		FetchTimeout:       time.Second,
		ToggleMode:         config.ToggleAtomic,
		FollowCompensation: true,
		AuthorWorkers:      2,
		AuthorCacheTTL:     time.Minute,
	}
	session := auth.NewSessionContext(provider)
	deps := social.Deps{
		Store:   store,
		Session: session,
		History: history.New(slot, cfg.HistorySize),
		Pool:    pool,
		Feed:    cfg,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	svc, err := social.New(deps)
	require.NoError(t, err)
	return &env{store: store, slot: slot, session: session, svc: svc, cfg: cfg}
}

func registerBody(name, username string) structs.RegisterBody {
	return structs.RegisterBody{
		Name:            name,
		Username:        username,
		Email:           username + "@example.com",
		DOB:             "1990-01-02",
		Password:        "secret",
		ConfirmPassword: "secret",
	}
}

// register creates a user and leaves them signed in.
func (e *env) register(t *testing.T, username string) *structs.User {
	t.Helper()
	u, err := e.svc.Register(context.Background(), registerBody(fmt.Sprintf("User %s", username), username))
	require.NoError(t, err)
	return u
}

// login switches the session to username.
func (e *env) login(t *testing.T, username string) {
	t.Helper()
	_, err := e.svc.Login(context.Background(), structs.LoginBody{Email: username + "@example.com", Password: "secret"})
	require.NoError(t, err)
}
