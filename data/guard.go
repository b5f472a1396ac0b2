package data

import (
	"context"
	"errors"
	"time"

	"github.com/ncobase/feedsync/config"
	"github.com/ncobase/feedsync/ecode"
	"github.com/ncobase/feedsync/logging/logger"
	"github.com/ncobase/feedsync/logging/observes"
	"github.com/ncobase/feedsync/structs"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
)

const tracerName = "github.com/ncobase/feedsync/data"

// Guard wraps a Store with a per-operation timeout, a circuit breaker and
// a trace span, and maps failures to ecode.StoreUnavailable. ErrNotFound
// and ErrDuplicate pass through unchanged.
type Guard struct {
	inner   Store
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
	logger  *logger.Logger
}

// NewGuard wraps inner. A nil breaker config uses the defaults of
// config.FromViper.
func NewGuard(inner Store, cfg *config.Breaker, timeout time.Duration) *Guard {
	if cfg == nil {
		cfg = &config.Breaker{MaxRequests: 100, Interval: 5 * time.Second, Timeout: 3 * time.Second, MinRequests: 3, FailureRatio: 0.6}
	}
	g := &Guard{inner: inner, timeout: timeout, logger: logger.StdLogger()}

	g.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "document-store",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			g.logger.Warn(context.Background(), "circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrNotFound) ||
				errors.Is(err, ErrDuplicate) ||
				errors.Is(err, context.Canceled)
		},
	})
	return g
}

// Inner returns the wrapped store.
func (g *Guard) Inner() Store { return g.inner }

// State reports the breaker state.
func (g *Guard) State() gobreaker.State { return g.cb.State() }

func (g *Guard) do(ctx context.Context, op string, bounded bool, fn func(ctx context.Context) error) (err error) {
	ctx, span := observes.StartSpan(ctx, tracerName, "data."+op, attribute.String("db.operation", op))
	defer func() { observes.EndSpan(span, err) }()

	if bounded && g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	_, err = g.cb.Execute(func() (any, error) {
		return nil, fn(ctx)
	})
	return g.mapErr(ctx, op, err)
}

func (g *Guard) mapErr(ctx context.Context, op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicate) {
		return err
	}
	var coded *ecode.Error
	if errors.As(err, &coded) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		g.logger.Warn(ctx, "store operation timed out", "op", op, "timeout", g.timeout.String())
		return ecode.StoreUnavailable(err)
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ecode.StoreUnavailable(err)
	}
	g.logger.Warn(ctx, "store operation failed", "op", op, logger.ErrorKey, err)
	return ecode.StoreUnavailable(err)
}

func guarded[T any](g *Guard, ctx context.Context, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := g.do(ctx, op, true, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err == nil {
			out = v
		}
		return err
	})
	return out, err
}

func (g *Guard) FindPosts(ctx context.Context, q *Query) ([]*structs.Post, error) {
	return guarded(g, ctx, "FindPosts", func(ctx context.Context) ([]*structs.Post, error) {
		return g.inner.FindPosts(ctx, q)
	})
}

func (g *Guard) GetPost(ctx context.Context, id string) (*structs.Post, error) {
	return guarded(g, ctx, "GetPost", func(ctx context.Context) (*structs.Post, error) {
		return g.inner.GetPost(ctx, id)
	})
}

func (g *Guard) CreatePost(ctx context.Context, p *structs.Post) (*structs.Post, error) {
	return guarded(g, ctx, "CreatePost", func(ctx context.Context) (*structs.Post, error) {
		return g.inner.CreatePost(ctx, p)
	})
}

func (g *Guard) SetPostMembers(ctx context.Context, id, field string, members []string) error {
	return g.do(ctx, "SetPostMembers", true, func(ctx context.Context) error {
		return g.inner.SetPostMembers(ctx, id, field, members)
	})
}

func (g *Guard) AddPostMember(ctx context.Context, id, field, uid string) error {
	return g.do(ctx, "AddPostMember", true, func(ctx context.Context) error {
		return g.inner.AddPostMember(ctx, id, field, uid)
	})
}

func (g *Guard) RemovePostMember(ctx context.Context, id, field, uid string) error {
	return g.do(ctx, "RemovePostMember", true, func(ctx context.Context) error {
		return g.inner.RemovePostMember(ctx, id, field, uid)
	})
}

func (g *Guard) AppendComment(ctx context.Context, id string, c structs.Comment) error {
	return g.do(ctx, "AppendComment", true, func(ctx context.Context) error {
		return g.inner.AppendComment(ctx, id, c)
	})
}

// WatchPosts guards only the subscription setup; the returned channel lives
// as long as ctx.
func (g *Guard) WatchPosts(ctx context.Context, q *Query) (<-chan []*structs.Post, error) {
	var ch <-chan []*structs.Post
	err := g.do(ctx, "WatchPosts", false, func(_ context.Context) error {
		var err error
		ch, err = g.inner.WatchPosts(ctx, q)
		return err
	})
	return ch, err
}

func (g *Guard) GetUser(ctx context.Context, uid string) (*structs.User, error) {
	return guarded(g, ctx, "GetUser", func(ctx context.Context) (*structs.User, error) {
		return g.inner.GetUser(ctx, uid)
	})
}

func (g *Guard) CreateUser(ctx context.Context, u *structs.User) error {
	return g.do(ctx, "CreateUser", true, func(ctx context.Context) error {
		return g.inner.CreateUser(ctx, u)
	})
}

func (g *Guard) SearchUsers(ctx context.Context, term string, limit int) ([]*structs.User, error) {
	return guarded(g, ctx, "SearchUsers", func(ctx context.Context) ([]*structs.User, error) {
		return g.inner.SearchUsers(ctx, term, limit)
	})
}

func (g *Guard) SetUserMembers(ctx context.Context, uid, field string, members []string) error {
	return g.do(ctx, "SetUserMembers", true, func(ctx context.Context) error {
		return g.inner.SetUserMembers(ctx, uid, field, members)
	})
}

func (g *Guard) AddUserMember(ctx context.Context, uid, field, member string) error {
	return g.do(ctx, "AddUserMember", true, func(ctx context.Context) error {
		return g.inner.AddUserMember(ctx, uid, field, member)
	})
}

func (g *Guard) RemoveUserMember(ctx context.Context, uid, field, member string) error {
	return g.do(ctx, "RemoveUserMember", true, func(ctx context.Context) error {
		return g.inner.RemoveUserMember(ctx, uid, field, member)
	})
}

func (g *Guard) CreateAccount(ctx context.Context, a *structs.Account) error {
	return g.do(ctx, "CreateAccount", true, func(ctx context.Context) error {
		return g.inner.CreateAccount(ctx, a)
	})
}

func (g *Guard) GetAccount(ctx context.Context, uid string) (*structs.Account, error) {
	return guarded(g, ctx, "GetAccount", func(ctx context.Context) (*structs.Account, error) {
		return g.inner.GetAccount(ctx, uid)
	})
}

func (g *Guard) GetAccountByEmail(ctx context.Context, email string) (*structs.Account, error) {
	return guarded(g, ctx, "GetAccountByEmail", func(ctx context.Context) (*structs.Account, error) {
		return g.inner.GetAccountByEmail(ctx, email)
	})
}

func (g *Guard) DeleteAccount(ctx context.Context, uid string) error {
	return g.do(ctx, "DeleteAccount", true, func(ctx context.Context) error {
		return g.inner.DeleteAccount(ctx, uid)
	})
}

func (g *Guard) Health(ctx context.Context) error {
	return g.do(ctx, "Health", true, g.inner.Health)
}

func (g *Guard) Close(ctx context.Context) error {
	return g.inner.Close(ctx)
}

// Transactor returns a guarded transactor when the wrapped store supports
// transactions, nil otherwise.
func (g *Guard) Transactor() Transactor {
	tx, ok := g.inner.(Transactor)
	if !ok {
		return nil
	}
	return &guardedTx{g: g, tx: tx}
}

type guardedTx struct {
	g  *Guard
	tx Transactor
}

// WithTransaction runs fn in a transaction. The breaker sees the transaction
// as a single operation; operations inside fn are guarded individually.
func (t *guardedTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.g.do(ctx, "WithTransaction", false, func(ctx context.Context) error {
		return t.tx.WithTransaction(ctx, fn)
	})
}
