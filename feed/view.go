package feed

import (
	"context"
	"sync"
	"time"

	"github.com/ncobase/feedsync/config"
	"github.com/ncobase/feedsync/data"
	"github.com/ncobase/feedsync/paging"
	"github.com/ncobase/feedsync/structs"
)

// Options configures a View.
type Options struct {
	Scope        Scope
	ViewerID     string
	PageSize     int
	FetchTimeout time.Duration
	ToggleMode   string
	// Cursors is shared between views when set.
	Cursors *CursorStore
}

// OptionsFromConfig fills page size, timeout and toggle mode from cfg.
func OptionsFromConfig(cfg *config.Feed, scope Scope, viewerID string) Options {
	o := Options{Scope: scope, ViewerID: viewerID}
	if cfg != nil {
		o.PageSize = cfg.PageSize
		o.FetchTimeout = cfg.FetchTimeout
		o.ToggleMode = cfg.ToggleMode
	}
	return o
}

// View is one feed session: the scope, its aggregated items and the
// trigger that extends them.
type View struct {
	mu       sync.RWMutex
	scope    Scope
	viewerID string
	pageSize int

	fetcher *Fetcher
	toggler *Toggler
	agg     *Aggregator
	trigger *Trigger

	waitMu  sync.Mutex
	waiters map[chan Result]uint64
}

// NewView builds a view over store. Run must be started before LoadMore.
func NewView(store data.PostStore, opts Options) *View {
	if opts.PageSize <= 0 {
		opts.PageSize = paging.DefaultLimit
	}
	v := &View{
		scope:    opts.Scope.resolve(opts.ViewerID),
		viewerID: opts.ViewerID,
		pageSize: opts.PageSize,
		fetcher:  NewFetcher(store, opts.FetchTimeout),
		toggler:  NewToggler(store, opts.ToggleMode),
		waiters:  make(map[chan Result]uint64),
	}
	v.agg = NewAggregator(v.scope.Key(), opts.Cursors)
	v.trigger = NewTrigger(v.load)
	v.trigger.OnComplete(v.notify)
	return v
}

// load fetches the page after the aggregator cursor. Scope, generation
// and cursor are read under v.mu so a concurrent Switch either happens
// before the snapshot or makes AppendPage reject the page.
func (v *View) load(ctx context.Context, _ uint64) (bool, error) {
	v.mu.RLock()
	scope, pageSize := v.scope, v.pageSize
	gen, cursor := v.agg.Generation(), v.agg.Cursor()
	v.mu.RUnlock()

	d, err := Build(scope, v.viewerID, pageSize, cursor)
	if err != nil {
		return false, err
	}
	items, next, err := v.fetcher.Fetch(ctx, d)
	if err != nil {
		return false, err
	}
	v.agg.AppendPage(gen, items, next, d.PageSize)
	return v.agg.Exhausted(), nil
}

// notify hands res to the waiters of its generation.
func (v *View) notify(res Result) {
	v.waitMu.Lock()
	defer v.waitMu.Unlock()
	for ch, gen := range v.waiters {
		if gen != res.Gen {
			continue
		}
		select {
		case ch <- res:
		default:
		}
	}
}

// Run consumes load requests until ctx is done.
func (v *View) Run(ctx context.Context) error {
	return v.trigger.Run(ctx)
}

// Expose signals the end of the list is visible. It does not wait.
func (v *View) Expose() bool {
	_, ok := v.trigger.Expose()
	return ok
}

// LoadMore requests the next page and waits for it. It returns at once
// with the current state when the trigger refuses the request, and with a
// stale result when the view is reset before the page arrives.
func (v *View) LoadMore(ctx context.Context) (Result, error) {
	ch := make(chan Result, 1)
	// Registering under waitMu keeps notify from running between Expose
	// and the registration.
	v.waitMu.Lock()
	gen, ok := v.trigger.Expose()
	if ok {
		v.waiters[ch] = gen
	}
	v.waitMu.Unlock()
	if !ok {
		return Result{Gen: gen, Exhausted: v.trigger.State() == Exhausted}, nil
	}
	defer func() {
		v.waitMu.Lock()
		delete(v.waiters, ch)
		v.waitMu.Unlock()
	}()

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case res := <-ch:
		if res.Stale {
			return res, nil
		}
		return res, res.Err
	}
}

// Switch discards the current items and starts over with scope.
func (v *View) Switch(scope Scope) {
	v.mu.Lock()
	v.scope = scope.resolve(v.viewerID)
	v.agg.Rescope(v.scope.Key())
	v.mu.Unlock()
	v.trigger.Reset()
}

// Reset discards the current items and starts the same scope over.
func (v *View) Reset() {
	v.mu.Lock()
	v.agg.Reset()
	v.mu.Unlock()
	v.trigger.Reset()
}

// Seek makes the next page continue after c, as when resuming from a
// token printed by an earlier session. Items already shown are kept.
func (v *View) Seek(c *paging.Cursor) {
	v.mu.Lock()
	v.agg.Seek(c)
	v.mu.Unlock()
}

// Cursor returns the position the next page continues after, nil before
// the first page.
func (v *View) Cursor() *paging.Cursor {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.agg.Cursor()
}

// Toggle flips the viewer's membership in field of postID.
func (v *View) Toggle(ctx context.Context, postID, field string) (*ToggleResult, error) {
	return v.toggler.Toggle(ctx, v.agg, postID, field, v.viewerID)
}

// Patch applies a local mutation, such as an appended comment.
func (v *View) Patch(postID string, patch Patch) bool {
	return v.agg.ApplyMutation(postID, patch)
}

func (v *View) Scope() Scope {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.scope
}

func (v *View) Items() []*structs.Post { return v.agg.Items() }

func (v *View) Get(id string) (*structs.Post, bool) { return v.agg.Get(id) }

func (v *View) Exhausted() bool { return v.trigger.State() == Exhausted }

func (v *View) State() State { return v.trigger.State() }

func (v *View) PageSize() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.pageSize
}

// SetPageSize changes the size of pages loaded from now on. Non-positive
// sizes are ignored.
func (v *View) SetPageSize(n int) {
	if n <= 0 {
		return
	}
	v.mu.Lock()
	v.pageSize = n
	v.mu.Unlock()
}
