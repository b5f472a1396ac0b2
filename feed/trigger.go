package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/ncobase/feedsync/logging/logger"
)

// State of a Trigger.
type State int

const (
	Idle State = iota
	Fetching
	Exhausted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Exhausted:
		return "exhausted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// LoadFunc loads one page for generation gen and reports whether the feed
// is exhausted.
type LoadFunc func(ctx context.Context, gen uint64) (exhausted bool, err error)

// Result describes a finished load.
type Result struct {
	Gen       uint64
	Exhausted bool
	Err       error
	// Stale is set when the trigger was reset while the load ran.
	Stale bool
}

// Trigger turns "end of list visible" events into page loads, one at a
// time. Exposures are accepted only while Idle; everything else is
// dropped. Run is the single consumer.
type Trigger struct {
	mu       sync.Mutex
	state    State
	gen      uint64
	events   chan uint64
	load     LoadFunc
	observer func(Result)
}

// NewTrigger returns an Idle trigger calling load for accepted exposures.
func NewTrigger(load LoadFunc) *Trigger {
	return &Trigger{events: make(chan uint64, 1), load: load}
}

// OnComplete registers fn to be called after every load, from the Run
// goroutine. A queued load dropped by Reset is reported as stale from the
// resetting goroutine.
func (t *Trigger) OnComplete(fn func(Result)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observer = fn
}

// Expose reports the sentinel as visible. When a load was queued it
// returns the generation the load belongs to and true.
func (t *Trigger) Expose() (uint64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Idle {
		return t.gen, false
	}
	select {
	case t.events <- t.gen:
		t.state = Fetching
		return t.gen, true
	default:
		return t.gen, false
	}
}

// Reset returns the trigger to Idle under a new generation and returns it.
// A load still running for the old generation completes without changing
// state.
func (t *Trigger) Reset() uint64 {
	t.mu.Lock()
	dropped, pending := uint64(0), false
	select {
	case dropped = <-t.events:
		pending = true
	default:
	}
	t.gen++
	t.state = Idle
	gen, observer := t.gen, t.observer
	t.mu.Unlock()

	if pending && observer != nil {
		observer(Result{Gen: dropped, Stale: true})
	}
	return gen
}

func (t *Trigger) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Trigger) Generation() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gen
}

// Run consumes exposures until ctx is done.
func (t *Trigger) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case gen := <-t.events:
			t.handle(ctx, gen)
		}
	}
}

func (t *Trigger) handle(ctx context.Context, gen uint64) {
	exhausted, err := t.load(ctx, gen)
	res := Result{Gen: gen, Exhausted: exhausted, Err: err}

	t.mu.Lock()
	if gen != t.gen {
		res.Stale = true
	} else if err != nil {
		t.state = Idle
	} else if exhausted {
		t.state = Exhausted
	} else {
		t.state = Idle
	}
	observer := t.observer
	t.mu.Unlock()

	if err != nil && !res.Stale {
		logger.Warn(ctx, "page load failed", "generation", gen, logger.ErrorKey, err)
	}
	if observer != nil {
		observer(res)
	}
}
