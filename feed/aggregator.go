package feed

import (
	"slices"
	"sync"

	"github.com/ncobase/feedsync/paging"
	"github.com/ncobase/feedsync/structs"
)

// Patch mutates one post in place.
type Patch func(p *structs.Post)

// AddMember adds uid to field if absent.
func AddMember(field, uid string) Patch {
	return func(p *structs.Post) {
		if !p.HasMember(field, uid) {
			p.SetMembers(field, append(slices.Clone(p.Members(field)), uid))
		}
	}
}

// RemoveMember removes uid from field.
func RemoveMember(field, uid string) Patch {
	return func(p *structs.Post) {
		p.SetMembers(field, slices.DeleteFunc(slices.Clone(p.Members(field)), func(m string) bool { return m == uid }))
	}
}

// SetMembers replaces the whole member set of field.
func SetMembers(field string, members []string) Patch {
	return func(p *structs.Post) {
		p.SetMembers(field, slices.Clone(members))
	}
}

// AppendComment appends c to the comment thread.
func AppendComment(c structs.Comment) Patch {
	return func(p *structs.Post) {
		p.Comments = append(slices.Clone(p.Comments), c)
	}
}

// Refresh copies the mutable state of fresh, leaving identity and position
// untouched.
func Refresh(fresh *structs.Post) Patch {
	return func(p *structs.Post) {
		p.LikedBy = slices.Clone(fresh.LikedBy)
		p.Bookmarks = slices.Clone(fresh.Bookmarks)
		p.Comments = slices.Clone(fresh.Comments)
	}
}

// Aggregator is the ordered, de-duplicated post list of one view. Items
// keep store order and first-arrival position; mutations never reorder.
type Aggregator struct {
	mu        sync.RWMutex
	key       string
	cursors   *CursorStore
	items     []*structs.Post
	index     map[string]int
	exhausted bool
	gen       uint64
}

// NewAggregator keeps its cursor in cursors under key. A nil cursors gets
// a private store.
func NewAggregator(key string, cursors *CursorStore) *Aggregator {
	if cursors == nil {
		cursors = NewCursorStore()
	}
	return &Aggregator{key: key, cursors: cursors, index: make(map[string]int)}
}

// Reset clears items, cursor and exhaustion and starts a new generation,
// which it returns.
func (a *Aggregator) Reset() uint64 {
	return a.Rescope(a.Key())
}

// Rescope resets the aggregator and moves it to a new scope key.
func (a *Aggregator) Rescope(key string) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cursors.Clear(a.key)
	a.key = key
	a.cursors.Clear(key)
	a.items = nil
	a.index = make(map[string]int)
	a.exhausted = false
	a.gen++
	return a.gen
}

func (a *Aggregator) Key() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.key
}

func (a *Aggregator) Generation() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.gen
}

// AppendPage merges a fetched page. Items already present are dropped. The
// page is discarded and false returned when gen is not the current
// generation.
func (a *Aggregator) AppendPage(gen uint64, items []*structs.Post, next *paging.Cursor, pageSize int) (added int, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.gen {
		return 0, false
	}
	for _, p := range items {
		if p == nil {
			continue
		}
		if _, seen := a.index[p.ID]; seen {
			continue
		}
		a.index[p.ID] = len(a.items)
		a.items = append(a.items, p.Clone())
		added++
	}
	if next != nil {
		a.cursors.Set(a.key, next)
	}
	a.exhausted = len(items) < pageSize || next == nil
	return added, true
}

// ApplyMutation patches the post with postID. It reports false when the
// post is not in the view.
func (a *Aggregator) ApplyMutation(postID string, patch Patch) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	i, ok := a.index[postID]
	if !ok {
		return false
	}
	p := a.items[i].Clone()
	patch(p)
	a.items[i] = p
	return true
}

// Get returns a copy of the post with id.
func (a *Aggregator) Get(id string) (*structs.Post, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	i, ok := a.index[id]
	if !ok {
		return nil, false
	}
	return a.items[i].Clone(), true
}

// Items returns copies of the posts in view order.
func (a *Aggregator) Items() []*structs.Post {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*structs.Post, len(a.items))
	for i, p := range a.items {
		out[i] = p.Clone()
	}
	return out
}

func (a *Aggregator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.items)
}

func (a *Aggregator) Exhausted() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.exhausted
}

// Seek sets the position the next page continues after. A nil c starts
// from the top.
func (a *Aggregator) Seek(c *paging.Cursor) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cursors.Set(a.key, c)
}

// Cursor returns the position the next page continues after.
func (a *Aggregator) Cursor() *paging.Cursor {
	return a.cursors.Get(a.Key())
}
