package feed

import (
	"sync"

	"github.com/ncobase/feedsync/paging"
)

// CursorStore holds the last delivered position per scope key.
type CursorStore struct {
	mu      sync.RWMutex
	cursors map[string]*paging.Cursor
}

func NewCursorStore() *CursorStore {
	return &CursorStore{cursors: make(map[string]*paging.Cursor)}
}

// Get returns the cursor for key, nil before the first page.
func (s *CursorStore) Get(key string) *paging.Cursor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.cursors[key]
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

func (s *CursorStore) Set(key string, c *paging.Cursor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c == nil {
		delete(s.cursors, key)
		return
	}
	cp := *c
	s.cursors[key] = &cp
}

func (s *CursorStore) Clear(key string) {
	s.Set(key, nil)
}

func (s *CursorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cursors)
}
