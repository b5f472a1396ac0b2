// Package history keeps the bounded, most-recent-first list of search
// terms in the local key-value slot.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/ncobase/feedsync/data"
	"github.com/ncobase/feedsync/logging/logger"
)

const (
	// DefaultKey is the slot key holding the serialized list.
	DefaultKey = "searchHistory"
	// DefaultSize is the maximum number of terms kept.
	DefaultSize = 10
)

// History is a list of distinct terms, newest first, at most size long.
type History struct {
	mu   sync.Mutex
	slot data.Slot
	key  string
	size int
}

// New returns a History over slot. A non-positive size uses DefaultSize.
func New(slot data.Slot, size int) *History {
	if size <= 0 {
		size = DefaultSize
	}
	return &History{slot: slot, key: DefaultKey, size: size}
}

// List returns the stored terms, newest first.
func (h *History) List(ctx context.Context) ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.load(ctx)
}

// Add moves term to the front, dropping an older copy and the oldest
// entry beyond the size limit. Blank terms are ignored.
func (h *History) Add(ctx context.Context, term string) ([]string, error) {
	term = strings.TrimSpace(term)
	h.mu.Lock()
	defer h.mu.Unlock()

	terms, err := h.load(ctx)
	if err != nil {
		return nil, err
	}
	if term == "" {
		return terms, nil
	}
	terms = slices.DeleteFunc(terms, func(t string) bool { return t == term })
	terms = append([]string{term}, terms...)
	if len(terms) > h.size {
		terms = terms[:h.size]
	}
	return terms, h.store(ctx, terms)
}

// Remove deletes term if present.
func (h *History) Remove(ctx context.Context, term string) ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	terms, err := h.load(ctx)
	if err != nil {
		return nil, err
	}
	n := len(terms)
	terms = slices.DeleteFunc(terms, func(t string) bool { return t == term })
	if len(terms) == n {
		return terms, nil
	}
	return terms, h.store(ctx, terms)
}

// Clear removes the whole list.
func (h *History) Clear(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.slot.Remove(ctx, h.key); err != nil {
		return fmt.Errorf("history: clear: %w", err)
	}
	return nil
}

func (h *History) load(ctx context.Context) ([]string, error) {
	raw, ok, err := h.slot.Get(ctx, h.key)
	if err != nil {
		return nil, fmt.Errorf("history: load: %w", err)
	}
	if !ok || raw == "" {
		return []string{}, nil
	}
	var terms []string
	if err := json.Unmarshal([]byte(raw), &terms); err != nil {
		logger.Warn(ctx, "discarding unreadable search history", logger.ErrorKey, err)
		return []string{}, nil
	}
	if len(terms) > h.size {
		terms = terms[:h.size]
	}
	return terms, nil
}

func (h *History) store(ctx context.Context, terms []string) error {
	raw, err := json.Marshal(terms)
	if err != nil {
		return err
	}
	if err := h.slot.Set(ctx, h.key, string(raw)); err != nil {
		return fmt.Errorf("history: store: %w", err)
	}
	return nil
}
