package memory

import (
	"context"
	"sync"

	"github.com/ncobase/feedsync/config"
	"github.com/ncobase/feedsync/data"
)

func init() {
	data.RegisterSlotDriver(&slotDriver{})
}

type slotDriver struct{}

func (d *slotDriver) Name() string { return "memory" }

func (d *slotDriver) OpenSlot(context.Context, *config.Data) (data.Slot, error) {
	return NewSlot(), nil
}

// Slot is a process-local key-value slot.
type Slot struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewSlot returns an empty slot.
func NewSlot() *Slot {
	return &Slot{m: make(map[string]string)}
}

func (s *Slot) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *Slot) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *Slot) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

func (s *Slot) Close() error { return nil }
