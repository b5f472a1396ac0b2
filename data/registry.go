package data

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ncobase/feedsync/config"
)

// Driver opens a Store from configuration. Drivers register themselves in
// init, so importing a driver package makes it available by name:
//
//	import _ "github.com/ncobase/feedsync/data/mongodb"
type Driver interface {
	Name() string
	Open(ctx context.Context, cfg *config.Data) (Store, error)
}

// SlotDriver opens a local key-value slot.
type SlotDriver interface {
	Name() string
	OpenSlot(ctx context.Context, cfg *config.Data) (Slot, error)
}

var (
	driversMu   sync.RWMutex
	drivers     = make(map[string]Driver)
	slotDrivers = make(map[string]SlotDriver)
)

// RegisterDriver makes a store driver available by name.
func RegisterDriver(d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if d == nil {
		panic("data: RegisterDriver driver is nil")
	}
	drivers[d.Name()] = d
}

// RegisterSlotDriver makes a slot driver available by name.
func RegisterSlotDriver(d SlotDriver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if d == nil {
		panic("data: RegisterSlotDriver driver is nil")
	}
	slotDrivers[d.Name()] = d
}

// GetDriver returns the store driver registered under name.
func GetDriver(name string) (Driver, error) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	d, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("data: store driver %q not registered (forgotten import?)", name)
	}
	return d, nil
}

// GetSlotDriver returns the slot driver registered under name.
func GetSlotDriver(name string) (SlotDriver, error) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	d, ok := slotDrivers[name]
	if !ok {
		return nil, fmt.Errorf("data: slot driver %q not registered (forgotten import?)", name)
	}
	return d, nil
}

// ListRegisteredDrivers returns registered driver names by kind.
func ListRegisteredDrivers() map[string][]string {
	driversMu.RLock()
	defer driversMu.RUnlock()

	out := map[string][]string{"store": {}, "slot": {}}
	for name := range drivers {
		out["store"] = append(out["store"], name)
	}
	for name := range slotDrivers {
		out["slot"] = append(out["slot"], name)
	}
	sort.Strings(out["store"])
	sort.Strings(out["slot"])
	return out
}

// Open opens the configured store.
func Open(ctx context.Context, cfg *config.Data) (Store, error) {
	d, err := GetDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}
	return d.Open(ctx, cfg)
}

// OpenSlot opens the configured local slot.
func OpenSlot(ctx context.Context, cfg *config.Data) (Slot, error) {
	d, err := GetSlotDriver(cfg.Local.Backend)
	if err != nil {
		return nil, err
	}
	return d.OpenSlot(ctx, cfg)
}
