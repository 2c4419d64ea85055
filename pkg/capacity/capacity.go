// Package capacity resolves the total room capacity applicable to a year.
//
// A Resolver is the single source of capacity for a deployment: per-year
// overrides take precedence over a default that an operator may change at
// runtime. Aggregations receive capacity through the Source interface rather
// than reading package state.
package capacity

import (
	"fmt"
	"sort"
	"sync"

	"github.com/iwvelando/hotel-forecast/pkg/constants"
)

// Source resolves the number of rooms available on each day of a year.
type Source interface {
	For(year int) (int, error)
}

// ConfigurationError reports a capacity that is not strictly positive.
type ConfigurationError struct {
	Year  int // 0 when the error concerns the default
	Rooms int
}

func (e *ConfigurationError) Error() string {
	if e.Year == 0 {
		return fmt.Sprintf("configuration error: default capacity must be positive, got %d", e.Rooms)
	}
	return fmt.Sprintf("configuration error: capacity for %d must be positive, got %d", e.Year, e.Rooms)
}

// Resolver holds the default capacity and per-year overrides. It is safe for
// concurrent use; concurrent writers are last-write-wins.
type Resolver struct {
	mu           sync.RWMutex
	defaultRooms int
	overrides    map[int]int
}

// NewResolver creates a resolver with the given default capacity and no
// overrides. A non-positive default is rejected.
func NewResolver(defaultRooms int) (*Resolver, error) {
	return NewFromConfig(defaultRooms, nil)
}

// NewFromConfig creates a resolver from a default and a year → rooms table.
// Every entry must be positive.
func NewFromConfig(defaultRooms int, overrides map[int]int) (*Resolver, error) {
	if defaultRooms <= 0 {
		return nil, &ConfigurationError{Rooms: defaultRooms}
	}
	r := &Resolver{
		defaultRooms: defaultRooms,
		overrides:    make(map[int]int, len(overrides)),
	}
	for year, rooms := range overrides {
		if rooms <= 0 {
			return nil, &ConfigurationError{Year: year, Rooms: rooms}
		}
		r.overrides[year] = rooms
	}
	return r, nil
}

// Default returns a resolver using the built-in default capacity.
func Default() *Resolver {
	r, _ := NewResolver(constants.DefaultTotalRooms)
	return r
}

// For returns the capacity for year: the override when present, otherwise the
// current default.
func (r *Resolver) For(year int) (int, error) {
	r.mu.RLock()
	rooms, ok := r.overrides[year]
	if !ok {
		rooms = r.defaultRooms
	}
	r.mu.RUnlock()

	if rooms <= 0 {
		return 0, &ConfigurationError{Year: year, Rooms: rooms}
	}
	return rooms, nil
}

// DefaultRooms returns the current default capacity.
func (r *Resolver) DefaultRooms() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultRooms
}

// SetDefault changes the process-wide default capacity used for years
// without an override.
func (r *Resolver) SetDefault(rooms int) error {
	if rooms <= 0 {
		return &ConfigurationError{Rooms: rooms}
	}
	r.mu.Lock()
	r.defaultRooms = rooms
	r.mu.Unlock()
	return nil
}

// SetOverride sets the capacity for a single year.
func (r *Resolver) SetOverride(year, rooms int) error {
	if rooms <= 0 {
		return &ConfigurationError{Year: year, Rooms: rooms}
	}
	r.mu.Lock()
	r.overrides[year] = rooms
	r.mu.Unlock()
	return nil
}

// ClearOverride removes the override for year, if any.
func (r *Resolver) ClearOverride(year int) {
	r.mu.Lock()
	delete(r.overrides, year)
	r.mu.Unlock()
}

// Overrides returns a copy of the per-year table.
func (r *Resolver) Overrides() map[int]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[int]int, len(r.overrides))
	for y, rooms := range r.overrides {
		out[y] = rooms
	}
	return out
}

// OverrideYears returns the years with an override in ascending order.
func (r *Resolver) OverrideYears() []int {
	overrides := r.Overrides()
	years := make([]int, 0, len(overrides))
	for y := range overrides {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Fixed is a Source returning the same capacity for every year.
type Fixed int

// For returns the fixed capacity, failing when it is not positive.
func (f Fixed) For(year int) (int, error) {
	if f <= 0 {
		return 0, &ConfigurationError{Year: year, Rooms: int(f)}
	}
	return int(f), nil
}
