package goalgraph

import (
	"encoding/json"
	"fmt"
)

// Window is a closed interval [Low, High] over trajectory time indices.
// The zero value is unbounded. A window with Low > High is kept as given and
// contains no time index.
type Window struct {
	Low     int
	High    int
	bounded bool
}

// NewWindow returns the bounded window [low, high].
func NewWindow(low, high int) Window {
	return Window{Low: low, High: high, bounded: true}
}

// Unbounded returns a window that accepts every time index.
func Unbounded() Window {
	return Window{}
}

// Bounded reports whether the window restricts time indices.
func (w Window) Bounded() bool { return w.bounded }

// Contains reports whether t lies inside the window.
func (w Window) Contains(t int) bool {
	if !w.bounded {
		return true
	}
	return w.Low <= t && t <= w.High
}

func (w Window) String() string {
	if !w.bounded {
		return "unbounded"
	}
	return fmt.Sprintf("[%d, %d]", w.Low, w.High)
}

// MarshalJSON encodes a bounded window as [low, high] and an unbounded one
// as null.
func (w Window) MarshalJSON() ([]byte, error) {
	if !w.bounded {
		return []byte("null"), nil
	}
	return json.Marshal([2]int{w.Low, w.High})
}

func (w *Window) UnmarshalJSON(data []byte) error {
	var bounds []int
	if err := json.Unmarshal(data, &bounds); err != nil {
		return fmt.Errorf("window: %w", err)
	}
	switch len(bounds) {
	case 0:
		*w = Unbounded()
	case 2:
		*w = NewWindow(bounds[0], bounds[1])
	default:
		return fmt.Errorf("window: expected [low, high], got %d values", len(bounds))
	}
	return nil
}

// Goal is a node in the goal dependency graph.
type Goal struct {
	Name          string   `json:"name"`
	Prerequisites []string `json:"prerequisites,omitempty"`
	Window        Window   `json:"window"`
}

// Set is a collection of goal names, typically the goals completed so far.
type Set map[string]bool

// NewSet returns a Set containing names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}

// Add inserts name into the set.
func (s Set) Add(name string) { s[name] = true }

// Has reports whether name is in the set.
func (s Set) Has(name string) bool { return s[name] }
