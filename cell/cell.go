// Package cell provides lock-guarded shared values. Callbacks run with the
// lock held and must not block.
package cell

import "sync"

// Cell is a shared value of type T.
type Cell[T any] struct {
	mu sync.RWMutex
	v  T
}

func New[T any](v T) *Cell[T] {
	return &Cell[T]{v: v}
}

// Load returns a copy of the value.
func (c *Cell[T]) Load() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v
}

// Store replaces the value.
func (c *Cell[T]) Store(v T) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

// Update mutates the value in place.
func (c *Cell[T]) Update(fn func(*T)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.v)
}

// View reads the value in place.
func (c *Cell[T]) View(fn func(*T)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn(&c.v)
}

// Slice is a fixed-length shared slice.
type Slice[E any] struct {
	mu sync.RWMutex
	s  []E
}

func NewSlice[E any](n int) *Slice[E] {
	return &Slice[E]{s: make([]E, n)}
}

func (s *Slice[E]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.s)
}

// Index returns element i and false if i is out of range.
func (s *Slice[E]) Index(i int) (E, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.s) {
		var zero E
		return zero, false
	}
	return s.s[i], true
}

// SetIndex replaces element i. It reports false if i is out of range.
func (s *Slice[E]) SetIndex(i int, e E) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.s) {
		return false
	}
	s.s[i] = e
	return true
}

// Snapshot returns a shallow copy of the elements.
func (s *Slice[E]) Snapshot() []E {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]E(nil), s.s...)
}

// Update mutates the backing slice in place. fn must not change its length.
func (s *Slice[E]) Update(fn func([]E)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.s)
}
