package pager

// Cycle steps through a fixed list of values, wrapping at the end.
type Cycle[T comparable] struct {
	values []T
	idx    int
}

// NewCycle panics if values is empty.
func NewCycle[T comparable](values ...T) *Cycle[T] {
	if len(values) == 0 {
		panic("pager: empty cycle")
	}
	return &Cycle[T]{values: values}
}

// NewCycleAt starts at the first occurrence of start, or at the first value
// if start is not present.
func NewCycleAt[T comparable](start T, values ...T) *Cycle[T] {
	c := NewCycle(values...)
	for i, v := range values {
		if v == start {
			c.idx = i
			break
		}
	}
	return c
}

func (c *Cycle[T]) Current() T {
	return c.values[c.idx]
}

// Next returns the current value and advances.
func (c *Cycle[T]) Next() T {
	v := c.values[c.idx]
	c.idx = (c.idx + 1) % len(c.values)
	return v
}
