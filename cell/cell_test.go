package cell

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCellUpdateConcurrent(t *testing.T) {
	c := New(0)
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Update(func(v *int) { *v++ })
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, c.Load())

	c.Store(7)
	var seen int
	c.View(func(v *int) { seen = *v })
	assert.Equal(t, 7, seen)
}

func TestSliceBounds(t *testing.T) {
	s := NewSlice[string](2)
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.SetIndex(1, "b"))
	assert.False(t, s.SetIndex(2, "c"))

	v, ok := s.Index(1)
	assert.True(t, ok)
	assert.Equal(t, "b", v)
	_, ok = s.Index(-1)
	assert.False(t, ok)

	snap := s.Snapshot()
	snap[0] = "mutated"
	v, _ = s.Index(0)
	assert.Equal(t, "", v)
}
