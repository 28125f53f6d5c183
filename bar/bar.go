// Package bar holds the latest block of every item and turns the buffer into
// i3bar frames.
package bar

import (
	"encoding/json"
	"strconv"

	"istat/blocks"
	"istat/cell"
)

// Bar is the fixed size buffer of item blocks. Its length never changes.
type Bar struct {
	blocks *cell.Slice[blocks.Block]
	dims   dimCache
}

// New returns a bar of n empty blocks, each stamped with its instance.
func New(n int) *Bar {
	b := &Bar{blocks: cell.NewSlice[blocks.Block](n), dims: dimCache{}}
	b.blocks.Update(func(all []blocks.Block) {
		for i := range all {
			all[i].Instance = strconv.Itoa(i)
		}
	})
	return b
}

func (b *Bar) Len() int { return b.blocks.Len() }

// Set stores blk at i. It reports false when i is out of range or blk is
// the block already stored.
func (b *Bar) Set(i int, blk blocks.Block) bool {
	changed := false
	b.blocks.Update(func(all []blocks.Block) {
		if i < 0 || i >= len(all) || all[i].Equal(blk) {
			return
		}
		all[i] = blk
		changed = true
	})
	return changed
}

func (b *Bar) Get(i int) (blocks.Block, bool) {
	return b.blocks.Index(i)
}

// AnyUrgent reports whether a stored block asks for attention.
func (b *Bar) AnyUrgent() bool {
	for _, blk := range b.Snapshot() {
		if blk.IsUrgent() {
			return true
		}
	}
	return false
}

// Snapshot copies the stored blocks.
func (b *Bar) Snapshot() []blocks.Block {
	return b.blocks.Snapshot()
}

func (b *Bar) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Snapshot())
}
