package config

import (
	"istat/cell"
	"istat/theme"
)

// Shared is the live configuration. Snapshots returned by Get are never
// mutated; SetTheme swaps in a modified copy.
type Shared struct {
	c *cell.Cell[*Config]
}

func NewShared(cfg *Config) *Shared {
	return &Shared{c: cell.New(cfg)}
}

func (s *Shared) Get() *Config {
	return s.c.Load()
}

func (s *Shared) Theme() theme.Theme {
	return s.c.Load().Theme
}

func (s *Shared) SetTheme(t theme.Theme) {
	s.c.Update(func(cur **Config) {
		next := (*cur).Clone()
		next.Theme = t.Clone()
		*cur = next
	})
}
