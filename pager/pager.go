// Package pager holds the small UI state machines shared by items: a
// click driven paginator and a cycle over a fixed set of values.
package pager

import (
	"errors"
	"fmt"

	"istat/clicks"
	"istat/dispatch"
	"istat/theme"
)

// Paginator tracks the page shown by an item with several pages.
type Paginator struct {
	idx int
	len int
}

func New() *Paginator {
	return &Paginator{idx: 0, len: 1}
}

func (p *Paginator) Len() int { return p.len }
func (p *Paginator) Idx() int { return p.idx }

// SetLen changes the page count. The index resets when it falls out of range.
func (p *Paginator) SetLen(n int) error {
	if n <= 0 {
		return errors.New("a Paginator's length must be > 0")
	}
	p.len = n
	if p.idx >= n {
		p.idx = 0
	}
	return nil
}

func (p *Paginator) Incr() {
	p.idx++
	if p.idx >= p.len {
		p.idx = 0
	}
}

func (p *Paginator) Decr() {
	p.idx--
	if p.idx < 0 {
		p.idx = p.len - 1
	}
}

// Update turns pages on left click or scroll up, and back on right click or
// scroll down.
func (p *Paginator) Update(ev dispatch.Event) {
	c, ok := ev.(dispatch.ClickEvent)
	if !ok {
		return
	}
	switch c.Button {
	case clicks.Left, clicks.ScrollUp:
		p.Incr()
	case clicks.Right, clicks.ScrollDown:
		p.Decr()
	}
}

// Format renders the current page as a dim superscript fraction.
func (p *Paginator) Format(t theme.Theme) string {
	return Fraction(t, p.idx+1, p.len)
}

// Fraction renders num/den as pango markup, or nothing when den <= 1.
func Fraction(t theme.Theme, num, den int) string {
	if den <= 1 {
		return ""
	}
	// line_height keeps the block's baseline where it was
	return fmt.Sprintf(` <span line_height="1024" foreground="%s"><sup>%d</sup>/<sub>%d</sub></span>`, t.Dim, num, den)
}
