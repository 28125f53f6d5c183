package pager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"istat/clicks"
	"istat/dispatch"
	"istat/theme"
)

func click(b clicks.Button) dispatch.Event {
	return dispatch.ClickEvent{Click: clicks.Click{Button: b}}
}

func TestSetLenZero(t *testing.T) {
	p := New()
	assert.EqualError(t, p.SetLen(0), "a Paginator's length must be > 0")
	assert.Equal(t, 1, p.Len())
}

func TestForwardWrap(t *testing.T) {
	p := New()
	require.NoError(t, p.SetLen(3))
	for _, want := range []int{1, 2, 0, 1} {
		p.Update(click(clicks.Left))
		assert.Equal(t, want, p.Idx())
	}
	p.Update(click(clicks.ScrollUp))
	assert.Equal(t, 2, p.Idx())
}

func TestBackwardWrap(t *testing.T) {
	p := New()
	require.NoError(t, p.SetLen(3))
	for _, want := range []int{2, 1, 0, 2} {
		p.Update(click(clicks.Right))
		assert.Equal(t, want, p.Idx())
	}
	p.Update(click(clicks.ScrollDown))
	assert.Equal(t, 1, p.Idx())
}

func TestSingleAndIgnoredEvents(t *testing.T) {
	p := New()
	p.Update(click(clicks.Left))
	p.Update(click(clicks.Right))
	assert.Equal(t, 0, p.Idx())

	require.NoError(t, p.SetLen(4))
	p.Update(click(clicks.Middle))
	p.Update(dispatch.SignalEvent{})
	assert.Equal(t, 0, p.Idx())
}

func TestShrinkResetsIndex(t *testing.T) {
	p := New()
	require.NoError(t, p.SetLen(5))
	p.Decr()
	assert.Equal(t, 4, p.Idx())
	require.NoError(t, p.SetLen(2))
	assert.Equal(t, 0, p.Idx())
}

func TestFormat(t *testing.T) {
	th := theme.Default()
	p := New()
	assert.Equal(t, "", p.Format(th))
	require.NoError(t, p.SetLen(3))
	p.Incr()
	assert.Equal(t, ` <span line_height="1024" foreground="#4C566A"><sup>2</sup>/<sub>3</sub></span>`, p.Format(th))
}

func TestCycle(t *testing.T) {
	c := NewCycle("a", "b", "c")
	assert.Equal(t, "a", c.Current())
	assert.Equal(t, "a", c.Next())
	assert.Equal(t, "b", c.Next())
	assert.Equal(t, "c", c.Next())
	assert.Equal(t, "a", c.Current())

	at := NewCycleAt("c", "a", "b", "c")
	assert.Equal(t, "c", at.Next())
	assert.Equal(t, "a", at.Current())
}
