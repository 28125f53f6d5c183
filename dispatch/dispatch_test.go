package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"istat/clicks"
)

func TestSendErrors(t *testing.T) {
	d := New(2)
	assert.ErrorIs(t, d.Send(0, SignalEvent{}), ErrNoSuchItem)
	assert.ErrorIs(t, d.Send(5, SignalEvent{}), ErrNoSuchItem)

	in := NewInbox()
	d.Set(0, in)
	for range InboxCapacity {
		require.NoError(t, d.Send(0, SignalEvent{}))
	}
	err := d.Send(0, SignalEvent{})
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.EqualError(t, err, "item[0]: dropping event (channel is full)")

	in.Close()
	assert.ErrorIs(t, d.Send(0, SignalEvent{}), ErrClosed)
	assert.Len(t, in.Events(), 0)

	d.Remove(0)
	assert.ErrorIs(t, d.Send(0, SignalEvent{}), ErrNoSuchItem)
}

func TestInboxIsFIFO(t *testing.T) {
	d := New(1)
	in := NewInbox()
	d.Set(0, in)
	require.NoError(t, d.RouteClick(0, clicks.Click{Button: clicks.Left}))
	require.NoError(t, d.Send(0, SignalEvent{}))
	require.NoError(t, d.RouteClick(0, clicks.Click{Button: clicks.Right}))

	ev := <-in.Events()
	assert.Equal(t, clicks.Left, ev.(ClickEvent).Button)
	assert.IsType(t, SignalEvent{}, <-in.Events())
	ev = <-in.Events()
	assert.Equal(t, clicks.Right, ev.(ClickEvent).Button)
}

func TestBroadcastSkipsEmptySlots(t *testing.T) {
	d := New(3)
	a, c := NewInbox(), NewInbox()
	d.Set(0, a)
	d.Set(2, c)
	d.BroadcastSignal()
	assert.Len(t, a.Events(), 1)
	assert.Len(t, c.Events(), 1)
}

func TestManualRefreshCoalesces(t *testing.T) {
	d := New(0)
	d.ManualRefresh()
	d.ManualRefresh()
	<-d.Refresh()
	select {
	case <-d.Refresh():
		t.Fatal("refresh requests should coalesce")
	default:
	}
}

func TestCustomEventReply(t *testing.T) {
	ev, reply := NewCustomEvent([]string{"set", "50"})
	ev.Respond(ValueResponse(nil))
	ev.Drop()
	r, ok := <-reply
	assert.True(t, ok)
	assert.False(t, r.IsHelp())
	_, ok = <-reply
	assert.False(t, ok)
}

func TestDroppedCustomEventClosesReply(t *testing.T) {
	d := New(1)
	in := NewInbox()
	d.Set(0, in)
	ev, reply := NewCustomEvent([]string{"x"})
	require.NoError(t, d.Send(0, ev))
	in.Close()
	_, ok := <-reply
	assert.False(t, ok)

	ev, reply = NewCustomEvent(nil)
	assert.Error(t, d.Send(0, ev))
	_, ok = <-reply
	assert.False(t, ok)
}
