package blocks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"istat/clicks"
	"istat/config"
	"istat/dispatch"
)

type testRig struct {
	ctx     *Context
	disp    *dispatch.Dispatcher
	updates chan Update
	cancel  context.CancelFunc
}

func newRig(t *testing.T) *testRig {
	t.Helper()
	parent, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	disp := dispatch.New(1)
	inbox := dispatch.NewInbox()
	disp.Set(0, inbox)
	updates := make(chan Update, 8)
	cfg := config.NewShared(config.Defaults())
	return &testRig{
		ctx:     NewContext(parent, 0, "test", cfg, updates, inbox),
		disp:    disp,
		updates: updates,
		cancel:  cancel,
	}
}

func (r *testRig) next(t *testing.T) Block {
	t.Helper()
	select {
	case u := <-r.updates:
		return u.Block
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an update")
		return Block{}
	}
}

func TestUpdateSkipsRepeats(t *testing.T) {
	r := newRig(t)
	require.NoError(t, r.ctx.Update(Text("a")))
	require.NoError(t, r.ctx.Update(Text("a")))
	require.NoError(t, r.ctx.Update(Text("b")))
	assert.Equal(t, "a", r.next(t).FullText)
	assert.Equal(t, "b", r.next(t).FullText)
	assert.Empty(t, r.updates)
}

func TestUpdateAfterShutdown(t *testing.T) {
	r := newRig(t)
	r.updates = make(chan Update)
	r.ctx.updates = r.updates
	r.cancel()
	assert.True(t, errors.Is(r.ctx.Update(Text("a")), context.Canceled))
}

func TestWaitForEventTimeout(t *testing.T) {
	r := newRig(t)
	ev, err := r.ctx.WaitForEvent(10 * time.Millisecond)
	assert.NoError(t, err)
	assert.Nil(t, ev)

	require.NoError(t, r.disp.Send(0, dispatch.SignalEvent{}))
	ev, err = r.ctx.WaitForEvent(0)
	require.NoError(t, err)
	assert.Equal(t, dispatch.SignalEvent{}, ev)
}

func TestUnansweredCustomEventIsDropped(t *testing.T) {
	r := newRig(t)
	ev, reply := dispatch.NewCustomEvent([]string{"hi"})
	require.NoError(t, r.disp.Send(0, ev))

	got, err := r.ctx.WaitForEvent(0)
	require.NoError(t, err)
	assert.Same(t, ev, got)

	_, err = r.ctx.WaitForEvent(time.Millisecond)
	require.NoError(t, err)
	_, ok := <-reply
	assert.False(t, ok)
}

func TestDelayWithEventHandlerDrainsQueue(t *testing.T) {
	r := newRig(t)
	require.NoError(t, r.disp.Send(0, dispatch.ClickEvent{Click: clicks.Click{Button: clicks.Left}}))
	require.NoError(t, r.disp.Send(0, dispatch.SignalEvent{}))
	custom, reply := dispatch.NewCustomEvent(nil)
	require.NoError(t, r.disp.Send(0, custom))

	var seen []dispatch.Event
	start := time.Now()
	require.NoError(t, r.ctx.DelayWithEventHandler(time.Minute, func(ev dispatch.Event) {
		seen = append(seen, ev)
	}))
	assert.Less(t, time.Since(start), time.Minute)
	assert.Len(t, seen, 3)
	_, ok := <-reply
	assert.False(t, ok)
}
