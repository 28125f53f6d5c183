// Package dispatch routes events to item inboxes and carries the manual
// refresh signal for the frame loop.
package dispatch

import (
	"errors"
	"fmt"
	"sync"

	"istat/cell"
	"istat/clicks"
	"istat/logging"
)

// InboxCapacity bounds each item's queue.
const InboxCapacity = 32

var (
	ErrNoSuchItem = errors.New("no such item")
	ErrQueueFull  = errors.New("dropping event (channel is full)")
	ErrClosed     = errors.New("dropping event (receiver closed)")
)

// Inbox is one item's bounded event queue.
type Inbox struct {
	ch     chan Event
	mu     sync.Mutex
	closed bool
}

func NewInbox() *Inbox {
	return &Inbox{ch: make(chan Event, InboxCapacity)}
}

// Events is the receive side, owned by the item.
func (in *Inbox) Events() <-chan Event {
	return in.ch
}

func (in *Inbox) offer(ev Event) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return ErrClosed
	}
	select {
	case in.ch <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close rejects further events and drops anything still queued.
func (in *Inbox) Close() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.closed = true
	for {
		select {
		case ev := <-in.ch:
			if c, ok := ev.(*CustomEvent); ok {
				c.Drop()
			}
		default:
			return
		}
	}
}

// Dispatcher holds one inbox slot per configured item.
type Dispatcher struct {
	slots   *cell.Slice[*Inbox]
	refresh chan struct{}
}

func New(n int) *Dispatcher {
	return &Dispatcher{
		slots:   cell.NewSlice[*Inbox](n),
		refresh: make(chan struct{}, 1),
	}
}

func (d *Dispatcher) Len() int { return d.slots.Len() }

func (d *Dispatcher) Set(i int, in *Inbox) {
	d.slots.SetIndex(i, in)
}

func (d *Dispatcher) Remove(i int) {
	d.slots.SetIndex(i, nil)
}

// Send queues ev for item i without blocking. A custom event that cannot be
// queued is dropped.
func (d *Dispatcher) Send(i int, ev Event) error {
	err := d.send(i, ev)
	if err != nil {
		if c, ok := ev.(*CustomEvent); ok {
			c.Drop()
		}
		return fmt.Errorf("item[%d]: %w", i, err)
	}
	return nil
}

func (d *Dispatcher) send(i int, ev Event) error {
	in, ok := d.slots.Index(i)
	if !ok || in == nil {
		return ErrNoSuchItem
	}
	return in.offer(ev)
}

// BroadcastSignal sends a SignalEvent to every registered item.
func (d *Dispatcher) BroadcastSignal() {
	for i, in := range d.slots.Snapshot() {
		if in == nil {
			continue
		}
		if err := d.Send(i, SignalEvent{}); err != nil {
			if errors.Is(err, ErrClosed) {
				logging.DebugLog.Print(err)
				continue
			}
			logging.WarnLog.Print(err)
		}
	}
}

// RouteClick lets the dispatcher serve as the stdin reader's router.
func (d *Dispatcher) RouteClick(i int, c clicks.Click) error {
	return d.Send(i, ClickEvent{Click: c})
}

// ManualRefresh asks the frame loop to redraw. Requests coalesce.
func (d *Dispatcher) ManualRefresh() {
	select {
	case d.refresh <- struct{}{}:
	default:
	}
}

func (d *Dispatcher) Refresh() <-chan struct{} {
	return d.refresh
}
