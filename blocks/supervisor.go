package blocks

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"istat/config"
	"istat/dispatch"
	"istat/logging"
	"istat/report"
)

// StopAction tells the supervisor what to do once an item returns.
type StopAction int

const (
	// Complete keeps the last block. Events still reach the slot and are
	// discarded.
	Complete StopAction = iota
	// Remove clears the item's slot.
	Remove
	// Restart runs the item again, subject to the retry limit.
	Restart
)

func (a StopAction) String() string {
	switch a {
	case Complete:
		return "complete"
	case Remove:
		return "remove"
	case Restart:
		return "restart"
	default:
		return fmt.Sprintf("StopAction(%d)", int(a))
	}
}

// Item produces blocks until it returns.
type Item interface {
	Start(ctx *Context) (StopAction, error)
}

const (
	maxRestarts   = 3
	restartWindow = 5 * time.Minute
)

// Supervisor runs one goroutine per item and feeds their blocks into a
// single update channel.
type Supervisor struct {
	cfg     *config.Shared
	disp    *dispatch.Dispatcher
	updates chan Update
	now     func() time.Time
}

func NewSupervisor(cfg *config.Shared, disp *dispatch.Dispatcher) *Supervisor {
	return &Supervisor{
		cfg:     cfg,
		disp:    disp,
		updates: make(chan Update, dispatch.InboxCapacity),
		now:     time.Now,
	}
}

// Updates is consumed by the frame loop.
func (s *Supervisor) Updates() <-chan Update {
	return s.updates
}

// Spawn starts item in slot idx.
func (s *Supervisor) Spawn(ctx context.Context, idx int, name string, item Item) {
	go s.run(ctx, idx, name, item)
}

func (s *Supervisor) run(ctx context.Context, idx int, name string, item Item) {
	var restarts []time.Time
	for {
		inbox := dispatch.NewInbox()
		s.disp.Set(idx, inbox)

		c := NewContext(ctx, idx, name, s.cfg, s.updates, inbox)
		action, err := start(item, c)
		c.dropPending()

		if ctx.Err() != nil {
			inbox.Close()
			return
		}
		if err == nil && action == Complete {
			logging.DebugLog.Printf("item[%d] (%s) completed", idx, name)
			discard(ctx, inbox)
			return
		}
		inbox.Close()
		if err != nil {
			logging.ErrorLog.Printf("item[%d] (%s) exited with error: %v", idx, name, err)
			report.ItemError(idx, name, err)
			s.send(ctx, idx, ErrorBlock(s.cfg.Theme(), name))
			return
		}

		switch action {
		case Remove:
			logging.InfoLog.Printf("item[%d] (%s) removed itself", idx, name)
			s.disp.Remove(idx)
			s.send(ctx, idx, Block{})
			return
		case Restart:
			now := s.now()
			restarts = recent(restarts, now)
			if len(restarts) >= maxRestarts {
				logging.ErrorLog.Printf("item[%d] (%s) restarted %d times within %s, giving up", idx, name, len(restarts), restartWindow)
				s.send(ctx, idx, MaxRetriesBlock(s.cfg.Theme()))
				return
			}
			restarts = append(restarts, now)
			logging.InfoLog.Printf("item[%d] (%s) restarting", idx, name)
		default:
			logging.ErrorLog.Printf("item[%d] (%s) returned unknown %v", idx, name, action)
			return
		}
	}
}

// discard empties inbox until ctx ends. Custom events are dropped so their
// sender gets a reply.
func discard(ctx context.Context, inbox *dispatch.Inbox) {
	defer inbox.Close()
	for {
		select {
		case ev := <-inbox.Events():
			if c, ok := ev.(*dispatch.CustomEvent); ok {
				c.Drop()
			}
		case <-ctx.Done():
			return
		}
	}
}

// recent keeps the restart times that fall inside the window ending at now.
func recent(times []time.Time, now time.Time) []time.Time {
	out := times[:0]
	for _, t := range times {
		if now.Sub(t) < restartWindow {
			out = append(out, t)
		}
	}
	return out
}

func (s *Supervisor) send(ctx context.Context, idx int, b Block) {
	select {
	case s.updates <- Update{Index: idx, Block: b}:
	case <-ctx.Done():
	}
}

func start(item Item, c *Context) (action StopAction, err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.DebugLog.Printf("item[%d] panic stack:\n%s", c.idx, debug.Stack())
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return item.Start(c)
}
