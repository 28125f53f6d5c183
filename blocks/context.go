package blocks

import (
	"context"
	"time"

	"istat/config"
	"istat/dispatch"
	"istat/theme"
)

// Update is a block produced by the item at Index.
type Update struct {
	Index int
	Block Block
}

// Context is an item's handle on the runtime: its slot, the live config,
// the update channel and its inbox.
type Context struct {
	ctx     context.Context
	idx     int
	name    string
	cfg     *config.Shared
	updates chan<- Update
	inbox   *dispatch.Inbox

	last    *Block
	pending *dispatch.CustomEvent
}

// NewContext binds a context to slot idx. The supervisor builds one per run.
func NewContext(ctx context.Context, idx int, name string, cfg *config.Shared, updates chan<- Update, inbox *dispatch.Inbox) *Context {
	return &Context{ctx: ctx, idx: idx, name: name, cfg: cfg, updates: updates, inbox: inbox}
}

func (c *Context) Index() int { return c.idx }

// Name is the item's display name.
func (c *Context) Name() string { return c.name }

// Theme returns the current theme.
func (c *Context) Theme() theme.Theme { return c.cfg.Theme() }

func (c *Context) Config() *config.Config { return c.cfg.Get() }

func (c *Context) Done() <-chan struct{} { return c.ctx.Done() }

// Context returns the runtime's context, for subprocesses and I/O.
func (c *Context) Context() context.Context { return c.ctx }

// Update sends b to the frame loop unless it equals the last block sent. It
// blocks until the frame loop takes it or the runtime shuts down.
func (c *Context) Update(b Block) error {
	if c.last != nil && c.last.Equal(b) {
		return nil
	}
	select {
	case c.updates <- Update{Index: c.idx, Block: b}:
		c.last = &b
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	}
}

// WaitForEvent returns the next inbox event. A timeout of zero waits
// forever. On timeout it returns a nil event and a nil error.
func (c *Context) WaitForEvent(timeout time.Duration) (dispatch.Event, error) {
	c.dropPending()

	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}
	select {
	case ev := <-c.inbox.Events():
		c.track(ev)
		return ev, nil
	case <-expired:
		return nil, nil
	case <-c.ctx.Done():
		return nil, c.ctx.Err()
	}
}

// DelayWithEventHandler waits up to d. If events arrive first, fn is called
// for each queued event and the wait ends early. Custom events left
// unanswered by fn are dropped.
func (c *Context) DelayWithEventHandler(d time.Duration, fn func(dispatch.Event)) error {
	c.dropPending()

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case ev := <-c.inbox.Events():
		c.handle(ev, fn)
		for {
			select {
			case ev := <-c.inbox.Events():
				c.handle(ev, fn)
			default:
				return nil
			}
		}
	case <-t.C:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	}
}

func (c *Context) handle(ev dispatch.Event, fn func(dispatch.Event)) {
	fn(ev)
	if custom, ok := ev.(*dispatch.CustomEvent); ok {
		custom.Drop()
	}
}

func (c *Context) track(ev dispatch.Event) {
	if custom, ok := ev.(*dispatch.CustomEvent); ok {
		c.pending = custom
	}
}

func (c *Context) dropPending() {
	if c.pending != nil {
		c.pending.Drop()
		c.pending = nil
	}
}
