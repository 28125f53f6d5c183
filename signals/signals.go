// Package signals delivers real-time signals to the items subscribed to
// them and turns SIGTERM into a shutdown.
package signals

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"

	"golang.org/x/sys/unix"

	"istat/config"
	"istat/dispatch"
	"istat/logging"
)

// Real-time signal bounds as glibc reserves them on Linux.
const (
	RTMin = 34
	RTMax = 64
)

// Table maps a host signal number to the indices of subscribed items.
type Table map[int][]int

// NewTable collects the signal of every item. An item signal s is host
// signal RTMin+s.
func NewTable(items []config.Item) (Table, error) {
	t := Table{}
	for i, it := range items {
		if it.Signal == nil {
			continue
		}
		s := *it.Signal
		if s < 0 || s > RTMax-RTMin {
			return nil, fmt.Errorf("invalid signal: %d. valid signals range from 0 up to %d inclusive", s, RTMax-RTMin)
		}
		t[RTMin+s] = append(t[RTMin+s], i)
	}
	return t, nil
}

// Signals lists the host signals with subscribers, in order.
func (t Table) Signals() []int {
	out := make([]int, 0, len(t))
	for sig := range t {
		out = append(out, sig)
	}
	sort.Ints(out)
	return out
}

// Router listens for the whole real-time range and SIGTERM.
type Router struct {
	table    Table
	disp     *dispatch.Dispatcher
	shutdown func()
}

func NewRouter(table Table, disp *dispatch.Dispatcher, shutdown func()) *Router {
	return &Router{table: table, disp: disp, shutdown: shutdown}
}

// Run handles signals until ctx is done.
func (r *Router) Run(ctx context.Context) {
	sigs := []os.Signal{unix.SIGTERM}
	for s := RTMin; s <= RTMax; s++ {
		sigs = append(sigs, unix.Signal(s))
	}
	ch := make(chan os.Signal, 32)
	signal.Notify(ch, sigs...)
	defer signal.Stop(ch)

	for {
		select {
		case sig := <-ch:
			r.handle(sig)
		case <-ctx.Done():
			return
		}
	}
}

func (r *Router) handle(sig os.Signal) {
	s, ok := sig.(unix.Signal)
	if !ok {
		logging.WarnLog.Printf("ignoring signal %v", sig)
		return
	}
	if s == unix.SIGTERM {
		logging.InfoLog.Print("received SIGTERM, shutting down")
		r.shutdown()
		return
	}

	idxs, ok := r.table[int(s)]
	if !ok {
		logging.WarnLog.Printf("no item subscribed to signal SIGRTMIN+%d", int(s)-RTMin)
		return
	}
	for _, idx := range idxs {
		if err := r.disp.Send(idx, dispatch.SignalEvent{}); err != nil {
			logging.WarnLog.Printf("signal SIGRTMIN+%d: %v", int(s)-RTMin, err)
		}
	}
}
