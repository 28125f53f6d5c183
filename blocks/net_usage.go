package blocks

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"istat/clicks"
	"istat/config"
	"istat/dispatch"
	"istat/theme"
)

// ByteSize reads sizes such as 1024, "1 KiB" or "10MB".
type ByteSize uint64

func (s *ByteSize) UnmarshalJSON(data []byte) error {
	var n uint64
	if err := json.Unmarshal(data, &n); err == nil {
		*s = ByteSize(n)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("size must be a number or a string like \"1 KiB\": %w", err)
	}
	n, err := humanize.ParseBytes(str)
	if err != nil {
		return err
	}
	*s = ByteSize(n)
	return nil
}

func (s ByteSize) MarshalJSON() ([]byte, error) {
	return json.Marshal(humanize.IBytes(uint64(s)))
}

// netUsage shows receive and transmit rates. Left click switches between
// bytes and bits per second.
type netUsage struct {
	Interval   Duration   `json:"interval"`
	Interfaces []string   `json:"interfaces"`
	Minimum    *ByteSize  `json:"minimum"`
	Thresholds []ByteSize `json:"thresholds"`

	root string
	now  func() time.Time
}

func init() {
	Register(Kind{Name: "net_usage", Build: newNetUsage})
}

func newNetUsage(it config.Item) (Item, error) {
	n := &netUsage{root: "/", now: time.Now}
	if err := it.Decode(n); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *netUsage) minimum() uint64 {
	if n.Minimum == nil {
		return 1024
	}
	return uint64(*n.Minimum)
}

// color grades a rate against the thresholds. Below the first it is dim;
// each following window is normal, yellow, orange then red, and beyond the
// last one purple.
func (n *netUsage) color(t theme.Theme, rate uint64) *theme.Color {
	if len(n.Thresholds) == 0 {
		return nil
	}
	if rate <= uint64(n.Thresholds[0]) {
		return ColorRef(t.Dim)
	}
	windows := []*theme.Color{nil, ColorRef(t.Yellow), ColorRef(t.Orange), ColorRef(t.Red)}
	for i := 1; i < len(n.Thresholds); i++ {
		if rate <= uint64(n.Thresholds[i]) {
			return windows[min(i-1, len(windows)-1)]
		}
	}
	return ColorRef(t.Purple)
}

func (n *netUsage) format(rate uint64, bits bool) string {
	if rate <= n.minimum() {
		return "-"
	}
	if bits {
		return strings.TrimSuffix(humanize.IBytes(rate*8), "B") + "bit"
	}
	return humanize.IBytes(rate)
}

func (n *netUsage) span(t theme.Theme, rate uint64, bits bool) string {
	fg := ""
	if c := n.color(t, rate); c != nil {
		fg = fmt.Sprintf(` foreground="%s"`, c)
	}
	return fmt.Sprintf("<span%s>%8s</span>", fg, n.format(rate, bits))
}

func (n *netUsage) block(t theme.Theme, rx, tx uint64, bits bool) Block {
	return Block{
		FullText: n.span(t, rx, bits) + "↓ " + n.span(t, tx, bits) + "↑",
		Markup:   MarkupPango,
	}
}

func (n *netUsage) Start(ctx *Context) (StopAction, error) {
	interval := n.Interval.Or(3 * time.Second)
	only := map[string]bool{}
	for _, name := range n.Interfaces {
		only[name] = true
	}
	bits := false

	prevRx, prevTx, err := readNetCounters(n.root, only)
	if err != nil {
		return Complete, err
	}
	prevAt := n.now()
	var rxRate, txRate uint64
	for {
		if err := ctx.Update(n.block(ctx.Theme(), rxRate, txRate, bits)); err != nil {
			return Complete, nil
		}
		err := ctx.DelayWithEventHandler(interval, func(ev dispatch.Event) {
			if c, ok := ev.(dispatch.ClickEvent); ok && c.Button == clicks.Left {
				bits = !bits
			}
		})
		if err != nil {
			return Complete, nil
		}

		rx, tx, err := readNetCounters(n.root, only)
		if err != nil {
			return Complete, err
		}
		now := n.now()
		elapsed := now.Sub(prevAt).Seconds()
		if elapsed > 0 {
			rxRate = rate(prevRx, rx, elapsed)
			txRate = rate(prevTx, tx, elapsed)
		}
		prevRx, prevTx, prevAt = rx, tx, now
	}
}

// rate is bytes per second, treating a counter reset as no traffic.
func rate(prev, cur uint64, seconds float64) uint64 {
	if cur < prev {
		return 0
	}
	return uint64(float64(cur-prev) / seconds)
}
