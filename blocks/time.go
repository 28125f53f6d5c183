package blocks

import (
	"time"

	"istat/clicks"
	"istat/config"
	"istat/dispatch"
	"istat/shell"
)

const clockIcon = "\uf017"

// clock shows the local time. Updates are aligned to interval boundaries so
// a one second clock ticks with the wall clock second.
type clock struct {
	Interval    Duration `json:"interval"`
	FormatLong  string   `json:"format_long"`
	FormatShort string   `json:"format_short"`
	OnClick     string   `json:"on_click"`

	now func() time.Time
}

func init() {
	Register(Kind{Name: "time", Build: newClock})
}

func newClock(it config.Item) (Item, error) {
	c := &clock{
		FormatLong:  "2006-01-02 15:04:05",
		FormatShort: "15:04",
		now:         time.Now,
	}
	if err := it.Decode(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *clock) block(now time.Time) Block {
	return Block{
		FullText:  clockIcon + " " + now.Format(c.FormatLong),
		ShortText: now.Format(c.FormatShort),
		Markup:    MarkupPango,
	}
}

func (c *clock) Start(ctx *Context) (StopAction, error) {
	interval := c.Interval.Or(time.Second)
	for {
		now := c.now()
		if err := ctx.Update(c.block(now)); err != nil {
			return Complete, nil
		}
		err := ctx.DelayWithEventHandler(untilNext(now, interval), func(ev dispatch.Event) {
			if click, ok := ev.(dispatch.ClickEvent); ok && click.Button == clicks.Left && c.OnClick != "" {
				shell.Spawn(c.OnClick)
			}
		})
		if err != nil {
			return Complete, nil
		}
	}
}

// untilNext is the time left from now to the next multiple of interval.
func untilNext(now time.Time, interval time.Duration) time.Duration {
	return interval - now.Sub(now.Truncate(interval))
}
