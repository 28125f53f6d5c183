package blocks

import (
	"time"

	"istat/config"
	"istat/dispatch"
	"istat/shell"
	"istat/theme"
)

const cpuIcon = "\uf2db"

// cpu shows overall processor load from /proc/stat deltas.
type cpu struct {
	Interval Duration `json:"interval"`
	OnClick  string   `json:"on_click"`
	FloatFormat

	root string
}

func init() {
	Register(Kind{Name: "cpu", Build: newCPU})
}

func newCPU(it config.Item) (Item, error) {
	c := &cpu{root: "/"}
	if err := it.Decode(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *cpu) block(t theme.Theme, pct float64) Block {
	b := Block{
		FullText: cpuIcon + " " + c.Format(pct) + "%",
		Markup:   MarkupPango,
	}
	if col, ok := t.ColorFor(theme.Grade(pct, 40, 60, 80)); ok {
		b.Color = ColorRef(col)
	}
	return b
}

func (c *cpu) Start(ctx *Context) (StopAction, error) {
	interval := c.Interval.Or(2 * time.Second)
	prev, err := readCPUTimes(c.root)
	if err != nil {
		return Complete, err
	}
	// first reading needs a delta, so wait a moment
	if err := ctx.DelayWithEventHandler(200*time.Millisecond, func(dispatch.Event) {}); err != nil {
		return Complete, nil
	}
	for {
		cur, err := readCPUTimes(c.root)
		if err != nil {
			return Complete, err
		}
		pct := cur.usage(prev)
		prev = cur
		if err := ctx.Update(c.block(ctx.Theme(), pct)); err != nil {
			return Complete, nil
		}
		err = ctx.DelayWithEventHandler(interval, func(ev dispatch.Event) {
			if _, ok := ev.(dispatch.ClickEvent); ok && c.OnClick != "" {
				shell.Spawn(c.OnClick)
			}
		})
		if err != nil {
			return Complete, nil
		}
	}
}
