package blocks

import (
	"time"

	"github.com/dustin/go-humanize"

	"istat/clicks"
	"istat/config"
	"istat/dispatch"
	"istat/pager"
	"istat/theme"
)

const memIcon = "\uefc5"

type memDisplay int

const (
	memBytes memDisplay = iota
	memPercentage
)

// mem shows available memory, or the percentage in use. Left click switches.
type mem struct {
	Interval Duration `json:"interval"`
	FloatFormat

	root string
}

func init() {
	Register(Kind{Name: "mem", Build: newMem})
}

func newMem(it config.Item) (Item, error) {
	m := &mem{root: "/"}
	if err := it.Decode(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *mem) block(t theme.Theme, info memInfo, display memDisplay) Block {
	used := info.usedPercent()
	var text string
	switch display {
	case memPercentage:
		text = m.Format(used) + "%"
	default:
		text = humanize.IBytes(info.available)
	}
	b := Block{FullText: memIcon + " " + text, Markup: MarkupPango}
	if col, ok := t.ColorFor(theme.Grade(used, 40, 60, 80)); ok {
		b.Color = ColorRef(col)
	}
	return b
}

func (m *mem) Start(ctx *Context) (StopAction, error) {
	interval := m.Interval.Or(5 * time.Second)
	display := pager.NewCycle(memBytes, memPercentage)
	for {
		info, err := readMemInfo(m.root)
		if err != nil {
			return Complete, err
		}
		if err := ctx.Update(m.block(ctx.Theme(), info, display.Current())); err != nil {
			return Complete, nil
		}
		err = ctx.DelayWithEventHandler(interval, func(ev dispatch.Event) {
			if click, ok := ev.(dispatch.ClickEvent); ok && click.Button == clicks.Left {
				display.Next()
			}
		})
		if err != nil {
			return Complete, nil
		}
	}
}
