package blocks

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"istat/clicks"
	"istat/config"
	"istat/dispatch"
	"istat/pager"
	"istat/theme"
)

type batState string

const (
	batUnknown     batState = "Unknown"
	batCharging    batState = "Charging"
	batDischarging batState = "Discharging"
	batNotCharging batState = "Not charging"
	batFull        batState = "Full"
)

func parseBatState(s string) (batState, error) {
	switch st := batState(s); st {
	case batUnknown, batCharging, batDischarging, batNotCharging, batFull:
		return st, nil
	default:
		return "", fmt.Errorf("unknown battery state: %q", s)
	}
}

// bat is a power supply directory.
type bat struct {
	dir string
}

func (b bat) name() string { return filepath.Base(b.dir) }

func (b bat) exists(file string) bool {
	_, err := os.Stat(filepath.Join(b.dir, file))
	return err == nil
}

func (b bat) state() (batState, error) {
	s, err := readTrimmed(filepath.Join(b.dir, "status"))
	if err != nil {
		return "", err
	}
	return parseBatState(s)
}

func (b bat) percent() (float64, error) {
	if b.exists("charge_now") && b.exists("charge_full") {
		now, err := readUint(filepath.Join(b.dir, "charge_now"))
		if err != nil {
			return 0, err
		}
		full, err := readUint(filepath.Join(b.dir, "charge_full"))
		if err != nil {
			return 0, err
		}
		if full == 0 {
			return 0, fmt.Errorf("%s: charge_full is zero", b.dir)
		}
		return float64(now) / float64(full) * 100, nil
	}
	v, err := readUint(filepath.Join(b.dir, "capacity"))
	return float64(v), err
}

// watts is the current power draw.
func (b bat) watts() (float64, error) {
	current, err := readUint(filepath.Join(b.dir, "current_now"))
	if err != nil {
		return 0, err
	}
	voltage, err := readUint(filepath.Join(b.dir, "voltage_now"))
	if err != nil {
		return 0, err
	}
	return float64(current) * float64(voltage) / 1e12, nil
}

// findBatteries lists power supplies that report a charge level.
func findBatteries(root string) ([]bat, error) {
	dir := filepath.Join(root, "sys/class/power_supply")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []bat
	for _, e := range entries {
		b := bat{dir: filepath.Join(dir, e.Name())}
		if b.exists("capacity") || b.exists("charge_now") {
			out = append(out, b)
		}
	}
	return out, nil
}

var batteryIcons = []string{"\uf244", "\uf243", "\uf242", "\uf241", "\uf240"}

const (
	chargingIcon = "\uf0e7"
	batteryIcon  = "\U000f0079"
)

// battery shows each battery's charge, one page per battery. Middle click
// shows the power draw for a moment.
type battery struct {
	Interval  Duration `json:"interval"`
	Batteries []string `json:"batteries"`

	root string
}

func init() {
	Register(Kind{Name: "battery", Build: newBattery})
}

func newBattery(it config.Item) (Item, error) {
	b := &battery{root: "/"}
	if err := it.Decode(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *battery) batteries() ([]bat, error) {
	if len(b.Batteries) > 0 {
		out := make([]bat, len(b.Batteries))
		for i, dir := range b.Batteries {
			out[i] = bat{dir: dir}
		}
		return out, nil
	}
	return findBatteries(b.root)
}

func batteryBlock(t theme.Theme, b bat, p *pager.Paginator, showWatts bool) (Block, error) {
	state, err := b.state()
	if err != nil {
		return Block{}, err
	}
	pct, err := b.percent()
	if err != nil {
		return Block{}, err
	}

	out := Block{Markup: MarkupPango}
	var icon string
	switch {
	case pct <= 15:
		out.Color = ColorRef(t.Red)
		if state != batCharging && state != batNotCharging {
			out.Urgent = Bool(true)
		}
		icon = batteryIcons[0]
	case pct <= 25:
		out.Color = ColorRef(t.Orange)
		icon = batteryIcons[1]
	case pct <= 50:
		out.Color = ColorRef(t.Yellow)
		icon = batteryIcons[2]
	case pct <= 75:
		icon = batteryIcons[3]
	default:
		out.Color = ColorRef(t.Green)
		icon = batteryIcons[4]
	}
	switch state {
	case batFull:
		out.Color = ColorRef(t.Purple)
	case batCharging:
		out.Color = ColorRef(t.Blue)
		icon = chargingIcon
	}

	name := b.name()
	if name == "BAT0" {
		name = batteryIcon
	}
	text := fmt.Sprintf("%.0f%%", pct)
	if showWatts {
		w, err := b.watts()
		if err != nil {
			return Block{}, err
		}
		text = fmt.Sprintf("%.2f W", w)
	}
	out.FullText = fmt.Sprintf("%s  %s %s%s", name, icon, text, p.Format(t))
	out.ShortText = fmt.Sprintf("%.0f%%", pct)
	return out, nil
}

func (b *battery) Start(ctx *Context) (StopAction, error) {
	interval := b.Interval.Or(5 * time.Second)
	p := pager.New()
	showWatts := false
	for {
		bats, err := b.batteries()
		if err != nil {
			return Complete, err
		}
		if len(bats) == 0 {
			return Complete, errors.New("no batteries found")
		}
		if err := p.SetLen(len(bats)); err != nil {
			return Complete, err
		}
		blk, err := batteryBlock(ctx.Theme(), bats[p.Idx()], p, showWatts)
		if err != nil {
			return Complete, err
		}
		if err := ctx.Update(blk); err != nil {
			return Complete, nil
		}

		wait := interval
		if showWatts {
			wait = 2 * time.Second
			showWatts = false
		}
		err = ctx.DelayWithEventHandler(wait, func(ev dispatch.Event) {
			if c, ok := ev.(dispatch.ClickEvent); ok && c.Button == clicks.Middle {
				showWatts = true
				return
			}
			p.Update(ev)
		})
		if err != nil {
			return Complete, nil
		}
	}
}
