package blocks

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"istat/config"
	"istat/dispatch"
	"istat/theme"
)

// sensors shows the temperature of one hwmon component.
type sensors struct {
	Interval  Duration `json:"interval"`
	Label     string   `json:"label"`
	Component string   `json:"component"`

	root string
}

func init() {
	Register(Kind{Name: "sensors", Build: newSensors})
}

func newSensors(it config.Item) (Item, error) {
	s := &sensors{root: "/"}
	if err := it.Decode(s); err != nil {
		return nil, err
	}
	if s.Component == "" {
		return nil, errors.New("sensors: missing field `component`")
	}
	return s, nil
}

// temperature reads the component's input in degrees Celsius. Components are
// named "<hwmon name>" or "<hwmon name> <temp label>".
func (s *sensors) temperature() (float64, error) {
	dir := filepath.Join(s.root, "sys/class/hwmon")
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return 0, err
	}
	for _, e := range entries {
		mon := filepath.Join(dir, e.Name())
		name, err := readTrimmed(filepath.Join(mon, "name"))
		if err != nil {
			continue
		}
		inputs, _ := filepath.Glob(filepath.Join(mon, "temp*_input"))
		for _, input := range inputs {
			label := name
			if l, err := readTrimmed(strings.TrimSuffix(input, "_input") + "_label"); err == nil {
				label = name + " " + l
			}
			if label != s.Component {
				continue
			}
			v, err := readUint(input)
			if err != nil {
				return 0, err
			}
			return float64(v) / 1000, nil
		}
	}
	return 0, fmt.Errorf("no component found with name: %s", s.Component)
}

func (s *sensors) block(t theme.Theme, temp float64) Block {
	var (
		icon  string
		color *theme.Color
	)
	switch {
	case temp < 60:
		icon = "\uf2cb"
	case temp < 80:
		icon, color = "\uf2ca", ColorRef(t.Yellow)
	case temp < 90:
		icon, color = "\uf2c9", ColorRef(t.Orange)
	default:
		icon, color = "\uf2c7", ColorRef(t.Red)
	}
	return Block{
		FullText:  fmt.Sprintf("%s %.0f°C%s", icon, temp, s.Label),
		ShortText: fmt.Sprintf("%.0fC", temp),
		Color:     color,
		Markup:    MarkupPango,
	}
}

func (s *sensors) Start(ctx *Context) (StopAction, error) {
	interval := s.Interval.Or(5 * time.Second)
	for {
		temp, err := s.temperature()
		if err != nil {
			return Complete, err
		}
		if err := ctx.Update(s.block(ctx.Theme(), temp)); err != nil {
			return Complete, nil
		}
		if err := ctx.DelayWithEventHandler(interval, func(dispatch.Event) {}); err != nil {
			return Complete, nil
		}
	}
}
