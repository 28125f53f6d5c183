package blocks

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"istat/clicks"
	"istat/config"
	"istat/dispatch"
)

// backlight is a device directory under /sys/class/backlight.
type backlight struct {
	dir string
}

// detectBacklight picks the device with the largest max_brightness.
func detectBacklight(root string) (backlight, error) {
	dir := filepath.Join(root, "sys/class/backlight")
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return backlight{}, err
	}
	var (
		best    backlight
		bestMax uint64
	)
	for _, e := range entries {
		b := backlight{dir: filepath.Join(dir, e.Name())}
		max, err := b.max()
		if err != nil {
			continue
		}
		if best.dir == "" || max > bestMax {
			best, bestMax = b, max
		}
	}
	if best.dir == "" {
		return backlight{}, errors.New("no backlights found")
	}
	return best, nil
}

func (b backlight) max() (uint64, error) {
	return readUint(filepath.Join(b.dir, "max_brightness"))
}

// get returns the brightness as a rounded percentage.
func (b backlight) get() (int, error) {
	max, err := b.max()
	if err != nil {
		return 0, err
	}
	if max == 0 {
		return 0, fmt.Errorf("%s: max_brightness is zero", b.dir)
	}
	v, err := readUint(filepath.Join(b.dir, "brightness"))
	if err != nil {
		return 0, err
	}
	return int((v*100 + max/2) / max), nil
}

func (b backlight) set(pct int) error {
	max, err := b.max()
	if err != nil {
		return err
	}
	pct = clampPercent(pct)
	v := uint64(pct) * max / 100
	return os.WriteFile(filepath.Join(b.dir, "brightness"), []byte(strconv.FormatUint(v, 10)), 0o644)
}

// adjust moves to the next multiple of amount in its direction.
func (b backlight) adjust(amount int) error {
	pct, err := b.get()
	if err != nil {
		return err
	}
	if amount == 0 {
		return nil
	}
	return b.set(pct + (amount - pct%amount))
}

func clampPercent(pct int) int {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

var lightIcons = []string{"\U000f00de", "\U000f00df", "\U000f00e0"}

func lightIcon(pct int) string {
	switch {
	case pct < 34:
		return lightIcons[0]
	case pct < 67:
		return lightIcons[1]
	default:
		return lightIcons[2]
	}
}

// light shows and controls the screen backlight.
type light struct {
	Path      string `json:"path"`
	Increment *int   `json:"increment"`

	root string
}

func init() {
	Register(Kind{Name: "light", Build: newLight})
}

func newLight(it config.Item) (Item, error) {
	l := &light{root: "/"}
	if err := it.Decode(l); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *light) increment() int {
	if l.Increment == nil || *l.Increment <= 0 {
		return 5
	}
	return *l.Increment
}

func (l *light) device() (backlight, error) {
	if l.Path != "" {
		return backlight{dir: l.Path}, nil
	}
	return detectBacklight(l.root)
}

func (l *light) Start(ctx *Context) (StopAction, error) {
	dev, err := l.device()
	if err != nil {
		return Complete, err
	}
	for {
		pct, err := dev.get()
		if err != nil {
			return Complete, err
		}
		b := Block{FullText: fmt.Sprintf("%s %3d%%", lightIcon(pct), pct)}
		if err := ctx.Update(b); err != nil {
			return Complete, nil
		}

		ev, err := ctx.WaitForEvent(0)
		if err != nil {
			return Complete, nil
		}
		switch e := ev.(type) {
		case dispatch.ClickEvent:
			if err := l.click(dev, e.Click); err != nil {
				return Complete, err
			}
		case *dispatch.CustomEvent:
			RunCommand(e, func(reply func(any)) *cobra.Command {
				return lightCommand(dev, l.increment(), reply)
			})
		}
	}
}

func (l *light) click(dev backlight, c clicks.Click) error {
	switch c.Button {
	case clicks.Left:
		return dev.set(1)
	case clicks.Right:
		return dev.set(100)
	case clicks.ScrollUp:
		return dev.adjust(l.increment())
	case clicks.ScrollDown:
		return dev.adjust(-l.increment())
	}
	return nil
}

// lightCommand is the custom command tree answered over IPC. A failed write
// replies {"failure": msg} rather than help.
func lightCommand(dev backlight, increment int, reply func(any)) *cobra.Command {
	result := func(err error) {
		if err != nil {
			reply(map[string]string{"failure": err.Error()})
		}
	}
	root := &cobra.Command{
		Use:   "light",
		Short: "Control the screen backlight",
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "increase",
			Short: fmt.Sprintf("Raise brightness by %d%%", increment),
			Args:  cobra.NoArgs,
			Run: func(*cobra.Command, []string) {
				result(dev.adjust(increment))
			},
		},
		&cobra.Command{
			Use:   "decrease",
			Short: fmt.Sprintf("Lower brightness by %d%%", increment),
			Args:  cobra.NoArgs,
			Run: func(*cobra.Command, []string) {
				result(dev.adjust(-increment))
			},
		},
		&cobra.Command{
			Use:   "set <pct>",
			Short: "Set brightness to a percentage",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				pct, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid percentage %q", args[0])
				}
				result(dev.set(pct))
				return nil
			},
		},
	)
	return root
}
