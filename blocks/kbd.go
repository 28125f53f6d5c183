package blocks

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"istat/config"
	"istat/dispatch"
	"istat/theme"
)

type lockKey string

const (
	capsLock lockKey = "caps_lock"
	numLock  lockKey = "num_lock"
)

func (k lockKey) led() string {
	switch k {
	case capsLock:
		return "capslock"
	case numLock:
		return "numlock"
	default:
		return ""
	}
}

func (k lockKey) letter() string {
	switch k {
	case capsLock:
		return "C"
	case numLock:
		return "N"
	default:
		return "?"
	}
}

// kbd shows the lock key LEDs. It refreshes on its signal, so bind the
// lock keys to send it.
type kbd struct {
	Show []lockKey `json:"show"`

	root string
}

func init() {
	Register(Kind{Name: "kbd", Build: newKbd})
}

func newKbd(it config.Item) (Item, error) {
	k := &kbd{root: "/"}
	if err := it.Decode(k); err != nil {
		return nil, err
	}
	if len(k.Show) == 0 {
		k.Show = []lockKey{capsLock, numLock}
	}
	for _, key := range k.Show {
		if key.led() == "" {
			return nil, fmt.Errorf("item %q: unknown key %q, want caps_lock or num_lock", it.DisplayName(), key)
		}
	}
	return k, nil
}

// ledOn finds the first LED for key and reports whether it is lit.
func (k *kbd) ledOn(key lockKey) (bool, error) {
	dir := filepath.Join(k.root, "sys/class/leds")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), "::"+key.led()) {
			continue
		}
		v, err := readUint(filepath.Join(dir, e.Name(), "brightness"))
		if err != nil {
			return false, err
		}
		return v == 1, nil
	}
	return false, fmt.Errorf("no led found for %s", key)
}

func (k *kbd) block(t theme.Theme) (Block, error) {
	var b strings.Builder
	for _, key := range k.Show {
		on, err := k.ledOn(key)
		if err != nil {
			return Block{}, err
		}
		col := t.Red
		if on {
			col = t.Green
		}
		fmt.Fprintf(&b, `<span foreground="%s">%s</span>`, col, key.letter())
	}
	return Block{FullText: b.String(), Markup: MarkupPango}, nil
}

func (k *kbd) Start(ctx *Context) (StopAction, error) {
	for {
		b, err := k.block(ctx.Theme())
		if err != nil {
			return Complete, err
		}
		if err := ctx.Update(b); err != nil {
			return Complete, nil
		}
		for {
			ev, err := ctx.WaitForEvent(0)
			if err != nil {
				return Complete, nil
			}
			if _, ok := ev.(dispatch.SignalEvent); ok {
				break
			}
		}
	}
}
