package bar

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"istat/blocks"
	"istat/config"
	"istat/logging"
)

// fatalFrame is written when a frame cannot be encoded.
const fatalFrame = `[{"full_text":"FATAL ERROR: see logs","color":"#000000","background":"#FF0000"}],`

// Printer is the frame loop. It owns the writes to the bar's stdout.
type Printer struct {
	w     *bufio.Writer
	bar   *Bar
	cfg   *config.Shared
	items []config.Item
	timer *UrgentTimer
}

func NewPrinter(w io.Writer, b *Bar, cfg *config.Shared) *Printer {
	return &Printer{
		w:     bufio.NewWriter(w),
		bar:   b,
		cfg:   cfg,
		items: cfg.Get().Items,
		timer: NewUrgentTimer(),
	}
}

// Start writes the protocol header and opens the endless frame array.
func (p *Printer) Start(h blocks.Header) error {
	data, err := json.Marshal(h)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(p.w, "%s\n[\n", data); err != nil {
		return err
	}
	return p.w.Flush()
}

// Run writes a frame after every change until ctx is done. It returns an
// error only when stdout can no longer be written.
func (p *Printer) Run(ctx context.Context, updates <-chan blocks.Update, refresh <-chan struct{}) error {
	for {
		select {
		case <-p.timer.Wait():
			p.timer.Reset()
		case <-refresh:
		case u := <-updates:
			if !p.apply(u) {
				continue
			}
		case <-ctx.Done():
			return nil
		}
		if err := p.Frame(); err != nil {
			return err
		}
	}
}

// apply stamps u with its item's name and instance and stores it. It
// reports whether the bar changed.
func (p *Printer) apply(u blocks.Update) bool {
	if u.Index < 0 || u.Index >= len(p.items) {
		logging.ErrorLog.Printf("update for unknown item[%d]", u.Index)
		return false
	}
	it := p.items[u.Index]
	b := u.Block
	if it.Hidden {
		b = blocks.Block{}
	}
	b.Name = it.DisplayName()
	b.Instance = strconv.Itoa(u.Index)
	if it.Separator != nil {
		b.Separator = blocks.Bool(*it.Separator)
	}
	return p.bar.Set(u.Index, b)
}

// Frame renders the bar and writes it followed by a comma.
func (p *Printer) Frame() error {
	p.timer.Toggle(p.bar.AnyUrgent())
	t := p.cfg.Theme()
	if p.timer.Swapped() {
		t = t.WithUrgentSwapped()
	}

	data, err := json.Marshal(p.bar.Render(t))
	if err != nil {
		logging.ErrorLog.Printf("failed to encode frame: %v", err)
		_, err = io.WriteString(p.w, fatalFrame+"\n")
	} else {
		data = append(data, ',', '\n')
		_, err = p.w.Write(data)
	}
	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return p.w.Flush()
}
