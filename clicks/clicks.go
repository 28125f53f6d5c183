package clicks

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"istat/logging"
)

// Button is the i3bar mouse button number.
type Button int

const (
	Left        Button = 1
	Middle      Button = 2
	Right       Button = 3
	ScrollUp    Button = 4
	ScrollDown  Button = 5
	ScrollRight Button = 6
	ScrollLeft  Button = 7
)

func (b Button) String() string {
	switch b {
	case Left:
		return "left"
	case Middle:
		return "middle"
	case Right:
		return "right"
	case ScrollUp:
		return "scroll_up"
	case ScrollDown:
		return "scroll_down"
	case ScrollRight:
		return "scroll_right"
	case ScrollLeft:
		return "scroll_left"
	default:
		return "unknown"
	}
}

// Modifier is a held key reported alongside a click.
type Modifier string

const (
	Shift   Modifier = "Shift"
	Control Modifier = "Control"
	Mod1    Modifier = "Mod1"
	Mod2    Modifier = "Mod2"
	Mod3    Modifier = "Mod3"
	Mod4    Modifier = "Mod4"
	Mod5    Modifier = "Mod5"
)

// Click represents a click event fed by the bar back into stdin.
type Click struct {
	Name      string     `json:"name,omitempty"`
	Instance  string     `json:"instance,omitempty"`
	Button    Button     `json:"button"`
	Modifiers []Modifier `json:"modifiers"`
	X         int        `json:"x"`
	Y         int        `json:"y"`
	RelativeX int        `json:"relative_x"`
	RelativeY int        `json:"relative_y"`
	OutputX   int        `json:"output_x"`
	OutputY   int        `json:"output_y"`
	Width     int        `json:"width"`
	Height    int        `json:"height"`
}

// HasModifiers reports whether the click carries exactly mods, in any order.
func (c Click) HasModifiers(mods []Modifier) bool {
	if len(c.Modifiers) != len(mods) {
		return false
	}
	want := make(map[Modifier]int, len(mods))
	for _, m := range mods {
		want[m]++
	}
	for _, m := range c.Modifiers {
		if want[m] == 0 {
			return false
		}
		want[m]--
	}
	return true
}

// Router delivers a parsed click to the item at idx.
type Router interface {
	RouteClick(idx int, c Click) error
}

// RouterFunc adapts a function to Router.
type RouterFunc func(idx int, c Click) error

func (f RouterFunc) RouteClick(idx int, c Click) error { return f(idx, c) }

var errNoInstance = errors.New("click has no instance")

// Parse decodes one line of the click stream. It returns ok=false for lines
// that carry no event, such as the opening "[".
func Parse(line []byte) (c Click, idx int, ok bool, err error) {
	line = bytes.TrimSpace(line)
	line = bytes.TrimLeft(line, ", \t")
	if len(line) == 0 || bytes.Equal(line, []byte("[")) {
		return Click{}, 0, false, nil
	}
	if err := json.Unmarshal(line, &c); err != nil {
		return Click{}, 0, false, fmt.Errorf("parse click: %w", err)
	}
	if c.Instance == "" {
		return c, 0, false, errNoInstance
	}
	idx, err = strconv.Atoi(strings.TrimSpace(c.Instance))
	if err != nil || idx < 0 {
		return c, 0, false, fmt.Errorf("invalid click instance %q", c.Instance)
	}
	return c, idx, true, nil
}

// maxLine bounds one click event. Longer lines are skipped.
const maxLine = 1 << 20

// Read consumes the i3bar click stream and routes each event by instance.
// Bad lines are logged and skipped. It returns when r is exhausted.
func Read(r io.Reader, router Router) {
	br := bufio.NewReaderSize(r, 64*1024)
	var line []byte
	tooLong := false
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logging.ErrorLog.Printf("click reader: %v", err)
				return
			}
			break
		}
		if !tooLong {
			line = append(line, chunk...)
			if len(line) > maxLine {
				tooLong = true
				line = line[:0]
			}
		}
		if isPrefix {
			continue
		}
		if tooLong {
			logging.WarnLog.Printf("click: skipping line longer than %d bytes", maxLine)
			tooLong = false
			continue
		}
		route(line, router)
		line = line[:0]
	}
	logging.InfoLog.Print("stdin closed, no more click events")
}

func route(line []byte, router Router) {
	c, idx, ok, err := Parse(line)
	if err != nil {
		logging.WarnLog.Printf("click: %v", err)
		return
	}
	if !ok {
		return
	}
	if err := router.RouteClick(idx, c); err != nil {
		logging.WarnLog.Printf("click: item[%d]: %v", idx, err)
	}
}
