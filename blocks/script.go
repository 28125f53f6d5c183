package blocks

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"istat/config"
	"istat/dispatch"
	"istat/shell"
)

type scriptOutput string

const (
	outputSimple scriptOutput = "simple"
	outputJSON   scriptOutput = "json"
)

// script runs a shell command and shows what it prints. With output "json"
// the command prints a whole block.
type script struct {
	Command  string       `json:"command"`
	Output   scriptOutput `json:"output"`
	Interval Duration     `json:"interval"`
	Markup   Markup       `json:"markup"`
}

func init() {
	Register(Kind{Name: "script", Build: newScript})
}

func newScript(it config.Item) (Item, error) {
	s := &script{Output: outputSimple}
	if err := it.Decode(s); err != nil {
		return nil, err
	}
	if s.Command == "" {
		return nil, fmt.Errorf("item %q: script needs a command", it.DisplayName())
	}
	switch s.Output {
	case outputSimple, outputJSON:
	default:
		return nil, fmt.Errorf("item %q: unknown output %q, want simple or json", it.DisplayName(), s.Output)
	}
	return s, nil
}

func (s *script) Start(ctx *Context) (StopAction, error) {
	env := map[string]string{}
	for {
		out, err := shell.Output(ctx.Context(), s.Command, env)
		if err != nil {
			if ctx.Context().Err() != nil {
				return Complete, nil
			}
			return Complete, err
		}
		if err := ctx.Update(s.block(ctx, out)); err != nil {
			return Complete, nil
		}

		var ev dispatch.Event
		if s.Interval.Duration > 0 {
			err = ctx.DelayWithEventHandler(s.Interval.Duration, func(e dispatch.Event) { ev = e })
		} else {
			ev, err = ctx.WaitForEvent(0)
		}
		if err != nil {
			return Complete, nil
		}
		applyEvent(env, ev)
	}
}

func (s *script) block(ctx *Context, out string) Block {
	var b Block
	switch s.Output {
	case outputJSON:
		if err := json.Unmarshal([]byte(out), &b); err != nil {
			t := ctx.Theme()
			b = Block{FullText: "ERROR", Background: ColorRef(t.Red)}
		}
	default:
		b = Text(out)
	}
	if s.Markup != "" {
		b.Markup = s.Markup
	}
	return b
}

// applyEvent records ev in the environment of the next run. A signal sets
// I3_SIGNAL and keeps the last click's variables, a click clears the signal.
// SIGNAL mirrors I3_SIGNAL for older scripts. Other events leave env alone.
func applyEvent(env map[string]string, ev dispatch.Event) {
	switch e := ev.(type) {
	case dispatch.SignalEvent:
		env["I3_SIGNAL"] = "true"
		env["SIGNAL"] = "true"
	case dispatch.ClickEvent:
		delete(env, "I3_SIGNAL")
		delete(env, "SIGNAL")
		mods := make([]string, len(e.Modifiers))
		for i, m := range e.Modifiers {
			mods[i] = string(m)
		}
		env["I3_NAME"] = e.Name
		env["I3_MODIFIERS"] = strings.Join(mods, ",")
		env["I3_BUTTON"] = strconv.Itoa(int(e.Button))
		env["I3_X"] = strconv.Itoa(e.X)
		env["I3_Y"] = strconv.Itoa(e.Y)
		env["I3_RELATIVE_X"] = strconv.Itoa(e.RelativeX)
		env["I3_RELATIVE_Y"] = strconv.Itoa(e.RelativeY)
		env["I3_OUTPUT_X"] = strconv.Itoa(e.OutputX)
		env["I3_OUTPUT_Y"] = strconv.Itoa(e.OutputY)
		env["I3_WIDTH"] = strconv.Itoa(e.Width)
		env["I3_HEIGHT"] = strconv.Itoa(e.Height)
	}
}
