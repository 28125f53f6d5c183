package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"istat/clicks"
)

// Item describes one bar item. Kind specific parameters stay in Params and
// are decoded by the item itself.
type Item struct {
	Type      string   `json:"type"`
	Name      string   `json:"name,omitempty"`
	Index     *int     `json:"index,omitempty"`
	Signal    *int     `json:"signal,omitempty"`
	Separator *bool    `json:"separator,omitempty"`
	Hidden    bool     `json:"hidden,omitempty"`
	Actions   *Actions `json:"actions,omitempty"`

	Params json.RawMessage `json:"-"`
}

// DisplayName is the configured name, or the item type.
func (it Item) DisplayName() string {
	if it.Name != "" {
		return it.Name
	}
	return it.Type
}

// Decode unmarshals the item's parameters into v.
func (it Item) Decode(v any) error {
	params := it.Params
	if len(params) == 0 {
		params = []byte("{}")
	}
	if err := json.Unmarshal(params, v); err != nil {
		return fmt.Errorf("item %q (%s): %w", it.DisplayName(), it.Type, err)
	}
	return nil
}

func (it *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Type == "" {
		return errors.New("item is missing its type")
	}
	p.Params = append(json.RawMessage(nil), bytes.TrimSpace(data)...)
	*it = Item(p)
	return nil
}

// MarshalJSON writes the parameters with the common fields laid over them.
func (it Item) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if len(it.Params) > 0 {
		if err := json.Unmarshal(it.Params, &out); err != nil {
			return nil, err
		}
	}
	type plain Item
	common, err := json.Marshal(plain(it))
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(common, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		out[k] = v
	}
	return json.Marshal(out)
}

// Action is a shell command bound to a click. An action given as an object
// runs only when the click's modifiers equal Modifiers exactly.
type Action struct {
	Command   string
	Modifiers []clicks.Modifier
	Guarded   bool
}

type guardedAction struct {
	Modifiers []clicks.Modifier `json:"modifiers"`
	Command   string            `json:"command"`
}

func (a *Action) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		*a = Action{}
		return json.Unmarshal(data, &a.Command)
	}
	var g guardedAction
	if err := json.Unmarshal(data, &g); err != nil {
		return fmt.Errorf("action must be a command or {modifiers, command}: %w", err)
	}
	if g.Command == "" {
		return errors.New("action is missing its command")
	}
	*a = Action{Command: g.Command, Modifiers: g.Modifiers, Guarded: true}
	return nil
}

func (a Action) MarshalJSON() ([]byte, error) {
	if !a.Guarded {
		return json.Marshal(a.Command)
	}
	mods := a.Modifiers
	if mods == nil {
		mods = []clicks.Modifier{}
	}
	return json.Marshal(guardedAction{Modifiers: mods, Command: a.Command})
}

// Matches reports whether the action applies to c.
func (a Action) Matches(c clicks.Click) bool {
	return !a.Guarded || c.HasModifiers(a.Modifiers)
}

// ActionList accepts a single action or a list of them.
type ActionList []Action

func (l *ActionList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var many []Action
		if err := json.Unmarshal(data, &many); err != nil {
			return err
		}
		*l = many
		return nil
	}
	var one Action
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*l = ActionList{one}
	return nil
}

// Commands returns the commands of every action matching c, in order.
func (l ActionList) Commands(c clicks.Click) []string {
	var out []string
	for _, a := range l {
		if a.Matches(c) {
			out = append(out, a.Command)
		}
	}
	return out
}

type Actions struct {
	LeftClick   ActionList `json:"left_click,omitempty"`
	MiddleClick ActionList `json:"middle_click,omitempty"`
	RightClick  ActionList `json:"right_click,omitempty"`
}

// For returns the actions bound to button b.
func (a *Actions) For(b clicks.Button) ActionList {
	if a == nil {
		return nil
	}
	switch b {
	case clicks.Left:
		return a.LeftClick
	case clicks.Middle:
		return a.MiddleClick
	case clicks.Right:
		return a.RightClick
	default:
		return nil
	}
}
