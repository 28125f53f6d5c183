package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"istat/clicks"
	"istat/theme"
)

func named(name string, index ...int) Item {
	it := Item{Type: "raw", Name: name}
	if len(index) > 0 {
		i := index[0]
		it.Index = &i
	}
	return it
}

func names(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestSortItems(t *testing.T) {
	cases := []struct {
		label string
		in    []Item
		want  []string
	}{
		{"no indices", []Item{named("a"), named("b"), named("c")}, []string{"a", "b", "c"}},
		{"one index", []Item{named("a"), named("b", 0), named("c")}, []string{"b", "a", "c"}},
		{"all same index", []Item{named("a", 0), named("b", 0), named("c", 0)}, []string{"c", "b", "a"}},
		{"out of bounds", []Item{named("a", 42), named("b", 1729), named("c", 9001)}, []string{"b", "a", "c"}},
		{"reverse", []Item{named("a", 2), named("b", 1), named("c", 0)}, []string{"a", "b", "c"}},
	}
	for _, tc := range cases {
		t.Run(tc.label, func(t *testing.T) {
			sortItems(tc.in)
			assert.Equal(t, tc.want, names(tc.in))
		})
	}
}

func TestValidateNames(t *testing.T) {
	assert.NoError(t, validateNames([]Item{named(""), named("")}))
	assert.NoError(t, validateNames([]Item{named(""), named("a"), named("b"), named("c"), named("")}))

	err := validateNames([]Item{named("a"), named("c"), named("d"), named("c")})
	assert.EqualError(t, err, "item names must be unique, item[3] and item[1] share the same name: c")
}

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadMergesFormatsAndIncludes(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "config.toml", `
include = ["extra.yaml"]
socket = "/tmp/from-toml"

[theme]
bg = "#000000"

[[items]]
type = "raw"
name = "first"
full_text = "one"
`)
	write(t, dir, "config.json", `{"socket": "/tmp/from-json", "theme": {"fg": "#ffffff"}}`)
	write(t, dir, "extra.yaml", `
include:
  - nested.json
items:
  - type: time
    interval: 5s
`)
	write(t, dir, "nested.json", `{"items": [{"type": "raw", "full_text": "three", "index": 0}]}`)

	cfg, err := Load(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/from-json", cfg.Socket)
	assert.Equal(t, theme.MustParse("#000000"), cfg.Theme.Bg)
	assert.Equal(t, theme.MustParse("#FFFFFF"), cfg.Theme.Fg)
	assert.Equal(t, theme.MustParse("#000000"), cfg.Theme.UrgentBg)

	require.Len(t, cfg.Items, 3)
	assert.Equal(t, "raw", cfg.Items[0].Type)
	assert.Equal(t, "first", cfg.Items[1].DisplayName())
	assert.Equal(t, "time", cfg.Items[2].DisplayName())
	assert.Len(t, cfg.Files(), 4)

	var params struct {
		FullText string `json:"full_text"`
	}
	require.NoError(t, cfg.Items[0].Decode(&params))
	assert.Equal(t, "three", params.FullText)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing"))
	assert.Error(t, err)

	write(t, dir, "noitems.json", `{"theme": {}}`)
	_, err = Load(filepath.Join(dir, "noitems.json"))
	assert.ErrorContains(t, err, "items")

	write(t, dir, "badinc.json", `{"items": [], "include": ["x.ini"]}`)
	write(t, dir, "x.ini", "")
	_, err = Load(filepath.Join(dir, "badinc"))
	assert.ErrorContains(t, err, "unsupported file extension")

	write(t, dir, "power.json", `{"items": [], "theme": {"powerline_enable": true, "powerline": [{"fg": "#fff", "bg": "#000"}]}}`)
	_, err = Load(filepath.Join(dir, "power.json"))
	assert.EqualError(t, err, "theme.powerline must contain at least two values")
}

func TestMergeInto(t *testing.T) {
	dst := map[string]any{"a": []any{1.0}, "t": map[string]any{"x": 1.0, "y": 1.0}, "s": "old"}
	mergeInto(dst, map[string]any{"a": []any{2.0}, "t": map[string]any{"y": 2.0}, "s": "new"}, true)
	assert.Equal(t, []any{1.0, 2.0}, dst["a"])
	assert.Equal(t, map[string]any{"x": 1.0, "y": 2.0}, dst["t"])
	assert.Equal(t, "new", dst["s"])

	mergeInto(dst, map[string]any{"a": []any{3.0}}, false)
	assert.Equal(t, []any{3.0}, dst["a"])
}

func TestActions(t *testing.T) {
	var it Item
	require.NoError(t, json.Unmarshal([]byte(`{
		"type": "script",
		"command": "cat /out",
		"actions": {
			"left_click": "foo",
			"middle_click": {"modifiers": ["Shift"], "command": "bar"},
			"right_click": [
				{"modifiers": ["Control"], "command": "baz"},
				{"modifiers": ["Shift"], "command": "foo"}
			]
		}
	}`), &it))

	left := clicks.Click{Button: clicks.Left, Modifiers: []clicks.Modifier{clicks.Mod4}}
	assert.Equal(t, []string{"foo"}, it.Actions.For(clicks.Left).Commands(left))

	mid := clicks.Click{Button: clicks.Middle}
	assert.Empty(t, it.Actions.For(clicks.Middle).Commands(mid))
	mid.Modifiers = []clicks.Modifier{clicks.Shift}
	assert.Equal(t, []string{"bar"}, it.Actions.For(clicks.Middle).Commands(mid))

	right := clicks.Click{Button: clicks.Right, Modifiers: []clicks.Modifier{clicks.Control}}
	assert.Equal(t, []string{"baz"}, it.Actions.For(clicks.Right).Commands(right))
	assert.Nil(t, it.Actions.For(clicks.ScrollUp))

	out, err := json.Marshal(it)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "script",
		"command": "cat /out",
		"actions": {
			"left_click": ["foo"],
			"middle_click": [{"modifiers": ["Shift"], "command": "bar"}],
			"right_click": [
				{"modifiers": ["Control"], "command": "baz"},
				{"modifiers": ["Shift"], "command": "foo"}
			]
		}
	}`, string(out))
}

func TestResolveSocket(t *testing.T) {
	t.Setenv("I3SOCK", "/run/user/1000/i3/ipc-socket.123")
	t.Setenv("SWAYSOCK", "")

	cfg := Defaults()
	p, err := cfg.ResolveSocket("")
	require.NoError(t, err)
	assert.Equal(t, "/run/user/1000/i3/ipc-socket.123.istat", p)

	cfg.Socket = "/tmp/cfg.sock"
	p, err = cfg.ResolveSocket("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cfg.sock", p)

	p, err = cfg.ResolveSocket("/tmp/flag.sock")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/flag.sock", p)

	t.Setenv("I3SOCK", "")
	t.Setenv("SWAYSOCK", "/run/sway.sock")
	assert.Equal(t, "/run/sway.sock.istat", DefaultSocket())

	t.Setenv("SWAYSOCK", "")
	_, err = Defaults().ResolveSocket("")
	assert.Error(t, err)
}
