package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"istat/theme"
)

type Config struct {
	Include   []string    `json:"include,omitempty"`
	Theme     theme.Theme `json:"theme"`
	Items     []Item      `json:"items"`
	Socket    string      `json:"socket,omitempty"`
	SentryDSN string      `json:"sentry_dsn,omitempty"`

	// files that were read, main config first
	files []string
}

func Defaults() *Config {
	return &Config{Theme: theme.Default()}
}

// Load reads the configuration rooted at path, or at the first search path
// that has a config file when path is empty. The extension of path is
// ignored: "<base>.toml", "<base>.json", "<base>.yaml" and "<base>.yml" are
// merged in that order, then any include files are appended.
func Load(path string) (*Config, error) {
	base := ""
	if path != "" {
		base = trimExt(path)
	} else {
		for _, p := range searchPaths() {
			if len(mainFiles(p)) > 0 {
				base = p
				break
			}
		}
	}
	if base == "" {
		return nil, errors.New("no config file found")
	}

	root, files, err := readTree(base)
	if err != nil {
		return nil, err
	}
	return decode(root, files)
}

func searchPaths() []string {
	var out []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		out = append(out, filepath.Join(xdg, "istat", "config"))
	}
	if home, _ := os.UserHomeDir(); home != "" {
		out = append(out, filepath.Join(home, ".config", "istat", "config"))
	}
	return out
}

// decode turns the merged document into a validated Config.
func decode(root map[string]any, files []string) (*Config, error) {
	if _, ok := root["items"]; !ok {
		return nil, errors.New("parse config: missing field `items`")
	}
	data, err := json.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.files = files
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize orders the items and validates names and theme.
func (c *Config) normalize() error {
	sortItems(c.Items)
	if err := validateNames(c.Items); err != nil {
		return err
	}
	return c.Theme.Validate()
}

// Files lists the files the configuration was read from.
func (c *Config) Files() []string {
	return append([]string(nil), c.files...)
}

// Names maps each item index to its display name.
func (c *Config) Names() map[int]string {
	out := make(map[int]string, len(c.Items))
	for i, it := range c.Items {
		out[i] = it.DisplayName()
	}
	return out
}

// Clone returns a copy that shares no mutable state with c.
func (c *Config) Clone() *Config {
	out := *c
	out.Theme = c.Theme.Clone()
	out.Items = append([]Item(nil), c.Items...)
	out.Include = append([]string(nil), c.Include...)
	out.files = append([]string(nil), c.files...)
	return &out
}

// sortItems moves every item with an index to that position, in config
// order. Later moves win, and indices past the end clamp to the last slot.
func sortItems(items []Item) {
	n := len(items)
	if n == 0 {
		return
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for cur, it := range items {
		if it.Index == nil {
			continue
		}
		moved := order[cur]
		order = append(order[:cur], order[cur+1:]...)
		target := clampInt(*it.Index, 0, n-1)
		order = append(order[:target], append([]int{moved}, order[target:]...)...)
	}
	sorted := make([]Item, n)
	for i, from := range order {
		sorted[i] = items[from]
	}
	copy(items, sorted)
}

// validateNames rejects two items that were explicitly given the same name.
func validateNames(items []Item) error {
	for i := len(items) - 1; i >= 0; i-- {
		for j := range items {
			if i == j || items[i].Name == "" {
				continue
			}
			if items[i].Name == items[j].Name {
				return fmt.Errorf("item names must be unique, item[%d] and item[%d] share the same name: %s", i, j, items[i].Name)
			}
		}
	}
	return nil
}

func clampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
