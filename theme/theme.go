package theme

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// PowerlinePair is one segment color in the powerline rotation.
type PowerlinePair struct {
	Fg Color `json:"fg"`
	Bg Color `json:"bg"`
}

// Separator is the glyph drawn between powerline segments. Scale, when set,
// is a font size percentage.
type Separator struct {
	Value string   `json:"value"`
	Scale *float64 `json:"scale,omitempty"`
}

// Span returns the separator as pango markup.
func (s Separator) Span() string {
	if s.Scale == nil {
		return s.Value
	}
	return `<span font_size="` + strconv.FormatFloat(*s.Scale, 'f', -1, 64) + `%">` + s.Value + `</span>`
}

// Theme holds every color the bar and its items draw with.
type Theme struct {
	Bg     Color `json:"bg"`
	Fg     Color `json:"fg"`
	Dim    Color `json:"dim"`
	Red    Color `json:"red"`
	Orange Color `json:"orange"`
	Yellow Color `json:"yellow"`
	Green  Color `json:"green"`
	Purple Color `json:"purple"`
	Blue   Color `json:"blue"`

	UrgentFg Color `json:"urgent_fg"`
	UrgentBg Color `json:"urgent_bg"`

	Powerline          []PowerlinePair `json:"powerline"`
	PowerlineEnable    bool            `json:"powerline_enable"`
	PowerlineSeparator Separator       `json:"powerline_separator"`
}

// Default is the Nord palette.
func Default() Theme {
	return Theme{
		Bg:       MustParse("#2E3440"),
		Fg:       MustParse("#D8DEE9"),
		Dim:      MustParse("#4C566A"),
		Red:      MustParse("#BF616A"),
		Orange:   MustParse("#D08770"),
		Yellow:   MustParse("#EBCB8B"),
		Green:    MustParse("#A3BE8C"),
		Purple:   MustParse("#B48EAD"),
		Blue:     MustParse("#81A1C1"),
		UrgentFg: MustParse("#BF616A"),
		UrgentBg: MustParse("#2E3440"),
		Powerline: []PowerlinePair{
			{Fg: MustParse("#D8DEE9"), Bg: MustParse("#3B4252")},
			{Fg: MustParse("#E5E9F0"), Bg: MustParse("#434C5E")},
			{Fg: MustParse("#ECEFF4"), Bg: MustParse("#4C566A")},
			{Fg: MustParse("#E5E9F0"), Bg: MustParse("#434C5E")},
		},
		PowerlineEnable:    false,
		PowerlineSeparator: Separator{Value: "\ue0b2"},
	}
}

// UnmarshalJSON overlays data onto t. When urgent_fg or urgent_bg are not
// given they follow red and bg.
func (t *Theme) UnmarshalJSON(data []byte) error {
	type plain Theme
	aux := struct {
		*plain
		UrgentFg *Color `json:"urgent_fg"`
		UrgentBg *Color `json:"urgent_bg"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.UrgentFg = t.Red
	if aux.UrgentFg != nil {
		t.UrgentFg = *aux.UrgentFg
	}
	t.UrgentBg = t.Bg
	if aux.UrgentBg != nil {
		t.UrgentBg = *aux.UrgentBg
	}
	return nil
}

// Decode reads a theme from JSON on top of the defaults and validates it.
func Decode(data []byte) (Theme, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Theme{}, fmt.Errorf("decode theme: expected an object, got %s", trimmed)
	}
	t := Default()
	if err := json.Unmarshal(data, &t); err != nil {
		return Theme{}, fmt.Errorf("decode theme: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Theme{}, err
	}
	return t, nil
}

// Validate checks the powerline configuration.
func (t Theme) Validate() error {
	if len(t.Powerline) == 0 {
		return errors.New("theme.powerline must not be empty")
	}
	if t.PowerlineEnable && len(t.Powerline) < 2 {
		return errors.New("theme.powerline must contain at least two values")
	}
	return nil
}

// WithUrgentSwapped returns a copy with the urgent fg and bg exchanged.
func (t Theme) WithUrgentSwapped() Theme {
	t.UrgentFg, t.UrgentBg = t.UrgentBg, t.UrgentFg
	return t
}

// Clone returns a deep copy so callers can hand themes across goroutines.
func (t Theme) Clone() Theme {
	t.Powerline = append([]PowerlinePair(nil), t.Powerline...)
	if t.PowerlineSeparator.Scale != nil {
		s := *t.PowerlineSeparator.Scale
		t.PowerlineSeparator.Scale = &s
	}
	return t
}

// Severity grades a reading for coloring. Normal readings are left to the
// bar's own colors.
type Severity int

const (
	SeverityNormal Severity = iota
	SeverityNotice
	SeverityWarn
	SeverityDanger
)

// ColorFor returns the color for sev and true if sev maps to one.
func (t Theme) ColorFor(sev Severity) (Color, bool) {
	switch sev {
	case SeverityNotice:
		return t.Yellow, true
	case SeverityWarn:
		return t.Orange, true
	case SeverityDanger:
		return t.Red, true
	default:
		return Color{}, false
	}
}

// Grade maps a percentage onto severities using ascending thresholds for
// notice, warn and danger.
func Grade(pct float64, notice, warn, danger float64) Severity {
	switch {
	case pct >= danger:
		return SeverityDanger
	case pct >= warn:
		return SeverityWarn
	case pct >= notice:
		return SeverityNotice
	default:
		return SeverityNormal
	}
}
