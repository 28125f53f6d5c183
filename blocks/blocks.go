package blocks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"istat/theme"
)

type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

type Markup string

const (
	MarkupNone  Markup = "none"
	MarkupPango Markup = "pango"
)

// MinWidth is either a pixel count or a reference string.
type MinWidth struct {
	Pixels int
	Text   string
}

func (m MinWidth) MarshalJSON() ([]byte, error) {
	if m.Text != "" {
		return json.Marshal(m.Text)
	}
	return json.Marshal(m.Pixels)
}

func (m *MinWidth) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		*m = MinWidth{}
		return json.Unmarshal(data, &m.Text)
	}
	*m = MinWidth{}
	return json.Unmarshal(data, &m.Pixels)
}

// Block represents an i3bar protocol block. Optional fields are pointers and
// are omitted from the wire form when nil. Data carries side-channel values
// whose keys always start with an underscore.
type Block struct {
	FullText            string       `json:"full_text"`
	ShortText           string       `json:"short_text,omitempty"`
	Instance            string       `json:"instance,omitempty"`
	Name                string       `json:"name,omitempty"`
	Color               *theme.Color `json:"color,omitempty"`
	Background          *theme.Color `json:"background,omitempty"`
	Border              *theme.Color `json:"border,omitempty"`
	BorderTop           *int         `json:"border_top,omitempty"`
	BorderRight         *int         `json:"border_right,omitempty"`
	BorderBottom        *int         `json:"border_bottom,omitempty"`
	BorderLeft          *int         `json:"border_left,omitempty"`
	MinWidth            *MinWidth    `json:"min_width,omitempty"`
	Align               Align        `json:"align,omitempty"`
	Urgent              *bool        `json:"urgent,omitempty"`
	Separator           *bool        `json:"separator,omitempty"`
	SeparatorBlockWidth *int         `json:"separator_block_width,omitempty"`
	Markup              Markup       `json:"markup,omitempty"`

	Data map[string]any `json:"-"`
}

// Text is a block showing s and nothing else.
func Text(s string) Block {
	return Block{FullText: s}
}

func Bool(v bool) *bool { return &v }
func Int(v int) *int    { return &v }

// ColorRef returns a pointer to a copy of c for the optional color fields.
func ColorRef(c theme.Color) *theme.Color { return &c }

// IsEmpty reports whether the block shows nothing.
func (b Block) IsEmpty() bool {
	return b.FullText == ""
}

// IsUrgent reports whether urgent is set and true.
func (b Block) IsUrgent() bool {
	return b.Urgent != nil && *b.Urgent
}

// WithData returns a copy with key set in Data. Keys without a leading
// underscore get one.
func (b Block) WithData(key string, v any) Block {
	if !strings.HasPrefix(key, "_") {
		key = "_" + key
	}
	data := make(map[string]any, len(b.Data)+1)
	for k, val := range b.Data {
		data[k] = val
	}
	data[key] = v
	b.Data = data
	return b
}

// Equal compares every field, treating nil and empty Data alike.
func (b Block) Equal(o Block) bool {
	if len(b.Data) == 0 {
		b.Data = nil
	}
	if len(o.Data) == 0 {
		o.Data = nil
	}
	return reflect.DeepEqual(b, o)
}

func (b Block) MarshalJSON() ([]byte, error) {
	type plain Block
	p := plain(b)
	if p.Markup == MarkupNone {
		p.Markup = ""
	}
	out, err := json.Marshal(p)
	if err != nil || len(b.Data) == 0 {
		return out, err
	}

	keys := make([]string, 0, len(b.Data))
	for k := range b.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(out[:len(out)-1])
	for _, k := range keys {
		if !strings.HasPrefix(k, "_") {
			return nil, fmt.Errorf("block data key %q must start with an underscore", k)
		}
		v, err := json.Marshal(b.Data[k])
		if err != nil {
			return nil, fmt.Errorf("block data %q: %w", k, err)
		}
		kb, _ := json.Marshal(k)
		buf.WriteByte(',')
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (b *Block) UnmarshalJSON(data []byte) error {
	type plain Block
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for k, raw := range fields {
		if !strings.HasPrefix(k, "_") {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("block data %q: %w", k, err)
		}
		if p.Data == nil {
			p.Data = map[string]any{}
		}
		p.Data[k] = v
	}
	*b = Block(p)
	return nil
}

// Header is the first line of the i3bar stream.
type Header struct {
	Version     int  `json:"version"`
	ClickEvents bool `json:"click_events"`
	StopSignal  *int `json:"stop_signal,omitempty"`
	ContSignal  *int `json:"cont_signal,omitempty"`
}

func DefaultHeader() Header {
	return Header{Version: 1, ClickEvents: true}
}
