package blocks

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Duration reads Go duration strings such as "5s" or "1m 30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"5s\": %w", err)
	}
	v, err := time.ParseDuration(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("duration must not be negative: %s", s)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Or returns d, or def when d is zero.
func (d Duration) Or(def time.Duration) time.Duration {
	if d.Duration <= 0 {
		return def
	}
	return d.Duration
}

// FloatFormat controls how percentages and temperatures are printed.
type FloatFormat struct {
	Pad       string `json:"pad,omitempty"`
	PadCount  *int   `json:"pad_count,omitempty"`
	Precision *int   `json:"precision,omitempty"`
}

// Format renders n. With no options set it is right aligned to three
// characters with no decimals.
func (f FloatFormat) Format(n float64) string {
	if f.Pad == "" && f.PadCount == nil && f.Precision == nil {
		return fmt.Sprintf("%3.0f", n)
	}
	precision := 0
	if f.Precision != nil {
		precision = *f.Precision
	}
	padCount := 3
	if precision > 0 {
		padCount = 3 + 1 + precision
	}
	if f.PadCount != nil {
		padCount = *f.PadCount
	}
	padding := ""
	if f.Pad != "" {
		if digits := numDigits(n); digits < padCount {
			padding = strings.Repeat(f.Pad, padCount-digits)
		}
	}
	return padding + strconv.FormatFloat(n, 'f', precision, 64)
}

func numDigits(n float64) int {
	n = math.Abs(n)
	if n < 1 {
		return 1
	}
	return int(math.Floor(math.Log10(n) + 1))
}
