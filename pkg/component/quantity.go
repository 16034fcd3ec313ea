package component

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Quantity is an electrical value as written in a component description.
//
// JSON numbers are taken as given and sent to the catalog in the exact text
// they were written in ("1e-7" stays "1e-7"). Strings are parsed with an optional SI prefix
// and unit ("10k", "100nF", "4.7uH", "16MHz"); a string that does not parse is
// kept verbatim and passed to the catalog unchanged. The zero Quantity is
// absent.
type Quantity struct {
	value   float64
	raw     string
	literal string // JSON number text, when decoded from a number
	set     bool
	parsed  bool
}

// Value returns a Quantity holding v.
func Value(v float64) Quantity {
	return Quantity{value: v, set: true, parsed: true}
}

// ParseQuantity parses s as an SI-prefixed value. An empty string yields an
// absent Quantity; an unparseable one is kept raw.
func ParseQuantity(s string) Quantity {
	s = strings.TrimSpace(s)
	if s == "" {
		return Quantity{}
	}
	if v, ok := parseSI(s); ok {
		return Quantity{value: v, raw: s, set: true, parsed: true}
	}
	return Quantity{raw: s, set: true}
}

// IsSet reports whether the quantity was present in the input.
func (q Quantity) IsSet() bool { return q.set }

// Float returns the numeric value. ok is false for absent or unparseable
// quantities.
func (q Quantity) Float() (v float64, ok bool) {
	return q.value, q.parsed
}

// Raw returns the text the quantity was parsed from, if it came from a string.
func (q Quantity) Raw() string { return q.raw }

// String formats the quantity as a catalog parameter: the JSON number text
// for decoded numbers, the shortest decimal form of a parsed string, the raw
// text when it did not parse, and "" when absent.
func (q Quantity) String() string {
	switch {
	case !q.set:
		return ""
	case q.literal != "":
		return q.literal
	case q.parsed:
		return strconv.FormatFloat(q.value, 'f', -1, 64)
	default:
		return q.raw
	}
}

// UnmarshalJSON accepts a number, a string, or null.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || string(data) == "null":
		*q = Quantity{}
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = ParseQuantity(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("quantity: %w", err)
		}
		v, err := n.Float64()
		if err != nil {
			return fmt.Errorf("quantity: %w", err)
		}
		*q = Value(v)
		q.literal = n.String()
		return nil
	}
}

// MarshalJSON writes the value as a number, unparseable text as a string,
// and an absent quantity as null.
func (q Quantity) MarshalJSON() ([]byte, error) {
	switch {
	case !q.set:
		return []byte("null"), nil
	case q.literal != "":
		return []byte(q.literal), nil
	case q.parsed:
		return json.Marshal(q.value)
	default:
		return json.Marshal(q.raw)
	}
}

var quantityPattern = regexp.MustCompile(`^([+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)\s*(.*)$`)

var siExponents = map[string]int{
	"p": -12,
	"n": -9,
	"u": -6,
	"µ": -6,
	"μ": -6,
	"m": -3,
	"":  0,
	"k": 3,
	"K": 3,
	"M": 6,
	"G": 9,
}

// units are stripped before the prefix is read. Longer spellings come first.
var units = []string{"ohms", "ohm", "Hz", "Ω", "F", "H", "V", "A", "W"}

func parseSI(s string) (float64, bool) {
	m := quantityPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	num, suffix := m[1], strings.TrimSpace(m[2])

	for _, u := range units {
		if len(suffix) >= len(u) && strings.EqualFold(suffix[len(suffix)-len(u):], u) {
			suffix = suffix[:len(suffix)-len(u)]
			break
		}
	}

	exp, ok := siExponents[suffix]
	if !ok {
		return 0, false
	}
	if exp == 0 {
		v, err := strconv.ParseFloat(num, 64)
		return v, err == nil
	}
	if strings.ContainsAny(num, "eE") {
		v, err := strconv.ParseFloat(num, 64)
		return v * math.Pow10(exp), err == nil
	}
	// Scaling in decimal avoids binary rounding: "100n" is exactly 1e-7.
	v, err := strconv.ParseFloat(num+"e"+strconv.Itoa(exp), 64)
	return v, err == nil
}
