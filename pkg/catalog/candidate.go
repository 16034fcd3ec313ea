package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ReferencePrefix is prepended to a catalog code to form a supplier reference.
const ReferencePrefix = "C"

// basicFields lists the spellings under which catalogs report the preferred
// ("basic") stock flag.
var basicFields = []string{"is_basic", "isBasic", "basic"}

// Candidate is one part returned by the catalog for a query.
type Candidate struct {
	Code  string `json:"lcsc"`     // Catalog part code, digits only ("25804")
	Basic bool   `json:"is_basic"` // Preferred stock (basic part)
}

// Reference returns the supplier reference for the candidate ("C25804").
func (c Candidate) Reference() string {
	return ReferencePrefix + c.Code
}

// UnmarshalJSON decodes a catalog row. The code may be a JSON number or a
// string; the basic flag is read from any of its known spellings and counts as
// set when it is true, 1, "true" or "1". Other fields are ignored.
func (c *Candidate) UnmarshalJSON(data []byte) error {
	var row map[string]json.RawMessage
	if err := json.Unmarshal(data, &row); err != nil {
		return err
	}

	*c = Candidate{}
	if raw, ok := row["lcsc"]; ok {
		code, err := decodeCode(raw)
		if err != nil {
			return err
		}
		c.Code = code
	}
	for _, f := range basicFields {
		if raw, ok := row[f]; ok && truthy(raw) {
			c.Basic = true
			break
		}
	}
	return nil
}

func decodeCode(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0 || string(raw) == "null":
		return "", nil
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", fmt.Errorf("lcsc: %w", err)
		}
		return n.String(), nil
	}
}

func truthy(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "true", "1", `"true"`, `"1"`:
		return true
	}
	return false
}

// Response is a decoded catalog answer for one category.
type Response struct {
	Category   string      `json:"category"`
	Candidates []Candidate `json:"candidates"`
}
