// Package pipeline resolves batches of components.
//
// A batch is a JSON array of items, each a resolution request with an
// optional identifier:
//
//	[
//	  {"id": "R1", "sourceComponent": {"ftype": "simple_resistor", "resistance": 10000}, "footprinterString": "0603"},
//	  {"id": "J1", "sourceComponent": {"ftype": "simple_pin_header", "pin_count": 8}, "footprinterString": "2x4_p2.54"}
//	]
//
// The [Runner] fans the items out over the engine with bounded concurrency.
// A failing item never aborts the batch: its error is recorded in its
// [Outcome] and the remaining items still resolve.
//
// # Usage
//
//	items, err := pipeline.ParseItems(f)
//	runner := pipeline.NewRunner(eng, 8, logger)
//	result, err := runner.Run(ctx, items)
//	for _, o := range result.Outcomes {
//	    fmt.Println(o.ID, o.Status, o.References())
//	}
package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/matzehuels/partsengine/pkg/engine"
	pkgerrors "github.com/matzehuels/partsengine/pkg/errors"
)

// DefaultConcurrency is the number of items resolved in parallel when the
// caller does not choose.
const DefaultConcurrency = 4

// MaxConcurrency caps parallel resolution to keep catalog load reasonable.
const MaxConcurrency = 64

// Item is one entry of a batch.
type Item struct {
	ID      string
	Request engine.Request

	// Err is set when the entry could not be decoded. Such items are
	// reported as failed without reaching the engine.
	Err error
}

// ParseItems reads a JSON array of batch items. Items without an id are
// numbered from 1 in input order. A malformed entry does not fail the batch;
// it yields an Item with Err set. Only an unreadable document is an error.
func ParseItems(r io.Reader) ([]Item, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidFormat, err, "batch must be a JSON array")
	}

	items := make([]Item, len(raw))
	for i, data := range raw {
		id, err := itemID(data)
		if id == "" {
			id = fmt.Sprint(i + 1)
		}
		items[i].ID = id
		if err != nil {
			items[i].Err = err
			continue
		}
		if err := json.Unmarshal(data, &items[i].Request); err != nil {
			items[i].Err = err
		}
	}
	return items, nil
}

// itemID reads the optional "id" of a batch entry. Strings are used as is and
// numbers keep their JSON text ("id": 5 is "5").
func itemID(data []byte) (string, error) {
	var v struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		// Not an object; the request decode reports it.
		return "", nil
	}
	if len(v.ID) == 0 || string(v.ID) == "null" {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(v.ID, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(v.ID, &n); err == nil {
		return n.String(), nil
	}
	return "", pkgerrors.New(pkgerrors.ErrCodeInvalidInput, "item id must be a string or a number, got %s", v.ID)
}

// Status classifies the outcome of one item.
type Status string

const (
	StatusResolved Status = "resolved" // At least one reference found
	StatusEmpty    Status = "empty"    // Catalog had no candidates
	StatusUnknown  Status = "unknown"  // Component type has no catalog category
	StatusFailed   Status = "failed"   // Decoding or catalog failure
)

// Outcome is the result of resolving one item.
type Outcome struct {
	ID        string                     `json:"id"`
	FType     string                     `json:"ftype,omitempty"`
	Footprint string                     `json:"footprint,omitempty"`
	Status    Status                     `json:"status"`
	Parts     engine.SupplierPartNumbers `json:"parts,omitempty"`
	Code      pkgerrors.Code             `json:"code,omitempty"`
	Error     string                     `json:"error,omitempty"`
	Duration  time.Duration              `json:"-"`
	Err       error                      `json:"-"`
}

// References returns the JLCPCB references of the outcome, if any.
func (o Outcome) References() []string {
	return o.Parts[engine.SupplierJLCPCB]
}

// Stats summarizes a batch run.
type Stats struct {
	Total    int           `json:"total"`
	Resolved int           `json:"resolved"`
	Empty    int           `json:"empty"`
	Unknown  int           `json:"unknown"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration_ns"`
}

// Result is the outcome of a batch run. Outcomes are in input order.
type Result struct {
	RunID    string    `json:"run_id"`
	Outcomes []Outcome `json:"outcomes"`
	Stats    Stats     `json:"stats"`
}

// WriteJSON writes the result as indented JSON.
func (r *Result) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
