package pipeline

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/partsengine/pkg/catalog"
	"github.com/matzehuels/partsengine/pkg/component"
	"github.com/matzehuels/partsengine/pkg/engine"
	pkgerrors "github.com/matzehuels/partsengine/pkg/errors"
)

// mapCatalog answers by category; categories listed in fail return an error.
type mapCatalog struct {
	lists    map[string][]catalog.Candidate
	fail     map[string]bool
	inflight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func (m *mapCatalog) Query(ctx context.Context, category string, _ catalog.Params) (*catalog.Response, error) {
	n := m.inflight.Add(1)
	defer m.inflight.Add(-1)
	for {
		p := m.peak.Load()
		if n <= p || m.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.fail[category] {
		return nil, pkgerrors.New(pkgerrors.ErrCodeCatalogUnavailable, "query %s", category)
	}
	return &catalog.Response{Category: category, Candidates: m.lists[category]}, nil
}

func quietLogger() *log.Logger { return log.New(&bytes.Buffer{}) }

const batchJSON = `[
  {"id": "R1", "sourceComponent": {"type": "source_component", "ftype": "simple_resistor", "resistance": 10000}, "footprinterString": "0603"},
  {"id": "C1", "sourceComponent": {"ftype": "simple_capacitor", "capacitance": "100nF"}, "footprinterString": "0603cap"},
  {"sourceComponent": {"ftype": "simple_battery"}},
  {"id": "U1", "sourceComponent": {"ftype": "simple_chip"}, "footprinterString": "SOIC-8"},
  {"id": "BAD", "sourceComponent": {"ftype": "simple_pin_header", "gender": 5}},
  {"id": "D1", "sourceComponent": {"ftype": "simple_diode"}, "footprinterString": "SOD-123"}
]`

func TestParseItems(t *testing.T) {
	items, err := ParseItems(strings.NewReader(batchJSON))
	if err != nil {
		t.Fatalf("ParseItems() error: %v", err)
	}

	var ids []string
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	if diff := cmp.Diff([]string{"R1", "C1", "3", "U1", "BAD", "D1"}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}

	if items[0].Request.SourceComponent.Kind() != component.KindResistor {
		t.Errorf("item 0 kind = %s", items[0].Request.SourceComponent.Kind())
	}
	if items[1].Request.FootprinterString != "0603cap" {
		t.Errorf("item 1 footprint = %q", items[1].Request.FootprinterString)
	}
	if items[2].Request.SourceComponent.Kind() != component.KindUnknown {
		t.Errorf("item 2 kind = %s, want unknown", items[2].Request.SourceComponent.Kind())
	}
	if items[4].Err == nil {
		t.Error("malformed item should carry an error")
	}
}

func TestParseItemsIDs(t *testing.T) {
	tests := []struct {
		name    string
		entry   string
		want    string
		wantErr bool
	}{
		{"string", `{"id": "R7", "sourceComponent": {"ftype": "simple_led"}}`, "R7", false},
		{"number", `{"id": 5, "sourceComponent": {"ftype": "simple_led"}}`, "5", false},
		{"null", `{"id": null, "sourceComponent": {"ftype": "simple_led"}}`, "1", false},
		{"absent", `{"sourceComponent": {"ftype": "simple_led"}}`, "1", false},
		{"object", `{"id": {"ref": "R1"}, "sourceComponent": {"ftype": "simple_led"}}`, "1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := ParseItems(strings.NewReader("[" + tt.entry + "]"))
			if err != nil {
				t.Fatalf("ParseItems() error: %v", err)
			}
			if items[0].ID != tt.want {
				t.Errorf("ID = %q, want %q", items[0].ID, tt.want)
			}
			if (items[0].Err != nil) != tt.wantErr {
				t.Errorf("Err = %v, wantErr %v", items[0].Err, tt.wantErr)
			}
			if tt.wantErr && !pkgerrors.Is(items[0].Err, pkgerrors.ErrCodeInvalidInput) {
				t.Errorf("Err = %v, want INVALID_INPUT", items[0].Err)
			}
		})
	}
}

func TestParseItemsInvalidDocument(t *testing.T) {
	for _, in := range []string{`{}`, `nope`, ``} {
		_, err := ParseItems(strings.NewReader(in))
		if !pkgerrors.Is(err, pkgerrors.ErrCodeInvalidFormat) {
			t.Errorf("ParseItems(%q) error = %v, want INVALID_FORMAT", in, err)
		}
	}
}

func TestRunnerRun(t *testing.T) {
	items, _ := ParseItems(strings.NewReader(batchJSON))
	cat := &mapCatalog{
		lists: map[string][]catalog.Candidate{
			"resistors":  {{Code: "1"}, {Code: "2", Basic: true}},
			"capacitors": {},
		},
		fail: map[string]bool{"diodes": true},
	}
	runner := NewRunner(engine.New(cat, quietLogger()), 2, quietLogger())

	var seen []string
	runner.OnOutcome = func(o Outcome) { seen = append(seen, o.ID) }

	res, err := runner.Run(context.Background(), items)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if res.RunID == "" {
		t.Error("RunID should be set")
	}
	if len(seen) != len(items) {
		t.Errorf("OnOutcome called %d times, want %d", len(seen), len(items))
	}

	statuses := map[string]Status{}
	for _, o := range res.Outcomes {
		statuses[o.ID] = o.Status
	}
	want := map[string]Status{
		"R1":  StatusResolved,
		"C1":  StatusEmpty,
		"3":   StatusUnknown,
		"U1":  StatusEmpty,
		"BAD": StatusFailed,
		"D1":  StatusFailed,
	}
	if diff := cmp.Diff(want, statuses); diff != "" {
		t.Errorf("statuses mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"C2", "C1"}, res.Outcomes[0].References()); diff != "" {
		t.Errorf("R1 references mismatch (-want +got):\n%s", diff)
	}
	if res.Outcomes[5].Code != pkgerrors.ErrCodeCatalogUnavailable {
		t.Errorf("D1 code = %s, want CATALOG_UNAVAILABLE", res.Outcomes[5].Code)
	}

	wantStats := Stats{Total: 6, Resolved: 1, Empty: 2, Unknown: 1, Failed: 2}
	got := res.Stats
	got.Duration = 0
	if got != wantStats {
		t.Errorf("Stats = %+v, want %+v", got, wantStats)
	}
}

func TestRunnerConcurrencyLimit(t *testing.T) {
	var items []Item
	for range 20 {
		items = append(items, Item{ID: "x", Request: engine.Request{SourceComponent: component.LED{}}})
	}
	cat := &mapCatalog{delay: 5 * time.Millisecond}
	runner := NewRunner(engine.New(cat, quietLogger()), 3, quietLogger())

	if _, err := runner.Run(context.Background(), items); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if peak := cat.peak.Load(); peak > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", peak)
	}
}

func TestRunnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := []Item{{ID: "a", Request: engine.Request{SourceComponent: component.Fuse{}}}}
	cat := &mapCatalog{delay: time.Second}
	res, err := NewRunner(engine.New(cat, quietLogger()), 1, quietLogger()).Run(ctx, items)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if res == nil || res.Outcomes[0].Status != StatusFailed {
		t.Errorf("cancelled item should be failed, got %+v", res)
	}
}

func TestRunnerLimit(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, DefaultConcurrency},
		{-3, DefaultConcurrency},
		{5, 5},
		{1000, MaxConcurrency},
	}
	for _, tt := range tests {
		if got := (&Runner{Concurrency: tt.in}).limit(); got != tt.want {
			t.Errorf("limit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestResultWriteJSON(t *testing.T) {
	res := &Result{
		RunID: "run",
		Outcomes: []Outcome{
			{ID: "R1", Status: StatusResolved, Parts: engine.SupplierPartNumbers{"jlcpcb": {"C1"}}},
			{ID: "X", Status: StatusFailed, Code: pkgerrors.ErrCodeCatalogUnavailable, Error: "boom"},
		},
	}
	var buf bytes.Buffer
	if err := res.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`"run_id": "run"`, `"jlcpcb": [`, `"code": "CATALOG_UNAVAILABLE"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
}

// Ensure OnOutcome is never invoked concurrently.
func TestRunnerOnOutcomeSerialized(t *testing.T) {
	var items []Item
	for range 50 {
		items = append(items, Item{Request: engine.Request{SourceComponent: component.Switch{}}})
	}
	runner := NewRunner(engine.New(&mapCatalog{}, quietLogger()), 8, quietLogger())

	var active atomic.Int32
	var wg sync.WaitGroup
	wg.Add(len(items))
	runner.OnOutcome = func(Outcome) {
		defer wg.Done()
		if active.Add(1) > 1 {
			t.Error("OnOutcome called concurrently")
		}
		time.Sleep(100 * time.Microsecond)
		active.Add(-1)
	}
	if _, err := runner.Run(context.Background(), items); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	wg.Wait()
}
