package component

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	pkgerrors "github.com/matzehuels/partsengine/pkg/errors"
)

// equalQuantities compares quantities by presence and catalog form, so a
// decoded 10000 equals Value(10000).
var equalQuantities = cmp.Comparer(func(a, b Quantity) bool {
	return a.IsSet() == b.IsSet() && a.String() == b.String()
})

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Descriptor
	}{
		{
			name: "resistor",
			json: `{"type":"source_component","ftype":"simple_resistor","resistance":10000,"name":"R1"}`,
			want: Resistor{Resistance: Value(10000)},
		},
		{
			name: "resistor string value",
			json: `{"type":"source_component","ftype":"simple_resistor","resistance":"10k"}`,
			want: Resistor{Resistance: ParseQuantity("10k")},
		},
		{
			name: "type omitted",
			json: `{"ftype":"simple_capacitor","capacitance":100000}`,
			want: Capacitor{Capacitance: Value(100000)},
		},
		{
			name: "pin header",
			json: `{"type":"source_component","ftype":"simple_pin_header","pin_count":8,"gender":"male"}`,
			want: PinHeader{PinCount: Value(8), Gender: "male"},
		},
		{
			name: "potentiometer",
			json: `{"ftype":"simple_potentiometer","max_resistance":5000}`,
			want: Potentiometer{MaxResistance: Value(5000)},
		},
		{
			name: "transistor",
			json: `{"ftype":"simple_transistor","transistor_type":"npn"}`,
			want: Transistor{TransistorType: "npn"},
		},
		{
			name: "crystal",
			json: `{"ftype":"simple_crystal","frequency":16000000,"load_capacitance":"18pF"}`,
			want: Crystal{Frequency: Value(16000000), LoadCapacitance: ParseQuantity("18pF")},
		},
		{
			name: "mosfet",
			json: `{"ftype":"simple_mosfet","mosfet_mode":"enhancement","channel_type":"n"}`,
			want: Mosfet{MosfetMode: "enhancement", ChannelType: "n"},
		},
		{
			name: "foreign attributes ignored",
			json: `{"ftype":"simple_led","resistance":10000,"color":"red"}`,
			want: LED{},
		},
		{
			name: "unknown ftype",
			json: `{"type":"source_component","ftype":"random","resistance":10000}`,
			want: Unknown{Type: "random"},
		},
		{
			name: "missing ftype",
			json: `{"type":"source_component"}`,
			want: Unknown{},
		},
		{
			name: "not a source component",
			json: `{"type":"pcb_component","ftype":"simple_resistor","resistance":1}`,
			want: Unknown{Type: "simple_resistor"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.json))
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got, equalQuantities); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"not json", `nope`},
		{"array", `[]`},
		{"wrong attribute type", `{"ftype":"simple_pin_header","gender":5}`},
		{"object quantity", `{"ftype":"simple_resistor","resistance":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.json))
			if !pkgerrors.Is(err, pkgerrors.ErrCodeInvalidComponent) {
				t.Errorf("Decode() error = %v, want INVALID_COMPONENT", err)
			}
		})
	}
}

func TestKindsAndFTypes(t *testing.T) {
	all := []Descriptor{
		Resistor{}, Capacitor{}, PinHeader{}, Potentiometer{}, Diode{},
		Chip{}, Transistor{}, PowerSource{}, Inductor{}, Crystal{},
		Mosfet{}, Resonator{}, Switch{}, LED{}, Fuse{},
	}

	kinds := map[Kind]bool{}
	for _, d := range all {
		if kinds[d.Kind()] {
			t.Errorf("duplicate kind %s", d.Kind())
		}
		kinds[d.Kind()] = true

		if !Known(d.FType()) {
			t.Errorf("%s should be known", d.FType())
		}
		got, err := Decode([]byte(`{"ftype":"` + d.FType() + `"}`))
		if err != nil {
			t.Fatalf("Decode(%s) error: %v", d.FType(), err)
		}
		if got.Kind() != d.Kind() {
			t.Errorf("Decode(%s).Kind() = %s, want %s", d.FType(), got.Kind(), d.Kind())
		}
		if k := KindOf(d.FType()); k != d.Kind() {
			t.Errorf("KindOf(%s) = %s, want %s", d.FType(), k, d.Kind())
		}
	}

	if len(FTypes()) != len(all) {
		t.Errorf("FTypes() has %d entries, want %d", len(FTypes()), len(all))
	}
	if Known("random") {
		t.Error("random should not be known")
	}
	if k := KindOf("random"); k != KindUnknown {
		t.Errorf("KindOf(random) = %s, want unknown", k)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	in := PinHeader{PinCount: Value(8), Gender: "female"}
	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if m["type"] != SourceComponentType || m["ftype"] != "simple_pin_header" {
		t.Errorf("Encode() tags = %v, %v", m["type"], m["ftype"])
	}

	out, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if diff := cmp.Diff(Descriptor(in), out, equalQuantities); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
