package component

import (
	"encoding/json"
	"maps"
	"slices"

	pkgerrors "github.com/matzehuels/partsengine/pkg/errors"
)

// SourceComponentType is the circuit-json "type" of every component the
// engine accepts.
const SourceComponentType = "source_component"

// header is the part of a source_component shared by all categories.
type header struct {
	Type  string `json:"type"`
	FType string `json:"ftype"`
}

// decoders maps each routed ftype to a function decoding its attributes.
var decoders = map[string]func([]byte) (Descriptor, error){
	Resistor{}.FType():      decodeInto[Resistor],
	Capacitor{}.FType():     decodeInto[Capacitor],
	PinHeader{}.FType():     decodeInto[PinHeader],
	Potentiometer{}.FType(): decodeInto[Potentiometer],
	Diode{}.FType():         decodeInto[Diode],
	Chip{}.FType():          decodeInto[Chip],
	Transistor{}.FType():    decodeInto[Transistor],
	PowerSource{}.FType():   decodeInto[PowerSource],
	Inductor{}.FType():      decodeInto[Inductor],
	Crystal{}.FType():       decodeInto[Crystal],
	Mosfet{}.FType():        decodeInto[Mosfet],
	Resonator{}.FType():     decodeInto[Resonator],
	Switch{}.FType():        decodeInto[Switch],
	LED{}.FType():           decodeInto[LED],
	Fuse{}.FType():          decodeInto[Fuse],
}

func decodeInto[T Descriptor](data []byte) (Descriptor, error) {
	var d T
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return d, nil
}

// Decode parses a circuit-json source_component.
//
// An object whose "type" is set to anything other than "source_component",
// or whose "ftype" is not a known category, decodes to [Unknown]. Decode only
// fails when data is not a JSON object or a known category's attribute has
// the wrong JSON type.
func Decode(data []byte) (Descriptor, error) {
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidComponent, err, "decode source component")
	}
	if h.Type != "" && h.Type != SourceComponentType {
		return Unknown{Type: h.FType}, nil
	}

	decode, ok := decoders[h.FType]
	if !ok {
		return Unknown{Type: h.FType}, nil
	}
	d, err := decode(data)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidComponent, err, "decode %s", h.FType)
	}
	return d, nil
}

// Known reports whether ftype names a category with a catalog route.
func Known(ftype string) bool {
	_, ok := decoders[ftype]
	return ok
}

// KindOf returns the kind of the category tagged ftype, or KindUnknown.
func KindOf(ftype string) Kind {
	decode, ok := decoders[ftype]
	if !ok {
		return KindUnknown
	}
	d, err := decode([]byte("{}"))
	if err != nil {
		return KindUnknown
	}
	return d.Kind()
}

// FTypes returns the type tags of all known categories, sorted.
func FTypes() []string {
	return slices.Sorted(maps.Keys(decoders))
}

// Encode returns the circuit-json form of d, with "type" and "ftype" set.
func Encode(d Descriptor) ([]byte, error) {
	attrs, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(attrs, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]json.RawMessage{}
	}
	m["type"], _ = json.Marshal(SourceComponentType)
	m["ftype"], _ = json.Marshal(d.FType())
	return json.Marshal(m)
}
