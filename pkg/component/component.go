// Package component defines the abstract electronic components the engine
// resolves into supplier parts.
//
// A component arrives as a circuit-json "source_component" object whose
// "ftype" tag selects its category. [Decode] turns such an object into one of
// the concrete [Descriptor] types; any tag without a catalog route decodes to
// [Unknown] rather than failing, so callers can pass through whatever a
// circuit contains.
//
// Descriptors carry only the attributes their category uses. Attributes of
// other categories present in the input are ignored.
package component

// Kind identifies a component category.
type Kind string

const (
	KindResistor      Kind = "resistor"
	KindCapacitor     Kind = "capacitor"
	KindPinHeader     Kind = "pin_header"
	KindPotentiometer Kind = "potentiometer"
	KindDiode         Kind = "diode"
	KindChip          Kind = "chip"
	KindTransistor    Kind = "transistor"
	KindPowerSource   Kind = "power_source"
	KindInductor      Kind = "inductor"
	KindCrystal       Kind = "crystal"
	KindMosfet        Kind = "mosfet"
	KindResonator     Kind = "resonator"
	KindSwitch        Kind = "switch"
	KindLED           Kind = "led"
	KindFuse          Kind = "fuse"
	KindUnknown       Kind = "unknown"
)

// Descriptor is an abstract component. The set of implementations is closed:
// only the types in this package satisfy it.
type Descriptor interface {
	// Kind reports the component category.
	Kind() Kind
	// FType returns the circuit-json type tag ("simple_resistor").
	FType() string

	descriptor()
}

type (
	// Resistor is a fixed resistor.
	Resistor struct {
		Resistance Quantity `json:"resistance"`
	}

	// Capacitor is a fixed capacitor.
	Capacitor struct {
		Capacitance Quantity `json:"capacitance"`
	}

	// PinHeader is a pin header connector.
	PinHeader struct {
		PinCount Quantity `json:"pin_count"`
		Gender   string   `json:"gender,omitempty"`
	}

	// Potentiometer is a variable resistor.
	Potentiometer struct {
		MaxResistance Quantity `json:"max_resistance"`
	}

	// Diode is a generic diode.
	Diode struct{}

	// Chip is an integrated circuit.
	Chip struct{}

	// Transistor is a bipolar or generic transistor.
	Transistor struct {
		TransistorType string `json:"transistor_type,omitempty"`
		ChannelType    string `json:"channel_type,omitempty"`
	}

	// PowerSource is a battery, supply or similar source.
	PowerSource struct {
		Voltage Quantity `json:"voltage"`
	}

	// Inductor is a fixed inductor.
	Inductor struct {
		Inductance Quantity `json:"inductance"`
	}

	// Crystal is a quartz crystal.
	Crystal struct {
		Frequency       Quantity `json:"frequency"`
		LoadCapacitance Quantity `json:"load_capacitance"`
	}

	// Mosfet is a field-effect transistor.
	Mosfet struct {
		MosfetMode  string `json:"mosfet_mode,omitempty"`
		ChannelType string `json:"channel_type,omitempty"`
	}

	// Resonator is a ceramic resonator.
	Resonator struct {
		Frequency Quantity `json:"frequency"`
	}

	// Switch is a mechanical switch.
	Switch struct{}

	// LED is a light-emitting diode.
	LED struct{}

	// Fuse is a fuse or resettable fuse.
	Fuse struct{}

	// Unknown is any component whose type tag has no catalog category.
	Unknown struct {
		Type string `json:"ftype"`
	}
)

func (Resistor) Kind() Kind      { return KindResistor }
func (Capacitor) Kind() Kind     { return KindCapacitor }
func (PinHeader) Kind() Kind     { return KindPinHeader }
func (Potentiometer) Kind() Kind { return KindPotentiometer }
func (Diode) Kind() Kind         { return KindDiode }
func (Chip) Kind() Kind          { return KindChip }
func (Transistor) Kind() Kind    { return KindTransistor }
func (PowerSource) Kind() Kind   { return KindPowerSource }
func (Inductor) Kind() Kind      { return KindInductor }
func (Crystal) Kind() Kind       { return KindCrystal }
func (Mosfet) Kind() Kind        { return KindMosfet }
func (Resonator) Kind() Kind     { return KindResonator }
func (Switch) Kind() Kind        { return KindSwitch }
func (LED) Kind() Kind           { return KindLED }
func (Fuse) Kind() Kind          { return KindFuse }
func (Unknown) Kind() Kind       { return KindUnknown }

func (Resistor) FType() string      { return "simple_resistor" }
func (Capacitor) FType() string     { return "simple_capacitor" }
func (PinHeader) FType() string     { return "simple_pin_header" }
func (Potentiometer) FType() string { return "simple_potentiometer" }
func (Diode) FType() string         { return "simple_diode" }
func (Chip) FType() string          { return "simple_chip" }
func (Transistor) FType() string    { return "simple_transistor" }
func (PowerSource) FType() string   { return "simple_power_source" }
func (Inductor) FType() string      { return "simple_inductor" }
func (Crystal) FType() string       { return "simple_crystal" }
func (Mosfet) FType() string        { return "simple_mosfet" }
func (Resonator) FType() string     { return "simple_resonator" }
func (Switch) FType() string        { return "simple_switch" }
func (LED) FType() string           { return "simple_led" }
func (Fuse) FType() string          { return "simple_fuse" }
func (u Unknown) FType() string     { return u.Type }

func (Resistor) descriptor()      {}
func (Capacitor) descriptor()     {}
func (PinHeader) descriptor()     {}
func (Potentiometer) descriptor() {}
func (Diode) descriptor()         {}
func (Chip) descriptor()          {}
func (Transistor) descriptor()    {}
func (PowerSource) descriptor()   {}
func (Inductor) descriptor()      {}
func (Crystal) descriptor()       {}
func (Mosfet) descriptor()        {}
func (Resonator) descriptor()     {}
func (Switch) descriptor()        {}
func (LED) descriptor()           {}
func (Fuse) descriptor()          {}
func (Unknown) descriptor()       {}
