package engine

import (
	"github.com/matzehuels/partsengine/pkg/catalog"
	"github.com/matzehuels/partsengine/pkg/component"
	"github.com/matzehuels/partsengine/pkg/footprint"
)

// Catalog parameter names.
const (
	paramPackage         = "package"
	paramResistance      = "resistance"
	paramCapacitance     = "capacitance"
	paramInductance      = "inductance"
	paramVoltage         = "voltage"
	paramFrequency       = "frequency"
	paramLoadCapacitance = "load_capacitance"
	paramNumPins         = "num_pins"
	paramGender          = "gender"
	paramPitch           = "pitch"
	paramTransistorType  = "transistor_type"
	paramChannelType     = "channel_type"
	paramMosfetMode      = "mosfet_mode"
)

// route maps a component kind to its catalog category and the parameters
// sent for it. pkg is the normalized footprint; raw is the footprint as the
// caller supplied it.
type route struct {
	category string
	params   func(d component.Descriptor, pkg, raw string) catalog.Params
}

// packageOnly is the route parameter set for categories searched by package alone.
func packageOnly(_ component.Descriptor, pkg, _ string) catalog.Params {
	p := catalog.Params{}
	p.Set(paramPackage, pkg)
	return p
}

var routes = map[component.Kind]route{
	component.KindResistor: {"resistors", func(d component.Descriptor, pkg, _ string) catalog.Params {
		p := catalog.Params{}
		p.Set(paramResistance, d.(component.Resistor).Resistance.String())
		p.Set(paramPackage, pkg)
		return p
	}},
	component.KindCapacitor: {"capacitors", func(d component.Descriptor, pkg, _ string) catalog.Params {
		p := catalog.Params{}
		p.Set(paramCapacitance, d.(component.Capacitor).Capacitance.String())
		p.Set(paramPackage, pkg)
		return p
	}},
	// Headers are searched by pin count and pitch; the footprint carries no
	// package the catalog understands.
	component.KindPinHeader: {"headers", func(d component.Descriptor, _, raw string) catalog.Params {
		h := d.(component.PinHeader)
		p := catalog.Params{}
		p.Set(paramNumPins, h.PinCount.String())
		p.Set(paramGender, h.Gender)
		if pitch, ok := footprint.Pitch(raw); ok {
			p.SetFloat(paramPitch, pitch)
		}
		return p
	}},
	component.KindPotentiometer: {"potentiometers", func(d component.Descriptor, pkg, _ string) catalog.Params {
		p := catalog.Params{}
		p.Set(paramResistance, d.(component.Potentiometer).MaxResistance.String())
		p.Set(paramPackage, pkg)
		return p
	}},
	component.KindDiode: {"diodes", packageOnly},
	component.KindChip:  {"chips", packageOnly},
	component.KindTransistor: {"transistors", func(d component.Descriptor, pkg, _ string) catalog.Params {
		tr := d.(component.Transistor)
		p := catalog.Params{}
		p.Set(paramPackage, pkg)
		p.Set(paramTransistorType, tr.TransistorType)
		p.Set(paramChannelType, tr.ChannelType)
		return p
	}},
	component.KindPowerSource: {"power_sources", func(d component.Descriptor, pkg, _ string) catalog.Params {
		p := catalog.Params{}
		p.Set(paramVoltage, d.(component.PowerSource).Voltage.String())
		p.Set(paramPackage, pkg)
		return p
	}},
	component.KindInductor: {"inductors", func(d component.Descriptor, pkg, _ string) catalog.Params {
		p := catalog.Params{}
		p.Set(paramInductance, d.(component.Inductor).Inductance.String())
		p.Set(paramPackage, pkg)
		return p
	}},
	component.KindCrystal: {"crystals", func(d component.Descriptor, pkg, _ string) catalog.Params {
		c := d.(component.Crystal)
		p := catalog.Params{}
		p.Set(paramFrequency, c.Frequency.String())
		p.Set(paramLoadCapacitance, c.LoadCapacitance.String())
		p.Set(paramPackage, pkg)
		return p
	}},
	component.KindMosfet: {"mosfets", func(d component.Descriptor, pkg, _ string) catalog.Params {
		m := d.(component.Mosfet)
		p := catalog.Params{}
		p.Set(paramPackage, pkg)
		p.Set(paramMosfetMode, m.MosfetMode)
		p.Set(paramChannelType, m.ChannelType)
		return p
	}},
	component.KindResonator: {"resonators", func(d component.Descriptor, pkg, _ string) catalog.Params {
		p := catalog.Params{}
		p.Set(paramFrequency, d.(component.Resonator).Frequency.String())
		p.Set(paramPackage, pkg)
		return p
	}},
	component.KindSwitch: {"switches", packageOnly},
	component.KindLED:    {"leds", packageOnly},
	component.KindFuse:   {"fuses", packageOnly},
}

// Category returns the catalog category searched for components of kind k.
func Category(k component.Kind) (string, bool) {
	r, ok := routes[k]
	return r.category, ok
}
