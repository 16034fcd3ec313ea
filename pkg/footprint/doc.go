// Package footprint normalizes footprint descriptors into catalog package tokens.
//
// # Overview
//
// Callers describe a component's physical package in one of two notations:
//
//   - KiCad notation: "kicad:<library>:<part>", for example
//     "kicad:Resistor_SMD:R_0603_1608Metric" or "kicad:Package_SO:SOIC-8_3.9x4.9mm_P1.27mm"
//   - Shorthand notation: a short token such as "0603", "0603cap" or "2x4_p2.54"
//
// The catalog only understands the canonical package token ("0603", "SOIC-8",
// "SOT-23"), so every lookup goes through [Normalize] first.
//
// # KiCad Footprints
//
// Two patterns are tried in order:
//
//  1. A passive marker (R or C) followed by a 4-digit metric code:
//     ":R_0603_" -> "0603"
//  2. A standard package family: SOIC-n, SOT-n, SOD-n, SSOP-n, TSSOP-n, QFP-n, QFN-n
//
// If neither matches, the footprint is returned unchanged. [Translate]
// reports this case through [Translation.Fallback] so it can be logged.
//
// # Shorthand Footprints
//
// Every occurrence of the capacitor marker "cap" is removed:
//
//	footprint.Normalize("cap0603")  // "0603"
//	footprint.Normalize("0603cap")  // "0603"
//	footprint.Normalize("0805")     // "0805"
//
// Connector footprints may carry a pitch suffix; [Pitch] reads it from the
// raw string:
//
//	footprint.Pitch("2x4_p2.54")  // 2.54, true
package footprint
