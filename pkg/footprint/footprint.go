package footprint

import (
	"regexp"
	"strconv"
	"strings"
)

// KiCadPrefix marks a footprint written in native KiCad notation
// ("kicad:<library>:<part>").
const KiCadPrefix = "kicad:"

// capMarker is the capacitor package marker used by shorthand footprints
// ("0603cap", "cap0603").
const capMarker = "cap"

// pitchSeparator separates a connector footprint from its pitch ("2x4_p2.54").
const pitchSeparator = "_p"

// Notation identifies how a raw footprint string was written.
type Notation string

const (
	// NotationNone is reported for an absent (empty) footprint.
	NotationNone Notation = ""
	// NotationKiCad is the colon-delimited "kicad:library:part" notation.
	NotationKiCad Notation = "kicad"
	// NotationShorthand is the generic footprinter shorthand ("0603", "soic8").
	NotationShorthand Notation = "shorthand"
)

var (
	// passivePattern extracts the metric package code of SMD resistors and
	// capacitors: "kicad:Resistor_SMD:R_0603_1608Metric" -> "0603".
	passivePattern = regexp.MustCompile(`:[RC]_(\d{4})_`)

	// familyPattern extracts a standard package family token:
	// "kicad:Package_SO:SOIC-8_3.9x4.9mm_P1.27mm" -> "SOIC-8".
	familyPattern = regexp.MustCompile(`:(SOIC-\d+|SOT-\d+|SOD-\d+|SSOP-\d+|TSSOP-\d+|QFP-\d+|QFN-\d+)`)
)

// Translation is the outcome of normalizing a raw footprint.
//
// Matched is false only when a KiCad footprint matched none of the known
// patterns and Package fell back to the raw input. The catalog will most
// likely find nothing for such a package; callers should surface it.
type Translation struct {
	Raw      string   `json:"raw"`      // Footprint as supplied by the caller
	Package  string   `json:"package"`  // Canonical package token sent to the catalog
	Notation Notation `json:"notation"` // Notation the raw footprint was written in
	Matched  bool     `json:"matched"`  // False when Package is an unrecognized KiCad fallback
}

// Fallback reports whether the translation passed an unrecognized KiCad
// footprint through unchanged.
func (t Translation) Fallback() bool {
	return t.Notation == NotationKiCad && !t.Matched
}

// Normalize converts a raw footprint into the canonical package token
// understood by the catalog. It is shorthand for Translate(fp).Package.
func Normalize(fp string) string {
	return Translate(fp).Package
}

// Translate converts a raw footprint into a canonical package token and
// reports how it got there. It never fails: an absent footprint yields an
// empty package, and an unrecognized KiCad footprint is returned unchanged.
func Translate(fp string) Translation {
	if fp == "" {
		return Translation{Matched: true}
	}

	if strings.HasPrefix(fp, KiCadPrefix) {
		if pkg, ok := fromKiCad(fp); ok {
			return Translation{Raw: fp, Package: pkg, Notation: NotationKiCad, Matched: true}
		}
		return Translation{Raw: fp, Package: fp, Notation: NotationKiCad}
	}

	return Translation{Raw: fp, Package: stripCapMarker(fp), Notation: NotationShorthand, Matched: true}
}

// fromKiCad extracts a package token from a KiCad footprint. Passive metric
// codes take priority over package family tokens.
func fromKiCad(fp string) (string, bool) {
	if m := passivePattern.FindStringSubmatch(fp); m != nil {
		return m[1], true
	}
	if m := familyPattern.FindStringSubmatch(fp); m != nil {
		return m[1], true
	}
	return "", false
}

func stripCapMarker(s string) string {
	return strings.ReplaceAll(s, capMarker, "")
}

// Pitch extracts the connector pitch from a raw shorthand footprint
// ("2x4_p2.54" -> 2.54). It must be given the footprint as supplied, before
// normalization.
//
// ok is false when the footprint carries no "_p" suffix or when the suffix
// does not parse to a non-zero number.
func Pitch(raw string) (pitch float64, ok bool) {
	_, rest, found := strings.Cut(raw, pitchSeparator)
	if !found {
		return 0, false
	}
	if i := strings.Index(rest, pitchSeparator); i >= 0 {
		rest = rest[:i]
	}
	p, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
	if err != nil || p == 0 {
		return 0, false
	}
	return p, true
}
