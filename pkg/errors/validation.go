package errors

import (
	"regexp"
	"strings"
	"unicode"
)

const maxFootprintLength = 256

// ValidateFootprint validates a raw footprint string received from an
// untrusted caller (HTTP API, batch files).
//
// Empty is valid and means "no footprint constraint". Anything that passes
// validation is handed to the normalizer unchanged; a footprint that matches
// no known pattern is still valid here.
//
// Validation rules:
//   - Maximum length of 256 characters
//   - No control characters or null bytes
func ValidateFootprint(fp string) error {
	if len(fp) > maxFootprintLength {
		return New(ErrCodeInvalidFootprint, "footprint too long (max %d characters)", maxFootprintLength)
	}
	for _, r := range fp {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidFootprint, "footprint contains invalid control characters")
		}
	}
	return nil
}

// ftypeRegex matches circuit-json style component type tags ("simple_resistor").
var ftypeRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ValidateFType validates a component type tag.
//
// Only the shape is checked: an unrecognized but well-formed tag is valid and
// resolves to an empty result further down the line.
func ValidateFType(ftype string) error {
	if ftype == "" {
		return New(ErrCodeInvalidComponent, "component ftype cannot be empty")
	}
	if len(ftype) > 64 {
		return New(ErrCodeInvalidComponent, "component ftype too long (max 64 characters)")
	}
	if !ftypeRegex.MatchString(ftype) {
		return New(ErrCodeInvalidComponent, "invalid component ftype: %q", ftype)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// ValidatePath validates a file path supplied on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	return nil
}
