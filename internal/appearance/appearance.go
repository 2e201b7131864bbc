// Package appearance classifies the system UI appearance as light or dark.
package appearance

import (
	"fmt"
	"strings"
)

// Appearance is the two-valued system theme.
type Appearance uint8

const (
	Light Appearance = iota
	Dark
)

// Names of the AppKit appearances we ask NSAppearance to pick a best match from.
const (
	AquaName     = "NSAppearanceNameAqua"
	DarkAquaName = "NSAppearanceNameDarkAqua"
)

// Candidates returns the fixed allow-list passed to bestMatchFromAppearancesWithNames:.
func Candidates() []string {
	return []string{AquaName, DarkAquaName}
}

// Classify maps a best-match appearance name to an Appearance.
// Anything other than the dark candidate, including an empty token, is Light.
func Classify(token string) Appearance {
	if token == DarkAquaName {
		return Dark
	}
	return Light
}

func (a Appearance) String() string {
	if a == Dark {
		return "dark"
	}
	return "light"
}

// MarshalText renders a as "light" or "dark" for structured logs.
func (a Appearance) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Parse accepts "light" or "dark" in any case.
func Parse(s string) (Appearance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "light":
		return Light, nil
	case "dark":
		return Dark, nil
	}
	return Light, fmt.Errorf("unknown appearance %q", s)
}
