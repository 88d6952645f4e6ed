package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
)

// maxNameGraphemes bounds the display name by user-perceived characters
// (grapheme clusters), not bytes or runes: "å" composed from two code
// points still counts as one character.
const maxNameGraphemes = 256

// forbiddenNameChars are rejected wherever they appear in a name. They are
// the usual suspects for injection into HTML, headers, and templates.
const forbiddenNameChars = `/()"<>\{}`

// Name is a validated subscriber display name. Always construct through
// ParseName.
type Name struct {
	value string
}

// ParseName validates a raw display name. It rejects names that are empty
// after trimming whitespace, longer than 256 grapheme clusters, or that
// contain any forbidden character. Validation is all-or-nothing: a single
// failing rule rejects the whole field.
func ParseName(raw string) (Name, error) {
	if strings.TrimSpace(raw) == "" {
		return Name{}, fmt.Errorf("name must not be empty")
	}
	if uniseg.GraphemeClusterCount(raw) > maxNameGraphemes {
		return Name{}, fmt.Errorf("name exceeds %d characters", maxNameGraphemes)
	}
	if strings.ContainsAny(raw, forbiddenNameChars) {
		return Name{}, fmt.Errorf("name contains a forbidden character")
	}
	return Name{value: raw}, nil
}

// String returns the validated name.
func (n Name) String() string { return n.value }

// MarshalJSON encodes the name as a plain JSON string.
func (n Name) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.value)
}

// IsZero reports whether the name was never parsed.
func (n Name) IsZero() bool { return n.value == "" }
