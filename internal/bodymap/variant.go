package bodymap

import "strings"

// Variant selects which silhouette image is shown. All variants share the
// canonical region table, so the image assets must keep the same layout.
type Variant string

const (
	Male   Variant = "male"
	Female Variant = "female"

	DefaultVariant = Male
)

// Valid reports whether v is a known variant.
func (v Variant) Valid() bool {
	return v == Male || v == Female
}

// ParseVariant normalises s; unknown or empty input yields DefaultVariant.
func ParseVariant(s string) Variant {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	if !v.Valid() {
		return DefaultVariant
	}
	return v
}

// AssetPath is the silhouette image path served to clients for v.
func (v Variant) AssetPath() string {
	return "/silhouettes/" + string(ParseVariant(string(v))) + ".svg"
}
