// Package pokedex provides the core types and display rules for Pokémon entries.
package pokedex

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Entry is one Pokémon's display record.
type Entry struct {
	ID               int      `yaml:"id" json:"id"`                                     // Stable PokeAPI identifier
	Name             string   `yaml:"name" json:"name"`                                 // Lowercase API name (e.g., "pikachu")
	HeightDecimeters int      `yaml:"height" json:"height"`                             // Raw API height
	WeightHectograms int      `yaml:"weight" json:"weight"`                             // Raw API weight
	SpriteURL        string   `yaml:"sprite_url,omitempty" json:"sprite_url,omitempty"` // Front sprite, may be empty
	Types            []string `yaml:"types" json:"types"`                               // Ordered type names (e.g., "electric")
}

// Reference is a name/URL pair as returned by the list endpoint.
type Reference struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// DisplayName returns the name with its first letter upper-cased.
func (e Entry) DisplayName() string {
	return Capitalize(e.Name)
}

// Number returns the zero-padded Pokédex number, e.g. "#025".
func (e Entry) Number() string {
	return fmt.Sprintf("#%03d", e.ID)
}

// HeightMeters returns the height in meters (raw value divided by 10).
func (e Entry) HeightMeters() string {
	return tenths(e.HeightDecimeters)
}

// WeightKilograms returns the weight in kilograms (raw value divided by 10).
func (e Entry) WeightKilograms() string {
	return tenths(e.WeightHectograms)
}

// HasSprite reports whether the entry carries a sprite URL.
func (e Entry) HasSprite() bool {
	return e.SpriteURL != ""
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// NormalizeName is the lookup key for a user query: trimmed and lowercased.
func NormalizeName(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// tenths formats v/10 in its shortest decimal form: 7 -> "0.7", 60 -> "6".
func tenths(v int) string {
	return strconv.FormatFloat(float64(v)/10, 'f', -1, 64)
}
