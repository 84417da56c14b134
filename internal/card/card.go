package card

import "fmt"

// Arcana values
const (
	Major = "major"
	Minor = "minor"
)

// Suits of the minor arcana, in deck order
var Suits = []string{"wands", "cups", "swords", "pentacles"}

// Ranks of a minor arcana suit, in deck order
var Ranks = []string{
	"ace", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten",
	"page", "knight", "queen", "king",
}

// ReversedSuffix is appended to a card label sent to the backend
const ReversedSuffix = " (перевернутая)"

// Definition represents a tarot card of the deck
type Definition struct {
	ID            int    `toml:"id"`             // 0-77, major arcana first
	Name          string `toml:"name"`           // English name
	LocalizedName string `toml:"localized_name"` // Russian name
	Arcana        string `toml:"arcana"`         // major or minor
	Suit          string `toml:"suit"`           // For minor arcana (wands, cups, swords, pentacles)
	Upright       string `toml:"upright"`        // Upright meaning
	Reversed      string `toml:"reversed"`       // Reversed meaning
	Image         string `toml:"image"`          // Image file name
}

// Drawn is a card of a hand together with its orientation
type Drawn struct {
	Definition
	IsReversed bool
}

// IsMinor reports whether the card belongs to the minor arcana
func (d Definition) IsMinor() bool {
	return d.Arcana == Minor
}

// Rank returns the rank of a minor arcana card (ace..king), or "" for major arcana.
// Minor arcana ids run 22-77 in suit order, 14 cards per suit.
func (d Definition) Rank() string {
	if !d.IsMinor() || d.ID < 22 {
		return ""
	}
	return Ranks[(d.ID-22)%len(Ranks)]
}

// CanonicalID returns the Arcana Land card id (e.g., major_arcana.00, minor_arcana.wands.ace)
func (d Definition) CanonicalID() string {
	if d.IsMinor() {
		return fmt.Sprintf("minor_arcana.%s.%s", d.Suit, d.Rank())
	}
	return fmt.Sprintf("major_arcana.%02d", d.ID)
}

// Meaning returns the meaning matching the card orientation
func (c Drawn) Meaning() string {
	if c.IsReversed {
		return c.Reversed
	}
	return c.Upright
}

// Label returns the name the backend expects for this card
func (c Drawn) Label() string {
	if c.IsReversed {
		return c.LocalizedName + ReversedSuffix
	}
	return c.LocalizedName
}
