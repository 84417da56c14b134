package deck

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/arcanaland/tarotluna/internal/card"
	"github.com/arcanaland/tarotluna/internal/validator"
)

//go:embed cards.toml
var defaultDeckData string

// Size is the number of cards in a full tarot deck
const Size = 78

// File is the TOML layout of a deck definition
type File struct {
	Cards []card.Definition `toml:"cards"`
}

var (
	defaultOnce  sync.Once
	defaultCards []card.Definition
	defaultErr   error
)

// Default returns the built-in Rider-Waite-Smith deck.
// The returned slice is a copy and can be modified by the caller.
func Default() ([]card.Definition, error) {
	defaultOnce.Do(func() {
		defaultCards, defaultErr = parse(defaultDeckData, "built-in deck")
	})
	if defaultErr != nil {
		return nil, defaultErr
	}
	out := make([]card.Definition, len(defaultCards))
	copy(out, defaultCards)
	return out, nil
}

// Load loads a deck definition from a TOML file and validates it
func Load(path string) ([]card.Definition, error) {
	cards, err := Decode(path)
	if err != nil {
		return nil, err
	}
	return check(cards, path)
}

// Decode reads a deck TOML file without validating it
func Decode(path string) ([]card.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading deck file: %w", err)
	}
	return decode(string(data), path)
}

func parse(data, source string) ([]card.Definition, error) {
	cards, err := decode(data, source)
	if err != nil {
		return nil, err
	}
	return check(cards, source)
}

func decode(data, source string) ([]card.Definition, error) {
	var f File
	if _, err := toml.Decode(data, &f); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", source, err)
	}
	setDefaultNames(f.Cards)
	return f.Cards, nil
}

func check(cards []card.Definition, source string) ([]card.Definition, error) {
	results := validator.ValidateCards(cards)
	if len(results.Errors) > 0 {
		return nil, fmt.Errorf("%s is not a valid deck: %s", source, strings.Join(results.Errors, "; "))
	}
	return cards, nil
}

// setDefaultNames fills in missing English names
func setDefaultNames(cards []card.Definition) {
	for i := range cards {
		c := &cards[i]
		if c.Name != "" {
			continue
		}
		if c.IsMinor() {
			if rank := c.Rank(); rank != "" && c.Suit != "" {
				c.Name = getDefaultMinorArcanaName(rank, c.Suit)
			}
		} else {
			c.Name = getDefaultMajorArcanaName(fmt.Sprintf("%02d", c.ID))
		}
	}
}

// Find gets a card by numeric id (e.g., 13) or canonical id (e.g., minor_arcana.cups.queen)
func Find(cards []card.Definition, ref string) (card.Definition, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		for _, c := range cards {
			if c.ID == id {
				return c, nil
			}
		}
		return card.Definition{}, fmt.Errorf("card not found: %s", ref)
	}

	parts := strings.Split(ref, ".")
	if len(parts) < 2 || (parts[0] != "major_arcana" && parts[0] != "minor_arcana") {
		return card.Definition{}, fmt.Errorf("invalid card ID format: %s", ref)
	}

	for _, c := range cards {
		if c.CanonicalID() == ref {
			return c, nil
		}
	}
	return card.Definition{}, fmt.Errorf("card not found: %s", ref)
}

// getDefaultMajorArcanaName returns the default name for a major arcana card
func getDefaultMajorArcanaName(number string) string {
	names := map[string]string{
		"00": "The Fool",
		"01": "The Magician",
		"02": "The High Priestess",
		"03": "The Empress",
		"04": "The Emperor",
		"05": "The Hierophant",
		"06": "The Lovers",
		"07": "The Chariot",
		"08": "Strength",
		"09": "The Hermit",
		"10": "Wheel of Fortune",
		"11": "Justice",
		"12": "The Hanged Man",
		"13": "Death",
		"14": "Temperance",
		"15": "The Devil",
		"16": "The Tower",
		"17": "The Star",
		"18": "The Moon",
		"19": "The Sun",
		"20": "Judgement",
		"21": "The World",
	}

	if name, ok := names[number]; ok {
		return name
	}

	return fmt.Sprintf("Major Arcana %s", number)
}

// getDefaultMinorArcanaName returns the default name for a minor arcana card
func getDefaultMinorArcanaName(rank, suit string) string {
	return fmt.Sprintf("%s of %s", capitalize(rank), capitalize(suit))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
