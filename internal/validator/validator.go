package validator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arcanaland/tarotluna/internal/card"
)

const (
	deckSize         = 78
	majorArcanaCount = 22
)

type ValidationResults struct {
	Errors   []string
	Warnings []string
}

// ValidateCards checks that cards form a complete tarot deck
func ValidateCards(cards []card.Definition) ValidationResults {
	var results ValidationResults

	if len(cards) != deckSize {
		results.Errors = append(results.Errors,
			fmt.Sprintf("deck has %d cards (expected %d)", len(cards), deckSize))
	}

	seen := make(map[int]bool, len(cards))
	major := 0
	perSuit := make(map[string]int)

	for _, c := range cards {
		if seen[c.ID] {
			results.Errors = append(results.Errors, fmt.Sprintf("duplicate card id: %d", c.ID))
		}
		seen[c.ID] = true

		if c.ID < 0 || c.ID >= deckSize {
			results.Errors = append(results.Errors, fmt.Sprintf("card id out of range: %d", c.ID))
		}

		switch c.Arcana {
		case card.Major:
			major++
			if c.Suit != "" {
				results.Errors = append(results.Errors,
					fmt.Sprintf("major arcana card %d must not have a suit", c.ID))
			}
		case card.Minor:
			if !isSuit(c.Suit) {
				results.Errors = append(results.Errors,
					fmt.Sprintf("minor arcana card %d has invalid suit %q", c.ID, c.Suit))
			} else {
				perSuit[c.Suit]++
			}
		default:
			results.Errors = append(results.Errors,
				fmt.Sprintf("card %d has invalid arcana %q", c.ID, c.Arcana))
		}

		if c.Name == "" {
			results.Errors = append(results.Errors, fmt.Sprintf("card %d has no name", c.ID))
		}
		if c.LocalizedName == "" {
			results.Errors = append(results.Errors, fmt.Sprintf("card %d has no localized name", c.ID))
		}
		if c.Upright == "" || c.Reversed == "" {
			results.Warnings = append(results.Warnings, fmt.Sprintf("card %d is missing a meaning", c.ID))
		}
		if c.Image == "" {
			results.Warnings = append(results.Warnings, fmt.Sprintf("card %d has no image", c.ID))
		}
	}

	if major != majorArcanaCount {
		results.Errors = append(results.Errors,
			fmt.Sprintf("deck has %d major arcana cards (expected %d)", major, majorArcanaCount))
	}

	for _, suit := range card.Suits {
		if n := perSuit[suit]; n != len(card.Ranks) {
			results.Errors = append(results.Errors,
				fmt.Sprintf("suit %s has %d cards (expected %d)", suit, n, len(card.Ranks)))
		}
	}

	return results
}

// ValidateImages checks that every card image exists in imageDir.
// Missing images are warnings: the reading flow works without them.
func ValidateImages(imageDir string, cards []card.Definition) (ValidationResults, error) {
	var results ValidationResults

	info, err := os.Stat(imageDir)
	if err != nil {
		return results, fmt.Errorf("image directory not found: %s", imageDir)
	}
	if !info.IsDir() {
		return results, fmt.Errorf("not a directory: %s", imageDir)
	}

	var missing []string
	for _, c := range cards {
		if c.Image == "" {
			continue
		}
		if _, err := os.Stat(filepath.Join(imageDir, c.Image)); os.IsNotExist(err) {
			missing = append(missing, c.Image)
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		results.Warnings = append(results.Warnings,
			fmt.Sprintf("missing card images in %s: %s", imageDir, strings.Join(missing, ", ")))
	}

	return results, nil
}

func isSuit(s string) bool {
	for _, suit := range card.Suits {
		if s == suit {
			return true
		}
	}
	return false
}
