package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arcanaland/tarotluna/internal/card"
	"github.com/arcanaland/tarotluna/internal/deck"
	"github.com/arcanaland/tarotluna/internal/validator"
)

// deckCmd represents the deck command group
var deckCmd = &cobra.Command{
	Use:   "deck",
	Short: "Inspect the tarot deck used for readings",
}

// deckListCmd represents the deck ls command
var deckListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the cards of the configured deck",
	RunE: func(cmd *cobra.Command, args []string) error {
		cards, err := configuredDeck()
		if err != nil {
			return err
		}

		arcana, _ := cmd.Flags().GetString("arcana")
		out := cmd.OutOrStdout()
		for _, c := range cards {
			if arcana != "" && c.Arcana != arcana {
				continue
			}
			fmt.Fprintf(out, "%s %-28s %-24s %s\n",
				color.HiBlackString("%2d", c.ID),
				c.CanonicalID(),
				c.Name,
				color.HiWhiteString(c.LocalizedName))
		}
		return nil
	},
}

// deckValidateCmd represents the deck validate command
var deckValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a deck file",
	Long: `Validate checks that a deck TOML file describes a complete 78-card tarot deck:
22 major arcana, 14 cards in each suit, unique ids and non-empty names.
Without a path the built-in deck is checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := "built-in deck"
		var cards []card.Definition

		if len(args) == 1 {
			source = args[0]
			if _, err := os.Stat(source); os.IsNotExist(err) {
				return fmt.Errorf("deck file not found: %s", source)
			}
			decoded, err := deck.Decode(source)
			if err != nil {
				return err
			}
			cards = decoded
		} else {
			var err error
			if cards, err = deck.Default(); err != nil {
				return err
			}
		}

		results := validator.ValidateCards(cards)
		if dir, _ := cmd.Flags().GetString("images"); dir != "" {
			images, err := validator.ValidateImages(dir, cards)
			if err != nil {
				return fmt.Errorf("validation error: %w", err)
			}
			results.Warnings = append(results.Warnings, images.Warnings...)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Validation Results:")
		fmt.Fprintln(out, "-------------------")

		if len(results.Errors) == 0 {
			fmt.Fprintf(out, "✅ Deck '%s' is a valid tarot deck.\n", source)
		} else {
			fmt.Fprintf(out, "❌ Deck '%s' has %d validation errors:\n", source, len(results.Errors))
			for i, e := range results.Errors {
				fmt.Fprintf(out, "%d. %s\n", i+1, e)
			}
		}

		if len(results.Warnings) > 0 {
			fmt.Fprintln(out, "\nWarnings:")
			for i, w := range results.Warnings {
				fmt.Fprintf(out, "%d. %s\n", i+1, w)
			}
		}

		if len(results.Errors) > 0 {
			return fmt.Errorf("validation failed")
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(deckCmd)
	deckCmd.AddCommand(deckListCmd)
	deckCmd.AddCommand(deckValidateCmd)

	deckListCmd.Flags().String("arcana", "", "Only list cards of one arcana (major or minor)")
	deckValidateCmd.Flags().String("images", "", "Also check that card images exist in this directory")
}

// configuredDeck returns the deck from the config, or the built-in deck
func configuredDeck() ([]card.Definition, error) {
	if cfg != nil && cfg.DeckPath != "" {
		return deck.Load(cfg.DeckPath)
	}
	return deck.Default()
}
