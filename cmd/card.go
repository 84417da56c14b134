package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/arcanaland/tarotluna/internal/art"
	"github.com/arcanaland/tarotluna/internal/card"
	"github.com/arcanaland/tarotluna/internal/config"
	"github.com/arcanaland/tarotluna/internal/deck"
	"github.com/arcanaland/tarotluna/internal/text"
)

var cardCmd = &cobra.Command{
	Use:   "card",
	Short: "Look up tarot cards",
}

var cardShowCmd = &cobra.Command{
	Use:   "show [card]",
	Short: "Display a card with its meanings and ANSI art",
	Long: `Show displays a tarot card with its upright and reversed meanings.
The card is given by number (0-77) or canonical id like 'major_arcana.00' or
'minor_arcana.wands.ace'.

With --images pointing to a directory of card images (00.jpg ... 77.jpg) the card
is drawn as ANSI art. Rendered art is cached under XDG_CACHE_HOME/tarotluna.

Examples:
  tarotluna card show 0
  tarotluna card show minor_arcana.cups.queen --reversed
  tarotluna card show major_arcana.17 --images ./cards`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cards, err := configuredDeck()
		if err != nil {
			return err
		}

		def, err := deck.Find(cards, args[0])
		if err != nil {
			return err
		}
		reversed, _ := cmd.Flags().GetBool("reversed")
		drawn := card.Drawn{Definition: def, IsReversed: reversed}

		var picture string
		if dir, _ := cmd.Flags().GetString("images"); dir != "" && def.Image != "" {
			cache := art.Cache{Dir: filepath.Join(config.GetCacheDir(), "ansi_cache")}
			picture, err = cache.Load(filepath.Join(dir, def.Image))
			if err != nil {
				log.WithError(err).Warn("Card art unavailable")
			}
		}

		art.SideBySide(cmd.OutOrStdout(), picture, cardInfo(drawn, infoWidth(picture)))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(cardCmd)
	cardCmd.AddCommand(cardShowCmd)

	cardShowCmd.Flags().String("images", "", "Directory with card images")
	cardShowCmd.Flags().BoolP("reversed", "r", false, "Show the card reversed")
}

// infoWidth is the room left for text next to the art
func infoWidth(picture string) int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = 80
	}
	if picture != "" {
		width -= art.DefaultWidth + 6
	}
	return max(width-2, 20)
}

func getSuitSymbol(suit string) string {
	switch suit {
	case "wands":
		return "🪄"
	case "cups":
		return "🏆"
	case "swords":
		return "⚔"
	case "pentacles":
		return "⛤"
	default:
		return "•"
	}
}

// cardInfo lays out the card details as display lines
func cardInfo(c card.Drawn, width int) []string {
	var lines []string
	field := func(name, value string) {
		lines = append(lines, color.CyanString("%-10s", name+":")+color.HiWhiteString(value))
	}

	field("Card", c.LocalizedName)
	field("Name", c.Name)
	field("ID", fmt.Sprintf("%d · %s", c.ID, c.CanonicalID()))
	if c.IsMinor() {
		field("Type", "Minor Arcana")
		field("Suit", fmt.Sprintf("%s · %s", c.Suit, getSuitSymbol(c.Suit)))
		field("Rank", c.Rank())
	} else {
		field("Type", "Major Arcana")
	}

	meaning := func(title, body string, active bool) {
		if body == "" {
			return
		}
		heading := color.CyanString(title)
		if active {
			heading = color.HiMagentaString(title + " ✦")
		}
		lines = append(lines, "", heading)
		lines = append(lines, text.Wrap(body, width)...)
	}
	meaning("Upright:", c.Upright, !c.IsReversed)
	meaning("Reversed:", c.Reversed, c.IsReversed)
	return lines
}
