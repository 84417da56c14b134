package deck_test

import (
	"math/rand/v2"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/arcanaland/tarotluna/internal/card"
	"github.com/arcanaland/tarotluna/internal/common"
	"github.com/arcanaland/tarotluna/internal/deck"
)

var _ = Describe("Deck", func() {
	var cards []card.Definition

	BeforeEach(func() {
		var err error
		cards, err = deck.Default()
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Default", func() {
		It("should contain the full 78-card deck", func() {
			Expect(cards).To(HaveLen(deck.Size))

			majors := 0
			suits := map[string]int{}
			for i, c := range cards {
				Expect(c.ID).To(Equal(i))
				if c.IsMinor() {
					suits[c.Suit]++
				} else {
					majors++
					Expect(c.Suit).To(BeEmpty())
				}
			}
			Expect(majors).To(Equal(22))
			Expect(suits).To(Equal(map[string]int{"wands": 14, "cups": 14, "swords": 14, "pentacles": 14}))
		})

		It("should return a copy", func() {
			cards[0].LocalizedName = "changed"
			again, err := deck.Default()
			Expect(err).NotTo(HaveOccurred())
			Expect(again[0].LocalizedName).To(Equal("Шут"))
		})
	})

	Describe("Find", func() {
		It("should find a card by number", func() {
			c, err := deck.Find(cards, "36")
			Expect(err).NotTo(HaveOccurred())
			Expect(c.LocalizedName).To(Equal("Туз Кубков"))
		})

		It("should find a card by canonical id", func() {
			c, err := deck.Find(cards, "minor_arcana.cups.ace")
			Expect(err).NotTo(HaveOccurred())
			Expect(c.ID).To(Equal(36))

			c, err = deck.Find(cards, "major_arcana.00")
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Name).To(Equal("The Fool"))
		})

		It("should reject unknown references", func() {
			_, err := deck.Find(cards, "99")
			Expect(err).To(MatchError(ContainSubstring("card not found")))

			_, err = deck.Find(cards, "tarot")
			Expect(err).To(MatchError(ContainSubstring("invalid card ID format")))
		})
	})

	Describe("Load", func() {
		var dir string

		BeforeEach(func() {
			var err error
			dir, err = os.MkdirTemp("", "deck-test-*")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			os.RemoveAll(dir)
		})

		It("should reject an incomplete deck", func() {
			path := filepath.Join(dir, "deck.toml")
			Expect(os.WriteFile(path, []byte(`
[[cards]]
id = 0
localized_name = "Шут"
arcana = "major"
`), 0644)).To(Succeed())

			_, err := deck.Load(path)
			Expect(err).To(MatchError(ContainSubstring("not a valid deck")))

			decoded, err := deck.Decode(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(decoded).To(HaveLen(1))
			Expect(decoded[0].Name).To(Equal("The Fool"))
		})

		It("should report a missing file", func() {
			_, err := deck.Load(filepath.Join(dir, "missing.toml"))
			Expect(err).To(MatchError(ContainSubstring("error reading deck file")))
		})
	})

	Describe("Draw", func() {
		var rng *rand.Rand

		BeforeEach(func() {
			rng = rand.New(rand.NewPCG(1, 2))
		})

		It("should draw distinct cards from the deck", func() {
			for count := 1; count <= 5; count++ {
				hand, err := deck.Draw(count, cards, rng)
				Expect(err).NotTo(HaveOccurred())
				Expect(hand).To(HaveLen(count))

				seen := map[int]bool{}
				for _, c := range hand {
					Expect(seen[c.ID]).To(BeFalse())
					seen[c.ID] = true
					Expect(cards).To(ContainElement(c.Definition))
				}
			}
		})

		It("should draw the whole deck", func() {
			hand, err := deck.Draw(len(cards), cards, rng)
			Expect(err).NotTo(HaveOccurred())
			Expect(hand).To(HaveLen(deck.Size))
		})

		It("should not modify the input deck", func() {
			before := append([]card.Definition(nil), cards...)
			_, err := deck.Draw(10, cards, rng)
			Expect(err).NotTo(HaveOccurred())
			Expect(cards).To(Equal(before))
		})

		It("should be reproducible for the same seed", func() {
			a, err := deck.Draw(5, cards, rand.New(rand.NewPCG(7, 7)))
			Expect(err).NotTo(HaveOccurred())
			b, err := deck.Draw(5, cards, rand.New(rand.NewPCG(7, 7)))
			Expect(err).NotTo(HaveOccurred())
			Expect(a).To(Equal(b))
		})

		It("should reverse about 30% of cards", func() {
			reversed, total := 0, 0
			for i := 0; i < 10000; i++ {
				hand, err := deck.Draw(1, cards, rng)
				Expect(err).NotTo(HaveOccurred())
				total++
				if hand[0].IsReversed {
					reversed++
				}
			}
			ratio := float64(reversed) / float64(total)
			Expect(ratio).To(BeNumerically(">=", 0.27))
			Expect(ratio).To(BeNumerically("<=", 0.33))
		})

		It("should reject invalid counts", func() {
			for _, count := range []int{0, -1, len(cards) + 1} {
				_, err := deck.Draw(count, cards, rng)
				Expect(err).To(MatchError(common.ErrInvalidArgument))
			}
		})

		It("should reject duplicate ids", func() {
			dup := append([]card.Definition{cards[0]}, cards[:3]...)
			_, err := deck.Draw(2, dup, rng)
			Expect(err).To(MatchError(common.ErrInvalidArgument))
		})
	})
})
