package validator_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/arcanaland/tarotluna/internal/card"
	"github.com/arcanaland/tarotluna/internal/deck"
	"github.com/arcanaland/tarotluna/internal/validator"
)

var _ = Describe("Validator", func() {
	var cards []card.Definition

	BeforeEach(func() {
		var err error
		cards, err = deck.Default()
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("ValidateCards", func() {
		It("should accept the built-in deck", func() {
			results := validator.ValidateCards(cards)
			Expect(results.Errors).To(BeEmpty())
			Expect(results.Warnings).To(BeEmpty())
		})

		It("should report a short deck", func() {
			results := validator.ValidateCards(cards[:77])
			Expect(results.Errors).To(ContainElement("deck has 77 cards (expected 78)"))
			Expect(results.Errors).To(ContainElement("suit pentacles has 13 cards (expected 14)"))
		})

		It("should report duplicate ids", func() {
			cards[5].ID = 4
			results := validator.ValidateCards(cards)
			Expect(results.Errors).To(ContainElement("duplicate card id: 4"))
		})

		It("should report a suit on a major card", func() {
			cards[0].Suit = "cups"
			results := validator.ValidateCards(cards)
			Expect(results.Errors).To(ContainElement("major arcana card 0 must not have a suit"))
		})

		It("should report a minor card without a valid suit", func() {
			cards[30].Suit = "coins"
			results := validator.ValidateCards(cards)
			Expect(results.Errors).To(ContainElement(`minor arcana card 30 has invalid suit "coins"`))
		})

		It("should warn about missing meanings", func() {
			cards[10].Reversed = ""
			results := validator.ValidateCards(cards)
			Expect(results.Errors).To(BeEmpty())
			Expect(results.Warnings).To(ContainElement("card 10 is missing a meaning"))
		})
	})

	Describe("ValidateImages", func() {
		var dir string

		BeforeEach(func() {
			var err error
			dir, err = os.MkdirTemp("", "validator-test-*")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			os.RemoveAll(dir)
		})

		It("should warn about missing images", func() {
			for _, c := range cards[1:] {
				Expect(os.WriteFile(filepath.Join(dir, c.Image), []byte("img"), 0644)).To(Succeed())
			}

			results, err := validator.ValidateImages(dir, cards)
			Expect(err).NotTo(HaveOccurred())
			Expect(results.Warnings).To(HaveLen(1))
			Expect(results.Warnings[0]).To(ContainSubstring("00.jpg"))
		})

		It("should fail for a missing directory", func() {
			_, err := validator.ValidateImages(filepath.Join(dir, "nope"), cards)
			Expect(err).To(MatchError(ContainSubstring("image directory not found")))
		})
	})
})
