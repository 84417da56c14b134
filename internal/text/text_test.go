package text_test

import (
	"fmt"
	"strings"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/arcanaland/tarotluna/internal/text"
)

func paragraph(n, words int) string {
	parts := make([]string, words)
	for i := range parts {
		parts[i] = fmt.Sprintf("слово%d", n)
	}
	return strings.Join(parts, " ")
}

var _ = Describe("Text", func() {
	Describe("Paginate", func() {
		It("should return short text unchanged", func() {
			s := "  Первый абзац.\n\nВторой абзац.  "
			Expect(text.Paginate(s, 1500)).To(Equal([]string{s}))
		})

		It("should count characters, not bytes", func() {
			s := strings.Repeat("я", 100)
			Expect(utf8.RuneCountInString(s)).To(Equal(100))
			Expect(text.Paginate(s, 100)).To(Equal([]string{s}))
		})

		Context("with text longer than a page", func() {
			var s string

			BeforeEach(func() {
				var paragraphs []string
				for i := 0; i < 30; i++ {
					paragraphs = append(paragraphs, paragraph(i, 10+i%7))
				}
				s = strings.Join(paragraphs, "\n\n")
			})

			DescribeTable("should keep every page within the limit",
				func(limit int) {
					pages := text.Paginate(s, limit)
					Expect(len(pages)).To(BeNumerically(">", 1))
					for _, p := range pages {
						Expect(p).To(Equal(strings.TrimSpace(p)))
						if len(text.Paragraphs(p)) > 1 {
							Expect(utf8.RuneCountInString(p)).To(BeNumerically("<=", limit))
						}
					}
				},
				Entry("one character", 1),
				Entry("fifty characters", 50),
				Entry("three hundred characters", 300),
				Entry("the default page length", 1500),
			)

			DescribeTable("should preserve the paragraph sequence",
				func(limit int) {
					pages := text.Paginate(s, limit)
					Expect(strings.Join(pages, "\n\n")).To(Equal(strings.Join(text.Paragraphs(s), "\n\n")))
				},
				Entry("one character", 1),
				Entry("fifty characters", 50),
				Entry("three hundred characters", 300),
				Entry("the default page length", 1500),
			)

			DescribeTable("should fill pages greedily",
				func(limit int) {
					pages := text.Paginate(s, limit)
					for i := 0; i < len(pages)-1; i++ {
						next := text.Paragraphs(pages[i+1])[0]
						joined := utf8.RuneCountInString(pages[i]) + 2 + utf8.RuneCountInString(next)
						Expect(joined).To(BeNumerically(">", limit))
					}
				},
				Entry("one character", 1),
				Entry("fifty characters", 50),
				Entry("three hundred characters", 300),
				Entry("the default page length", 1500),
			)

			It("should put every paragraph on its own page below the paragraph length", func() {
				Expect(text.Paginate(s, 1)).To(Equal(text.Paragraphs(s)))
			})
		})

		It("should put an oversized paragraph on its own page", func() {
			long := strings.Repeat("а", 50)
			pages := text.Paginate("коротко\n\n"+long+"\n\nещё", 20)
			Expect(pages).To(Equal([]string{"коротко", long, "ещё"}))
		})

		It("should treat whitespace-only lines as paragraph breaks", func() {
			pages := text.Paginate("один\n  \nдва\n\nтри", 8)
			Expect(pages).To(Equal([]string{"один", "два\n\nтри"}))
		})
	})

	Describe("Clean", func() {
		It("should strip emphasis markers and tags", func() {
			Expect(text.Clean("  **Шут** — это *начало* <b>пути</b>\n")).To(Equal("Шут — это начало пути"))
		})

		It("should keep plain text intact", func() {
			Expect(text.Clean("Просто текст.")).To(Equal("Просто текст."))
		})
	})

	Describe("Wrap", func() {
		It("should wrap on word boundaries within the width", func() {
			lines := text.Wrap("раз два три четыре пять шесть", 10)
			for _, l := range lines {
				Expect(utf8.RuneCountInString(l)).To(BeNumerically("<=", 10))
			}
			Expect(strings.Join(lines, " ")).To(Equal("раз два три четыре пять шесть"))
		})

		It("should keep blank lines", func() {
			Expect(text.Wrap("а\n\nб", 20)).To(Equal([]string{"а", "", "б"}))
		})
	})
})
