// Package text prepares interpretation text for display.
package text

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultPageLength is the page size used for interpretations
const DefaultPageLength = 1500

// ParagraphSeparator joins paragraphs on a page
const ParagraphSeparator = "\n\n"

var (
	blankLine = regexp.MustCompile(`\n[ \t\r]*\n`)
	htmlTag   = regexp.MustCompile(`<[^>]*>`)
)

// Clean strips Markdown emphasis and HTML tags from generated text
func Clean(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "*", "")
	s = htmlTag.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Paragraphs splits s on blank lines, dropping empty paragraphs
func Paragraphs(s string) []string {
	var out []string
	for _, p := range blankLine.Split(s, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Paginate splits s into pages of at most maxLength characters.
// Text that already fits is returned unchanged as a single page. Longer text is
// split on paragraph boundaries only, so a paragraph longer than maxLength
// ends up alone on an oversized page.
func Paginate(s string, maxLength int) []string {
	if utf8.RuneCountInString(s) <= maxLength {
		return []string{s}
	}

	var pages []string
	var current strings.Builder
	currentLen := 0
	sepLen := utf8.RuneCountInString(ParagraphSeparator)

	for _, p := range Paragraphs(s) {
		pLen := utf8.RuneCountInString(p)
		if currentLen > 0 && currentLen+sepLen+pLen > maxLength {
			pages = append(pages, current.String())
			current.Reset()
			currentLen = 0
		}
		if currentLen > 0 {
			current.WriteString(ParagraphSeparator)
			currentLen += sepLen
		}
		current.WriteString(p)
		currentLen += pLen
	}

	if currentLen > 0 {
		pages = append(pages, current.String())
	}

	return pages
}

// Wrap wraps text to a specified width, keeping paragraph breaks
func Wrap(s string, width int) []string {
	// Ensure width is reasonable
	if width < 10 {
		width = 40
	}

	var result []string
	for _, line := range strings.Split(s, "\n") {
		result = append(result, wrapLine(line, width)...)
	}
	return result
}

func wrapLine(line string, width int) []string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return []string{""}
	}

	var result []string
	currentLine := ""
	currentLen := 0
	for _, word := range words {
		wordLen := utf8.RuneCountInString(word)
		switch {
		case currentLen == 0:
			currentLine = word
			currentLen = wordLen
		case currentLen+1+wordLen <= width:
			currentLine += " " + word
			currentLen += 1 + wordLen
		default:
			result = append(result, currentLine)
			currentLine = word
			currentLen = wordLen
		}
	}

	if currentLine != "" {
		result = append(result, currentLine)
	}
	return result
}
