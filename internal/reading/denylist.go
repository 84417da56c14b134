package reading

import (
	"strings"
	"unicode"
)

// Denylist rejects questions about sensitive topics: illness, death, legal
// trouble, disasters, self-harm and drugs.
//
// Fragments match anywhere inside a word, stems match the start of any word
// and words match whole words only. Short terms such as "суд" are words so
// that "судьба" stays allowed.
type Denylist struct {
	fragments []string
	stems     []string
	words     map[string]struct{}
}

var defaultFragments = []string{
	"смерт", "убийств", "суицид", "наркот",
}

var defaultStems = []string{
	"болезн", "болеет", "болею", "заболе",
	"умрет", "умру",
	"убит",
	"тюрьм", "тюрем", "арест", "судебн", "суди", "засуд", "подсуд",
	"катастроф", "теракт",
	"депресс",
	"illness", "death", "suicide", "prison", "arrest", "overdose",
}

var defaultWords = []string{
	"суд", "суда", "суде", "суду", "судом", "суды", "судов",
	"горе", "горя", "горем",
	"court", "die", "drugs",
}

// DefaultDenylist returns the built-in topic denylist
func DefaultDenylist() *Denylist {
	d := NewDenylist(defaultStems, defaultWords)
	for _, f := range defaultFragments {
		d.fragments = append(d.fragments, normalize(f))
	}
	return d
}

// NewDenylist builds a denylist from word stems and whole words
func NewDenylist(stems, words []string) *Denylist {
	d := &Denylist{words: make(map[string]struct{}, len(words))}
	for _, s := range stems {
		if s = normalize(s); s != "" {
			d.stems = append(d.stems, s)
		}
	}
	for _, w := range words {
		if w = normalize(w); w != "" {
			d.words[w] = struct{}{}
		}
	}
	return d
}

// WithStems returns a copy of d extended with more stems
func (d *Denylist) WithStems(stems ...string) *Denylist {
	words := make([]string, 0, len(d.words))
	for w := range d.words {
		words = append(words, w)
	}
	out := NewDenylist(append(append([]string{}, d.stems...), stems...), words)
	out.fragments = d.fragments
	return out
}

// Match returns the first denylisted term found in question
func (d *Denylist) Match(question string) (string, bool) {
	tokens := strings.FieldsFunc(normalize(question), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, tok := range tokens {
		if _, ok := d.words[tok]; ok {
			return tok, true
		}
		for _, f := range d.fragments {
			if strings.Contains(tok, f) {
				return f, true
			}
		}
		for _, stem := range d.stems {
			if strings.HasPrefix(tok, stem) {
				return stem, true
			}
		}
	}
	return "", false
}

func normalize(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "ё", "е")
}
