// Package text turns free text into term-frequency vectors.
package text

import (
	"strings"
	"unicode"

	"qexpand/internal/vector"
)

// BagOfWords lowercases text, drops every character that is not an ASCII
// letter, digit or whitespace, splits on whitespace and counts the tokens that
// are not stop words. Terms appear in the vector in order of first occurrence.
func BagOfWords(text string, stop StopWords) *vector.TermVector {
	tokens := Tokenize(text)
	bag := vector.New(len(tokens))
	for _, tok := range tokens {
		if stop.Contains(tok) {
			continue
		}
		bag.Add(tok, 1)
	}
	return bag
}

// Tokenize applies the same normalization as BagOfWords without stop-word
// filtering or counting.
func Tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case unicode.IsSpace(r):
			return r
		}
		return -1
	}, strings.ToLower(text))
	return strings.Fields(cleaned)
}
