package text

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// StopWords is an immutable set of terms excluded from bags of words.
// Words are matched exactly; callers supply them lowercased.
type StopWords struct {
	set map[string]struct{}
}

// NewStopWords builds a set from words. Empty entries are ignored.
func NewStopWords(words []string) StopWords {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		m[w] = struct{}{}
	}
	return StopWords{set: m}
}

// LoadStopWords reads one stop word per line from path. Surrounding whitespace
// is trimmed from each line.
func LoadStopWords(path string) (StopWords, error) {
	f, err := os.Open(path)
	if err != nil {
		return StopWords{}, fmt.Errorf("open stop words: %w", err)
	}
	defer f.Close()

	var words []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		words = append(words, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return StopWords{}, fmt.Errorf("read stop words %s: %w", path, err)
	}
	return NewStopWords(words), nil
}

// Contains reports whether w is a stop word.
func (s StopWords) Contains(w string) bool {
	_, ok := s.set[w]
	return ok
}

// Len returns the number of stop words.
func (s StopWords) Len() int { return len(s.set) }

// DefaultStopWords returns the built-in English list.
func DefaultStopWords() StopWords {
	return NewStopWords([]string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "its", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
		"i", "me", "my", "we", "our", "you", "your", "he", "him", "his", "she", "her", "they", "them", "their", "what", "which", "who", "whom", "do", "does", "did", "have", "has", "had", "not", "no", "nor", "only", "all", "any", "both", "each", "few", "more", "most", "other", "some", "here", "there", "when", "where", "why", "how", "s", "t",
	})
}
