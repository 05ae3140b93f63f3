package text

import (
	"regexp"
	"strings"
)

var sentenceRe = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)

// Sentences splits text on terminal punctuation. Text without any terminator
// is returned as a single sentence; blank text yields nil.
func Sentences(s string) []string {
	found := sentenceRe.FindAllString(s, -1)
	if len(found) == 0 {
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}
	out := make([]string, 0, len(found)+1)
	for _, sent := range found {
		out = append(out, strings.TrimSpace(sent))
	}
	// snippets are often cut mid-sentence
	if idx := strings.LastIndexAny(s, ".!?"); idx >= 0 {
		if rest := strings.TrimSpace(s[idx+1:]); rest != "" {
			out = append(out, rest)
		}
	}
	return out
}
