package rocchio

import (
	"sort"

	"qexpand/internal/vector"
)

// SelectNewTerms returns up to k terms of expanded that are not in exclude,
// highest weight first. Ties keep the vector's insertion order.
func SelectNewTerms(expanded *vector.TermVector, exclude []string, k int) []string {
	if k <= 0 {
		return nil
	}
	skip := make(map[string]struct{}, len(exclude))
	for _, t := range exclude {
		skip[t] = struct{}{}
	}

	type candidate struct {
		term   string
		weight float64
	}
	var cands []candidate
	expanded.Each(func(t string, w float64) {
		if _, ok := skip[t]; ok {
			return
		}
		cands = append(cands, candidate{t, w})
	})
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].weight > cands[j].weight })

	if k > len(cands) {
		k = len(cands)
	}
	out := make([]string, 0, k)
	for _, c := range cands[:k] {
		out = append(out, c.term)
	}
	return out
}
