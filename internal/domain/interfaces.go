package domain

import "context"

// Result is a single ranked record returned by a search provider.
type Result struct {
	URL     string
	Title   string
	Snippet string
}

// Text returns the title and snippet joined, which is what gets vectorized.
func (r Result) Text() string {
	return r.Title + " " + r.Snippet
}

// JudgeRequest carries a result to be judged together with its display context.
type JudgeRequest struct {
	Result Result
	Rank   int // 1-based provider rank
	Total  int
	Query  string
}

// SearchProvider issues a query and returns up to limit results in provider rank order.
type SearchProvider interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

// Judge returns a binary relevance judgment for one result.
// Implementations block until the judgment is available.
type Judge interface {
	Judge(ctx context.Context, req JudgeRequest) (bool, error)
}
