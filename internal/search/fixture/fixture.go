// Package fixture serves canned search results from a YAML file.
//
// The file maps queries to result lists. A query with no entry falls back to
// the default list:
//
//	default:
//	  - url: https://example.com/a
//	    title: A
//	    snippet: ...
//	queries:
//	  jaguar:
//	    - url: https://example.com/jaguar
//	      title: Jaguar
//	      snippet: ...
package fixture

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"qexpand/internal/domain"
)

type entry struct {
	URL     string `yaml:"url"`
	Title   string `yaml:"title"`
	Snippet string `yaml:"snippet"`
}

// fixtureFile is the on-disk layout of a fixture.
type fixtureFile struct {
	Default []entry            `yaml:"default"`
	Queries map[string][]entry `yaml:"queries"`
}

// Provider answers searches from a loaded fixture.
type Provider struct {
	def     []domain.Result
	queries map[string][]domain.Result
}

// Load reads and parses a fixture file.
func Load(path string) (*Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(data)
}

// Parse builds a provider from YAML fixture data.
func Parse(data []byte) (*Provider, error) {
	var f fixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	p := &Provider{
		def:     toResults(f.Default),
		queries: make(map[string][]domain.Result, len(f.Queries)),
	}
	for q, entries := range f.Queries {
		p.queries[key(q)] = toResults(entries)
	}
	return p, nil
}

func toResults(entries []entry) []domain.Result {
	out := make([]domain.Result, len(entries))
	for i, e := range entries {
		out[i] = domain.Result{URL: e.URL, Title: e.Title, Snippet: e.Snippet}
	}
	return out
}

// key folds case and whitespace so "Jaguar  Cat" matches "jaguar cat".
func key(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return "fixture" }

// Search returns up to limit results for query.
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]domain.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	results, ok := p.queries[key(query)]
	if !ok {
		results = p.def
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	out := make([]domain.Result, len(results))
	copy(out, results)
	return out, nil
}
