// Package elastic is a search provider backed by an Elasticsearch index.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	elasticsearch7 "github.com/elastic/go-elasticsearch/v7"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"qexpand/internal/domain"
)

// ErrIndexRequired is returned when no index is configured.
var ErrIndexRequired = errors.New("elasticsearch: index required")

// Config configures the Elasticsearch provider. Empty field names default to
// "url", "title" and "snippet"; SearchFields defaults to title and snippet.
type Config struct {
	Addresses    []string
	Index        string
	Username     string
	Password     string
	URLField     string
	TitleField   string
	SnippetField string
	SearchFields []string
}

// Provider runs multi_match queries against one index.
type Provider struct {
	es     *elasticsearch7.Client
	cfg    Config
	logger *zap.Logger
}

// New creates an Elasticsearch provider.
func New(cfg Config, logger *zap.Logger) (*Provider, error) {
	if cfg.Index == "" {
		return nil, ErrIndexRequired
	}
	applyDefaults(&cfg)
	es, err := elasticsearch7.NewClient(elasticsearch7.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{es: es, cfg: cfg, logger: logger}, nil
}

func applyDefaults(cfg *Config) {
	if cfg.URLField == "" {
		cfg.URLField = "url"
	}
	if cfg.TitleField == "" {
		cfg.TitleField = "title"
	}
	if cfg.SnippetField == "" {
		cfg.SnippetField = "snippet"
	}
	if len(cfg.SearchFields) == 0 {
		cfg.SearchFields = []string{cfg.TitleField, cfg.SnippetField}
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return "elasticsearch" }

// Search returns the top limit hits by Elasticsearch score.
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]domain.Result, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(buildQuery(query, p.cfg.SearchFields)); err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	res, err := p.es.Search(
		p.es.Search.WithContext(ctx),
		p.es.Search.WithIndex(p.cfg.Index),
		p.es.Search.WithBody(&buf),
		p.es.Search.WithSize(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		var e map[string]interface{}
		if err := json.NewDecoder(res.Body).Decode(&e); err != nil {
			return nil, fmt.Errorf("elasticsearch search failed: %s", res.Status())
		}
		return nil, fmt.Errorf("elasticsearch search failed: %s: %v", res.Status(), e["error"])
	}

	var body map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("elasticsearch: malformed response: %w", err)
	}
	results, err := p.hitsToResults(body)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("elasticsearch search", zap.String("index", p.cfg.Index), zap.Int("hits", len(results)))
	return results, nil
}

func buildQuery(query string, fields []string) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": fields,
			},
		},
	}
}

type hit struct {
	ID     string                 `mapstructure:"_id"`
	Source map[string]interface{} `mapstructure:"_source"`
}

type hitsEnvelope struct {
	Hits struct {
		Hits []hit `mapstructure:"hits"`
	} `mapstructure:"hits"`
}

func (p *Provider) hitsToResults(body map[string]interface{}) ([]domain.Result, error) {
	var env hitsEnvelope
	if err := mapstructure.Decode(body, &env); err != nil {
		return nil, fmt.Errorf("elasticsearch: malformed hits: %w", err)
	}
	results := make([]domain.Result, 0, len(env.Hits.Hits))
	for _, h := range env.Hits.Hits {
		r := domain.Result{
			URL:     field(h.Source, p.cfg.URLField),
			Title:   field(h.Source, p.cfg.TitleField),
			Snippet: field(h.Source, p.cfg.SnippetField),
		}
		if r.URL == "" {
			r.URL = h.ID
		}
		results = append(results, r)
	}
	return results, nil
}

func field(src map[string]interface{}, name string) string {
	v, ok := src[name]
	if !ok || v == nil {
		return ""
	}
	var s string
	if err := mapstructure.WeakDecode(v, &s); err != nil {
		return fmt.Sprint(v)
	}
	return s
}
