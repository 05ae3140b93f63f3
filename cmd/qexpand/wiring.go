package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"qexpand/internal/config"
	"qexpand/internal/domain"
	"qexpand/internal/judge"
	"qexpand/internal/report"
	"qexpand/internal/search/elastic"
	"qexpand/internal/search/fixture"
	"qexpand/internal/search/google"
	"qexpand/internal/text"
	"qexpand/internal/tui"
)

// buildProvider assembles the configured search provider. Credentials given
// on the command line win over the environment.
func buildProvider(cfg *config.AppConfig, inv invocation, logger *zap.Logger) (domain.SearchProvider, report.Params, error) {
	params := report.Params{Provider: cfg.Search.Type}
	switch cfg.Search.Type {
	case "google":
		g := cfg.Search.Google
		apiKey, engineID := inv.APIKey, inv.EngineID
		if apiKey == "" {
			apiKey = os.Getenv(g.APIKeyEnv)
		}
		if engineID == "" {
			engineID = os.Getenv(g.EngineIDEnv)
		}
		client, err := google.NewClient(google.Config{
			BaseURL:           g.BaseURL,
			APIKey:            apiKey,
			EngineID:          engineID,
			Timeout:           time.Duration(g.TimeoutSecs) * time.Second,
			RequestsPerSecond: g.RequestsPerSec,
			MaxRetries:        g.MaxRetries,
		}, logger.Named("google"))
		if err != nil {
			return nil, params, fmt.Errorf("%w (set %s and %s or pass them as arguments)", err, g.APIKeyEnv, g.EngineIDEnv)
		}
		params.ClientKey, params.EngineKey = apiKey, engineID
		return client, params, nil
	case "elasticsearch":
		es := cfg.Search.Elasticsearch
		var password string
		if es.PasswordEnv != "" {
			password = os.Getenv(es.PasswordEnv)
		}
		p, err := elastic.New(elastic.Config{
			Addresses:    es.Addresses,
			Index:        es.Index,
			Username:     es.Username,
			Password:     password,
			URLField:     es.URLField,
			TitleField:   es.TitleField,
			SnippetField: es.SnippetField,
			SearchFields: es.SearchFields,
		}, logger.Named("elasticsearch"))
		if err != nil {
			return nil, params, err
		}
		return p, params, nil
	case "fixture":
		p, err := fixture.Load(cfg.Search.Fixture.Path)
		if err != nil {
			return nil, params, err
		}
		return p, params, nil
	default:
		return nil, params, fmt.Errorf("unknown search provider: %s", cfg.Search.Type)
	}
}

// buildJudge returns a scripted judge when script is set, otherwise the
// configured interactive one.
func buildJudge(kind, script string, in io.Reader, out io.Writer) (domain.Judge, error) {
	if script != "" {
		s, err := judge.ParseScript(script)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	switch kind {
	case "tui":
		return tui.NewJudge(), nil
	case "line":
		return judge.NewLine(in, out), nil
	default:
		return nil, fmt.Errorf("unknown judge: %s", kind)
	}
}

func loadStopWords(cfg *config.AppConfig) (text.StopWords, error) {
	if cfg.StopWords.Path == "" {
		return text.DefaultStopWords(), nil
	}
	return text.LoadStopWords(cfg.StopWords.Path)
}
