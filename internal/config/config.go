package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// GoogleConfig holds settings for the Google Custom Search provider.
type GoogleConfig struct {
	BaseURL        string  `yaml:"base_url"`
	APIKeyEnv      string  `yaml:"api_key_env"`
	EngineIDEnv    string  `yaml:"engine_id_env"`
	TimeoutSecs    int     `yaml:"timeout_secs"`
	RequestsPerSec float64 `yaml:"requests_per_sec"`
	MaxRetries     int     `yaml:"max_retries"`
}

// ElasticsearchConfig holds connection and mapping details for an index.
type ElasticsearchConfig struct {
	Addresses    []string `yaml:"addresses"`
	Index        string   `yaml:"index"`
	Username     string   `yaml:"username"`
	PasswordEnv  string   `yaml:"password_env"`
	URLField     string   `yaml:"url_field"`
	TitleField   string   `yaml:"title_field"`
	SnippetField string   `yaml:"snippet_field"`
	SearchFields []string `yaml:"search_fields"`
}

// FixtureConfig points at a YAML file of canned results.
type FixtureConfig struct {
	Path string `yaml:"path"`
}

// SearchConfig selects and configures the search provider.
type SearchConfig struct {
	Type            string               `yaml:"type"`
	ResultsPerRound int                  `yaml:"results_per_round"`
	Google          *GoogleConfig        `yaml:"google,omitempty"`
	Elasticsearch   *ElasticsearchConfig `yaml:"elasticsearch,omitempty"`
	Fixture         *FixtureConfig       `yaml:"fixture,omitempty"`
}

// StopWordsConfig selects the stop-word list. An empty path means the built-in list.
type StopWordsConfig struct {
	Path string `yaml:"path"`
}

// FeedbackConfig holds the expansion parameters.
type FeedbackConfig struct {
	TermsPerRound int     `yaml:"terms_per_round"`
	Alpha         float64 `yaml:"alpha"`
	Beta          float64 `yaml:"beta"`
	Gamma         float64 `yaml:"gamma"`
}

// JudgeConfig selects how relevance judgments are collected.
type JudgeConfig struct {
	Type string `yaml:"type"` // tui, line
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Env   string `yaml:"env"`   // local, prod
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // empty means stderr
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Search    SearchConfig    `yaml:"search"`
	StopWords StopWordsConfig `yaml:"stop_words"`
	Feedback  FeedbackConfig  `yaml:"feedback"`
	Judge     JudgeConfig     `yaml:"judge"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// ${VAR} and ${VAR:-default} references are expanded from the environment.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(expandEnvVars(data), &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// LoadDefault tries ./qexpand.yaml first, then ~/.config/qexpand/config.yaml.
// If neither exists, it writes defaults to ~/.config/qexpand/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "qexpand.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// googleMaxResults is the largest page Custom Search returns.
const googleMaxResults = 10

// Validate checks the configuration for correctness.
func (c *AppConfig) Validate() error {
	switch c.Search.Type {
	case "google":
	case "elasticsearch":
		if c.Search.Elasticsearch == nil || c.Search.Elasticsearch.Index == "" {
			return fmt.Errorf("search.elasticsearch.index is required")
		}
	case "fixture":
		if c.Search.Fixture == nil || c.Search.Fixture.Path == "" {
			return fmt.Errorf("search.fixture.path is required")
		}
	default:
		return fmt.Errorf("search.type must be \"google\", \"elasticsearch\" or \"fixture\", got %q", c.Search.Type)
	}
	if c.Search.ResultsPerRound <= 0 {
		return fmt.Errorf("search.results_per_round must be positive, got %d", c.Search.ResultsPerRound)
	}
	if c.Search.Type == "google" && c.Search.ResultsPerRound > googleMaxResults {
		return fmt.Errorf("search.results_per_round must be at most %d for google, got %d", googleMaxResults, c.Search.ResultsPerRound)
	}
	if c.Feedback.TermsPerRound <= 0 {
		return fmt.Errorf("feedback.terms_per_round must be positive, got %d", c.Feedback.TermsPerRound)
	}
	if c.Feedback.Alpha < 0 || c.Feedback.Beta < 0 || c.Feedback.Gamma < 0 {
		return fmt.Errorf("feedback coefficients must not be negative")
	}
	switch c.Judge.Type {
	case "tui", "line":
	default:
		return fmt.Errorf("judge.type must be \"tui\" or \"line\", got %q", c.Judge.Type)
	}
	switch c.Logging.Env {
	case "local", "prod":
	default:
		return fmt.Errorf("logging.env must be \"local\" or \"prod\", got %q", c.Logging.Env)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "qexpand", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Search: SearchConfig{Type: "google", ResultsPerRound: 10},
		Judge:  JudgeConfig{Type: "tui"},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero values, including the block of the selected
// search provider.
func (c *AppConfig) ApplyDefaults() {
	if c.Search.Type == "" {
		c.Search.Type = "google"
	}
	if c.Search.ResultsPerRound == 0 {
		c.Search.ResultsPerRound = 10
	}
	if c.Search.Type == "google" {
		if c.Search.Google == nil {
			c.Search.Google = &GoogleConfig{}
		}
		g := c.Search.Google
		if g.BaseURL == "" {
			g.BaseURL = "https://www.googleapis.com/customsearch/v1"
		}
		if g.APIKeyEnv == "" {
			g.APIKeyEnv = "API_KEY"
		}
		if g.EngineIDEnv == "" {
			g.EngineIDEnv = "ENGINE_ID"
		}
		if g.TimeoutSecs == 0 {
			g.TimeoutSecs = 30
		}
		if g.RequestsPerSec == 0 {
			g.RequestsPerSec = 5
		}
		if g.MaxRetries == 0 {
			g.MaxRetries = 3
		}
	}
	if es := c.Search.Elasticsearch; c.Search.Type == "elasticsearch" && es != nil {
		if len(es.Addresses) == 0 {
			es.Addresses = []string{"http://localhost:9200"}
		}
		if es.URLField == "" {
			es.URLField = "url"
		}
		if es.TitleField == "" {
			es.TitleField = "title"
		}
		if es.SnippetField == "" {
			es.SnippetField = "snippet"
		}
		if len(es.SearchFields) == 0 {
			es.SearchFields = []string{es.TitleField, es.SnippetField}
		}
	}
	if c.Feedback.TermsPerRound == 0 {
		c.Feedback.TermsPerRound = 2
	}
	// Coefficients are defaulted together so an explicit gamma: 0 survives.
	if c.Feedback.Alpha == 0 && c.Feedback.Beta == 0 && c.Feedback.Gamma == 0 {
		c.Feedback.Alpha, c.Feedback.Beta, c.Feedback.Gamma = 1.0, 0.75, 0.15
	}
	if c.Judge.Type == "" {
		c.Judge.Type = "tui"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "local"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "warn"
	}
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
