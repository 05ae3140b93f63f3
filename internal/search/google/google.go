// Package google is a search provider backed by the Google Custom Search JSON API.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"qexpand/internal/domain"
)

const (
	DefaultBaseURL = "https://www.googleapis.com/customsearch/v1"
	maxPageSize    = 10
)

// ErrMissingCredentials is returned when the API key or engine id is empty.
var ErrMissingCredentials = errors.New("google search: api key and engine id are required")

// Config configures the Custom Search client.
type Config struct {
	BaseURL           string
	APIKey            string
	EngineID          string
	Timeout           time.Duration
	RequestsPerSecond float64
	MaxRetries        int
}

// Client issues Custom Search queries.
type Client struct {
	baseURL    string
	apiKey     string
	engineID   string
	client     *http.Client
	limiter    *rate.Limiter
	maxRetries int
	backoff    func(attempt int) time.Duration
	logger     *zap.Logger
}

// NewClient creates a Custom Search client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" || cfg.EngineID == "" {
		return nil, ErrMissingCredentials
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		engineID: cfg.EngineID,
		client: &http.Client{
			Timeout:   t,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: cfg.MaxRetries,
		backoff:    retryDelay,
		logger:     logger,
	}, nil
}

// Name returns the provider identifier.
func (c *Client) Name() string { return "google" }

type searchResponse struct {
	Items []struct {
		Title        string `json:"title"`
		Link         string `json:"link"`
		FormattedURL string `json:"formattedUrl"`
		Snippet      string `json:"snippet"`
	} `json:"items"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Search returns up to limit (at most 10) results in Google rank order.
// Rate-limited and 5xx responses are retried with backoff; transport errors are not.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.Result, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	params := url.Values{
		"key": {c.apiKey},
		"cx":  {c.engineID},
		"q":   {query},
		"num": {strconv.Itoa(limit)},
	}
	endpoint := c.baseURL + "?" + params.Encode()

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("google search: %w", err)
		}
		payload, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("google search: read body: %w", err)
		}

		if (resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500) && attempt < c.maxRetries {
			d := c.backoff(attempt)
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, err := strconv.Atoi(ra); err == nil {
					d = time.Duration(secs) * time.Second
				}
			}
			c.logger.Warn("google search retry",
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", d),
			)
			if err := sleep(ctx, d); err != nil {
				return nil, err
			}
			continue
		}
		return decode(resp.StatusCode, resp.Status, payload)
	}
}

func decode(status int, statusText string, payload []byte) ([]domain.Result, error) {
	var out searchResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		if status >= 300 {
			return nil, fmt.Errorf("google search failed: %s", statusText)
		}
		return nil, fmt.Errorf("google search: malformed response: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("google search failed: %d %s", out.Error.Code, out.Error.Message)
	}
	if status >= 300 {
		return nil, fmt.Errorf("google search failed: %s", statusText)
	}
	results := make([]domain.Result, 0, len(out.Items))
	for _, it := range out.Items {
		u := it.FormattedURL
		if u == "" {
			u = it.Link
		}
		results = append(results, domain.Result{URL: u, Title: it.Title, Snippet: it.Snippet})
	}
	return results, nil
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	// exponential backoff capped at 5s
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
