// Package serpapi implements search.Searcher against SerpAPI's JSON search
// endpoint.
package serpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/papercomputeco/relay/pkg/search"
	"github.com/papercomputeco/relay/pkg/utils"
)

const (
	// DefaultEndpoint is SerpAPI's search URL.
	DefaultEndpoint = "https://serpapi.com/search"

	// DefaultEngine is the search engine SerpAPI proxies to.
	DefaultEngine = "google"

	// DefaultNumResults is how many organic results are requested.
	DefaultNumResults = 3

	// maxErrorBody bounds how much of a failed response is kept.
	maxErrorBody = 2048
)

// Config holds configuration for the SerpAPI client.
type Config struct {
	APIKey string

	// Endpoint defaults to DefaultEndpoint if empty.
	Endpoint string

	// Engine defaults to DefaultEngine if empty.
	Engine string

	// NumResults defaults to DefaultNumResults if zero.
	NumResults int

	// Timeout bounds each request. Defaults to 30s.
	Timeout time.Duration

	Logger *slog.Logger
}

// Client wraps SerpAPI's search API.
type Client struct {
	apiKey     string
	endpoint   string
	engine     string
	numResults int
	httpClient *http.Client
	logger     *slog.Logger
}

// searchResponse is the subset of SerpAPI's response the relay reads.
type searchResponse struct {
	OrganicResults []search.Result `json:"organic_results"`
	Error          string          `json:"error"`
}

// New creates a SerpAPI client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("serpapi: api key is required")
	}

	c := &Client{
		apiKey:     cfg.APIKey,
		endpoint:   cfg.Endpoint,
		engine:     cfg.Engine,
		numResults: cfg.NumResults,
		logger:     cfg.Logger,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}
	if c.engine == "" {
		c.engine = DefaultEngine
	}
	if c.numResults <= 0 {
		c.numResults = DefaultNumResults
	}
	if c.httpClient.Timeout <= 0 {
		c.httpClient.Timeout = 30 * time.Second
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c, nil
}

// Search requests the top organic results for query.
func (c *Client) Search(ctx context.Context, query string) ([]search.Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("api_key", c.apiKey)
	params.Set("engine", c.engine)
	params.Set("num", strconv.Itoa(c.numResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &search.UpstreamError{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", utils.UserAgent())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &search.UpstreamError{Err: redact(err, c.apiKey)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &search.UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &search.UpstreamError{StatusCode: resp.StatusCode, Err: err}
	}

	if parsed.Error != "" {
		// SerpAPI reports "no results" for a query as an error string.
		if strings.Contains(parsed.Error, "hasn't returned any results") {
			return []search.Result{}, nil
		}
		return nil, &search.UpstreamError{StatusCode: resp.StatusCode, Body: parsed.Error}
	}

	results := parsed.OrganicResults
	if len(results) > c.numResults {
		results = results[:c.numResults]
	}
	if results == nil {
		results = []search.Result{}
	}

	c.logger.Debug("web search completed",
		"query", utils.Truncate(query, 80),
		"results", len(results),
		"duration", time.Since(start),
	)

	return results, nil
}

// redact strips the api key from url errors so it never reaches logs.
func redact(err error, key string) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return &url.Error{Op: uerr.Op, URL: strings.ReplaceAll(uerr.URL, key, "REDACTED"), Err: uerr.Err}
	}
	return err
}

var _ search.Searcher = (*Client)(nil)
