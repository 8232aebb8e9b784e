package exa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/webseeker/server/internal/model"
)

const defaultBaseURL = "https://api.exa.ai"

const defaultNumResults = 5

// Config holds the search client settings
type Config struct {
	APIKey  string
	BaseURL string // override for tests
}

// Client calls the Exa search API
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates an Exa search client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Client{cfg: cfg, httpClient: &http.Client{}}
}

type searchRequest struct {
	Query      string         `json:"query"`
	NumResults int            `json:"numResults"`
	Contents   searchContents `json:"contents"`
}

type searchContents struct {
	Text bool `json:"text"`
}

type searchResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Text  string `json:"text"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

// Search runs a query and maps the results to source records
func (c *Client) Search(ctx context.Context, query string, numResults int) ([]model.Source, error) {
	if numResults <= 0 {
		numResults = defaultNumResults
	}

	payload, err := json.Marshal(searchRequest{
		Query:      query,
		NumResults: numResults,
		Contents:   searchContents{Text: true},
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exa request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exa request failed: status %d: %s", resp.StatusCode, raw)
	}

	var decoded searchResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	sources := make([]model.Source, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		sources = append(sources, model.Source{Title: r.Title, Content: r.Text})
	}
	return sources, nil
}
