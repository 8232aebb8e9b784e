package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-2.5-flash"
)

// ErrNoCandidates means the API answered without any candidates to read.
var ErrNoCandidates = errors.New("no candidates returned from Gemini API")

// Config holds the generateContent client settings
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // override for tests
}

// Client calls the Gemini generateContent API
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a Gemini client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &Client{cfg: cfg, httpClient: &http.Client{}}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type candidate struct {
	Content content `json:"content"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

// GenerateText sends prompt as a single user turn and returns the first text
// part of the first candidate. A response with no candidates is an error;
// a candidate with no text parts yields "".
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	body := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.cfg.BaseURL, c.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini request failed: status %d: %s", resp.StatusCode, raw)
	}

	var decoded generateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Candidates) == 0 {
		return "", ErrNoCandidates
	}

	parts := decoded.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return "", nil
	}
	return parts[0].Text, nil
}
