package vonage

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultBaseURL = "https://api.nexmo.com"

// codeMismatchTitle is the error title Verify v2 returns when the supplied
// code does not match the one that was sent.
const codeMismatchTitle = "The code you provided does not match the expected value."

// ErrCodeMismatch is returned by CheckCode when the provider rejected the
// code as incorrect (as opposed to an expired request or a transport failure).
var ErrCodeMismatch = errors.New("verification code mismatch")

// APIError is a non-mismatch failure reported by the Verify API
type APIError struct {
	Status int    `json:"-"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("vonage: %s: %s", e.Title, e.Detail)
	}
	return fmt.Sprintf("vonage: %s (status %d)", e.Title, e.Status)
}

// Config holds the credentials for the Verify v2 API. API key and secret
// identify the account; Verify v2 requests themselves are authorized with an
// application JWT signed by the private key.
type Config struct {
	APIKey         string
	APISecret      string
	ApplicationID  string
	PrivateKeyPath string
	Brand          string
	Sender         string
	BaseURL        string // override for tests; defaults to the Vonage API host
}

// Client calls the Vonage Verify v2 API
type Client struct {
	cfg        Config
	httpClient *http.Client
	privateKey *rsa.PrivateKey
}

// NewClient creates a Verify v2 client, loading the application private key
// from cfg.PrivateKeyPath.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	pem, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pem)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		privateKey: key,
	}, nil
}

// appToken signs a short-lived RS256 application JWT for one API call
func (c *Client) appToken() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"application_id": c.cfg.ApplicationID,
		"iat":            now.Unix(),
		"exp":            now.Add(5 * time.Minute).Unix(),
		"jti":            uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(c.privateKey)
	if err != nil {
		return "", fmt.Errorf("sign application token: %w", err)
	}
	return signed, nil
}

// StartResponse is the provider's answer to a new verification request.
// RequestID correlates the send with the later code check; Extra carries any
// additional provider fields through to the caller untouched.
type StartResponse struct {
	RequestID string
	Extra     map[string]json.RawMessage
}

type workflowStep struct {
	Channel string `json:"channel"`
	To      string `json:"to"`
	From    string `json:"from"`
}

type startRequest struct {
	Brand    string         `json:"brand"`
	Workflow []workflowStep `json:"workflow"`
}

// StartVerification asks the provider to begin a new SMS verification
// workflow for phone. Not idempotent: every call sends a new code.
func (c *Client) StartVerification(ctx context.Context, phone string) (*StartResponse, error) {
	body := startRequest{
		Brand: c.cfg.Brand,
		Workflow: []workflowStep{
			{Channel: "sms", To: phone, From: c.cfg.Sender},
		},
	}

	raw, err := c.post(ctx, "/v2/verify", body)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode start response: %w", err)
	}

	resp := &StartResponse{Extra: fields}
	if idRaw, ok := fields["request_id"]; ok {
		if err := json.Unmarshal(idRaw, &resp.RequestID); err != nil {
			return nil, fmt.Errorf("decode request_id: %w", err)
		}
	}
	if resp.RequestID == "" {
		return nil, fmt.Errorf("start response missing request_id")
	}
	return resp, nil
}

// CheckCode asks the provider to validate code against requestID.
// Returns nil on success, ErrCodeMismatch when the code is wrong, and an
// *APIError (or transport error) otherwise.
func (c *Client) CheckCode(ctx context.Context, requestID, code string) error {
	_, err := c.post(ctx, "/v2/verify/"+requestID, map[string]string{"code": code})
	return err
}

// post sends an authorized JSON request and returns the raw success body.
// Non-2xx responses are decoded as RFC 7807 problem bodies.
func (c *Client) post(ctx context.Context, path string, body interface{}) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	token, err := c.appToken()
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vonage request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}

	apiErr := &APIError{Status: resp.StatusCode}
	if err := json.Unmarshal(raw, apiErr); err != nil {
		apiErr.Title = http.StatusText(resp.StatusCode)
		apiErr.Detail = string(raw)
	}
	if apiErr.Title == codeMismatchTitle {
		return nil, ErrCodeMismatch
	}
	return nil, apiErr
}
