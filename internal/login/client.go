package login

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrSignInRequired means the server redirected to the sign-in flow instead
// of performing the operation.
var ErrSignInRequired = errors.New("sign-in required: no valid session")

// Client implements API against the verification backend over HTTP
type Client struct {
	baseURL      string
	sessionToken string
	httpClient   *http.Client
}

// NewClient creates an API client. sessionToken is sent as a bearer token on
// every call.
func NewClient(baseURL, sessionToken string) *Client {
	return &Client{
		baseURL:      baseURL,
		sessionToken: sessionToken,
		httpClient: &http.Client{
			// Surface auth redirects to the flow instead of following them.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// SendVerification calls POST /api/send-verification and returns the
// provider request identifier.
func (c *Client) SendVerification(ctx context.Context, phone string) (string, error) {
	var out struct {
		RequestID string `json:"requestId"`
	}
	err := c.post(ctx, "/api/send-verification", map[string]string{"phoneNumber": phone}, &out, "Failed to send verification code.")
	if err != nil {
		return "", err
	}
	return out.RequestID, nil
}

// CheckVerification calls POST /api/check-verification and returns the
// server's success message.
func (c *Client) CheckVerification(ctx context.Context, requestID, code string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	err := c.post(ctx, "/api/check-verification", map[string]string{"requestId": requestID, "code": code}, &out, "Verification failed.")
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

// post sends one JSON request. Non-200 responses become errors carrying the
// server's message field when present, so the flow can show it verbatim.
func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}, fallback string) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.sessionToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.sessionToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		return ErrSignInRequired
	}

	if resp.StatusCode != http.StatusOK {
		var errBody struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		switch {
		case errBody.Message != "":
			return errors.New(errBody.Message)
		case errBody.Error != "":
			return errors.New(errBody.Error)
		default:
			return errors.New(fallback)
		}
	}

	if out != nil {
		// An empty success body is allowed; the flow falls back to defaults.
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
