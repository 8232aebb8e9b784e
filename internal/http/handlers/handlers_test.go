package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webseeker/server/internal/cache"
	httphandler "github.com/webseeker/server/internal/http"
	"github.com/webseeker/server/internal/http/handlers"
	"github.com/webseeker/server/internal/model"
	"github.com/webseeker/server/internal/session"
	"github.com/webseeker/server/internal/suggest"
	"github.com/webseeker/server/internal/verify"
	"github.com/webseeker/server/internal/vonage"
)

// fakeProvider implements verify.Provider
type fakeProvider struct {
	startCalls int
	checkCalls int
	startResp  *vonage.StartResponse
	startErr   error
	checkErr   error
}

func (f *fakeProvider) StartVerification(ctx context.Context, phone string) (*vonage.StartResponse, error) {
	f.startCalls++
	return f.startResp, f.startErr
}

func (f *fakeProvider) CheckCode(ctx context.Context, requestID, code string) error {
	f.checkCalls++
	return f.checkErr
}

// fakeGenerator implements suggest.Generator
type fakeGenerator struct {
	calls    int
	response string
	err      error
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.response, f.err
}

// fakeSearcher implements handlers.Searcher
type fakeSearcher struct {
	sources []model.Source
	err     error
}

func (f *fakeSearcher) Search(ctx context.Context, query string, numResults int) ([]model.Source, error) {
	return f.sources, f.err
}

// testServer bundles the server with its fakes and a valid session token
type testServer struct {
	Server    *httptest.Server
	Provider  *fakeProvider
	Generator *fakeGenerator
	Searcher  *fakeSearcher
	Token     string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	provider := &fakeProvider{
		startResp: &vonage.StartResponse{
			RequestID: "r1",
			Extra: map[string]json.RawMessage{
				"request_id": json.RawMessage(`"r1"`),
			},
		},
	}
	generator := &fakeGenerator{response: `{"questions": ["a", "b", "c"]}`}
	searcher := &fakeSearcher{}

	sessionService := session.NewJWTService("test-session-secret-at-least-32-chars")
	token, err := sessionService.Sign("user-1")
	require.NoError(t, err)

	verificationHandler := handlers.NewVerificationHandler(verify.NewService(provider))
	suggestHandler := handlers.NewSuggestHandler(suggest.NewService(generator, cache.NewMemory()))
	searchHandler := handlers.NewSearchHandler(searcher)

	router := httphandler.NewRouter(verificationHandler, suggestHandler, searchHandler, sessionService)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testServer{
		Server:    server,
		Provider:  provider,
		Generator: generator,
		Searcher:  searcher,
		Token:     token,
	}
}

// do sends a request without following redirects so auth redirects are visible
func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, body := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok": true}`, string(body))
}

func TestSendVerification_NoSessionRedirects(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := ts.do(t, http.MethodPost, "/api/send-verification", "", map[string]string{"phoneNumber": "14155552671"})
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/sign-in", resp.Header.Get("Location"))
	assert.Equal(t, 0, ts.Provider.startCalls, "an unauthenticated request must never reach the provider")
}

func TestSendVerification_InvalidTokenRedirects(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := ts.do(t, http.MethodPost, "/api/send-verification", "bogus-token", map[string]string{"phoneNumber": "14155552671"})
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, 0, ts.Provider.startCalls)
}

func TestSendVerification_EmptyPhone(t *testing.T) {
	ts := newTestServer(t)
	resp, body := ts.do(t, http.MethodPost, "/api/send-verification", ts.Token, map[string]string{"phoneNumber": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"message": "Phone number is required."}`, string(body))
	assert.Equal(t, 0, ts.Provider.startCalls)
}

func TestSendVerification_Success(t *testing.T) {
	ts := newTestServer(t)
	resp, body := ts.do(t, http.MethodPost, "/api/send-verification", ts.Token, map[string]string{"phoneNumber": "14155552671"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "r1", out["requestId"])
	assert.Equal(t, 1, ts.Provider.startCalls)
}

func TestSendVerification_ProviderError(t *testing.T) {
	ts := newTestServer(t)
	ts.Provider.startErr = &vonage.APIError{Status: 429, Title: "Rate Limit Hit", Detail: "too many requests"}

	resp, body := ts.do(t, http.MethodPost, "/api/send-verification", ts.Token, map[string]string{"phoneNumber": "14155552671"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "Failed to send verification code", out["error"])
	assert.Equal(t, "too many requests", out["details"])
}

func TestSendVerification_MalformedBody(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/api/send-verification", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+ts.Token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode, "an unreadable body is a generic failure, not a validation error")

	var out map[string]string
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "Failed to send verification code", out["error"])
	assert.Equal(t, 0, ts.Provider.startCalls)
}

func TestCheckVerification_MalformedBody(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/api/check-verification", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+ts.Token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"message": "An error occurred during verification."}`, string(body))
	assert.Equal(t, 0, ts.Provider.checkCalls)
}

func TestCheckVerification_MissingFields(t *testing.T) {
	ts := newTestServer(t)
	for _, payload := range []map[string]string{
		{"requestId": "", "code": ""},
		{"requestId": "r1", "code": ""},
		{"requestId": "", "code": "1234"},
	} {
		resp, body := ts.do(t, http.MethodPost, "/api/check-verification", ts.Token, payload)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"message": "Request ID and code are required."}`, string(body))
	}
	assert.Equal(t, 0, ts.Provider.checkCalls)
}

func TestCheckVerification_Success(t *testing.T) {
	ts := newTestServer(t)
	resp, body := ts.do(t, http.MethodPost, "/api/check-verification", ts.Token, map[string]string{"requestId": "r1", "code": "1234"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message": "Verification successful!"}`, string(body))
}

func TestCheckVerification_CodeMismatch(t *testing.T) {
	ts := newTestServer(t)
	ts.Provider.checkErr = vonage.ErrCodeMismatch

	resp, body := ts.do(t, http.MethodPost, "/api/check-verification", ts.Token, map[string]string{"requestId": "r1", "code": "0000"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"message": "The code you provided is incorrect."}`, string(body))
}

func TestCheckVerification_OtherProviderError(t *testing.T) {
	ts := newTestServer(t)
	ts.Provider.checkErr = &vonage.APIError{Status: 404, Title: "Not Found"}

	resp, body := ts.do(t, http.MethodPost, "/api/check-verification", ts.Token, map[string]string{"requestId": "r1", "code": "1234"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"message": "An error occurred during verification."}`, string(body))
}

func TestSimilarQuestions_NoSessionRequired(t *testing.T) {
	ts := newTestServer(t)
	resp, body := ts.do(t, http.MethodPost, "/api/getSimilarQuestions", "", map[string]interface{}{
		"question": "Who led the Manhattan project?",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `["a", "b", "c"]`, string(body))
}

func TestSimilarQuestions_GeneratorFailureDegradesToEmpty(t *testing.T) {
	ts := newTestServer(t)
	ts.Generator.err = errors.New("model unavailable")

	resp, body := ts.do(t, http.MethodPost, "/api/getSimilarQuestions", "", map[string]interface{}{
		"question": "q",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode, "suggestion failures must never surface as 5xx")
	assert.JSONEq(t, `[]`, string(body))
}

func TestSimilarQuestions_MalformedBodyDegradesToEmpty(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/api/getSimilarQuestions", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))
}

func TestSimilarQuestions_RepeatCallIsCached(t *testing.T) {
	ts := newTestServer(t)
	payload := map[string]interface{}{
		"question": "q",
		"sources":  []map[string]string{{"title": "t", "content": "c"}},
	}

	_, first := ts.do(t, http.MethodPost, "/api/getSimilarQuestions", "", payload)
	_, second := ts.do(t, http.MethodPost, "/api/getSimilarQuestions", "", payload)

	assert.Equal(t, string(first), string(second))
	assert.Equal(t, 1, ts.Generator.calls, "a repeat call within the TTL must not invoke the model")
}

func TestSearch_Gated(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := ts.do(t, http.MethodPost, "/api/search", "", map[string]string{"query": "q"})
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
}

func TestSearch_EmptyQuery(t *testing.T) {
	ts := newTestServer(t)
	resp, body := ts.do(t, http.MethodPost, "/api/search", ts.Token, map[string]string{"query": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"message": "Query is required."}`, string(body))
}

func TestSearch_Success(t *testing.T) {
	ts := newTestServer(t)
	ts.Searcher.sources = []model.Source{{Title: "T", Content: "C"}}

	resp, body := ts.do(t, http.MethodPost, "/api/search", ts.Token, map[string]string{"query": "q"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[{"title": "T", "content": "C"}]`, string(body))
}

func TestHomePage_GatedAndSignInOpen(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/sign-in", resp.Header.Get("Location"))

	resp, _ = ts.do(t, http.MethodGet, "/", ts.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodGet, "/sign-in", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "the sign-in page must be reachable without a session")
}
