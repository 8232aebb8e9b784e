package login

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFakeBackend serves the two verification endpoints the way the real
// server shapes its responses.
func newFakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/api/send-verification", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			http.Redirect(w, r, "/sign-in", http.StatusTemporaryRedirect)
			return
		}
		var req struct {
			PhoneNumber string `json:"phoneNumber"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.PhoneNumber == "" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Phone number is required."})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"requestId": "r1"})
	})

	mux.HandleFunc("/api/check-verification", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			RequestID string `json:"requestId"`
			Code      string `json:"code"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Code == "0000" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "The code you provided is incorrect."})
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClientFlow_Success(t *testing.T) {
	server := newFakeBackend(t)
	client := NewClient(server.URL, "session-token")
	flow := NewFlow(client)
	ctx := context.Background()

	res := flow.SubmitPhone(ctx, "14155552671")
	require.Equal(t, StateCodeInput, res.State)
	require.Equal(t, "r1", flow.RequestID())

	res = flow.SubmitCode(ctx, "1234")
	assert.Equal(t, StateSuccess, res.State)
	assert.Equal(t, "Login successful! Redirecting...", res.Message)
}

func TestClientFlow_WrongCode(t *testing.T) {
	server := newFakeBackend(t)
	client := NewClient(server.URL, "session-token")
	flow := NewFlow(client)
	ctx := context.Background()

	flow.SubmitPhone(ctx, "14155552671")
	res := flow.SubmitCode(ctx, "0000")
	assert.Equal(t, StateError, res.State)
	assert.Equal(t, "The code you provided is incorrect.", res.Message)
}

func TestClient_RedirectBecomesSignInError(t *testing.T) {
	server := newFakeBackend(t)
	client := NewClient(server.URL, "") // no session token

	_, err := client.SendVerification(context.Background(), "14155552671")
	assert.True(t, errors.Is(err, ErrSignInRequired))
}

func TestClient_ServerMessageSurfaces(t *testing.T) {
	server := newFakeBackend(t)
	client := NewClient(server.URL, "session-token")

	_, err := client.SendVerification(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, "Phone number is required.", err.Error())
}
