package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/webseeker/server/internal/model"
	"github.com/webseeker/server/internal/verify"
	"github.com/webseeker/server/internal/vonage"
)

// VerificationHandler handles the phone verification endpoints
type VerificationHandler struct {
	service *verify.Service
}

// NewVerificationHandler creates a new verification handler
func NewVerificationHandler(service *verify.Service) *VerificationHandler {
	return &VerificationHandler{service: service}
}

// sendVerificationRequest is the request body for POST /api/send-verification
type sendVerificationRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

// checkVerificationRequest is the request body for POST /api/check-verification
type checkVerificationRequest struct {
	RequestID string `json:"requestId"`
	Code      string `json:"code"`
}

// HandleSendVerification handles POST /api/send-verification
func (h *VerificationHandler) HandleSendVerification(w http.ResponseWriter, r *http.Request) {
	var req sendVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// An unreadable body is a generic failure, not a validation error;
		// only a present-but-empty phone number gets the 400.
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Failed to send verification code",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.service.Start(r.Context(), req.PhoneNumber)
	if err != nil {
		if errors.Is(err, verify.ErrValidation) {
			respondMessage(w, http.StatusBadRequest, verify.MsgPhoneRequired)
			return
		}
		logMaskedPhone(req.PhoneNumber, "failed to send verification: %v", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Failed to send verification code",
			"details": providerDetail(err),
		})
		return
	}

	logMaskedPhone(req.PhoneNumber, "verification started, request %s", resp.RequestID)

	// Pass provider fields through untouched; the client only needs requestId.
	out := make(map[string]interface{}, len(resp.Extra)+1)
	for k, v := range resp.Extra {
		out[k] = v
	}
	out["requestId"] = resp.RequestID
	respondJSON(w, http.StatusOK, out)
}

// HandleCheckVerification handles POST /api/check-verification
func (h *VerificationHandler) HandleCheckVerification(w http.ResponseWriter, r *http.Request) {
	var req checkVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("check verification: invalid request body: %v", err)
		respondMessage(w, http.StatusInternalServerError, verify.MsgCheckFailed)
		return
	}

	outcome, err := h.service.Check(r.Context(), req.RequestID, req.Code)
	if outcome.Success {
		log.Printf("verification check succeeded for request %s", req.RequestID)
		respondMessage(w, http.StatusOK, verify.MsgCheckSuccess)
		return
	}

	switch outcome.Reason {
	case model.FailureValidation:
		respondMessage(w, http.StatusBadRequest, verify.MsgFieldsRequired)
	case model.FailureCodeMismatch:
		log.Printf("verification check failed for request %s: code mismatch", req.RequestID)
		respondMessage(w, http.StatusBadRequest, verify.MsgCodeIncorrect)
	default:
		log.Printf("verification check failed for request %s: %v", req.RequestID, err)
		respondMessage(w, http.StatusInternalServerError, verify.MsgCheckFailed)
	}
}

// providerDetail extracts the provider's own message when one is available
func providerDetail(err error) string {
	var apiErr *vonage.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return apiErr.Title
	}
	return err.Error()
}

// logMaskedPhone logs a message with masked phone number
func logMaskedPhone(phone, format string, args ...interface{}) {
	log.Printf("Phone "+maskPhone(phone)+": "+format, args...)
}

// maskPhone masks a phone number for logging (e.g., +49******89)
func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}

	// Keep first 2 and last 2 characters, mask the rest
	prefix := phone[:2]
	suffix := phone[len(phone)-2:]
	masked := strings.Repeat("*", len(phone)-4)
	return prefix + masked + suffix
}
