package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/webseeker/server/internal/model"
	"github.com/webseeker/server/internal/vonage"
)

// ErrValidation marks a missing-required-field failure. It is always raised
// before the provider is contacted.
var ErrValidation = errors.New("validation error")

// User-facing messages for validation failures.
const (
	MsgPhoneRequired  = "Phone number is required."
	MsgFieldsRequired = "Request ID and code are required."
	MsgCodeIncorrect  = "The code you provided is incorrect."
	MsgCheckFailed    = "An error occurred during verification."
	MsgCheckSuccess   = "Verification successful!"
)

// Provider is the slice of the OTP provider this service needs.
// The real implementation is the Vonage client; tests substitute a fake.
type Provider interface {
	StartVerification(ctx context.Context, phone string) (*vonage.StartResponse, error)
	CheckCode(ctx context.Context, requestID, code string) error
}

// Service validates inputs, delegates to the provider, and maps provider
// failures to a small set of outcomes. It performs no retries and keeps no
// state between calls.
type Service struct {
	provider Provider
}

// NewService creates a verification service
func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

// Start begins a new verification workflow for phone. Not idempotent:
// each successful call triggers a new SMS send at the provider.
func (s *Service) Start(ctx context.Context, phone string) (*vonage.StartResponse, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, fmt.Errorf("%w: %s", ErrValidation, MsgPhoneRequired)
	}

	resp, err := s.provider.StartVerification(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("start verification: %w", err)
	}
	return resp, nil
}

// Check validates code against requestID and maps the result to an outcome.
// The error return carries provider detail for logging; the outcome alone
// determines what the caller shows the user.
func (s *Service) Check(ctx context.Context, requestID, code string) (model.VerificationOutcome, error) {
	requestID = strings.TrimSpace(requestID)
	code = strings.TrimSpace(code)
	if requestID == "" || code == "" {
		return model.VerificationOutcome{Reason: model.FailureValidation},
			fmt.Errorf("%w: %s", ErrValidation, MsgFieldsRequired)
	}

	err := s.provider.CheckCode(ctx, requestID, code)
	if err == nil {
		return model.VerificationOutcome{Success: true}, nil
	}
	if errors.Is(err, vonage.ErrCodeMismatch) {
		return model.VerificationOutcome{Reason: model.FailureCodeMismatch}, err
	}
	return model.VerificationOutcome{Reason: model.FailureProviderError}, fmt.Errorf("check code: %w", err)
}
