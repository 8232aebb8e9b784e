package model

// VerificationState tracks where a verification session stands.
type VerificationState string

const (
	VerificationPending  VerificationState = "pending"
	VerificationVerified VerificationState = "verified"
	VerificationFailed   VerificationState = "failed"
)

// VerificationSession is the request-scoped state of one phone verification.
// Nothing here is persisted; if the client restarts the flow, the session is lost.
type VerificationSession struct {
	RequestID   string
	PhoneNumber string
	State       VerificationState
}

// FailureReason classifies why a code check did not succeed.
type FailureReason string

const (
	FailureCodeMismatch  FailureReason = "code_mismatch"
	FailureProviderError FailureReason = "provider_error"
	FailureValidation    FailureReason = "validation_error"
)

// VerificationOutcome is the mapped result of a single code check.
// Derived solely from the provider response; never cached.
type VerificationOutcome struct {
	Success bool
	Reason  FailureReason
}

// Source is one retrieved search result snippet fed into suggestion prompts.
type Source struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// SuggestionRequest is the input for follow-up question generation.
type SuggestionRequest struct {
	Question string   `json:"question"`
	Sources  []Source `json:"sources,omitempty"`
}
