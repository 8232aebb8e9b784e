package login

import (
	"context"

	"github.com/webseeker/server/internal/model"
)

// State is one of the four steps of the login flow
type State string

const (
	StatePhoneInput State = "phone_input"
	StateCodeInput  State = "code_input"
	StateSuccess    State = "success"
	StateError      State = "error"
)

// User-facing flow messages.
const (
	MsgEnterPhone   = "Please enter a phone number."
	MsgEnterCode    = "Please enter the verification code."
	MsgCodeSent     = "A verification code has been sent to your phone."
	MsgLoginSuccess = "Login successful! Redirecting..."
)

// API is the backend surface the flow drives. The real implementation is the
// HTTP client in this package; tests substitute a fake.
type API interface {
	SendVerification(ctx context.Context, phone string) (requestID string, err error)
	CheckVerification(ctx context.Context, requestID, code string) (message string, err error)
}

// Result describes one state transition
type Result struct {
	State   State
	Message string
}

// Flow is the login state machine: phone_input -> code_input -> success,
// with error reachable from either call and dismissible back to phone_input.
// One transition runs at a time; the flow holds no locks.
type Flow struct {
	api     API
	state   State
	session *model.VerificationSession
	message string
}

// NewFlow creates a flow in the phone_input state
func NewFlow(api API) *Flow {
	return &Flow{api: api, state: StatePhoneInput}
}

// State returns the current state
func (f *Flow) State() State { return f.state }

// Message returns the message from the last transition
func (f *Flow) Message() string { return f.message }

// Session returns the current verification session, or nil before a code
// was sent. The session lives only as long as the flow; restarting loses it.
func (f *Flow) Session() *model.VerificationSession { return f.session }

// RequestID returns the provider request identifier stored after a
// successful send, empty otherwise.
func (f *Flow) RequestID() string {
	if f.session == nil {
		return ""
	}
	return f.session.RequestID
}

// SubmitPhone requests a verification code for phone. Only valid in the
// phone_input state; elsewhere it reports the current state unchanged.
func (f *Flow) SubmitPhone(ctx context.Context, phone string) Result {
	if f.state != StatePhoneInput {
		return Result{State: f.state, Message: f.message}
	}
	if phone == "" {
		f.message = MsgEnterPhone
		return Result{State: f.state, Message: f.message}
	}

	requestID, err := f.api.SendVerification(ctx, phone)
	if err != nil {
		f.state = StateError
		f.message = err.Error()
		return Result{State: f.state, Message: f.message}
	}

	f.session = &model.VerificationSession{
		RequestID:   requestID,
		PhoneNumber: phone,
		State:       model.VerificationPending,
	}
	f.state = StateCodeInput
	f.message = MsgCodeSent
	return Result{State: f.state, Message: f.message}
}

// SubmitCode checks the received code. Only valid in the code_input state.
func (f *Flow) SubmitCode(ctx context.Context, code string) Result {
	if f.state != StateCodeInput {
		return Result{State: f.state, Message: f.message}
	}
	if code == "" {
		f.message = MsgEnterCode
		return Result{State: f.state, Message: f.message}
	}

	message, err := f.api.CheckVerification(ctx, f.session.RequestID, code)
	if err != nil {
		f.session.State = model.VerificationFailed
		f.state = StateError
		f.message = err.Error()
		return Result{State: f.state, Message: f.message}
	}

	if message == "" {
		message = MsgLoginSuccess
	}
	f.session.State = model.VerificationVerified
	f.state = StateSuccess
	f.message = message
	return Result{State: f.state, Message: f.message}
}

// Dismiss leaves the error state and restarts from phone_input. The stored
// session is discarded, so a failed code check means requesting a fresh code.
func (f *Flow) Dismiss() Result {
	if f.state != StateError {
		return Result{State: f.state, Message: f.message}
	}
	f.state = StatePhoneInput
	f.session = nil
	f.message = ""
	return Result{State: f.state}
}
