package form

import (
	"strings"

	"github.com/tbs-portal/portal/shared/api"
)

// Step is a state of the login modal.
type Step int

const (
	StepLogin Step = iota
	StepRequestCode
	StepResetPassword
)

func (s Step) String() string {
	switch s {
	case StepRequestCode:
		return "FORGOT_STEP1"
	case StepResetPassword:
		return "FORGOT_STEP2"
	default:
		return "LOGIN"
	}
}

type MessageKind int

const (
	MessageNone MessageKind = iota
	MessageInfo
	MessageSuccess
	MessageError
)

func (k MessageKind) String() string {
	switch k {
	case MessageInfo:
		return "info"
	case MessageSuccess:
		return "success"
	case MessageError:
		return "error"
	default:
		return ""
	}
}

const (
	MsgFillAllFields   = "Please fill in all fields"
	MsgSendingCode     = "Sending reset code..."
	MsgSendCodeFailed  = "Error sending reset code"
	MsgResetting       = "Resetting password..."
	MsgResetFailed     = "Error resetting password"
	MsgUnexpectedError = "An unexpected error occurred"
)

// ForgotPassword drives LOGIN -> FORGOT_STEP1 -> FORGOT_STEP2 -> LOGIN.
// Email and NationalID are what step one collected; step two reuses Email.
type ForgotPassword struct {
	Step       Step
	Email      string
	NationalID string

	Message string
	Kind    MessageKind

	SendDisabled  bool
	ResetDisabled bool
	// ReturnPending is set once the reset went through; the front end returns
	// to LOGIN after its configured delay.
	ReturnPending bool
}

func (f *ForgotPassword) setMessage(kind MessageKind, msg string) {
	f.Kind = kind
	f.Message = msg
}

// OpenForgot swaps the login form for step one.
func (f *ForgotPassword) OpenForgot() {
	if f.Step == StepLogin {
		f.Step = StepRequestCode
	}
	f.setMessage(MessageNone, "")
}

// BackToLogin is allowed from every state and always lands on a fresh login form.
func (f *ForgotPassword) BackToLogin() {
	*f = ForgotPassword{}
}

// BeginInitiate validates step one and marks the send action in flight.
func (f *ForgotPassword) BeginInitiate(email, nationalID string) (api.InitiateResetRequest, bool) {
	if f.Step != StepRequestCode || f.SendDisabled {
		return api.InitiateResetRequest{}, false
	}

	email = strings.TrimSpace(email)
	nationalID = strings.TrimSpace(nationalID)
	f.Email, f.NationalID = email, nationalID

	if email == "" || nationalID == "" {
		f.setMessage(MessageError, MsgFillAllFields)
		return api.InitiateResetRequest{}, false
	}

	f.SendDisabled = true
	f.setMessage(MessageInfo, MsgSendingCode)
	return api.InitiateResetRequest{Email: email, NationalID: nationalID}, true
}

// InitiateSucceeded advances to step two. It reports false, and changes
// nothing, unless a send was in flight on step one. The send action stays
// disabled so the code cannot be requested twice.
func (f *ForgotPassword) InitiateSucceeded(msg string) bool {
	if f.Step != StepRequestCode || !f.SendDisabled {
		return false
	}
	f.Step = StepResetPassword
	f.setMessage(MessageSuccess, msg)
	return true
}

// InitiateFailed keeps step one and re-enables the send action.
func (f *ForgotPassword) InitiateFailed(msg string) {
	if msg == "" {
		msg = MsgSendCodeFailed
	}
	f.SendDisabled = false
	f.setMessage(MessageError, msg)
}

// BeginComplete validates step two and marks the reset action in flight.
func (f *ForgotPassword) BeginComplete(code, newPassword, confirm string) (api.CompleteResetRequest, bool) {
	if f.Step != StepResetPassword || f.ResetDisabled {
		return api.CompleteResetRequest{}, false
	}

	code = strings.TrimSpace(code)
	newPassword = strings.TrimSpace(newPassword)
	confirm = strings.TrimSpace(confirm)

	if code == "" || newPassword == "" || confirm == "" {
		f.setMessage(MessageError, MsgFillAllFields)
		return api.CompleteResetRequest{}, false
	}
	if newPassword != confirm {
		f.setMessage(MessageError, "Passwords do not match")
		return api.CompleteResetRequest{}, false
	}

	f.ResetDisabled = true
	f.setMessage(MessageInfo, MsgResetting)
	return api.CompleteResetRequest{Email: f.Email, Code: code, NewPassword: newPassword}, true
}

// CompleteSucceeded shows the confirmation and leaves the reset action
// disabled until the timed return to LOGIN.
func (f *ForgotPassword) CompleteSucceeded(msg string) {
	f.ResetDisabled = true
	f.ReturnPending = true
	f.setMessage(MessageSuccess, msg)
}

func (f *ForgotPassword) CompleteFailed(msg string) {
	if msg == "" {
		msg = MsgResetFailed
	}
	f.ResetDisabled = false
	f.setMessage(MessageError, msg)
}

// Unexpected reports a transport failure of whichever action was in flight
// and re-enables it.
func (f *ForgotPassword) Unexpected() {
	switch f.Step {
	case StepRequestCode:
		f.SendDisabled = false
	case StepResetPassword:
		f.ResetDisabled = false
	}
	f.setMessage(MessageError, MsgUnexpectedError)
}
