package frontend_domain

import "github.com/tbs-portal/portal/shared/form"

type Modal string

const (
	ModalNone     Modal = ""
	ModalRegister Modal = "register"
	ModalLogin    Modal = "login"
)

// PortalPageData is everything the portal page shows: which modal is open
// and the derived state of every form inside it.
type PortalPageData struct {
	Modal        Modal
	Registration form.RegistrationView
	Login        form.Login
	Forgot       ForgotView

	// Timed transitions, in milliseconds; zero means none pending.
	CloseModalAfterMs    int64
	ReturnToLoginAfterMs int64
}

// ForgotView is form.ForgotPassword flattened for templates.
type ForgotView struct {
	Step          string // LOGIN, FORGOT_STEP1 or FORGOT_STEP2
	Email         string
	NationalID    string
	Message       string
	Kind          string
	SendDisabled  bool
	ResetDisabled bool
}

func NewForgotView(f form.ForgotPassword) ForgotView {
	return ForgotView{
		Step:          f.Step.String(),
		Email:         f.Email,
		NationalID:    f.NationalID,
		Message:       f.Message,
		Kind:          f.Kind.String(),
		SendDisabled:  f.SendDisabled,
		ResetDisabled: f.ResetDisabled,
	}
}

func (v ForgotView) IsRequestCode() bool { return v.Step == form.StepRequestCode.String() }
func (v ForgotView) IsResetPassword() bool {
	return v.Step == form.StepResetPassword.String()
}
