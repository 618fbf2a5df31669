package handler

import (
	"errors"
	"net/http"

	frontend_domain "github.com/tbs-portal/portal/frontend/internal/domain"
	"github.com/tbs-portal/portal/frontend/internal/service"
	"github.com/tbs-portal/portal/shared/form"
	"github.com/tbs-portal/portal/shared/jwt"
	"github.com/tbs-portal/portal/shared/logger"
	"github.com/tbs-portal/portal/shared/middleware/metrics"
)

const (
	resetSessionCookie = "reset_session"
	msgResetExpired    = "Your reset session has expired. Please request a new code."
)

// loadForgot restores the forgot-password state carried in the reset cookie.
// A missing, expired or tampered cookie yields the initial LOGIN state.
func (h *Handler) loadForgot(r *http.Request) form.ForgotPassword {
	cookie, err := r.Cookie(resetSessionCookie)
	if err != nil || cookie.Value == "" {
		return form.ForgotPassword{}
	}
	s, err := h.sessions.Decode(cookie.Value)
	if err != nil {
		return form.ForgotPassword{}
	}

	f := form.ForgotPassword{Step: form.Step(s.Step), Email: s.Email, NationalID: s.NationalID}
	switch f.Step {
	case form.StepResetPassword:
		// The code was already requested; step one stays locked.
		f.SendDisabled = true
	case form.StepRequestCode:
	default:
		return form.ForgotPassword{}
	}
	return f
}

func (h *Handler) saveForgot(w http.ResponseWriter, f form.ForgotPassword) error {
	token, err := h.sessions.Encode(jwt.ResetSession{Step: int(f.Step), Email: f.Email, NationalID: f.NationalID})
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     resetSessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Public.SecureCookies,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.Public.ResetSessionTTL.Seconds()),
	})
	return nil
}

func (h *Handler) clearForgot(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     resetSessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Public.SecureCookies,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}

func (h *Handler) renderForgot(w http.ResponseWriter, r *http.Request, status int, f form.ForgotPassword) {
	page := frontend_domain.PortalPageData{
		Modal:        frontend_domain.ModalLogin,
		Registration: form.NewRegistration(h.rules).View(),
		Forgot:       frontend_domain.NewForgotView(f),
	}
	if f.ReturnPending {
		page.ReturnToLoginAfterMs = ms(h.Public.ResetReturnDelay)
	}
	h.renderPortal(w, r, status, page, nil)
}

// ForgotInitiatePostHandler handles step one: email and national ID in,
// reset code out by email.
func (h *Handler) ForgotInitiatePostHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	// A step-one form always starts from step one, whatever an older cookie says.
	var f form.ForgotPassword
	f.OpenForgot()

	res, err := h.auth.InitiateReset(r.Context(), callerKey(r), &f, r.PostFormValue("email"), r.PostFormValue("national_id"))
	if errors.Is(err, service.ErrBusy) {
		f.Message, f.Kind = msgBusy, form.MessageInfo
	} else if err != nil {
		logger.Log.Error("reset initiation", "error", err)
		f.Unexpected()
		res.Outcome = metrics.OutcomeUnavailable
	}

	if res.Outcome == metrics.OutcomeSuccess {
		if err := h.saveForgot(w, f); err != nil {
			logger.Log.Error("saving reset session", "error", err)
			f = form.ForgotPassword{}
			f.OpenForgot()
			f.Unexpected()
			h.renderForgot(w, r, http.StatusInternalServerError, f)
			return
		}
	}
	h.renderForgot(w, r, statusFor(res.Outcome), f)
}

// ForgotCompletePostHandler handles step two: code and new password.
func (h *Handler) ForgotCompletePostHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	f := h.loadForgot(r)
	if f.Step != form.StepResetPassword {
		h.clearForgot(w)
		f = form.ForgotPassword{}
		f.OpenForgot()
		f.Message, f.Kind = msgResetExpired, form.MessageError
		h.renderForgot(w, r, http.StatusUnprocessableEntity, f)
		return
	}

	res, err := h.auth.CompleteReset(r.Context(), callerKey(r), &f,
		r.PostFormValue("code"), r.PostFormValue("new_password"), r.PostFormValue("confirm_password"))
	if errors.Is(err, service.ErrBusy) {
		f.Message, f.Kind = msgBusy, form.MessageInfo
	} else if err != nil {
		logger.Log.Error("reset completion", "error", err)
		f.Unexpected()
		res.Outcome = metrics.OutcomeUnavailable
	}

	if res.Outcome == metrics.OutcomeSuccess {
		h.clearForgot(w)
	}
	h.renderForgot(w, r, statusFor(res.Outcome), f)
}

// ForgotBackPostHandler abandons the flow from any step.
func (h *Handler) ForgotBackPostHandler(w http.ResponseWriter, r *http.Request) {
	h.clearForgot(w)
	http.Redirect(w, r, "/?modal=login", http.StatusSeeOther)
}
