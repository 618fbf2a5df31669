package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	frontend_domain "github.com/tbs-portal/portal/frontend/internal/domain"
	"github.com/tbs-portal/portal/frontend/internal/service"
	"github.com/tbs-portal/portal/shared/form"
	"github.com/tbs-portal/portal/shared/logger"
	"github.com/tbs-portal/portal/shared/middleware/metrics"
)

// IndexGetHandler renders the portal. ?modal= opens the registration or
// login modal (forgot opens the login modal on the reset form); ?message=
// shows a system notification, e.g. after following an email link.
func (h *Handler) IndexGetHandler(w http.ResponseWriter, r *http.Request) {
	page := frontend_domain.PortalPageData{
		Registration: form.NewRegistration(h.rules).View(),
	}

	switch r.URL.Query().Get("modal") {
	case "register":
		page.Modal = frontend_domain.ModalRegister
	case "login":
		page.Modal = frontend_domain.ModalLogin
	case "forgot":
		page.Modal = frontend_domain.ModalLogin
		f := h.loadForgot(r)
		if f.Step == form.StepLogin {
			f.OpenForgot()
		}
		page.Forgot = frontend_domain.NewForgotView(f)
	}

	var note *frontend_domain.Notification
	if msg := strings.TrimSpace(r.URL.Query().Get("message")); msg != "" {
		note = h.notification(msg, frontend_domain.ClassifyNotification(msg))
	}

	h.renderPortal(w, r, http.StatusOK, page, note)
}

func (h *Handler) RegisterPostHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	reg := form.NewRegistration(h.rules)
	values := make(map[form.FieldName]string, len(form.RegistrationFields))
	for _, name := range form.RegistrationFields {
		values[name] = r.PostFormValue(string(name))
	}
	reg.Fill(values)

	res, err := h.auth.Register(r.Context(), callerKey(r), reg)
	if errors.Is(err, service.ErrBusy) {
		reg.SetMessage(msgBusy)
	} else if err != nil {
		logger.Log.Error("registration", "error", err)
		reg.SetMessage(service.MsgRegisterUnexpected)
		res.Outcome = metrics.OutcomeUnavailable
	}

	page := frontend_domain.PortalPageData{
		Modal:        frontend_domain.ModalRegister,
		Registration: reg.View(),
	}

	var note *frontend_domain.Notification
	if res.Outcome == metrics.OutcomeSuccess {
		note = h.notification(res.Notification, frontend_domain.NotificationSuccess)
		page.CloseModalAfterMs = ms(h.Public.ModalCloseDelay)
	}

	h.renderPortal(w, r, statusFor(res.Outcome), page, note)
}

func (h *Handler) LoginPostHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	l := &form.Login{}
	l.Input(form.Email, r.PostFormValue(string(form.Email)))
	l.Input(form.Password, r.PostFormValue(string(form.Password)))

	res, err := h.auth.Login(r.Context(), callerKey(r), l)
	if errors.Is(err, service.ErrBusy) {
		l.Message = msgBusy
	} else if err != nil {
		logger.Log.Error("login", "error", err)
		l.Unexpected()
		res.Outcome = metrics.OutcomeUnavailable
	}

	if res.Outcome == metrics.OutcomeSuccess {
		for _, cookie := range res.Cookies {
			http.SetCookie(w, cookie)
		}
		http.Redirect(w, r, h.redirectTarget(res.RedirectURL), http.StatusSeeOther)
		return
	}

	// Never echo the password back into the page.
	l.Password = ""
	page := frontend_domain.PortalPageData{
		Modal:        frontend_domain.ModalLogin,
		Registration: form.NewRegistration(h.rules).View(),
		Login:        *l,
		Forgot:       frontend_domain.NewForgotView(form.ForgotPassword{}),
	}
	h.renderPortal(w, r, statusFor(res.Outcome), page, nil)
}

// redirectTarget accepts a backend-provided redirect only if it stays on this
// site or points at the backend itself; anything else lands on "/".
func (h *Handler) redirectTarget(target string) string {
	// Browsers read a backslash as a slash, so "/\host" is protocol-relative.
	if target == "" || strings.Contains(target, `\`) {
		return "/"
	}
	u, err := url.Parse(target)
	if err != nil {
		return "/"
	}
	if u.Scheme == "" && u.Host == "" && strings.HasPrefix(u.Path, "/") && !strings.HasPrefix(target, "//") {
		return target
	}
	if base, err := url.Parse(h.Public.APIBaseURL); err == nil && u.Scheme == base.Scheme && u.Host == base.Host {
		return target
	}
	logger.Log.Warn("refusing off-site redirect", "target", target)
	return "/"
}
