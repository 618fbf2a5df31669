// Package service mediates the portal's three exchanges with the
// authentication backend. It reads and writes the form state; rendering is
// left to the front ends.
package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/tbs-portal/portal/frontend/internal/apiclient"
	"github.com/tbs-portal/portal/shared/api"
	"github.com/tbs-portal/portal/shared/form"
	"github.com/tbs-portal/portal/shared/logger"
	"github.com/tbs-portal/portal/shared/middleware/metrics"
	"github.com/tbs-portal/portal/shared/utils"
	"github.com/tbs-portal/portal/shared/validation"
)

// ErrBusy is returned when the same form of the same caller already has a
// request in flight. Nothing is sent.
var ErrBusy = errors.New("submission already in progress")

const (
	FormRegister      = "register"
	FormLogin         = "login"
	FormInitiateReset = "reset_initiate"
	FormCompleteReset = "reset_complete"
)

const (
	MsgRegistered         = "Registration successful! Please check your email to confirm your account before logging in."
	MsgRegistrationFailed = "Error during registration."
	MsgRegisterUnexpected = "An unexpected error occurred."
)

type Backend interface {
	Register(ctx context.Context, req api.RegisterRequest) (apiclient.RegisterResult, error)
	Login(ctx context.Context, req api.LoginRequest) (apiclient.LoginResult, error)
	InitiateReset(ctx context.Context, req api.InitiateResetRequest) (api.ResetResponse, error)
	CompleteReset(ctx context.Context, req api.CompleteResetRequest) (api.ResetResponse, error)
}

// Recorder counts submission outcomes; *metrics.Metrics implements it.
type Recorder interface {
	Submission(form, outcome string)
}

// Sanitizer reduces backend-provided text to something safe to display.
type Sanitizer func(string) string

// Result tells the front end what happened beyond what the form state shows.
type Result struct {
	Outcome string // one of the metrics.Outcome* labels

	Notification string // registration success banner

	RedirectURL string // login success
	Cookies     []*http.Cookie
}

type Auth struct {
	backend   Backend
	validator *validation.Validator
	sanitize  Sanitizer
	recorder  Recorder
	busy      *busyGuard
}

func NewAuth(backend Backend, validator *validation.Validator, sanitize Sanitizer, recorder Recorder) *Auth {
	if sanitize == nil {
		sanitize = func(s string) string { return s }
	}
	return &Auth{
		backend:   backend,
		validator: validator,
		sanitize:  sanitize,
		recorder:  recorder,
		busy:      newBusyGuard(),
	}
}

// begin claims the busy slot of form for key.
func (a *Auth) begin(formName, key string) (func(), error) {
	release, ok := a.busy.acquire(formName + "\x00" + key)
	if !ok {
		a.record(formName, metrics.OutcomeBusy)
		return nil, ErrBusy
	}
	return release, nil
}

func (a *Auth) record(formName, outcome string) {
	if a.recorder != nil {
		a.recorder.Submission(formName, outcome)
	}
}

func (a *Auth) finish(formName string, res Result) Result {
	a.record(formName, res.Outcome)
	return res
}

// Register submits r for the caller identified by key.
func (a *Auth) Register(ctx context.Context, key string, r *form.Registration) (Result, error) {
	release, err := a.begin(FormRegister, key)
	if err != nil {
		return Result{Outcome: metrics.OutcomeBusy}, err
	}
	defer release()

	r.ClearAnnotations()
	if !r.CanSubmit() {
		r.TouchAll()
		return a.finish(FormRegister, Result{Outcome: metrics.OutcomeInvalid}), nil
	}

	payload := r.Payload()
	if err := a.validator.Struct(payload); err != nil {
		var fe validation.FieldErrors
		if errors.As(err, &fe) {
			errs := make(map[string][]string, len(fe))
			for k, v := range fe {
				errs[k] = []string{v}
			}
			r.ApplyFieldErrors(errs)
		} else {
			r.SetMessage(MsgRegistrationFailed)
		}
		logger.Log.Warn("registration payload rejected locally", "error", err)
		return a.finish(FormRegister, Result{Outcome: metrics.OutcomeInvalid}), nil
	}

	res, err := a.backend.Register(ctx, payload)
	if err != nil {
		logger.Log.Error("registration request failed", "error", err, "email", utils.LogKey(payload.Email))
		r.SetMessage(MsgRegisterUnexpected)
		return a.finish(FormRegister, Result{Outcome: metrics.OutcomeUnavailable}), nil
	}

	if res.OK {
		logger.Log.Info("registration accepted", "status", res.Status, "email", utils.LogKey(payload.Email))
		r.Reset()
		return a.finish(FormRegister, Result{Outcome: metrics.OutcomeSuccess, Notification: MsgRegistered}), nil
	}

	logger.Log.Info("registration rejected", "status", res.Status, "field", res.Body.Field)
	if len(res.Body.Errors) > 0 {
		errs := make(map[string][]string, len(res.Body.Errors))
		for field, msgs := range res.Body.Errors {
			clean := make([]string, 0, len(msgs))
			for _, m := range msgs {
				clean = append(clean, a.sanitize(m))
			}
			errs[field] = clean
		}
		r.ApplyFieldErrors(errs)
		return a.finish(FormRegister, Result{Outcome: metrics.OutcomeRejected}), nil
	}

	if res.Body.Field != "" {
		r.ApplyFieldHint(res.Body.Field)
	}
	r.SetMessage(a.messageOr(res.Body.Message, MsgRegistrationFailed))
	return a.finish(FormRegister, Result{Outcome: metrics.OutcomeRejected}), nil
}

// Login submits l. On success the result carries the redirect target and the
// backend's session cookies.
func (a *Auth) Login(ctx context.Context, key string, l *form.Login) (Result, error) {
	release, err := a.begin(FormLogin, key)
	if err != nil {
		return Result{Outcome: metrics.OutcomeBusy}, err
	}
	defer release()

	if !l.Precheck() {
		return a.finish(FormLogin, Result{Outcome: metrics.OutcomeInvalid}), nil
	}

	req := l.Request()
	res, err := a.backend.Login(ctx, req)
	if err != nil {
		logger.Log.Error("login request failed", "error", err, "email", utils.LogKey(req.Email))
		l.Unexpected()
		return a.finish(FormLogin, Result{Outcome: metrics.OutcomeUnavailable}), nil
	}

	if !res.OK() {
		logger.Log.Info("login rejected", "status", res.Status, "email", utils.LogKey(req.Email))
		l.Fail(a.messageOr(res.Body.Message, form.MsgLoginFailed))
		return a.finish(FormLogin, Result{Outcome: metrics.OutcomeRejected}), nil
	}

	logger.Log.Info("login accepted", "role", res.Body.Role, "email", utils.LogKey(req.Email))
	return a.finish(FormLogin, Result{
		Outcome:     metrics.OutcomeSuccess,
		RedirectURL: res.Body.RedirectURL,
		Cookies:     res.Cookies,
	}), nil
}

// InitiateReset runs step one of the forgot-password flow.
func (a *Auth) InitiateReset(ctx context.Context, key string, f *form.ForgotPassword, email, nationalID string) (Result, error) {
	release, err := a.begin(FormInitiateReset, key)
	if err != nil {
		return Result{Outcome: metrics.OutcomeBusy}, err
	}
	defer release()

	req, ok := f.BeginInitiate(email, nationalID)
	if !ok {
		return a.finish(FormInitiateReset, Result{Outcome: metrics.OutcomeInvalid}), nil
	}

	res, err := a.backend.InitiateReset(ctx, req)
	if err != nil {
		logger.Log.Error("reset initiation failed", "error", err, "email", utils.LogKey(req.Email))
		f.Unexpected()
		return a.finish(FormInitiateReset, Result{Outcome: metrics.OutcomeUnavailable}), nil
	}

	if !res.Success {
		f.InitiateFailed(a.sanitize(res.Message))
		return a.finish(FormInitiateReset, Result{Outcome: metrics.OutcomeRejected}), nil
	}
	f.InitiateSucceeded(a.sanitize(res.Message))
	return a.finish(FormInitiateReset, Result{Outcome: metrics.OutcomeSuccess}), nil
}

// CompleteReset runs step two. On success f.ReturnPending is set and the
// front end goes back to the login form after its configured delay.
func (a *Auth) CompleteReset(ctx context.Context, key string, f *form.ForgotPassword, code, newPassword, confirm string) (Result, error) {
	release, err := a.begin(FormCompleteReset, key)
	if err != nil {
		return Result{Outcome: metrics.OutcomeBusy}, err
	}
	defer release()

	req, ok := f.BeginComplete(code, newPassword, confirm)
	if !ok {
		return a.finish(FormCompleteReset, Result{Outcome: metrics.OutcomeInvalid}), nil
	}

	res, err := a.backend.CompleteReset(ctx, req)
	if err != nil {
		logger.Log.Error("reset completion failed", "error", err, "email", utils.LogKey(req.Email))
		f.Unexpected()
		return a.finish(FormCompleteReset, Result{Outcome: metrics.OutcomeUnavailable}), nil
	}

	if !res.Success {
		f.CompleteFailed(a.sanitize(res.Message))
		return a.finish(FormCompleteReset, Result{Outcome: metrics.OutcomeRejected}), nil
	}
	f.CompleteSucceeded(a.sanitize(res.Message))
	return a.finish(FormCompleteReset, Result{Outcome: metrics.OutcomeSuccess}), nil
}

func (a *Auth) messageOr(msg, fallback string) string {
	if msg = a.sanitize(msg); msg != "" {
		return msg
	}
	return fallback
}
