package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbs-portal/portal/frontend/internal/apiclient"
	"github.com/tbs-portal/portal/shared/api"
	"github.com/tbs-portal/portal/shared/form"
	"github.com/tbs-portal/portal/shared/middleware/metrics"
	"github.com/tbs-portal/portal/shared/validation"
)

// --- Mocks ---

type MockBackend struct {
	RegisterFunc      func(ctx context.Context, req api.RegisterRequest) (apiclient.RegisterResult, error)
	LoginFunc         func(ctx context.Context, req api.LoginRequest) (apiclient.LoginResult, error)
	InitiateResetFunc func(ctx context.Context, req api.InitiateResetRequest) (api.ResetResponse, error)
	CompleteResetFunc func(ctx context.Context, req api.CompleteResetRequest) (api.ResetResponse, error)

	mu    sync.Mutex
	calls int
}

func (m *MockBackend) called() {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
}

func (m *MockBackend) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockBackend) Register(ctx context.Context, req api.RegisterRequest) (apiclient.RegisterResult, error) {
	m.called()
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req)
	}
	return apiclient.RegisterResult{OK: true, Status: http.StatusCreated}, nil
}

func (m *MockBackend) Login(ctx context.Context, req api.LoginRequest) (apiclient.LoginResult, error) {
	m.called()
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req)
	}
	return apiclient.LoginResult{Status: http.StatusOK, Body: api.LoginResponse{Success: true, RedirectURL: "/dashboard"}}, nil
}

func (m *MockBackend) InitiateReset(ctx context.Context, req api.InitiateResetRequest) (api.ResetResponse, error) {
	m.called()
	if m.InitiateResetFunc != nil {
		return m.InitiateResetFunc(ctx, req)
	}
	return api.ResetResponse{Success: true, Message: "Code sent"}, nil
}

func (m *MockBackend) CompleteReset(ctx context.Context, req api.CompleteResetRequest) (api.ResetResponse, error) {
	m.called()
	if m.CompleteResetFunc != nil {
		return m.CompleteResetFunc(ctx, req)
	}
	return api.ResetResponse{Success: true, Message: "Password updated"}, nil
}

type MockRecorder struct {
	mu   sync.Mutex
	seen []string
}

func (m *MockRecorder) Submission(formName, outcome string) {
	m.mu.Lock()
	m.seen = append(m.seen, formName+":"+outcome)
	m.mu.Unlock()
}

// --- Helpers ---

var errDown = errors.New("connection refused")

func newAuth(b *MockBackend) (*Auth, *MockRecorder) {
	rec := &MockRecorder{}
	rules := validation.DefaultRules()
	return NewAuth(b, validation.NewValidator(rules), strings.TrimSpace, rec), rec
}

func filledRegistration() *form.Registration {
	r := form.NewRegistration(validation.DefaultRules())
	r.Fill(map[form.FieldName]string{
		form.FirstName:       "jean",
		form.LastName:        "paul",
		form.NationalID:      "12345678",
		form.Email:           "jean@tbs.u-tunis.tn",
		form.Password:        "Abcdef1!",
		form.ConfirmPassword: "Abcdef1!",
	})
	return r
}

// --- Register ---

func TestRegister(t *testing.T) {
	t.Run("success resets the form", func(t *testing.T) {
		var sent api.RegisterRequest
		b := &MockBackend{RegisterFunc: func(ctx context.Context, req api.RegisterRequest) (apiclient.RegisterResult, error) {
			sent = req
			return apiclient.RegisterResult{OK: true, Status: http.StatusCreated}, nil
		}}
		a, rec := newAuth(b)
		r := filledRegistration()

		res, err := a.Register(context.Background(), "k", r)
		require.NoError(t, err)
		assert.Equal(t, metrics.OutcomeSuccess, res.Outcome)
		assert.Equal(t, MsgRegistered, res.Notification)
		assert.Equal(t, "Jean", sent.FirstName)
		assert.Empty(t, r.Value(form.Email))
		assert.False(t, r.CanSubmit())
		assert.Equal(t, []string{"register:success"}, rec.seen)
	})

	t.Run("incomplete form is never sent", func(t *testing.T) {
		b := &MockBackend{}
		a, _ := newAuth(b)
		r := form.NewRegistration(validation.DefaultRules())
		r.Input(form.Email, "jean@yahoo.com")

		res, err := a.Register(context.Background(), "k", r)
		require.NoError(t, err)
		assert.Equal(t, metrics.OutcomeInvalid, res.Outcome)
		assert.Equal(t, 0, b.Calls())
		assert.NotEmpty(t, r.View().Field(form.Email).Message, "every field is touched")
	})

	t.Run("field errors annotate inputs", func(t *testing.T) {
		b := &MockBackend{RegisterFunc: func(ctx context.Context, req api.RegisterRequest) (apiclient.RegisterResult, error) {
			return apiclient.RegisterResult{Status: http.StatusBadRequest, Body: api.RegisterResponse{
				Errors: map[string][]string{"email": {" Email already registered "}},
			}}, nil
		}}
		a, _ := newAuth(b)
		r := filledRegistration()

		res, err := a.Register(context.Background(), "k", r)
		require.NoError(t, err)
		assert.Equal(t, metrics.OutcomeRejected, res.Outcome)
		view := r.View()
		assert.Equal(t, "Email already registered", view.Field(form.Email).Message)
		assert.Empty(t, view.Message)
		assert.Equal(t, "Jean", r.Value(form.FirstName), "values are kept")
	})

	t.Run("field hint and message", func(t *testing.T) {
		b := &MockBackend{RegisterFunc: func(ctx context.Context, req api.RegisterRequest) (apiclient.RegisterResult, error) {
			return apiclient.RegisterResult{Status: http.StatusBadRequest, Body: api.RegisterResponse{
				Field: "both", Message: "Email and NIC already registered",
			}}, nil
		}}
		a, _ := newAuth(b)
		r := filledRegistration()

		_, err := a.Register(context.Background(), "k", r)
		require.NoError(t, err)
		view := r.View()
		assert.Equal(t, "Email and NIC already registered", view.Message)
		assert.True(t, view.Field(form.Email).Invalid)
		assert.True(t, view.Field(form.NationalID).Invalid)
	})

	t.Run("generic failure without message", func(t *testing.T) {
		b := &MockBackend{RegisterFunc: func(ctx context.Context, req api.RegisterRequest) (apiclient.RegisterResult, error) {
			return apiclient.RegisterResult{Status: http.StatusInternalServerError}, nil
		}}
		a, _ := newAuth(b)
		r := filledRegistration()

		_, err := a.Register(context.Background(), "k", r)
		require.NoError(t, err)
		assert.Equal(t, MsgRegistrationFailed, r.View().Message)
	})

	t.Run("transport failure", func(t *testing.T) {
		b := &MockBackend{RegisterFunc: func(ctx context.Context, req api.RegisterRequest) (apiclient.RegisterResult, error) {
			return apiclient.RegisterResult{}, errDown
		}}
		a, rec := newAuth(b)
		r := filledRegistration()

		res, err := a.Register(context.Background(), "k", r)
		require.NoError(t, err)
		assert.Equal(t, metrics.OutcomeUnavailable, res.Outcome)
		assert.Equal(t, MsgRegisterUnexpected, r.View().Message)
		assert.True(t, r.CanSubmit(), "the form stays usable")
		assert.Equal(t, []string{"register:unavailable"}, rec.seen)
	})

	t.Run("resubmission clears old annotations", func(t *testing.T) {
		fail := true
		b := &MockBackend{RegisterFunc: func(ctx context.Context, req api.RegisterRequest) (apiclient.RegisterResult, error) {
			if fail {
				return apiclient.RegisterResult{Status: http.StatusBadRequest, Body: api.RegisterResponse{Message: "nope"}}, nil
			}
			return apiclient.RegisterResult{OK: true}, nil
		}}
		a, _ := newAuth(b)
		r := filledRegistration()

		_, _ = a.Register(context.Background(), "k", r)
		assert.Equal(t, "nope", r.View().Message)

		fail = false
		res, err := a.Register(context.Background(), "k", r)
		require.NoError(t, err)
		assert.Equal(t, metrics.OutcomeSuccess, res.Outcome)
		assert.Empty(t, r.View().Message)
	})
}

func TestRegister_BusyGuard(t *testing.T) {
	entered := make(chan struct{})
	unblock := make(chan struct{})
	b := &MockBackend{RegisterFunc: func(ctx context.Context, req api.RegisterRequest) (apiclient.RegisterResult, error) {
		close(entered)
		<-unblock
		return apiclient.RegisterResult{OK: true}, nil
	}}
	a, rec := newAuth(b)

	done := make(chan error)
	go func() {
		_, err := a.Register(context.Background(), "same", filledRegistration())
		done <- err
	}()
	<-entered

	res, err := a.Register(context.Background(), "same", filledRegistration())
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, metrics.OutcomeBusy, res.Outcome)

	close(unblock)
	require.NoError(t, <-done)
	assert.Equal(t, 1, b.Calls())
	assert.Contains(t, rec.seen, "register:busy")

	// The slot is free again once the first submission returned.
	b.RegisterFunc = nil
	_, err = a.Register(context.Background(), "same", filledRegistration())
	assert.NoError(t, err)
}

func TestBusyGuard_KeysAreIndependent(t *testing.T) {
	g := newBusyGuard()
	release, ok := g.acquire("a")
	require.True(t, ok)

	_, ok = g.acquire("a")
	assert.False(t, ok)
	releaseB, ok := g.acquire("b")
	assert.True(t, ok)
	releaseB()

	release()
	_, ok = g.acquire("a")
	assert.True(t, ok)
}

// --- Login ---

func TestLogin(t *testing.T) {
	t.Run("precheck failure sends nothing", func(t *testing.T) {
		b := &MockBackend{}
		a, _ := newAuth(b)
		l := &form.Login{Email: "jean", Password: "x"}

		res, err := a.Login(context.Background(), "k", l)
		require.NoError(t, err)
		assert.Equal(t, metrics.OutcomeInvalid, res.Outcome)
		assert.Equal(t, form.MsgEmailFormat, l.Message)
		assert.Equal(t, 0, b.Calls())
	})

	t.Run("success", func(t *testing.T) {
		cookie := &http.Cookie{Name: "session", Value: "abc"}
		b := &MockBackend{LoginFunc: func(ctx context.Context, req api.LoginRequest) (apiclient.LoginResult, error) {
			assert.Equal(t, "a@gmail.com", req.Email)
			return apiclient.LoginResult{
				Status:  http.StatusOK,
				Body:    api.LoginResponse{Success: true, Role: "student", RedirectURL: "/student/dashboard"},
				Cookies: []*http.Cookie{cookie},
			}, nil
		}}
		a, _ := newAuth(b)
		l := &form.Login{Email: " a@gmail.com", Password: "p"}

		res, err := a.Login(context.Background(), "k", l)
		require.NoError(t, err)
		assert.Equal(t, metrics.OutcomeSuccess, res.Outcome)
		assert.Equal(t, "/student/dashboard", res.RedirectURL)
		assert.Equal(t, []*http.Cookie{cookie}, res.Cookies)
		assert.Empty(t, l.Message)
	})

	t.Run("unconfirmed account flags email", func(t *testing.T) {
		b := &MockBackend{LoginFunc: func(ctx context.Context, req api.LoginRequest) (apiclient.LoginResult, error) {
			return apiclient.LoginResult{Status: http.StatusForbidden, Body: api.LoginResponse{Message: "Please confirm your email first"}}, nil
		}}
		a, _ := newAuth(b)
		l := &form.Login{Email: "a@gmail.com", Password: "p"}

		res, err := a.Login(context.Background(), "k", l)
		require.NoError(t, err)
		assert.Equal(t, metrics.OutcomeRejected, res.Outcome)
		assert.Equal(t, "Please confirm your email first", l.Message)
		assert.True(t, l.EmailFlagged)
	})

	t.Run("rejected without message", func(t *testing.T) {
		b := &MockBackend{LoginFunc: func(ctx context.Context, req api.LoginRequest) (apiclient.LoginResult, error) {
			return apiclient.LoginResult{Status: http.StatusUnauthorized}, nil
		}}
		a, _ := newAuth(b)
		l := &form.Login{Email: "a@gmail.com", Password: "p"}

		_, err := a.Login(context.Background(), "k", l)
		require.NoError(t, err)
		assert.Equal(t, form.MsgLoginFailed, l.Message)
		assert.False(t, l.EmailFlagged)
	})

	t.Run("transport failure", func(t *testing.T) {
		b := &MockBackend{LoginFunc: func(ctx context.Context, req api.LoginRequest) (apiclient.LoginResult, error) {
			return apiclient.LoginResult{}, errDown
		}}
		a, _ := newAuth(b)
		l := &form.Login{Email: "a@gmail.com", Password: "p"}

		res, err := a.Login(context.Background(), "k", l)
		require.NoError(t, err)
		assert.Equal(t, metrics.OutcomeUnavailable, res.Outcome)
		assert.Equal(t, form.MsgLoginFailed, l.Message)
	})
}

// --- Password reset ---

func TestInitiateReset(t *testing.T) {
	t.Run("success advances to step two", func(t *testing.T) {
		a, _ := newAuth(&MockBackend{})
		f := &form.ForgotPassword{}
		f.OpenForgot()

		res, err := a.InitiateReset(context.Background(), "k", f, "a@gmail.com", "12345678")
		require.NoError(t, err)
		assert.Equal(t, metrics.OutcomeSuccess, res.Outcome)
		assert.Equal(t, form.StepResetPassword, f.Step)
		assert.Equal(t, "Code sent", f.Message)
		assert.True(t, f.SendDisabled)
	})

	t.Run("failure stays on step one with send enabled", func(t *testing.T) {
		b := &MockBackend{InitiateResetFunc: func(ctx context.Context, req api.InitiateResetRequest) (api.ResetResponse, error) {
			return api.ResetResponse{Success: false, Message: "No account matches"}, nil
		}}
		a, _ := newAuth(b)
		f := &form.ForgotPassword{}
		f.OpenForgot()

		res, err := a.InitiateReset(context.Background(), "k", f, "a@gmail.com", "12345678")
		require.NoError(t, err)
		assert.Equal(t, metrics.OutcomeRejected, res.Outcome)
		assert.Equal(t, form.StepRequestCode, f.Step)
		assert.False(t, f.SendDisabled)
		assert.Equal(t, "No account matches", f.Message)
	})

	t.Run("missing national id", func(t *testing.T) {
		b := &MockBackend{}
		a, _ := newAuth(b)
		f := &form.ForgotPassword{}
		f.OpenForgot()

		_, err := a.InitiateReset(context.Background(), "k", f, "a@gmail.com", "")
		require.NoError(t, err)
		assert.Equal(t, form.MsgFillAllFields, f.Message)
		assert.Equal(t, 0, b.Calls())
	})

	t.Run("transport failure", func(t *testing.T) {
		b := &MockBackend{InitiateResetFunc: func(ctx context.Context, req api.InitiateResetRequest) (api.ResetResponse, error) {
			return api.ResetResponse{}, errDown
		}}
		a, _ := newAuth(b)
		f := &form.ForgotPassword{}
		f.OpenForgot()

		_, err := a.InitiateReset(context.Background(), "k", f, "a@gmail.com", "12345678")
		require.NoError(t, err)
		assert.Equal(t, form.MsgUnexpectedError, f.Message)
		assert.False(t, f.SendDisabled)
		assert.Equal(t, form.StepRequestCode, f.Step)
	})
}

func TestCompleteReset(t *testing.T) {
	stepTwo := func() *form.ForgotPassword {
		return &form.ForgotPassword{Step: form.StepResetPassword, Email: "a@gmail.com", NationalID: "12345678", SendDisabled: true}
	}

	t.Run("success schedules the return to login", func(t *testing.T) {
		var sent api.CompleteResetRequest
		b := &MockBackend{CompleteResetFunc: func(ctx context.Context, req api.CompleteResetRequest) (api.ResetResponse, error) {
			sent = req
			return api.ResetResponse{Success: true, Message: "Password updated"}, nil
		}}
		a, _ := newAuth(b)
		f := stepTwo()

		res, err := a.CompleteReset(context.Background(), "k", f, "123456", "Newpass1!", "Newpass1!")
		require.NoError(t, err)
		assert.Equal(t, metrics.OutcomeSuccess, res.Outcome)
		assert.True(t, f.ReturnPending)
		assert.Equal(t, api.CompleteResetRequest{Email: "a@gmail.com", Code: "123456", NewPassword: "Newpass1!"}, sent)
	})

	t.Run("mismatch sends nothing", func(t *testing.T) {
		b := &MockBackend{}
		a, _ := newAuth(b)
		f := stepTwo()

		_, err := a.CompleteReset(context.Background(), "k", f, "123456", "Newpass1!", "Newpass2!")
		require.NoError(t, err)
		assert.Equal(t, "Passwords do not match", f.Message)
		assert.Equal(t, 0, b.Calls())
	})

	t.Run("failure re-enables reset", func(t *testing.T) {
		b := &MockBackend{CompleteResetFunc: func(ctx context.Context, req api.CompleteResetRequest) (api.ResetResponse, error) {
			return api.ResetResponse{Success: false}, nil
		}}
		a, _ := newAuth(b)
		f := stepTwo()

		_, err := a.CompleteReset(context.Background(), "k", f, "123456", "Newpass1!", "Newpass1!")
		require.NoError(t, err)
		assert.Equal(t, form.MsgResetFailed, f.Message)
		assert.False(t, f.ResetDisabled)
		assert.False(t, f.ReturnPending)
	})
}
