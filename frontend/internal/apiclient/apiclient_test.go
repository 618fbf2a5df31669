package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbs-portal/portal/shared/api"
)

// backend answers every request with status and body, recording the last one.
type backend struct {
	status  int
	body    string
	cookie  *http.Cookie
	delay   time.Duration
	path    string
	payload map[string]any
}

func (b *backend) start(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.path = r.URL.Path
		b.payload = nil
		_ = json.NewDecoder(r.Body).Decode(&b.payload)
		if b.delay > 0 {
			select {
			case <-time.After(b.delay):
			case <-r.Context().Done():
				return
			}
		}
		if b.cookie != nil {
			http.SetCookie(w, b.cookie)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(b.status)
		_, _ = w.Write([]byte(b.body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func registerRequest() api.RegisterRequest {
	return api.RegisterRequest{
		FirstName: "Jean", LastName: "Paul", NIC: "12345678",
		Email: "jean@gmail.com", Password: "Abcdef1!", ConfirmPassword: "Abcdef1!",
	}
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantOK  bool
		want    api.RegisterResponse
		wantErr error
	}{
		{name: "created with message", status: http.StatusCreated, body: `{"message":"ok"}`, wantOK: true, want: api.RegisterResponse{Message: "ok"}},
		{name: "empty success body", status: http.StatusOK, body: ``, wantOK: true},
		{name: "empty object", status: http.StatusOK, body: `{}`, wantOK: true},
		{name: "field hint", status: http.StatusBadRequest, body: `{"field":"both","message":"taken"}`, want: api.RegisterResponse{Field: "both", Message: "taken"}},
		{
			name: "field errors", status: http.StatusUnprocessableEntity,
			body: `{"errors":{"email":["bad","worse"]}}`,
			want: api.RegisterResponse{Errors: map[string][]string{"email": {"bad", "worse"}}},
		},
		{name: "html error page", status: http.StatusBadGateway, body: `<html>oops</html>`, wantErr: ErrMalformedResponse},
		{name: "empty failure body", status: http.StatusInternalServerError, body: ``, wantErr: ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &backend{status: tt.status, body: tt.body}
			c := New(b.start(t).URL, time.Second)

			res, err := c.Register(context.Background(), registerRequest())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, res.OK)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.want, res.Body)
			assert.Equal(t, "/register", b.path)
			assert.Equal(t, "12345678", b.payload["nic"])
			assert.Equal(t, "Abcdef1!", b.payload["confirmPassword"])
		})
	}
}

func TestLogin(t *testing.T) {
	t.Run("success forwards cookies", func(t *testing.T) {
		b := &backend{
			status: http.StatusOK,
			body:   `{"success":true,"role":"student","redirect_url":"/student"}`,
			cookie: &http.Cookie{Name: "session", Value: "s1"},
		}
		c := New(b.start(t).URL, time.Second)

		res, err := c.Login(context.Background(), api.LoginRequest{Email: "a@gmail.com", Password: "p"})
		require.NoError(t, err)
		assert.True(t, res.OK())
		assert.Equal(t, "/student", res.Body.RedirectURL)
		require.Len(t, res.Cookies, 1)
		assert.Equal(t, "s1", res.Cookies[0].Value)
		assert.Equal(t, "/login", b.path)
		assert.Equal(t, "a@gmail.com", b.payload["email"])
	})

	t.Run("forbidden carries message", func(t *testing.T) {
		b := &backend{status: http.StatusForbidden, body: `{"success":false,"message":"Please confirm your email"}`}
		c := New(b.start(t).URL, time.Second)

		res, err := c.Login(context.Background(), api.LoginRequest{Email: "a@gmail.com", Password: "p"})
		require.NoError(t, err)
		assert.False(t, res.OK())
		assert.Equal(t, http.StatusForbidden, res.Status)
		assert.Equal(t, "Please confirm your email", res.Body.Message)
	})

	t.Run("error status never succeeds", func(t *testing.T) {
		b := &backend{status: http.StatusUnauthorized, body: `{"success":true}`}
		c := New(b.start(t).URL, time.Second)

		res, err := c.Login(context.Background(), api.LoginRequest{Email: "a@gmail.com", Password: "p"})
		require.NoError(t, err)
		assert.False(t, res.OK())
	})

	t.Run("malformed", func(t *testing.T) {
		b := &backend{status: http.StatusOK, body: `not json`}
		c := New(b.start(t).URL, time.Second)

		_, err := c.Login(context.Background(), api.LoginRequest{Email: "a@gmail.com", Password: "p"})
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})
}

func TestPasswordReset(t *testing.T) {
	b := &backend{status: http.StatusOK, body: `{"success":true,"message":"Code sent"}`}
	c := New(b.start(t).URL, time.Second)

	res, err := c.InitiateReset(context.Background(), api.InitiateResetRequest{Email: "a@gmail.com", NationalID: "12345678"})
	require.NoError(t, err)
	assert.Equal(t, api.ResetResponse{Success: true, Message: "Code sent"}, res)
	assert.Equal(t, "/password-reset/initiate", b.path)
	assert.Equal(t, "12345678", b.payload["national_id"])

	b.status, b.body = http.StatusBadRequest, `{"success":false,"message":"Invalid code"}`
	res, err = c.CompleteReset(context.Background(), api.CompleteResetRequest{Email: "a@gmail.com", Code: "1", NewPassword: "x"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Invalid code", res.Message)
	assert.Equal(t, "/password-reset/complete", b.path)
	assert.Equal(t, "x", b.payload["new_password"])
}

func TestTransportFailures(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := New(url, time.Second).Login(context.Background(), api.LoginRequest{Email: "a@b", Password: "p"})
		assert.ErrorIs(t, err, ErrBackendUnavailable)
	})

	t.Run("client timeout", func(t *testing.T) {
		b := &backend{status: http.StatusOK, body: `{}`, delay: time.Second}
		c := New(b.start(t).URL, 50*time.Millisecond)

		_, err := c.InitiateReset(context.Background(), api.InitiateResetRequest{Email: "a@b", NationalID: "1"})
		assert.ErrorIs(t, err, ErrBackendUnavailable)
	})

	t.Run("cancelled context", func(t *testing.T) {
		b := &backend{status: http.StatusOK, body: `{}`, delay: time.Second}
		c := New(b.start(t).URL, 0)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.Register(ctx, registerRequest())
		assert.ErrorIs(t, err, ErrBackendUnavailable)
	})
}

func TestObserver(t *testing.T) {
	b := &backend{status: http.StatusOK, body: `{"success":true}`}
	var seen []string
	c := New(b.start(t).URL, time.Second, WithObserver(func(endpoint string, d time.Duration) {
		seen = append(seen, endpoint)
	}))

	_, err := c.Login(context.Background(), api.LoginRequest{Email: "a@b", Password: "p"})
	require.NoError(t, err)
	_, err = c.CompleteReset(context.Background(), api.CompleteResetRequest{Email: "a@b", Code: "1", NewPassword: "p"})
	require.NoError(t, err)

	assert.Equal(t, []string{EndpointLogin, EndpointCompleteReset}, seen)
}

func TestNewTrimsBaseURL(t *testing.T) {
	assert.Equal(t, "http://api", New("http://api/", 0).BaseURL)
}
