package apiclient

import (
	"context"
	"net/http"

	"github.com/tbs-portal/portal/shared/api"
)

const (
	EndpointRegister = "register"
	EndpointLogin    = "login"
)

// RegisterResult is the outcome of a registration the backend answered.
type RegisterResult struct {
	OK     bool
	Status int
	Body   api.RegisterResponse
}

// Register posts the registration payload. A 2xx is success whatever the body
// (possibly empty); any other status carries a message, a field hint or a
// per-field error map.
func (c *APIClient) Register(ctx context.Context, req api.RegisterRequest) (RegisterResult, error) {
	resp, data, err := c.postJSON(ctx, EndpointRegister, "/register", req)
	if err != nil {
		return RegisterResult{}, err
	}

	res := RegisterResult{OK: isSuccess(resp.StatusCode), Status: resp.StatusCode}
	if err := decode(EndpointRegister, resp.StatusCode, data, &res.Body, res.OK); err != nil {
		return RegisterResult{}, err
	}
	return res, nil
}

// LoginResult is the outcome of a login the backend answered. Cookies are the
// session cookies the backend set; the web front end passes them on.
type LoginResult struct {
	Status  int
	Body    api.LoginResponse
	Cookies []*http.Cookie
}

func (r LoginResult) OK() bool {
	return r.Body.Success
}

// Login posts the credentials. 401 and 403 carry the same JSON shape as 200.
func (c *APIClient) Login(ctx context.Context, req api.LoginRequest) (LoginResult, error) {
	resp, data, err := c.postJSON(ctx, EndpointLogin, "/login", req)
	if err != nil {
		return LoginResult{}, err
	}

	res := LoginResult{Status: resp.StatusCode, Cookies: resp.Cookies()}
	if err := decode(EndpointLogin, resp.StatusCode, data, &res.Body, false); err != nil {
		return LoginResult{}, err
	}
	// A 2xx without success:true is still a failure; a non-2xx never succeeds.
	if !isSuccess(resp.StatusCode) {
		res.Body.Success = false
	}
	return res, nil
}
