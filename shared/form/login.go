package form

import (
	"strings"

	"github.com/tbs-portal/portal/shared/api"
)

const (
	MsgNoCredentials   = "Please provide your credentials"
	MsgNoEmail         = "Please enter your email"
	MsgNoPassword      = "Please enter your password"
	MsgEmailFormat     = "Please enter a valid email address"
	MsgLoginFailed     = "Login failed. Try again."
	unconfirmedAccount = "confirm your email"
)

// Login is the state of the login form.
type Login struct {
	Email    string
	Password string

	Message         string
	EmailFlagged    bool
	PasswordFlagged bool
}

// Input records a keystroke. Any edit clears the shared message and the
// edited field's flag.
func (l *Login) Input(name FieldName, value string) {
	switch name {
	case Email:
		l.Email = value
		l.EmailFlagged = false
	case Password:
		l.Password = value
		l.PasswordFlagged = false
	default:
		return
	}
	l.Message = ""
}

// Precheck runs the checks that must pass before anything is sent, in
// priority order. It returns false and fills Message when one fails.
func (l *Login) Precheck() bool {
	l.Message = ""
	l.EmailFlagged = false
	l.PasswordFlagged = false

	email := strings.TrimSpace(l.Email)
	switch {
	case email == "" && l.Password == "":
		l.Message = MsgNoCredentials
		l.EmailFlagged = true
		l.PasswordFlagged = true
	case email == "":
		l.Message = MsgNoEmail
		l.EmailFlagged = true
	case l.Password == "":
		l.Message = MsgNoPassword
		l.PasswordFlagged = true
	case !strings.Contains(email, "@"):
		l.Message = MsgEmailFormat
		l.EmailFlagged = true
	default:
		return true
	}
	return false
}

func (l *Login) Request() api.LoginRequest {
	return api.LoginRequest{Email: strings.TrimSpace(l.Email), Password: l.Password}
}

// Fail shows a server-reported failure. An unconfirmed account also flags
// the email input.
func (l *Login) Fail(message string) {
	l.Message = message
	if strings.Contains(message, unconfirmedAccount) {
		l.EmailFlagged = true
	}
}

// Unexpected reports a transport failure.
func (l *Login) Unexpected() {
	l.Message = MsgLoginFailed
}
