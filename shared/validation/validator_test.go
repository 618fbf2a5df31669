package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbs-portal/portal/shared/api"
)

func validRegister() api.RegisterRequest {
	return api.RegisterRequest{
		FirstName:       "Jean",
		LastName:        "Paul",
		NIC:             "12345678",
		Email:           "jean@tbs.u-tunis.tn",
		Password:        "Abcdef1!",
		ConfirmPassword: "Abcdef1!",
	}
}

func TestValidator_Register(t *testing.T) {
	v := NewValidator(DefaultRules())

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, v.Struct(validRegister()))
	})

	tests := []struct {
		name   string
		mutate func(*api.RegisterRequest)
		field  string
		msg    string
	}{
		{"bad first name", func(r *api.RegisterRequest) { r.FirstName = "J3an" }, "firstName", MsgName},
		{"missing last name", func(r *api.RegisterRequest) { r.LastName = "" }, "lastName", MsgRequired},
		{"short nic", func(r *api.RegisterRequest) { r.NIC = "1234" }, "nic", MsgNationalID},
		{"foreign email", func(r *api.RegisterRequest) { r.Email = "a@yahoo.com" }, "email", "Must end with @tbs.u-tunis.tn or @gmail.com"},
		{"weak password", func(r *api.RegisterRequest) { r.Password, r.ConfirmPassword = "abcdefgh", "abcdefgh" }, "password", MsgPassword},
		{"mismatch", func(r *api.RegisterRequest) { r.ConfirmPassword = "Abcdef2!" }, "confirmPassword", MsgMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegister()
			tt.mutate(&req)

			err := v.Struct(req)
			require.Error(t, err)

			var fe FieldErrors
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.msg, fe[tt.field])
			assert.Len(t, fe, 1)
		})
	}
}

func TestValidator_CustomDomains(t *testing.T) {
	v := NewValidator(Rules{EmailDomains: []string{"@school.tn"}})
	req := validRegister()
	req.Email = "jean@school.tn"
	assert.NoError(t, v.Struct(req))
}

func TestFieldErrors_ErrorIsSorted(t *testing.T) {
	fe := FieldErrors{"nic": "b", "email": "a"}
	assert.Equal(t, "invalid fields: email: a; nic: b", fe.Error())
}
