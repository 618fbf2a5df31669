package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStep_String(t *testing.T) {
	assert.Equal(t, "LOGIN", StepLogin.String())
	assert.Equal(t, "FORGOT_STEP1", StepRequestCode.String())
	assert.Equal(t, "FORGOT_STEP2", StepResetPassword.String())
}

func TestForgotPassword_HappyPath(t *testing.T) {
	var f ForgotPassword
	f.OpenForgot()
	assert.Equal(t, StepRequestCode, f.Step)

	req, ok := f.BeginInitiate(" a@gmail.com ", "12345678")
	require.True(t, ok)
	assert.Equal(t, "a@gmail.com", req.Email)
	assert.Equal(t, "12345678", req.NationalID)
	assert.True(t, f.SendDisabled)
	assert.Equal(t, MsgSendingCode, f.Message)
	assert.Equal(t, MessageInfo, f.Kind)

	assert.True(t, f.InitiateSucceeded("Code sent"))
	assert.Equal(t, StepResetPassword, f.Step)
	assert.Equal(t, MessageSuccess, f.Kind)

	done, ok := f.BeginComplete("123456", "Newpass1!", "Newpass1!")
	require.True(t, ok)
	assert.Equal(t, "a@gmail.com", done.Email)
	assert.Equal(t, "123456", done.Code)
	assert.Equal(t, MsgResetting, f.Message)

	f.CompleteSucceeded("Password reset")
	assert.True(t, f.ReturnPending)
	assert.True(t, f.ResetDisabled)

	f.BackToLogin()
	assert.Equal(t, ForgotPassword{}, f)
}

func TestForgotPassword_InitiateAdvancesOnce(t *testing.T) {
	var f ForgotPassword
	f.OpenForgot()
	_, ok := f.BeginInitiate("a@gmail.com", "12345678")
	require.True(t, ok)

	assert.True(t, f.InitiateSucceeded("sent"))
	assert.False(t, f.InitiateSucceeded("sent again"))
	assert.Equal(t, StepResetPassword, f.Step)
	assert.Equal(t, "sent", f.Message)

	_, ok = f.BeginInitiate("a@gmail.com", "12345678")
	assert.False(t, ok, "step one is over")
}

func TestForgotPassword_InitiateWithoutSendIsIgnored(t *testing.T) {
	var f ForgotPassword
	f.OpenForgot()
	assert.False(t, f.InitiateSucceeded("sent"))
	assert.Equal(t, StepRequestCode, f.Step)
}

func TestForgotPassword_InitiateFailureStaysOnStepOne(t *testing.T) {
	var f ForgotPassword
	f.OpenForgot()
	_, ok := f.BeginInitiate("a@gmail.com", "12345678")
	require.True(t, ok)

	_, ok = f.BeginInitiate("a@gmail.com", "12345678")
	assert.False(t, ok, "send is disabled while in flight")

	f.InitiateFailed("No such user")
	assert.Equal(t, StepRequestCode, f.Step)
	assert.False(t, f.SendDisabled)
	assert.Equal(t, "No such user", f.Message)
	assert.Equal(t, MessageError, f.Kind)

	f.BeginInitiate("a@gmail.com", "12345678")
	f.InitiateFailed("")
	assert.Equal(t, MsgSendCodeFailed, f.Message)
}

func TestForgotPassword_MissingFields(t *testing.T) {
	var f ForgotPassword
	f.OpenForgot()

	_, ok := f.BeginInitiate("a@gmail.com", "  ")
	assert.False(t, ok)
	assert.Equal(t, MsgFillAllFields, f.Message)
	assert.False(t, f.SendDisabled)

	f.BeginInitiate("a@gmail.com", "12345678")
	f.InitiateSucceeded("sent")

	_, ok = f.BeginComplete("", "Newpass1!", "Newpass1!")
	assert.False(t, ok)
	assert.Equal(t, MsgFillAllFields, f.Message)

	_, ok = f.BeginComplete("123456", "Newpass1!", "Newpass2!")
	assert.False(t, ok)
	assert.Equal(t, "Passwords do not match", f.Message)
	assert.False(t, f.ResetDisabled)
}

func TestForgotPassword_CompleteFailure(t *testing.T) {
	f := ForgotPassword{Step: StepResetPassword, Email: "a@gmail.com"}
	_, ok := f.BeginComplete("1", "p", "p")
	require.True(t, ok)

	f.CompleteFailed("Invalid code")
	assert.Equal(t, StepResetPassword, f.Step)
	assert.False(t, f.ResetDisabled)
	assert.Equal(t, "Invalid code", f.Message)

	f.BeginComplete("1", "p", "p")
	f.Unexpected()
	assert.False(t, f.ResetDisabled)
	assert.Equal(t, MsgUnexpectedError, f.Message)
}

func TestForgotPassword_OpenOnlyFromLogin(t *testing.T) {
	f := ForgotPassword{Step: StepResetPassword, Message: "x"}
	f.OpenForgot()
	assert.Equal(t, StepResetPassword, f.Step)
	assert.Empty(t, f.Message)
}
