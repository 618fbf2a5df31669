package tui

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tbs-portal/portal/frontend/internal/service"
	"github.com/tbs-portal/portal/shared/form"
	"github.com/tbs-portal/portal/shared/middleware/metrics"
)

const msgLoggedIn = "Login successful."

type (
	loginDoneMsg struct {
		login form.Login
		res   service.Result
		err   error
	}
	initiateDoneMsg struct {
		forgot form.ForgotPassword
		res    service.Result
		err    error
	}
	completeDoneMsg struct {
		forgot form.ForgotPassword
		res    service.Result
		err    error
	}
)

// openLoginStep lays out the inputs of the current forgot-password step.
func (m *Model) openLoginStep() tea.Cmd {
	switch m.forgot.Step {
	case form.StepRequestCode:
		email := newInput("Email", false)
		email.SetValue(m.forgot.Email)
		nid := newInput("National ID", false)
		nid.SetValue(m.forgot.NationalID)
		return m.setInputs([]textinput.Model{email, nid})
	case form.StepResetPassword:
		return m.setInputs([]textinput.Model{
			newInput("Reset code", false),
			newInput("New password", true),
			newInput("Confirm new password", true),
		})
	default:
		email := newInput("Email", false)
		email.SetValue(m.login.Email)
		return m.setInputs([]textinput.Model{email, newInput("Password", true)})
	}
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		if m.forgot.Step == form.StepLogin {
			m.screen = screenMenu
			m.inputs = nil
			return m, nil
		}
		m.forgot.BackToLogin()
		cmd := m.openLoginStep()
		return m, cmd
	case tea.KeyCtrlF:
		if m.forgot.Step != form.StepLogin {
			return m, nil
		}
		m.forgot.OpenForgot()
		cmd := m.openLoginStep()
		return m, cmd
	case tea.KeyTab, tea.KeyDown:
		cmd := m.step(1)
		return m, cmd
	case tea.KeyShiftTab, tea.KeyUp:
		cmd := m.step(-1)
		return m, cmd
	case tea.KeyEnter:
		if m.focus < len(m.inputs)-1 {
			cmd := m.step(1)
			return m, cmd
		}
		return m.submitLoginStep()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if m.forgot.Step == form.StepLogin {
		name := []form.FieldName{form.Email, form.Password}[m.focus]
		m.login.Input(name, m.inputs[m.focus].Value())
	}
	return m, cmd
}

func (m Model) submitLoginStep() (tea.Model, tea.Cmd) {
	ctx, auth := m.ctx, m.auth
	values := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		values[i] = in.Value()
	}

	switch m.forgot.Step {
	case form.StepRequestCode:
		if m.forgot.SendDisabled {
			return m, nil
		}
		m.submitting = true
		f := m.forgot
		return m, func() tea.Msg {
			res, err := auth.InitiateReset(ctx, busyKey, &f, values[0], values[1])
			return initiateDoneMsg{forgot: f, res: res, err: err}
		}

	case form.StepResetPassword:
		if m.forgot.ResetDisabled {
			return m, nil
		}
		m.submitting = true
		f := m.forgot
		return m, func() tea.Msg {
			res, err := auth.CompleteReset(ctx, busyKey, &f, values[0], values[1], values[2])
			return completeDoneMsg{forgot: f, res: res, err: err}
		}

	default:
		m.submitting = true
		l := m.login
		return m, func() tea.Msg {
			res, err := auth.Login(ctx, busyKey, &l)
			return loginDoneMsg{login: l, res: res, err: err}
		}
	}
}

func (m Model) loginDone(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	m.submitting = false
	m.login = msg.login

	switch {
	case errors.Is(msg.err, service.ErrBusy):
		m.login.Message = msgBusy
	case msg.err != nil:
		m.login.Unexpected()
	}

	if msg.res.Outcome != metrics.OutcomeSuccess {
		return m, nil
	}

	text := msgLoggedIn
	if msg.res.RedirectURL != "" {
		text += " Continue at " + msg.res.RedirectURL
	}
	m.login = form.Login{}
	m.screen = screenMenu
	m.inputs = nil
	cmd := m.notify(text, noteSuccess)
	return m, cmd
}

func (m Model) initiateDone(msg initiateDoneMsg) (tea.Model, tea.Cmd) {
	m.submitting = false
	m.forgot = msg.forgot

	switch {
	case errors.Is(msg.err, service.ErrBusy):
		m.forgot.Message, m.forgot.Kind = msgBusy, form.MessageInfo
	case msg.err != nil:
		m.forgot.Unexpected()
	}

	if m.forgot.Step == form.StepResetPassword {
		cmd := m.openLoginStep()
		return m, cmd
	}
	return m, nil
}

func (m Model) completeDone(msg completeDoneMsg) (tea.Model, tea.Cmd) {
	m.submitting = false
	m.forgot = msg.forgot

	switch {
	case errors.Is(msg.err, service.ErrBusy):
		m.forgot.Message, m.forgot.Kind = msgBusy, form.MessageInfo
	case msg.err != nil:
		m.forgot.Unexpected()
	}

	if !m.forgot.ReturnPending {
		return m, nil
	}
	return m, tea.Tick(m.opts.ResetReturnDelay, func(time.Time) tea.Msg { return returnToLoginMsg{} })
}
