// Package tui is the terminal front end of the portal. It drives the same
// form state and service as the web pages: keystrokes are input events,
// moving between fields is a blur followed by a focus.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tbs-portal/portal/frontend/internal/service"
	"github.com/tbs-portal/portal/shared/form"
	"github.com/tbs-portal/portal/shared/validation"
)

// busyKey is the busy-guard identity of the single terminal user.
const busyKey = "tui"

const msgBusy = "Your previous request is still being processed. Please wait."

type AuthService interface {
	Register(ctx context.Context, key string, r *form.Registration) (service.Result, error)
	Login(ctx context.Context, key string, l *form.Login) (service.Result, error)
	InitiateReset(ctx context.Context, key string, f *form.ForgotPassword, email, nationalID string) (service.Result, error)
	CompleteReset(ctx context.Context, key string, f *form.ForgotPassword, code, newPassword, confirm string) (service.Result, error)
}

type Options struct {
	Rules            validation.Rules
	ModalCloseDelay  time.Duration
	ResetReturnDelay time.Duration
	NotificationTTL  time.Duration
}

type screen int

const (
	screenMenu screen = iota
	screenRegister
	screenLogin // login form and both forgot-password steps
)

type Model struct {
	ctx  context.Context
	auth AuthService
	opts Options

	screen screen
	inputs []textinput.Model
	focus  int

	reg    *form.Registration
	login  form.Login
	forgot form.ForgotPassword

	submitting bool
	note       *notification
	noteSeq    int
}

func New(ctx context.Context, auth AuthService, opts Options) Model {
	return Model{
		ctx:  ctx,
		auth: auth,
		opts: opts,
		reg:  form.NewRegistration(opts.Rules),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

type (
	closeModalMsg    struct{}
	returnToLoginMsg struct{}
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.screen {
		case screenRegister:
			return m.updateRegister(msg)
		case screenLogin:
			return m.updateLogin(msg)
		default:
			return m.updateMenu(msg)
		}

	case registerDoneMsg:
		return m.registerDone(msg)
	case loginDoneMsg:
		return m.loginDone(msg)
	case initiateDoneMsg:
		return m.initiateDone(msg)
	case completeDoneMsg:
		return m.completeDone(msg)

	case closeModalMsg:
		if m.screen == screenRegister && !m.submitting {
			m.screen = screenMenu
			m.inputs = nil
		}
	case returnToLoginMsg:
		if m.screen == screenLogin && m.forgot.ReturnPending {
			m.forgot.BackToLogin()
			cmd := m.openLoginStep()
			return m, cmd
		}
	case dismissNoteMsg:
		if m.note != nil && m.note.id == msg.id {
			m.note = nil
		}
	}
	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		m.screen = screenRegister
		cmd := m.openRegister()
		return m, cmd
	case "l":
		m.screen = screenLogin
		m.forgot.BackToLogin()
		cmd := m.openLoginStep()
		return m, cmd
	case "q", "esc":
		return m, tea.Quit
	}
	return m, nil
}

// setInputs replaces the inputs of the current screen and focuses the first.
func (m *Model) setInputs(inputs []textinput.Model) tea.Cmd {
	m.inputs = inputs
	m.focus = 0
	if len(inputs) == 0 {
		return nil
	}
	return m.inputs[0].Focus()
}

// step moves the cursor by delta within the current inputs, wrapping around.
func (m *Model) step(delta int) tea.Cmd {
	n := len(m.inputs)
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + n) % n
	return m.inputs[m.focus].Focus()
}

func newInput(placeholder string, secret bool) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	ti.CharLimit = 128
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return ti
}
