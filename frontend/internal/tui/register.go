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

var registerLabels = map[form.FieldName]string{
	form.FirstName:       "First name",
	form.LastName:        "Last name",
	form.NationalID:      "National ID",
	form.Email:           "Email",
	form.Password:        "Password",
	form.ConfirmPassword: "Confirm password",
}

type registerDoneMsg struct {
	reg *form.Registration
	res service.Result
	err error
}

// openRegister builds one input per registration field from the current
// form state. Focusing the first field counts as a focus event.
func (m *Model) openRegister() tea.Cmd {
	inputs := make([]textinput.Model, 0, len(form.RegistrationFields))
	for _, name := range form.RegistrationFields {
		secret := name == form.Password || name == form.ConfirmPassword
		ti := newInput(registerLabels[name], secret)
		ti.SetValue(m.reg.Value(name))
		inputs = append(inputs, ti)
	}
	cmd := m.setInputs(inputs)
	m.reg.Focus(form.RegistrationFields[0])
	return cmd
}

func (m Model) updateRegister(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.leaveRegisterField()
		m.screen = screenMenu
		m.inputs = nil
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		cmd := m.moveRegisterFocus(1)
		return m, cmd
	case tea.KeyShiftTab, tea.KeyUp:
		cmd := m.moveRegisterFocus(-1)
		return m, cmd
	case tea.KeyEnter:
		if m.focus < len(m.inputs)-1 {
			cmd := m.moveRegisterFocus(1)
			return m, cmd
		}
		return m.submitRegister()
	}

	name := form.RegistrationFields[m.focus]
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	m.reg.Input(name, m.inputs[m.focus].Value())
	if v := m.reg.Value(name); v != m.inputs[m.focus].Value() {
		// The national ID drops what it does not accept as it is typed.
		m.inputs[m.focus].SetValue(v)
	}
	return m, cmd
}

// leaveRegisterField blurs the focused field and shows its normalised value.
func (m *Model) leaveRegisterField() {
	name := form.RegistrationFields[m.focus]
	m.reg.Blur(name)
	m.inputs[m.focus].SetValue(m.reg.Value(name))
}

func (m *Model) moveRegisterFocus(delta int) tea.Cmd {
	m.leaveRegisterField()
	cmd := m.step(delta)
	m.reg.Focus(form.RegistrationFields[m.focus])
	return cmd
}

func (m *Model) syncRegisterInputs() {
	for i, name := range form.RegistrationFields {
		if i < len(m.inputs) {
			m.inputs[i].SetValue(m.reg.Value(name))
		}
	}
}

func (m Model) submitRegister() (tea.Model, tea.Cmd) {
	m.leaveRegisterField()
	if !m.reg.CanSubmit() {
		m.reg.TouchAll()
		return m, nil
	}

	values := make(map[form.FieldName]string, len(form.RegistrationFields))
	for _, name := range form.RegistrationFields {
		values[name] = m.reg.Value(name)
	}

	m.submitting = true
	ctx, auth, rules := m.ctx, m.auth, m.opts.Rules
	return m, func() tea.Msg {
		// The request works on its own copy; Update adopts it when done.
		reg := form.NewRegistration(rules)
		reg.Fill(values)
		res, err := auth.Register(ctx, busyKey, reg)
		return registerDoneMsg{reg: reg, res: res, err: err}
	}
}

func (m Model) registerDone(msg registerDoneMsg) (tea.Model, tea.Cmd) {
	m.submitting = false
	m.reg = msg.reg

	switch {
	case errors.Is(msg.err, service.ErrBusy):
		m.reg.SetMessage(msgBusy)
	case msg.err != nil:
		m.reg.SetMessage(service.MsgRegisterUnexpected)
	}
	m.syncRegisterInputs()

	if msg.res.Outcome != metrics.OutcomeSuccess {
		return m, nil
	}

	note := m.notify(msg.res.Notification, noteSuccess)
	closeModal := tea.Tick(m.opts.ModalCloseDelay, func(time.Time) tea.Msg { return closeModalMsg{} })
	return m, tea.Batch(note, closeModal)
}
