package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tbs-portal/portal/shared/form"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0B3D91")).MarginBottom(1)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#0B3D91")).Padding(1, 2)
	labelStyle   = lipgloss.NewStyle().Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C62828"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2E7D32"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#1565C0"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	buttonStyle  = lipgloss.NewStyle().Padding(0, 2).Background(lipgloss.Color("#0B3D91")).Foreground(lipgloss.Color("#FFFFFF"))
	disabledBtn  = buttonStyle.Background(lipgloss.Color("#9CA3AF"))
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Tunis Business School"))
	b.WriteString("\n")

	if m.note != nil {
		b.WriteString(noteStyle(m.note.kind).Render(m.note.text))
		b.WriteString("\n\n")
	}

	switch m.screen {
	case screenRegister:
		b.WriteString(boxStyle.Render(m.registerView()))
		b.WriteString("\n" + mutedStyle.Render("tab/enter next field • shift+tab back • esc close • ctrl+c quit"))
	case screenLogin:
		b.WriteString(boxStyle.Render(m.loginView()))
		if m.forgot.Step == form.StepLogin {
			b.WriteString("\n" + mutedStyle.Render("enter submit • ctrl+f forgot password • esc close"))
		} else {
			b.WriteString("\n" + mutedStyle.Render("enter submit • esc back to login"))
		}
	default:
		b.WriteString("[l] Login   [r] Register   [q] Quit")
	}
	b.WriteString("\n")
	return b.String()
}

func noteStyle(kind noteKind) lipgloss.Style {
	switch kind {
	case noteSuccess:
		return successStyle
	case noteError:
		return errorStyle
	default:
		return infoStyle
	}
}

func button(label string, enabled bool) string {
	if enabled {
		return buttonStyle.Render(label)
	}
	return disabledBtn.Render(label)
}

func (m Model) registerView() string {
	view := m.reg.View()
	var b strings.Builder
	b.WriteString(labelStyle.Render("Create your account") + "\n\n")

	for i, name := range form.RegistrationFields {
		fv := view.Field(name)
		label := registerLabels[name]
		if fv.Invalid || fv.Mismatch {
			label = errorStyle.Render(label)
		} else {
			label = labelStyle.Render(label)
		}
		b.WriteString(label + "\n")
		if i < len(m.inputs) {
			b.WriteString(m.inputs[i].View() + "\n")
		}
		if fv.Message != "" {
			b.WriteString(errorStyle.Render(fv.Message) + "\n")
		}

		if name == form.Password && view.ShowRequirements {
			for _, req := range view.Requirements {
				if req.Met {
					b.WriteString(successStyle.Render("  ✓ "+req.Label) + "\n")
				} else {
					b.WriteString(mutedStyle.Render("  • "+req.Label) + "\n")
				}
			}
		}
	}

	if view.Message != "" {
		b.WriteString("\n" + errorStyle.Render(view.Message) + "\n")
	}
	label := "Register"
	if m.submitting {
		label = "Registering..."
	}
	b.WriteString("\n" + button(label, view.SubmitEnabled && !m.submitting))
	return b.String()
}

func (m Model) loginView() string {
	var b strings.Builder

	switch m.forgot.Step {
	case form.StepRequestCode:
		b.WriteString(labelStyle.Render("Reset your password") + "\n\n")
		m.writeInputs(&b, "Email", "National ID")
		m.writeForgotMessage(&b)
		b.WriteString("\n" + button("Send reset code", !m.forgot.SendDisabled && !m.submitting))
	case form.StepResetPassword:
		b.WriteString(labelStyle.Render("Choose a new password") + "\n")
		b.WriteString(mutedStyle.Render("We sent a code to "+m.forgot.Email) + "\n\n")
		m.writeInputs(&b, "Reset code", "New password", "Confirm new password")
		m.writeForgotMessage(&b)
		b.WriteString("\n" + button("Reset password", !m.forgot.ResetDisabled && !m.submitting))
	default:
		b.WriteString(labelStyle.Render("Login") + "\n\n")
		emailLabel, passwordLabel := labelStyle.Render("Email"), labelStyle.Render("Password")
		if m.login.EmailFlagged {
			emailLabel = errorStyle.Render("Email")
		}
		if m.login.PasswordFlagged {
			passwordLabel = errorStyle.Render("Password")
		}
		if len(m.inputs) == 2 {
			b.WriteString(emailLabel + "\n" + m.inputs[0].View() + "\n")
			b.WriteString(passwordLabel + "\n" + m.inputs[1].View() + "\n")
		}
		if m.login.Message != "" {
			b.WriteString("\n" + errorStyle.Render(m.login.Message) + "\n")
		}
		label := "Login"
		if m.submitting {
			label = "Logging in..."
		}
		b.WriteString("\n" + button(label, !m.submitting))
	}
	return b.String()
}

func (m Model) writeInputs(b *strings.Builder, labels ...string) {
	for i, label := range labels {
		if i >= len(m.inputs) {
			return
		}
		b.WriteString(labelStyle.Render(label) + "\n" + m.inputs[i].View() + "\n")
	}
}

func (m Model) writeForgotMessage(b *strings.Builder) {
	if m.forgot.Message == "" {
		return
	}
	style := infoStyle
	switch m.forgot.Kind {
	case form.MessageSuccess:
		style = successStyle
	case form.MessageError:
		style = errorStyle
	}
	b.WriteString("\n" + style.Render(m.forgot.Message) + "\n")
}
