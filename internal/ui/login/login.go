// Package login provides the sign-in screen shown before a session exists.
package login

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/app"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/ui/components"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/ui/styles"
)

// formField represents which field is currently focused on the form.
type formField int

const (
	fieldEmail formField = iota
	fieldPassword
	fieldSubmit
)

const fieldCount = 3

// keyMap defines the key bindings specific to the login screen.
type keyMap struct {
	Submit key.Binding
	Next   key.Binding
	Prev   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "sign in"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "prev field"),
		),
	}
}

// Model represents the login screen state.
type Model struct {
	emailInput    textinput.Model
	passwordInput textinput.Model
	spinner       components.LoadingSpinner
	keys          keyMap
	focusedField  formField
	submitting    bool
	errorMsg      string
	width         int
	height        int
}

// New creates a new login screen.
func New() *Model {
	emailInput := textinput.New()
	emailInput.Placeholder = "admin@convicti.com.br"
	emailInput.CharLimit = 100
	emailInput.Width = 38
	emailInput.Focus()

	passwordInput := textinput.New()
	passwordInput.Placeholder = "password"
	passwordInput.CharLimit = 100
	passwordInput.Width = 38
	passwordInput.EchoMode = textinput.EchoPassword
	passwordInput.EchoCharacter = '*'

	return &Model{
		emailInput:    emailInput,
		passwordInput: passwordInput,
		spinner:       components.NewSpinner("Signing in..."),
		keys:          defaultKeyMap(),
		focusedField:  fieldEmail,
	}
}

// Init initializes the login screen.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the login screen.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.LoginResultMsg:
		m.submitting = false
		if !msg.Success {
			m.errorMsg = msg.Error
			m.passwordInput.SetValue("")
		} else {
			m.errorMsg = ""
			m.passwordInput.SetValue("")
		}
		return m, nil

	case spinner.TickMsg:
		if m.submitting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Next):
		m.focusedField = (m.focusedField + 1) % fieldCount
		m.updateFocus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Prev):
		m.focusedField = (m.focusedField - 1 + fieldCount) % fieldCount
		m.updateFocus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Submit):
		if m.focusedField == fieldSubmit || m.focusedField == fieldPassword {
			return m.submit()
		}
		// Enter on the email field moves to the password field
		m.focusedField = fieldPassword
		m.updateFocus()
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	switch m.focusedField {
	case fieldEmail:
		m.emailInput, cmd = m.emailInput.Update(msg)
	case fieldPassword:
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) submit() (app.Tab, tea.Cmd) {
	email := strings.TrimSpace(m.emailInput.Value())
	password := m.passwordInput.Value()

	if email == "" || password == "" {
		m.errorMsg = "Email and password are required."
		return m, nil
	}

	m.submitting = true
	m.errorMsg = ""

	return m, tea.Batch(
		m.spinner.Init(),
		func() tea.Msg {
			return app.LoginSubmitMsg{Email: email, Password: password}
		},
	)
}

func (m *Model) updateFocus() {
	m.emailInput.Blur()
	m.passwordInput.Blur()

	switch m.focusedField {
	case fieldEmail:
		m.emailInput.Focus()
	case fieldPassword:
		m.passwordInput.Focus()
	}
}

// View renders the login screen.
func (m *Model) View() string {
	cardWidth := 50

	var rows []string

	rows = append(rows, styles.TitleStyle.Render("CONVICTI"))
	rows = append(rows, styles.HelpStyle.Render("Mobile app statistics dashboard"))
	rows = append(rows, "")

	rows = append(rows, m.renderField("Email", &m.emailInput, fieldEmail, cardWidth))
	rows = append(rows, "")
	rows = append(rows, m.renderField("Password", &m.passwordInput, fieldPassword, cardWidth))
	rows = append(rows, "")

	if m.submitting {
		rows = append(rows, m.spinner.ViewWithLabel())
	} else {
		buttonStyle := styles.ButtonInactiveStyle
		if m.focusedField == fieldSubmit {
			buttonStyle = styles.ButtonActiveStyle
		}
		rows = append(rows, buttonStyle.Render(" Sign In "))
	}

	if m.errorMsg != "" {
		rows = append(rows, "")
		rows = append(rows, styles.ErrorTextStyle.Render(m.errorMsg))
	}

	rows = append(rows, "")
	rows = append(rows, styles.HelpStyle.Render("Tab: next field | Enter: sign in | Ctrl+C: quit"))

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	card := styles.CardStyle.Width(cardWidth).Render(content)

	return styles.CenterBoth(card, m.width, m.height)
}

func (m *Model) renderField(label string, input *textinput.Model, field formField, cardWidth int) string {
	labelText := "  " + label + ":"
	if m.focusedField == field {
		labelText = styles.FocusedStyle.Render("> " + label + ":")
	} else {
		labelText = styles.BlurredStyle.Render(labelText)
	}

	borderStyle := styles.BlurredBorderStyle
	if m.focusedField == field {
		borderStyle = styles.FocusedBorderStyle
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		labelText,
		borderStyle.Width(cardWidth-8).Render(input.View()),
	)
}

// SetSize sets the available size for the login screen.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Email returns the current value of the email field.
func (m *Model) Email() string {
	return m.emailInput.Value()
}

// ErrorMessage returns the currently displayed error, if any.
func (m *Model) ErrorMessage() string {
	return m.errorMsg
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Submit, m.keys.Next}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Submit},
		{m.keys.Next, m.keys.Prev},
	}
}
