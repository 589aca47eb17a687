package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	fieldUsername = iota
	fieldEmail
	fieldPassword
)

// loginForm collects credentials. The username field is only shown when registering.
type loginForm struct {
	inputs   []textinput.Model
	focus    int
	register bool
	pending  bool
	err      string
}

func newLoginForm() loginForm {
	inputs := make([]textinput.Model, 3)
	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 120
		ti.Width = 40
		inputs[i] = ti
	}
	inputs[fieldUsername].Placeholder = "username"
	inputs[fieldEmail].Placeholder = "email"
	inputs[fieldPassword].Placeholder = "password"
	inputs[fieldPassword].EchoMode = textinput.EchoPassword
	inputs[fieldPassword].EchoCharacter = '•'

	f := loginForm{inputs: inputs, focus: fieldEmail}
	f.inputs[fieldEmail].Focus()
	return f
}

func (f loginForm) fields() []int {
	if f.register {
		return []int{fieldUsername, fieldEmail, fieldPassword}
	}
	return []int{fieldEmail, fieldPassword}
}

// next moves focus forward through the visible fields.
func (f *loginForm) next() {
	fields := f.fields()
	pos := 0
	for i, idx := range fields {
		if idx == f.focus {
			pos = i
		}
	}
	f.setFocus(fields[(pos+1)%len(fields)])
}

func (f *loginForm) setFocus(idx int) {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	f.focus = idx
	f.inputs[idx].Focus()
}

// toggleMode switches between login and register.
func (f *loginForm) toggleMode() {
	f.register = !f.register
	f.err = ""
	if f.register {
		f.setFocus(fieldUsername)
	} else {
		f.setFocus(fieldEmail)
	}
}

func (f loginForm) value(idx int) string {
	return strings.TrimSpace(f.inputs[idx].Value())
}

// validate mirrors the checks the API performs before hashing a password.
func (f loginForm) validate() string {
	if f.register && f.value(fieldUsername) == "" {
		return "Username is required"
	}
	if f.value(fieldEmail) == "" || f.inputs[fieldPassword].Value() == "" {
		return "Email and password are required"
	}
	if !strings.Contains(f.value(fieldEmail), "@") {
		return "Please enter a valid email address"
	}
	return ""
}

func (f loginForm) update(msg tea.Msg) (loginForm, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f loginForm) view() string {
	title := "Sign in to cinex"
	if f.register {
		title = "Create a cinex account"
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(title))
	b.WriteString("\n")
	for _, idx := range f.fields() {
		b.WriteString(f.inputs[idx].View())
		b.WriteString("\n")
	}

	switch {
	case f.pending:
		b.WriteString("\n" + styles.help.Render("Signing in..."))
	case f.err != "":
		b.WriteString("\n" + styles.err.Render(f.err))
	}

	mode := "register"
	if f.register {
		mode = "log in"
	}
	b.WriteString("\n\n" + styles.help.Render(fmt.Sprintf("tab next field • enter submit • ctrl+r %s • ctrl+c quit", mode)))
	return b.String()
}
