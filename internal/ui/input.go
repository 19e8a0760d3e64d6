package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/ava/internal/remote"
	"github.com/five82/ava/internal/service"
)

// form collects one line per prompt, then issues submit.
type form struct {
	label   string
	prompts []string
	secret  map[int]bool
	values  []string
	submit  func(values []string) *service.Request
}

func (f *form) step() int { return len(f.values) }

func (f *form) prompt() string { return f.prompts[f.step()] }

// openForm shows f and focuses the input on its first prompt.
func (m *Model) openForm(f *form) tea.Cmd {
	m.form = f
	m.notice = ""
	return m.focusInput()
}

func (m *Model) focusInput() tea.Cmd {
	m.input.Reset()
	m.input.Placeholder = m.form.prompt()
	m.input.Width = max(m.width-len(m.form.label)-8, 10)
	if m.form.secret[m.form.step()] {
		m.input.EchoMode = textinput.EchoPassword
	} else {
		m.input.EchoMode = textinput.EchoNormal
	}
	return m.input.Focus()
}

// openLoginForm asks for credentials and signs in. A new email registers
// when the nickname line is filled in.
func (m *Model) openLoginForm() tea.Cmd {
	if m.auth == nil {
		return nil
	}
	auth := m.auth
	return m.openForm(&form{
		label:   "sign in",
		prompts: []string{"Email", "Password", "Nickname (new account only)"},
		secret:  map[int]bool{1: true},
		submit: func(values []string) *service.Request {
			email, password, nickname := values[0], values[1], strings.TrimSpace(values[2])
			if nickname == "" {
				return auth.Login(email, password)
			}
			return auth.Register(remote.Registration{Nickname: nickname, Email: email, Password: password})
		},
	})
}

// handleFormKey routes keys to the open form.
func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.form = nil
		m.input.Blur()
		return m, nil

	case "enter":
		f := m.form
		f.values = append(f.values, m.input.Value())
		if f.step() < len(f.prompts) {
			cmd := m.focusInput()
			return m, cmd
		}
		m.form = nil
		m.input.Blur()
		return m, m.await(f.label, f.submit(f.values))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// renderForm renders the input line of the open form.
func (m Model) renderForm() string {
	styles := m.theme.Styles()
	label := styles.AccentText.Bold(true).Render(m.form.label)
	progress := ""
	if len(m.form.prompts) > 1 {
		progress = styles.FaintText.Render(fmt.Sprintf(" (%d/%d)", m.form.step()+1, len(m.form.prompts)))
	}
	return label + progress + " " + m.input.View()
}
