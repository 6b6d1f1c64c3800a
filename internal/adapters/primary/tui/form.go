package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// allLabel is how an empty option is shown in filter selects.
const allLabel = "All"

// field is one form row: either a text input or a select cycled with the
// arrow keys.
type field struct {
	label   string
	input   textinput.Model
	options []string
	choice  int
	initial int
}

func newTextField(label, placeholder string, limit int) *field {
	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = placeholder
	input.CharLimit = limit
	input.Width = 40
	input.Cursor.SetMode(cursor.CursorStatic)
	return &field{label: label, input: input}
}

func newPasswordField(label string) *field {
	f := newTextField(label, "password", 128)
	f.input.EchoMode = textinput.EchoPassword
	f.input.EchoCharacter = '•'
	return f
}

func newSelectField(label string, options []string, initial int) *field {
	return &field{label: label, options: options, choice: initial, initial: initial}
}

func (f *field) isSelect() bool {
	return f.options != nil
}

func (f *field) value() string {
	if f.isSelect() {
		return f.options[f.choice]
	}
	return f.input.Value()
}

func (f *field) cycle(delta int) {
	if !f.isSelect() {
		return
	}
	n := len(f.options)
	f.choice = ((f.choice+delta)%n + n) % n
}

func (f *field) reset() {
	if f.isSelect() {
		f.choice = f.initial
		return
	}
	f.input.Reset()
}

func (f *field) setFocus(focused bool) {
	if f.isSelect() {
		return
	}
	if focused {
		f.input.Focus()
	} else {
		f.input.Blur()
	}
}

func (f *field) view(theme Theme, focused bool) string {
	label := lipgloss.NewStyle().Width(14).Foreground(theme.FaintText)
	if focused {
		label = label.Foreground(theme.FocusForeground).Bold(true)
	}

	var body string
	if f.isSelect() {
		shown := f.value()
		if shown == "" {
			shown = allLabel
		}
		body = "‹ " + shown + " ›"
		if focused {
			body = lipgloss.NewStyle().Foreground(theme.FocusForeground).Render(body)
		}
	} else {
		body = f.input.View()
	}
	return label.Render(f.label) + body
}

// form is an ordered set of fields with one focused at a time.
type form struct {
	fields []*field
	focus  int
}

func newForm(fields ...*field) *form {
	return &form{fields: fields}
}

func (fm *form) focused() *field {
	return fm.fields[fm.focus]
}

func (fm *form) move(delta int) {
	n := len(fm.fields)
	fm.focus = ((fm.focus+delta)%n + n) % n
}

// update passes a key to the focused text input. It reports whether the
// value changed.
func (fm *form) update(msg tea.Msg) (bool, tea.Cmd) {
	f := fm.focused()
	if f.isSelect() {
		return false, nil
	}
	before := f.input.Value()
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return f.input.Value() != before, cmd
}

// sync focuses the current field when active and blurs everything else.
func (fm *form) sync(active bool) {
	for i, f := range fm.fields {
		f.setFocus(active && i == fm.focus)
	}
}

func (fm *form) reset() {
	for _, f := range fm.fields {
		f.reset()
	}
	fm.focus = 0
}

func (fm *form) view(theme Theme, active bool) string {
	rows := make([]string, 0, len(fm.fields))
	for i, f := range fm.fields {
		rows = append(rows, f.view(theme, active && i == fm.focus))
	}
	return strings.Join(rows, "\n")
}

// withAll prefixes options with the empty "All" choice.
func withAll(options []string) []string {
	return append([]string{""}, options...)
}
