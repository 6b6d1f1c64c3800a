package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the terminal console. Printable keys
// always go to the focused text field, so every command sits on a control
// or function key.
type KeyMap struct {
	// Form navigation.
	NextField  key.Binding
	PrevField  key.Binding
	Submit     key.Binding
	OptionNext key.Binding // Only when an option field has focus.
	OptionPrev key.Binding

	// Auth view.
	ToggleAuthMode key.Binding

	// Pages.
	PageDashboard key.Binding
	PageTickets   key.Binding
	PageAudio     key.Binding
	PageRaise     key.Binding
	SignOut       key.Binding

	// Recorder.
	Record      key.Binding // Start, or stop when capturing.
	ResetRecord key.Binding
	UploadVoice key.Binding

	// Lists.
	Refresh  key.Binding
	ListNext key.Binding
	ListPrev key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	NextField: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("Tab", "next field"),
	),
	PrevField: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("S-Tab", "prev field"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "submit"),
	),
	OptionNext: key.NewBinding(
		key.WithKeys("right"),
		key.WithHelp("→", "next option"),
	),
	OptionPrev: key.NewBinding(
		key.WithKeys("left"),
		key.WithHelp("←", "prev option"),
	),
	ToggleAuthMode: key.NewBinding(
		key.WithKeys("ctrl+t"),
		key.WithHelp("C-t", "login/sign up"),
	),
	PageDashboard: key.NewBinding(
		key.WithKeys("f1"),
		key.WithHelp("F1", "dashboard"),
	),
	PageTickets: key.NewBinding(
		key.WithKeys("f2"),
		key.WithHelp("F2", "tickets"),
	),
	PageAudio: key.NewBinding(
		key.WithKeys("f3"),
		key.WithHelp("F3", "audio"),
	),
	PageRaise: key.NewBinding(
		key.WithKeys("f4"),
		key.WithHelp("F4", "raise ticket"),
	),
	SignOut: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("C-o", "sign out"),
	),
	Record: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("C-r", "record/stop"),
	),
	ResetRecord: key.NewBinding(
		key.WithKeys("ctrl+x"),
		key.WithHelp("C-x", "reset"),
	),
	UploadVoice: key.NewBinding(
		key.WithKeys("ctrl+u"),
		key.WithHelp("C-u", "upload"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("f5"),
		key.WithHelp("F5", "refresh"),
	),
	ListNext: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("PgDn", "next page"),
	),
	ListPrev: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("PgUp", "prev page"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("C-c", "quit"),
	),
}
