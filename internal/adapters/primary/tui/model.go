package tui

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lorrc/voice2ticket/internal/core/domain"
	"github.com/lorrc/voice2ticket/internal/core/ports"
)

// authMode selects the form shown on the auth page.
type authMode int

const (
	authLogin authMode = iota
	authSignup
)

// action names a service call run as a command.
type action string

const (
	actionLogin       action = "login"
	actionSignup      action = "signup"
	actionSignOut     action = "sign out"
	actionNavigate    action = "navigate"
	actionSubmitText  action = "submit ticket"
	actionSubmitVoice action = "submit voice ticket"
	actionStart       action = "start recording"
	actionStop        action = "stop recording"
	actionRefresh     action = "refresh"
)

// actionDoneMsg is sent when a service call started by the model returns.
// The outcome itself is already in the console state.
type actionDoneMsg struct {
	action    action
	err       error
	persisted bool
}

// Raise-ticket form field positions. Fields before fieldVoiceDepartment
// belong to the text ticket.
const (
	fieldTitle = iota
	fieldDescription
	fieldDepartment
	fieldPriority
	fieldVoiceDepartment
	fieldVoicePriority
)

// Filter form field positions.
const (
	filterSearch = iota
	filterStatus
	filterDepartment
	filterPriority
)

// Model is the top-level bubbletea model of the terminal console.
type Model struct {
	ctx     context.Context
	console ports.Console
	theme   Theme
	keys    KeyMap
	logger  *slog.Logger

	width  int
	height int

	mode   authMode
	login  *form
	signup *form
	ticket *form
	filter *form
}

// Option configures a Model.
type Option func(*Model)

// WithTheme replaces the default theme.
func WithTheme(theme Theme) Option {
	return func(m *Model) { m.theme = theme }
}

// WithKeyMap replaces the default key bindings.
func WithKeyMap(keys KeyMap) Option {
	return func(m *Model) { m.keys = keys }
}

// WithLogger sets the logger used for failed actions.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) { m.logger = logger }
}

// NewModel creates the console model. ctx bounds every service call the
// model makes.
func NewModel(ctx context.Context, console ports.Console, opts ...Option) Model {
	priorities := make([]string, 0, len(domain.Priorities))
	for _, p := range domain.Priorities {
		priorities = append(priorities, string(p))
	}
	statuses := make([]string, 0, len(domain.Statuses))
	for _, s := range domain.Statuses {
		statuses = append(statuses, string(s))
	}
	medium := indexOf(priorities, string(domain.PriorityMedium))

	model := Model{
		ctx:     ctx,
		console: console,
		theme:   DefaultTheme,
		keys:    DefaultKeyMap,
		logger:  slog.Default(),
		width:   80,
		height:  24,
		login: newForm(
			newTextField("Email", "you@example.com", 254),
			newPasswordField("Password"),
			newSelectField("Role", []string{string(domain.RoleUser), string(domain.RoleAdmin)}, 0),
		),
		signup: newForm(
			newTextField("First name", "", 64),
			newTextField("Last name", "", 64),
			newTextField("Email", "you@example.com", 254),
			newSelectField("Department", domain.Departments, 0),
			newPasswordField("Password"),
		),
		ticket: newForm(
			newTextField("Title", "Short summary", 120),
			newTextField("Description", "What happened?", 2000),
			newSelectField("Department", domain.Departments, 0),
			newSelectField("Priority", priorities, medium),
			newSelectField("Department", domain.Departments, 0),
			newSelectField("Priority", priorities, medium),
		),
		filter: newForm(
			newTextField("Search", "title or description", 200),
			newSelectField("Status", withAll(statuses), 0),
			newSelectField("Department", withAll(domain.Departments), 0),
			newSelectField("Priority", withAll(priorities), 0),
		),
	}
	for _, opt := range opts {
		opt(&model)
	}
	model.syncFocus()
	return model
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height

	case tea.KeyMsg:
		if key.Matches(message, model.keys.Quit) {
			return model, tea.Quit
		}
		if model.page() == domain.PageAuth {
			cmd = model.handleAuthKeys(message)
		} else {
			cmd = model.handleConsoleKeys(message)
		}

	case actionDoneMsg:
		model.handleActionDone(message)

	case notificationMsg, consoleEventMsg:
		// State already changed; the redraw is all that is needed.
	}

	model.syncFocus()
	return model, cmd
}

func (model *Model) handleAuthKeys(message tea.KeyMsg) tea.Cmd {
	active := model.authForm()

	switch {
	case key.Matches(message, model.keys.ToggleAuthMode):
		if model.mode == authLogin {
			model.mode = authSignup
		} else {
			model.mode = authLogin
		}
		return nil

	case key.Matches(message, model.keys.Submit):
		if model.mode == authLogin {
			params := domain.LoginParams{
				Email:    active.fields[0].value(),
				Password: active.fields[1].value(),
				Role:     active.fields[2].value(),
			}
			return model.run(actionLogin, func(ctx context.Context) error {
				_, err := model.console.Sessions().Login(ctx, params)
				return err
			})
		}
		params := domain.SignupParams{
			FirstName:  active.fields[0].value(),
			LastName:   active.fields[1].value(),
			Email:      active.fields[2].value(),
			Department: active.fields[3].value(),
			Password:   active.fields[4].value(),
		}
		return model.run(actionSignup, func(ctx context.Context) error {
			_, err := model.console.Sessions().Signup(ctx, params)
			return err
		})
	}

	_, cmd := model.handleFormKeys(active, message)
	return cmd
}

func (model *Model) handleConsoleKeys(message tea.KeyMsg) tea.Cmd {
	page := model.page()

	switch {
	case key.Matches(message, model.keys.SignOut):
		return model.run(actionSignOut, model.console.Sessions().SignOut)

	case key.Matches(message, model.keys.PageDashboard):
		return model.navigate(domain.PageDashboard)
	case key.Matches(message, model.keys.PageTickets):
		return model.navigate(domain.PageTickets)
	case key.Matches(message, model.keys.PageAudio):
		return model.navigate(domain.PageAudio)
	case key.Matches(message, model.keys.PageRaise):
		return model.navigate(domain.PageRaiseTicket)

	case key.Matches(message, model.keys.Refresh):
		switch page {
		case domain.PageDashboard, domain.PageTickets:
			return model.run(actionRefresh, func(ctx context.Context) error {
				_, err := model.console.Tickets().Fetch(ctx)
				return err
			})
		case domain.PageAudio:
			return model.run(actionRefresh, func(ctx context.Context) error {
				_, err := model.console.Audio().Refresh(ctx)
				return err
			})
		}
		return nil
	}

	switch page {
	case domain.PageTickets:
		return model.handleTicketListKeys(message)
	case domain.PageRaiseTicket:
		return model.handleRaiseKeys(message)
	}
	return nil
}

func (model *Model) handleTicketListKeys(message tea.KeyMsg) tea.Cmd {
	tickets := model.console.Tickets()

	switch {
	case key.Matches(message, model.keys.ListNext):
		tickets.NextPage(model.ctx)
		return nil
	case key.Matches(message, model.keys.ListPrev):
		tickets.PrevPage(model.ctx)
		return nil
	}

	changed, cmd := model.handleFormKeys(model.filter, message)
	if changed {
		tickets.SetFilter(model.ctx, model.currentFilter())
	}
	return cmd
}

func (model *Model) handleRaiseKeys(message tea.KeyMsg) tea.Cmd {
	recorder := model.console.Recorder()

	switch {
	case key.Matches(message, model.keys.Record):
		if recorder.State().Phase == domain.RecordingCapturing {
			return model.run(actionStop, func(ctx context.Context) error {
				_, err := recorder.Stop(ctx)
				return err
			})
		}
		return model.run(actionStart, recorder.Start)

	case key.Matches(message, model.keys.ResetRecord):
		recorder.Reset(model.ctx)
		return nil

	case key.Matches(message, model.keys.UploadVoice):
		return model.submitVoice()

	case key.Matches(message, model.keys.Submit):
		if model.ticket.focus >= fieldVoiceDepartment {
			return model.submitVoice()
		}
		params := domain.TicketParams{
			Title:       model.ticket.fields[fieldTitle].value(),
			Description: model.ticket.fields[fieldDescription].value(),
			Department:  model.ticket.fields[fieldDepartment].value(),
			Priority:    domain.TicketPriority(model.ticket.fields[fieldPriority].value()),
		}
		return model.submitText(params)
	}

	_, cmd := model.handleFormKeys(model.ticket, message)
	return cmd
}

// handleFormKeys moves between fields, cycles selects and types into text
// inputs. It reports whether a value changed.
func (model *Model) handleFormKeys(active *form, message tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.NextField):
		active.move(1)
		return false, nil
	case key.Matches(message, model.keys.PrevField):
		active.move(-1)
		return false, nil
	}

	if active.focused().isSelect() {
		switch {
		case key.Matches(message, model.keys.OptionNext):
			active.focused().cycle(1)
			return true, nil
		case key.Matches(message, model.keys.OptionPrev):
			active.focused().cycle(-1)
			return true, nil
		}
		return false, nil
	}
	return active.update(message)
}

func (model *Model) handleActionDone(message actionDoneMsg) {
	if message.err != nil {
		model.logger.Debug("console action failed", "action", string(message.action), "error", message.err)
		return
	}

	switch message.action {
	case actionLogin, actionSignup:
		model.login.reset()
		model.signup.reset()
		model.mode = authLogin
	case actionSignOut:
		model.ticket.reset()
		model.filter.reset()
	case actionSubmitText:
		if !message.persisted {
			return
		}
		model.ticket.fields[fieldTitle].reset()
		model.ticket.fields[fieldDescription].reset()
		model.ticket.focus = fieldTitle
	}
}

// submitText posts the text form. A ticket kept only locally leaves the
// form filled so it can be sent again.
func (model *Model) submitText(params domain.TicketParams) tea.Cmd {
	ctx := model.ctx
	return func() tea.Msg {
		outcome, err := model.console.Tickets().Submit(ctx, params)
		return actionDoneMsg{
			action:    actionSubmitText,
			err:       err,
			persisted: err == nil && outcome != nil && outcome.Persisted,
		}
	}
}

func (model *Model) submitVoice() tea.Cmd {
	params := ports.VoiceTicketParams{
		Department: model.ticket.fields[fieldVoiceDepartment].value(),
		Priority:   domain.TicketPriority(model.ticket.fields[fieldVoicePriority].value()),
	}
	return model.run(actionSubmitVoice, func(ctx context.Context) error {
		_, err := model.console.Voice().Submit(ctx, params)
		return err
	})
}

func (model *Model) navigate(page domain.Page) tea.Cmd {
	return model.run(actionNavigate, func(ctx context.Context) error {
		_, err := model.console.Sessions().Navigate(ctx, page)
		return err
	})
}

func (model *Model) run(name action, fn func(context.Context) error) tea.Cmd {
	ctx := model.ctx
	return func() tea.Msg {
		return actionDoneMsg{action: name, err: fn(ctx)}
	}
}

func (model Model) currentFilter() domain.TicketFilter {
	return domain.TicketFilter{
		Search:     model.filter.fields[filterSearch].value(),
		Status:     domain.TicketStatus(model.filter.fields[filterStatus].value()),
		Department: model.filter.fields[filterDepartment].value(),
		Priority:   domain.TicketPriority(model.filter.fields[filterPriority].value()),
	}
}

func (model Model) page() domain.Page {
	if model.console.Sessions().Current() == nil {
		return domain.PageAuth
	}
	return model.console.View().Page
}

func (model Model) authForm() *form {
	if model.mode == authSignup {
		return model.signup
	}
	return model.login
}

// activeForm returns the form taking keystrokes on the current page, or nil.
func (model Model) activeForm() *form {
	switch model.page() {
	case domain.PageAuth:
		return model.authForm()
	case domain.PageRaiseTicket:
		return model.ticket
	case domain.PageTickets:
		return model.filter
	}
	return nil
}

func (model Model) syncFocus() {
	active := model.activeForm()
	for _, fm := range []*form{model.login, model.signup, model.ticket, model.filter} {
		fm.sync(fm == active)
	}
}

func indexOf(options []string, value string) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}
	return 0
}
