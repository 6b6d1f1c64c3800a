package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/voice2ticket/internal/core/domain"
	"github.com/lorrc/voice2ticket/internal/core/mocks"
	"github.com/lorrc/voice2ticket/internal/core/ports"
	"github.com/lorrc/voice2ticket/internal/core/services"
)

type testConsole struct {
	api      *mocks.MockTicketAPI
	storage  *mocks.MockStorageConnector
	sessions *mocks.MockSessionStore
	capture  *mocks.MockCaptureDevice
	console  *services.Console
}

func newTestConsole(t *testing.T) *testConsole {
	t.Helper()
	tc := &testConsole{
		api:      mocks.NewMockTicketAPI(),
		storage:  mocks.NewMockStorageConnector(),
		sessions: mocks.NewMockSessionStore(),
		capture:  mocks.NewMockCaptureDevice(),
	}
	tc.sessions.On("Save", mock.Anything, mock.Anything).Return(nil).Maybe()
	tc.sessions.On("Clear", mock.Anything).Return(nil).Maybe()

	tc.console = services.NewConsole("", services.ConsoleDeps{
		TicketAPI: tc.api,
		Storage:   tc.storage,
		Sessions:  tc.sessions,
		Capture:   tc.capture,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, services.ConsoleConfig{
		PageSize: 10,
		Tick:     10 * time.Millisecond,
		Location: services.StorageLocation{Bucket: "audio-bucket", Region: "us-east-1", Prefix: "audio/"},
	})
	t.Cleanup(func() { tc.console.Close(context.Background()) })
	return tc
}

func (tc *testConsole) expectAdminLoad(tickets []domain.Ticket) {
	objects := mocks.NewMockObjectStore()
	objects.On("ListObjects", mock.Anything, "audio/", "").Return(&ports.ObjectPage{}, nil)
	tc.api.On("ListTickets", mock.Anything).Return(tickets, nil)
	tc.storage.On("Connect", mock.Anything).Return(objects, nil)
}

// send delivers msg and runs the returned commands to completion, feeding
// their results back into the model.
func send(t *testing.T, model Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := model.Update(msg)
	model = updated.(Model)
	return runCmd(t, model, cmd)
}

func runCmd(t *testing.T, model Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return model
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			model = runCmd(t, model, c)
		}
	case actionDoneMsg:
		model = send(t, model, msg)
	}
	return model
}

func typeText(t *testing.T, model Model, text string) Model {
	t.Helper()
	return send(t, model, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func press(t *testing.T, model Model, keyType tea.KeyType) Model {
	t.Helper()
	return send(t, model, tea.KeyMsg{Type: keyType})
}

func loginAs(t *testing.T, model Model, email string, admin bool) Model {
	t.Helper()
	model = typeText(t, model, email)
	model = press(t, model, tea.KeyTab)
	model = typeText(t, model, "secret")
	if admin {
		model = press(t, model, tea.KeyTab)
		model = press(t, model, tea.KeyRight)
	}
	return press(t, model, tea.KeyEnter)
}

func TestModel_StartsOnAuth(t *testing.T) {
	tc := newTestConsole(t)
	model := NewModel(context.Background(), tc.console)

	view := model.View()
	assert.Contains(t, view, "Login")
	assert.Contains(t, view, "Email")
	assert.Equal(t, domain.PageAuth, model.page())
}

func TestModel_UserLogin(t *testing.T) {
	tc := newTestConsole(t)
	model := NewModel(context.Background(), tc.console)

	model = loginAs(t, model, "bo@example.com", false)

	session := tc.console.Sessions().Current()
	require.NotNil(t, session)
	assert.Equal(t, "bo@example.com", session.Email)
	assert.Equal(t, domain.RoleUser, session.Role)
	assert.Equal(t, domain.PageRaiseTicket, model.page())
	assert.Empty(t, model.login.fields[0].value(), "login form is cleared")

	view := model.View()
	assert.Contains(t, view, "Raise Ticket")
	assert.Contains(t, view, domain.MsgSignedIn)
}

func TestModel_BlankLoginShowsNotification(t *testing.T) {
	tc := newTestConsole(t)
	model := NewModel(context.Background(), tc.console)

	model = press(t, model, tea.KeyEnter)

	assert.Nil(t, tc.console.Sessions().Current())
	assert.Contains(t, model.View(), domain.MsgEnterCredentials)
}

func TestModel_SignupMode(t *testing.T) {
	tc := newTestConsole(t)
	model := NewModel(context.Background(), tc.console)

	model = press(t, model, tea.KeyCtrlT)
	assert.Contains(t, model.View(), "First name")

	for _, value := range []string{"Ana", "Lima", "ana@example.com"} {
		model = typeText(t, model, value)
		model = press(t, model, tea.KeyTab)
	}
	model = press(t, model, tea.KeyRight) // HR
	model = press(t, model, tea.KeyTab)
	model = typeText(t, model, "pw")
	model = press(t, model, tea.KeyEnter)

	session := tc.console.Sessions().Current()
	require.NotNil(t, session)
	assert.Equal(t, "Ana Lima", session.DisplayName)
	assert.Equal(t, "HR", session.Department)
	assert.Equal(t, authLogin, model.mode)
}

func TestModel_SubmitTextTicket(t *testing.T) {
	tc := newTestConsole(t)
	model := loginAs(t, NewModel(context.Background(), tc.console), "bo@example.com", false)

	var posted *domain.Ticket
	tc.api.On("CreateTicket", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { posted = args.Get(1).(*domain.Ticket) }).
		Return(nil).Once()

	model = typeText(t, model, "Printer jammed")
	model = press(t, model, tea.KeyTab)
	model = typeText(t, model, "Paper stuck in tray 2")
	model = press(t, model, tea.KeyTab)
	model = press(t, model, tea.KeyTab)
	model = press(t, model, tea.KeyRight) // High
	model = press(t, model, tea.KeyEnter)

	require.NotNil(t, posted)
	assert.Equal(t, "Printer jammed", posted.Title)
	assert.Equal(t, domain.PriorityHigh, posted.Priority)
	assert.Equal(t, "IT", posted.Department)
	assert.Empty(t, model.ticket.fields[fieldTitle].value())
	assert.Empty(t, model.ticket.fields[fieldDescription].value())
	assert.Equal(t, fieldTitle, model.ticket.focus)
	assert.Contains(t, model.View(), domain.MsgTicketSubmitted)
}

func TestModel_LocallyKeptTicketKeepsForm(t *testing.T) {
	tc := newTestConsole(t)
	model := loginAs(t, NewModel(context.Background(), tc.console), "bo@example.com", false)
	tc.api.On("CreateTicket", mock.Anything, mock.Anything).Return(errors.New("connection refused")).Once()

	model = typeText(t, model, "Printer jammed")
	model = press(t, model, tea.KeyTab)
	model = typeText(t, model, "Paper stuck in tray 2")
	model = press(t, model, tea.KeyEnter)

	tc.api.AssertExpectations(t)
	assert.Equal(t, "Printer jammed", model.ticket.fields[fieldTitle].value())
	assert.Equal(t, "Paper stuck in tray 2", model.ticket.fields[fieldDescription].value())
	toast := tc.console.View().Toast
	require.NotNil(t, toast)
	assert.Equal(t, domain.MsgTicketLocal, toast.Message)
}

func TestModel_BlankTicketKeepsForm(t *testing.T) {
	tc := newTestConsole(t)
	model := loginAs(t, NewModel(context.Background(), tc.console), "bo@example.com", false)

	model = typeText(t, model, "Only a title")
	model = press(t, model, tea.KeyEnter)

	tc.api.AssertNotCalled(t, "CreateTicket", mock.Anything, mock.Anything)
	assert.Equal(t, "Only a title", model.ticket.fields[fieldTitle].value())
	assert.Contains(t, model.View(), domain.MsgTicketRequired)
}

func TestModel_AdminDashboardAndFilter(t *testing.T) {
	tc := newTestConsole(t)
	tc.expectAdminLoad([]domain.Ticket{
		{Title: "VPN down", Department: "IT", Priority: domain.PriorityHigh, Status: domain.StatusOpen},
		{Title: "Payslip missing", Department: "HR", Priority: domain.PriorityLow, Status: domain.StatusClosed},
		{Title: "Laptop slow", Department: "IT", Priority: domain.PriorityMedium, Status: domain.StatusOpen},
	})
	model := loginAs(t, NewModel(context.Background(), tc.console), "ana@example.com", true)

	require.Equal(t, domain.PageDashboard, model.page())
	view := model.View()
	assert.Contains(t, view, "Total")
	assert.Contains(t, view, "Closed")

	model = press(t, model, tea.KeyF2)
	require.Equal(t, domain.PageTickets, model.page())
	assert.Equal(t, 3, tc.console.Tickets().View().Matched)

	model = typeText(t, model, "vpn")
	list := tc.console.Tickets().View()
	assert.Equal(t, 1, list.Matched)
	assert.Contains(t, model.View(), "VPN down")
	assert.NotContains(t, model.View(), "Laptop slow")

	// Clear the search and filter on status instead
	for range "vpn" {
		model = press(t, model, tea.KeyBackspace)
	}
	model = press(t, model, tea.KeyTab)
	model = press(t, model, tea.KeyRight) // Open
	assert.Equal(t, 2, tc.console.Tickets().View().Matched)
}

func TestModel_UserCannotOpenAdminPages(t *testing.T) {
	tc := newTestConsole(t)
	model := loginAs(t, NewModel(context.Background(), tc.console), "bo@example.com", false)

	model = press(t, model, tea.KeyF2)

	assert.Equal(t, domain.PageRaiseTicket, model.page())
	assert.NotContains(t, model.View(), "F2 Tickets")
}

func TestModel_RecordAndStop(t *testing.T) {
	tc := newTestConsole(t)
	model := loginAs(t, NewModel(context.Background(), tc.console), "bo@example.com", false)

	stream := mocks.NewFakeCaptureStream(4)
	tc.capture.On("Open", mock.Anything).Return(stream, nil).Once()

	model = press(t, model, tea.KeyCtrlR)
	require.Equal(t, domain.RecordingCapturing, tc.console.Recorder().State().Phase)
	assert.Contains(t, model.View(), "REC")

	stream.Emit([]byte("abc"))
	model = press(t, model, tea.KeyCtrlR)

	state := tc.console.Recorder().State()
	assert.Equal(t, domain.RecordingStopped, state.Phase)
	assert.Equal(t, 3, state.Size)
	assert.Contains(t, model.View(), "recorded")

	model = press(t, model, tea.KeyCtrlX)
	assert.Equal(t, domain.RecordingIdle, tc.console.Recorder().State().Phase)
	assert.NotContains(t, model.View(), "recorded")
}

func TestModel_UploadWithoutRecording(t *testing.T) {
	tc := newTestConsole(t)
	model := loginAs(t, NewModel(context.Background(), tc.console), "bo@example.com", false)

	model = press(t, model, tea.KeyCtrlU)

	tc.storage.AssertNotCalled(t, "Connect", mock.Anything)
	assert.Contains(t, model.View(), domain.MsgNoRecording)
}

func TestModel_SignOut(t *testing.T) {
	tc := newTestConsole(t)
	model := loginAs(t, NewModel(context.Background(), tc.console), "bo@example.com", false)

	model = press(t, model, tea.KeyCtrlO)

	assert.Nil(t, tc.console.Sessions().Current())
	assert.Equal(t, domain.PageAuth, model.page())
	assert.Contains(t, model.View(), domain.MsgSignedOut)
}

func TestModel_QuitOnlyOnCtrlC(t *testing.T) {
	tc := newTestConsole(t)
	model := NewModel(context.Background(), tc.console)

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd != nil {
		_, isQuit := cmd().(tea.QuitMsg)
		assert.False(t, isQuit)
	}

	_, cmd = model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestBridge_DropsWithoutProgram(t *testing.T) {
	bridge := NewBridge()
	assert.NotPanics(t, func() {
		bridge.Notify(context.Background(), domain.Notification{Message: "hi"})
		bridge.Publish(context.Background(), domain.Event{Type: domain.EventRecordingTick})
	})
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", formatSize(512))
	assert.Equal(t, "2.0 KiB", formatSize(2048))
	assert.True(t, strings.HasSuffix(formatSize(3<<20), "MiB"))
}
