package ports

import (
	"context"

	"github.com/lorrc/voice2ticket/internal/core/domain"
)

// SessionService defines the port for sign-in, sign-out and navigation.
type SessionService interface {
	Login(ctx context.Context, params domain.LoginParams) (*domain.Session, error)
	Signup(ctx context.Context, params domain.SignupParams) (*domain.Session, error)
	Restore(ctx context.Context) (*domain.Session, error)
	SignOut(ctx context.Context) error
	Navigate(ctx context.Context, page domain.Page) (domain.Page, error)
	Current() *domain.Session
}

// SubmitOutcome reports how a ticket submission ended. Persisted is false
// when the ticket only exists in the local list.
type SubmitOutcome struct {
	Ticket    *domain.Ticket
	Persisted bool
}

// TicketService defines the port for the ticket list and text submission.
type TicketService interface {
	Fetch(ctx context.Context) ([]domain.Ticket, error)
	Submit(ctx context.Context, params domain.TicketParams) (*SubmitOutcome, error)
	SetFilter(ctx context.Context, filter domain.TicketFilter) domain.TicketListView
	NextPage(ctx context.Context) domain.TicketListView
	PrevPage(ctx context.Context) domain.TicketListView
	View() domain.TicketListView
	Stats() domain.DashboardStats
}

// RecorderService defines the port for microphone capture.
type RecorderService interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) (domain.RecordingView, error)
	Reset(ctx context.Context) domain.RecordingView
	State() domain.RecordingView
	Blob() []byte
}

// VoiceTicketParams holds the voice form fields.
type VoiceTicketParams struct {
	Department string
	Priority   domain.TicketPriority
}

// VoiceTicketService defines the port for upload-then-submit of recordings.
type VoiceTicketService interface {
	Submit(ctx context.Context, params VoiceTicketParams) (*SubmitOutcome, error)
}

// AudioLibraryService defines the port for the administrative audio browser.
type AudioLibraryService interface {
	Refresh(ctx context.Context) ([]domain.AudioEntry, error)
	Entries() []domain.AudioEntry
}

// Console bundles the services acting on one application state.
type Console interface {
	ID() string
	Sessions() SessionService
	Tickets() TicketService
	Recorder() RecorderService
	Voice() VoiceTicketService
	Audio() AudioLibraryService
	View() domain.ConsoleView
	Close(ctx context.Context)
}
