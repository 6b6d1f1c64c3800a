package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/lorrc/voice2ticket/internal/core/domain"
	"github.com/lorrc/voice2ticket/internal/core/ports"
)

// StorageLocation names where recordings live.
type StorageLocation struct {
	Bucket string
	Region string
	Prefix string
}

// ConsoleConfig holds per-console settings
type ConsoleConfig struct {
	PageSize int
	Tick     time.Duration
	Location StorageLocation
}

// ConsoleDeps are the collaborators of one console. Notifier and Publisher
// may be nil.
type ConsoleDeps struct {
	TicketAPI ports.TicketAPI
	Storage   ports.StorageConnector
	Sessions  ports.SessionStore
	Capture   ports.CaptureDevice
	Notifier  ports.Notifier
	Publisher ports.EventPublisher
	Logger    *slog.Logger
	Clock     func() time.Time
}

// Console wires the services of one application state together
type Console struct {
	id       string
	store    *Store
	location StorageLocation

	sessions *SessionService
	tickets  *TicketService
	recorder *RecorderService
	voice    *VoiceTicketService
	audio    *AudioLibraryService
}

var _ ports.Console = (*Console)(nil)

// NewConsole creates a signed-out console
func NewConsole(id string, deps ConsoleDeps, cfg ConsoleConfig) *Console {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if id != "" {
		logger = logger.With("console_id", id)
	}

	store := NewStore(cfg.PageSize)
	fb := NewFeedback(store, deps.Notifier, logger, deps.Clock)

	tickets := NewTicketService(store, deps.TicketAPI, fb, cfg.Location)
	audio := NewAudioLibraryService(store, deps.Storage, fb, cfg.Location)
	recorder := NewRecorderService(store, deps.Capture, deps.Publisher, fb, cfg.Tick)
	voice := NewVoiceTicketService(store, deps.Storage, tickets, fb, cfg.Location)
	sessions := NewSessionService(store, deps.Sessions, tickets, audio, recorder, fb)

	return &Console{
		id:       id,
		store:    store,
		location: cfg.Location,
		sessions: sessions,
		tickets:  tickets,
		recorder: recorder,
		voice:    voice,
		audio:    audio,
	}
}

func (c *Console) ID() string                       { return c.id }
func (c *Console) Sessions() ports.SessionService   { return c.sessions }
func (c *Console) Tickets() ports.TicketService     { return c.tickets }
func (c *Console) Recorder() ports.RecorderService  { return c.recorder }
func (c *Console) Voice() ports.VoiceTicketService  { return c.voice }
func (c *Console) Audio() ports.AudioLibraryService { return c.audio }

// State returns the raw application state
func (c *Console) State() domain.AppState {
	return c.store.Snapshot()
}

// View renders the current page
func (c *Console) View() domain.ConsoleView {
	return domain.Render(c.store.Snapshot(), c.location.Bucket, c.location.Region)
}

// Close stops any capture in progress
func (c *Console) Close(ctx context.Context) {
	c.recorder.Reset(ctx)
}
