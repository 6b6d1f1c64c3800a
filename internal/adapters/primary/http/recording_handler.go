package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/lorrc/voice2ticket/internal/adapters/primary/validation"
	"github.com/lorrc/voice2ticket/internal/core/domain"
	apperrors "github.com/lorrc/voice2ticket/internal/core/errors"
	"github.com/lorrc/voice2ticket/internal/core/ports"
)

// RecordingHandler handles microphone capture and voice ticket requests
type RecordingHandler struct {
	events       ports.EventPublisher
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewRecordingHandler creates a new recording handler
func NewRecordingHandler(events ports.EventPublisher, errorHandler *ErrorHandler, logger *slog.Logger) *RecordingHandler {
	return &RecordingHandler{
		events:       events,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "recording"),
	}
}

// RegisterRoutes sets up the routing for the recorder endpoints.
func (h *RecordingHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleGetRecording)
	r.Post("/start", h.HandleStart)
	r.Post("/stop", h.HandleStop)
	r.Post("/reset", h.HandleReset)
	r.Post("/submit", h.HandleSubmit)
	r.Get("/audio", h.HandleGetAudio)
}

// VoiceTicketRequest defines the expected JSON body for a voice ticket
type VoiceTicketRequest struct {
	Department string `json:"department"`
	Priority   string `json:"priority"`
}

// Validate validates the voice ticket request
func (r *VoiceTicketRequest) Validate() error {
	return validation.NewValidator().
		Department("department", r.Department).
		Priority("priority", r.Priority).
		Err()
}

// HandleGetRecording handles GET /recording
func (h *RecordingHandler) HandleGetRecording(w http.ResponseWriter, r *http.Request) {
	console, ok := consoleFrom(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, console.Recorder().State())
}

// HandleStart handles POST /recording/start
func (h *RecordingHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	console, ok := h.signedIn(w, r)
	if !ok {
		return
	}

	if err := console.Recorder().Start(r.Context()); err != nil {
		publishChange(r.Context(), h.events, console.ID(), console.View())
		h.errorHandler.Handle(w, r, err)
		return
	}
	h.respond(w, r, console, console.Recorder().State())
}

// HandleStop handles POST /recording/stop
func (h *RecordingHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	console, ok := h.signedIn(w, r)
	if !ok {
		return
	}

	view, err := console.Recorder().Stop(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	h.respond(w, r, console, view)
}

// HandleReset handles POST /recording/reset
func (h *RecordingHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	console, ok := h.signedIn(w, r)
	if !ok {
		return
	}
	h.respond(w, r, console, console.Recorder().Reset(r.Context()))
}

// HandleSubmit handles POST /recording/submit
func (h *RecordingHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	console, ok := h.signedIn(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[VoiceTicketRequest](w, r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	outcome, err := console.Voice().Submit(r.Context(), ports.VoiceTicketParams{
		Department: req.Department,
		Priority:   domain.TicketPriority(req.Priority),
	})
	publishChange(r.Context(), h.events, console.ID(), console.View())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "voice ticket submitted",
		"audio_key", outcome.Ticket.AudioKey,
		"persisted", outcome.Persisted,
	)
	WriteCreated(w, SubmitTicketResponse{Ticket: outcome.Ticket, Persisted: outcome.Persisted})
}

// HandleGetAudio handles GET /recording/audio, the preview of a stopped
// recording.
func (h *RecordingHandler) HandleGetAudio(w http.ResponseWriter, r *http.Request) {
	console, ok := consoleFrom(w, r)
	if !ok {
		return
	}

	blob := console.Recorder().Blob()
	if blob == nil {
		h.errorHandler.Handle(w, r, apperrors.ErrNoRecording)
		return
	}

	w.Header().Set("Content-Type", domain.AudioContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(blob)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob)
}

func (h *RecordingHandler) signedIn(w http.ResponseWriter, r *http.Request) (ports.Console, bool) {
	console, ok := consoleFrom(w, r)
	if !ok {
		return nil, false
	}
	if console.Sessions().Current() == nil {
		h.errorHandler.Handle(w, r, apperrors.ErrNoSession)
		return nil, false
	}
	return console, true
}

func (h *RecordingHandler) respond(w http.ResponseWriter, r *http.Request, console ports.Console, view domain.RecordingView) {
	publishChange(r.Context(), h.events, console.ID(), console.View())
	WriteJSON(w, http.StatusOK, view)
}
