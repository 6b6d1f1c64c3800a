package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lorrc/voice2ticket/internal/core/ports"
)

// AudioHandler handles the administrative audio browser
type AudioHandler struct {
	events       ports.EventPublisher
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewAudioHandler creates a new audio handler
func NewAudioHandler(events ports.EventPublisher, errorHandler *ErrorHandler, logger *slog.Logger) *AudioHandler {
	return &AudioHandler{
		events:       events,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "audio"),
	}
}

// RegisterRoutes sets up the routing for the audio endpoints.
func (h *AudioHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListAudio)
	r.Post("/refresh", h.HandleRefresh)
}

// HandleListAudio handles GET /audio with the last listing
func (h *AudioHandler) HandleListAudio(w http.ResponseWriter, r *http.Request) {
	console, ok := requireAdmin(w, r, h.errorHandler)
	if !ok {
		return
	}
	WriteList(w, console.Audio().Entries())
}

// HandleRefresh handles POST /audio/refresh
func (h *AudioHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	console, ok := requireAdmin(w, r, h.errorHandler)
	if !ok {
		return
	}

	entries, err := console.Audio().Refresh(r.Context())
	publishChange(r.Context(), h.events, console.ID(), console.View())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "audio listing refreshed", "count", len(entries))
	WriteList(w, entries)
}
