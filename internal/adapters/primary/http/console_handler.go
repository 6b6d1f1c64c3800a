package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	mw "github.com/lorrc/voice2ticket/internal/adapters/primary/http/middleware"
	"github.com/lorrc/voice2ticket/internal/adapters/primary/validation"
	"github.com/lorrc/voice2ticket/internal/auth"
	"github.com/lorrc/voice2ticket/internal/core/domain"
	apperrors "github.com/lorrc/voice2ticket/internal/core/errors"
	"github.com/lorrc/voice2ticket/internal/core/ports"
)

// ConsoleManager creates and discards server-side consoles.
type ConsoleManager interface {
	Create(ctx context.Context) (ports.Console, error)
	Remove(ctx context.Context, id string)
}

// ConsoleHandler handles console lifecycle and page view requests
type ConsoleHandler struct {
	consoles     ConsoleManager
	tokenManager *auth.TokenManager
	events       ports.EventPublisher
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewConsoleHandler creates a new console handler
func NewConsoleHandler(
	consoles ConsoleManager,
	tokenManager *auth.TokenManager,
	events ports.EventPublisher,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *ConsoleHandler {
	return &ConsoleHandler{
		consoles:     consoles,
		tokenManager: tokenManager,
		events:       events,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "console"),
	}
}

// RegisterPublicRoutes sets up the routes that need no console token.
func (h *ConsoleHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/", h.HandleCreateConsole)
}

// RegisterRoutes sets up the routes of the bound console.
func (h *ConsoleHandler) RegisterRoutes(r chi.Router) {
	r.Delete("/consoles/current", h.HandleCloseConsole)
	r.Get("/view", h.HandleGetView)
	r.Post("/view/navigate", h.HandleNavigate)
}

// --- Request/Response DTOs ---

// CreateConsoleResponse is returned when a console is issued
type CreateConsoleResponse struct {
	ConsoleID string             `json:"consoleId"`
	Token     string             `json:"token"`
	ExpiresAt string             `json:"expiresAt"`
	View      domain.ConsoleView `json:"view"`
}

// NavigateRequest defines the expected JSON body for page switches
type NavigateRequest struct {
	Page string `json:"page"`
}

// Validate validates the navigate request
func (r *NavigateRequest) Validate() error {
	return validation.NewValidator().Page("page", r.Page).Err()
}

// --- Handlers ---

// HandleCreateConsole handles POST /consoles
func (h *ConsoleHandler) HandleCreateConsole(w http.ResponseWriter, r *http.Request) {
	console, err := h.consoles.Create(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	token, expiresAt, err := h.tokenManager.GenerateToken(console.ID())
	if err != nil {
		h.consoles.Remove(r.Context(), console.ID())
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteCreated(w, CreateConsoleResponse{
		ConsoleID: console.ID(),
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
		View:      console.View(),
	})
}

// HandleCloseConsole handles DELETE /consoles/current
func (h *ConsoleHandler) HandleCloseConsole(w http.ResponseWriter, r *http.Request) {
	console, ok := consoleFrom(w, r)
	if !ok {
		return
	}

	h.consoles.Remove(r.Context(), console.ID())
	h.logger.InfoContext(r.Context(), "console closed by client")
	WriteNoContent(w)
}

// HandleGetView handles GET /view
func (h *ConsoleHandler) HandleGetView(w http.ResponseWriter, r *http.Request) {
	console, ok := consoleFrom(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, console.View())
}

// HandleNavigate handles POST /view/navigate
func (h *ConsoleHandler) HandleNavigate(w http.ResponseWriter, r *http.Request) {
	console, ok := consoleFrom(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[NavigateRequest](w, r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if _, err := console.Sessions().Navigate(r.Context(), domain.Page(req.Page)); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	respondView(w, r, h.events, console)
}

// --- Helpers shared by the console-bound handlers ---

// consoleFrom returns the console bound by the ConsoleAuth middleware
func consoleFrom(w http.ResponseWriter, r *http.Request) (ports.Console, bool) {
	console, ok := mw.GetConsole(r.Context())
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error: "Not authorized",
			Code:  "UNAUTHORIZED",
		})
		return nil, false
	}
	return console, true
}

// requireAdmin rejects consoles whose session cannot see the admin pages
func requireAdmin(w http.ResponseWriter, r *http.Request, errorHandler *ErrorHandler) (ports.Console, bool) {
	console, ok := consoleFrom(w, r)
	if !ok {
		return nil, false
	}
	if !console.Sessions().Current().IsAdmin() {
		errorHandler.Handle(w, r, apperrors.ErrForbidden)
		return nil, false
	}
	return console, true
}

// respondView writes the rendered page and tells the console's other
// connections that it changed.
func respondView(w http.ResponseWriter, r *http.Request, events ports.EventPublisher, console ports.Console) {
	view := console.View()
	publishChange(r.Context(), events, console.ID(), view)
	WriteJSON(w, http.StatusOK, view)
}

func publishChange(ctx context.Context, events ports.EventPublisher, consoleID string, view domain.ConsoleView) {
	if events == nil {
		return
	}
	events.Publish(ctx, domain.Event{
		Type:      domain.EventStateChanged,
		Payload:   view,
		ConsoleID: consoleID,
	})
}
