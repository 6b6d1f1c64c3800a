package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lorrc/voice2ticket/internal/adapters/primary/validation"
	"github.com/lorrc/voice2ticket/internal/core/domain"
	"github.com/lorrc/voice2ticket/internal/core/ports"
)

// SessionHandler handles the stand-in sign-in and sign-out requests.
// Credentials are never checked.
type SessionHandler struct {
	events       ports.EventPublisher
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(events ports.EventPublisher, errorHandler *ErrorHandler, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		events:       events,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "session"),
	}
}

// RegisterRoutes sets up the routing for the auth endpoints.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.HandleLogin)
	r.Post("/signup", h.HandleSignup)
	r.Post("/signout", h.HandleSignOut)
	r.Get("/session", h.HandleGetSession)
}

// --- Request/Response DTOs ---

// LoginRequest defines the expected JSON body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// SignupRequest defines the expected JSON body for signup
type SignupRequest struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Password   string `json:"password"`
}

// Validate validates the signup request. Missing fields are left to the
// session service so that they raise the usual notification.
func (r *SignupRequest) Validate() error {
	return validation.NewValidator().Department("department", r.Department).Err()
}

// SessionResponse carries the signed-in session, if any, and the page.
type SessionResponse struct {
	Session *domain.Session    `json:"session"`
	View    domain.ConsoleView `json:"view"`
}

// --- Handlers ---

// HandleLogin handles POST /auth/login
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	console, ok := consoleFrom(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[LoginRequest](w, r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	session, err := console.Sessions().Login(r.Context(), domain.LoginParams{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "console signed in", "role", session.Role)
	h.respond(w, r, console)
}

// HandleSignup handles POST /auth/signup
func (h *SessionHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	console, ok := consoleFrom(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[SignupRequest](w, r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if _, err := console.Sessions().Signup(r.Context(), domain.SignupParams{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Department: req.Department,
		Password:   req.Password,
	}); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "console signed up")
	h.respond(w, r, console)
}

// HandleSignOut handles POST /auth/signout
func (h *SessionHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	console, ok := consoleFrom(w, r)
	if !ok {
		return
	}

	if err := console.Sessions().SignOut(r.Context()); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	h.respond(w, r, console)
}

// HandleGetSession handles GET /auth/session
func (h *SessionHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	console, ok := consoleFrom(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, SessionResponse{
		Session: console.Sessions().Current(),
		View:    console.View(),
	})
}

func (h *SessionHandler) respond(w http.ResponseWriter, r *http.Request, console ports.Console) {
	view := console.View()
	publishChange(r.Context(), h.events, console.ID(), view)
	WriteJSON(w, http.StatusOK, SessionResponse{
		Session: console.Sessions().Current(),
		View:    view,
	})
}
