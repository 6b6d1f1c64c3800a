package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lorrc/voice2ticket/internal/adapters/primary/validation"
	"github.com/lorrc/voice2ticket/internal/core/domain"
	"github.com/lorrc/voice2ticket/internal/core/ports"
)

const (
	maxSearchLength = 200
	maxStatusLength = 64
)

// TicketHandler handles HTTP requests for the ticket list and submission
type TicketHandler struct {
	events       ports.EventPublisher
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(events ports.EventPublisher, errorHandler *ErrorHandler, logger *slog.Logger) *TicketHandler {
	return &TicketHandler{
		events:       events,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "ticket"),
	}
}

// RegisterRoutes sets up the routing for all ticket endpoints.
func (h *TicketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListTickets)
	r.Post("/", h.HandleSubmitTicket)
	r.Post("/refresh", h.HandleRefresh)
	r.Put("/filter", h.HandleSetFilter)
	r.Post("/page/next", h.HandleNextPage)
	r.Post("/page/prev", h.HandlePrevPage)
	r.Get("/stats", h.HandleStats)
}

// --- Request/Response DTOs ---

// SubmitTicketRequest defines the expected JSON body for a text ticket
type SubmitTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Department  string `json:"department"`
	Priority    string `json:"priority"`
}

// Validate validates the submit request. Blank title or description is
// left to the ticket service so that it raises the usual notification.
func (r *SubmitTicketRequest) Validate() error {
	return validation.NewValidator().
		Department("department", r.Department).
		Priority("priority", r.Priority).
		Err()
}

// FilterRequest defines the expected JSON body for list filters
type FilterRequest struct {
	Search     string `json:"search"`
	Status     string `json:"status"`
	Department string `json:"department"`
	Priority   string `json:"priority"`
}

// Validate validates the filter request. Status is free text because the
// API may report statuses the forms do not offer.
func (r *FilterRequest) Validate() error {
	return validation.NewValidator().
		MaxLength("search", r.Search, maxSearchLength).
		MaxLength("status", r.Status, maxStatusLength).
		Department("department", r.Department).
		Priority("priority", r.Priority).
		Err()
}

// SubmitTicketResponse reports where the ticket ended up
type SubmitTicketResponse struct {
	Ticket    *domain.Ticket `json:"ticket"`
	Persisted bool           `json:"persisted"`
}

// --- Handlers ---

// HandleListTickets handles GET /tickets
func (h *TicketHandler) HandleListTickets(w http.ResponseWriter, r *http.Request) {
	console, ok := requireAdmin(w, r, h.errorHandler)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, console.Tickets().View())
}

// HandleSubmitTicket handles POST /tickets. A ticket the API did not accept
// is still kept in the console's list, so the response is 201 either way and
// Persisted tells the two apart.
func (h *TicketHandler) HandleSubmitTicket(w http.ResponseWriter, r *http.Request) {
	console, ok := consoleFrom(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[SubmitTicketRequest](w, r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	outcome, err := console.Tickets().Submit(r.Context(), domain.TicketParams{
		Title:       req.Title,
		Description: req.Description,
		Department:  req.Department,
		Priority:    domain.TicketPriority(req.Priority),
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "ticket submitted", "persisted", outcome.Persisted)
	publishChange(r.Context(), h.events, console.ID(), console.View())
	WriteCreated(w, SubmitTicketResponse{Ticket: outcome.Ticket, Persisted: outcome.Persisted})
}

// HandleRefresh handles POST /tickets/refresh
func (h *TicketHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	console, ok := requireAdmin(w, r, h.errorHandler)
	if !ok {
		return
	}

	if _, err := console.Tickets().Fetch(r.Context()); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	h.respondList(w, r, console, console.Tickets().View())
}

// HandleSetFilter handles PUT /tickets/filter
func (h *TicketHandler) HandleSetFilter(w http.ResponseWriter, r *http.Request) {
	console, ok := requireAdmin(w, r, h.errorHandler)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[FilterRequest](w, r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	view := console.Tickets().SetFilter(r.Context(), domain.TicketFilter{
		Search:     req.Search,
		Status:     domain.TicketStatus(req.Status),
		Department: req.Department,
		Priority:   domain.TicketPriority(req.Priority),
	})
	h.respondList(w, r, console, view)
}

// HandleNextPage handles POST /tickets/page/next
func (h *TicketHandler) HandleNextPage(w http.ResponseWriter, r *http.Request) {
	console, ok := requireAdmin(w, r, h.errorHandler)
	if !ok {
		return
	}
	h.respondList(w, r, console, console.Tickets().NextPage(r.Context()))
}

// HandlePrevPage handles POST /tickets/page/prev
func (h *TicketHandler) HandlePrevPage(w http.ResponseWriter, r *http.Request) {
	console, ok := requireAdmin(w, r, h.errorHandler)
	if !ok {
		return
	}
	h.respondList(w, r, console, console.Tickets().PrevPage(r.Context()))
}

// HandleStats handles GET /tickets/stats
func (h *TicketHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	console, ok := requireAdmin(w, r, h.errorHandler)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, console.Tickets().Stats())
}

func (h *TicketHandler) respondList(w http.ResponseWriter, r *http.Request, console ports.Console, view domain.TicketListView) {
	publishChange(r.Context(), h.events, console.ID(), console.View())
	WriteJSON(w, http.StatusOK, view)
}
