package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lorrc/voice2ticket/internal/core/domain"
	apperrors "github.com/lorrc/voice2ticket/internal/core/errors"
	"github.com/lorrc/voice2ticket/internal/core/ports"
)

// TicketService implements the ticket list and ticket submission
type TicketService struct {
	store    *Store
	api      ports.TicketAPI
	fb       *Feedback
	logger   *slog.Logger
	location StorageLocation
}

var _ ports.TicketService = (*TicketService)(nil)

// NewTicketService creates a new ticket service
func NewTicketService(store *Store, api ports.TicketAPI, fb *Feedback, location StorageLocation) *TicketService {
	return &TicketService{
		store:    store,
		api:      api,
		fb:       fb,
		logger:   fb.logger,
		location: location,
	}
}

// Fetch replaces the ticket set with the API's. A failed fetch leaves an
// empty list and is not reported to the user.
func (s *TicketService) Fetch(ctx context.Context) ([]domain.Ticket, error) {
	// 1. Authorization Check
	if !s.store.Snapshot().Session.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	// 2. Fetch, degrading to an empty list
	tickets, err := s.api.ListTickets(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "ticket fetch failed", "error", err)
		tickets = []domain.Ticket{}
	}

	// 3. Replace the set
	s.store.Update(func(st domain.AppState) domain.AppState {
		return st.WithTickets(tickets)
	})
	return tickets, nil
}

// Submit validates the form and sends the ticket
func (s *TicketService) Submit(ctx context.Context, params domain.TicketParams) (*ports.SubmitOutcome, error) {
	// 1. Session Check
	session := s.store.Snapshot().Session
	if session == nil {
		return nil, apperrors.ErrNoSession
	}

	// 2. Create domain entity with validation
	if params.Department == "" {
		params.Department = session.Department
	}
	if params.Priority == "" {
		params.Priority = domain.PriorityMedium
	}
	ticket, err := domain.NewTicket(params, session.Email, s.fb.now())
	switch {
	case errors.Is(err, apperrors.ErrInvalidDepartment), errors.Is(err, apperrors.ErrInvalidPriority):
		s.fb.failure(ctx, domain.MsgTicketInvalid)
		return nil, err
	case err != nil:
		s.fb.failure(ctx, domain.MsgTicketRequired)
		return nil, err
	}

	// 3. Send it
	return s.post(ctx, ticket), nil
}

// post sends a ticket and falls back to the local list when the API is
// unreachable or rejects it. It is shared by text and voice submissions.
func (s *TicketService) post(ctx context.Context, ticket *domain.Ticket) *ports.SubmitOutcome {
	if err := s.api.CreateTicket(ctx, ticket); err != nil {
		s.logger.WarnContext(ctx, "ticket post failed, keeping it locally", "error", err)
		s.store.Update(func(st domain.AppState) domain.AppState {
			return st.WithLocalTicket(*ticket)
		})
		s.fb.info(ctx, domain.MsgTicketLocal)
		return &ports.SubmitOutcome{Ticket: ticket, Persisted: false}
	}

	s.fb.success(ctx, domain.MsgTicketSubmitted)
	if s.store.Snapshot().Session.IsAdmin() {
		_, _ = s.Fetch(ctx)
	}
	return &ports.SubmitOutcome{Ticket: ticket, Persisted: true}
}

// SetFilter replaces the filters and returns to the first page
func (s *TicketService) SetFilter(_ context.Context, filter domain.TicketFilter) domain.TicketListView {
	s.store.Update(func(st domain.AppState) domain.AppState {
		return st.WithFilter(filter)
	})
	return s.View()
}

// NextPage moves one page forward
func (s *TicketService) NextPage(_ context.Context) domain.TicketListView {
	s.store.Update(domain.AppState.NextPage)
	return s.View()
}

// PrevPage moves one page back
func (s *TicketService) PrevPage(_ context.Context) domain.TicketListView {
	s.store.Update(domain.AppState.PrevPage)
	return s.View()
}

// View renders the current ticket page
func (s *TicketService) View() domain.TicketListView {
	st := s.store.Snapshot()
	return domain.BuildTicketListView(st.Tickets, st.List, s.location.Bucket, s.location.Region)
}

// Stats summarises the ticket set for the dashboard
func (s *TicketService) Stats() domain.DashboardStats {
	return domain.ComputeStats(s.store.Snapshot().Tickets)
}
