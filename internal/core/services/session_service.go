package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lorrc/voice2ticket/internal/core/domain"
	apperrors "github.com/lorrc/voice2ticket/internal/core/errors"
	"github.com/lorrc/voice2ticket/internal/core/ports"
)

// SessionService implements the stand-in sign-in and page navigation.
// Credentials are never checked; any non-empty pair is accepted.
type SessionService struct {
	store    *Store
	sessions ports.SessionStore
	tickets  *TicketService
	audio    *AudioLibraryService
	recorder *RecorderService
	fb       *Feedback
	logger   *slog.Logger
}

var _ ports.SessionService = (*SessionService)(nil)

// NewSessionService creates a new session service
func NewSessionService(
	store *Store,
	sessions ports.SessionStore,
	tickets *TicketService,
	audio *AudioLibraryService,
	recorder *RecorderService,
	fb *Feedback,
) *SessionService {
	return &SessionService{
		store:    store,
		sessions: sessions,
		tickets:  tickets,
		audio:    audio,
		recorder: recorder,
		fb:       fb,
		logger:   fb.logger,
	}
}

// Login builds a session from the login form
func (s *SessionService) Login(ctx context.Context, params domain.LoginParams) (*domain.Session, error) {
	session, err := domain.NewLoginSession(params)
	if err != nil {
		s.fb.failure(ctx, domain.MsgEnterCredentials)
		return nil, err
	}
	s.begin(ctx, session, true)
	return session, nil
}

// Signup builds a regular-user session from the signup form
func (s *SessionService) Signup(ctx context.Context, params domain.SignupParams) (*domain.Session, error) {
	session, err := domain.NewSignupSession(params)
	if err != nil {
		s.fb.failure(ctx, domain.MsgCompleteFields)
		return nil, err
	}
	s.begin(ctx, session, true)
	return session, nil
}

// Restore resumes the stored session without notifying the user. A stored
// value that cannot be decoded is treated as no session.
func (s *SessionService) Restore(ctx context.Context) (*domain.Session, error) {
	session, err := s.sessions.Load(ctx)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNoSession) {
			s.logger.WarnContext(ctx, "ignoring unreadable stored session", "error", err)
		}
		return nil, apperrors.ErrNoSession
	}
	if session == nil || session.Email == "" {
		return nil, apperrors.ErrNoSession
	}
	s.begin(ctx, session, false)
	return session, nil
}

// SignOut clears the stored session and returns to the auth view
func (s *SessionService) SignOut(ctx context.Context) error {
	if s.recorder != nil {
		s.recorder.Reset(ctx)
	}
	if err := s.sessions.Clear(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to clear stored session", "error", err)
	}
	s.store.Update(domain.AppState.SignedOut)
	s.fb.info(ctx, domain.MsgSignedOut)
	return nil
}

// Navigate switches page, subject to role gating. Opening the audio page
// reloads the listing.
func (s *SessionService) Navigate(ctx context.Context, page domain.Page) (domain.Page, error) {
	if s.Current() == nil {
		return domain.PageAuth, apperrors.ErrNoSession
	}

	st := s.store.Update(func(st domain.AppState) domain.AppState {
		return st.WithPage(page)
	})
	if st.Page == domain.PageAudio {
		_, _ = s.audio.Refresh(ctx)
	}
	return st.Page, nil
}

// Current returns the signed-in session, or nil
func (s *SessionService) Current() *domain.Session {
	return s.store.Snapshot().Session
}

func (s *SessionService) begin(ctx context.Context, session *domain.Session, announce bool) {
	// 1. Persist (best effort)
	if err := s.sessions.Save(ctx, session); err != nil {
		s.logger.WarnContext(ctx, "failed to store session", "error", err)
	}

	// 2. Land on the role's first page
	s.store.Update(func(st domain.AppState) domain.AppState {
		return st.WithSession(session)
	})
	if announce {
		s.fb.success(ctx, domain.MsgSignedIn)
	}

	// 3. Admins start with fresh data
	if session.IsAdmin() {
		_, _ = s.tickets.Fetch(ctx)
		_, _ = s.audio.Refresh(ctx)
	}
}
