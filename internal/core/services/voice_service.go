package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lorrc/voice2ticket/internal/core/domain"
	apperrors "github.com/lorrc/voice2ticket/internal/core/errors"
	"github.com/lorrc/voice2ticket/internal/core/ports"
)

// VoiceTicketService uploads a stopped recording and files a ticket for it
type VoiceTicketService struct {
	store     *Store
	connector ports.StorageConnector
	tickets   *TicketService
	fb        *Feedback
	logger    *slog.Logger
	location  StorageLocation
}

var _ ports.VoiceTicketService = (*VoiceTicketService)(nil)

// NewVoiceTicketService creates a new voice ticket service
func NewVoiceTicketService(store *Store, connector ports.StorageConnector, tickets *TicketService, fb *Feedback, location StorageLocation) *VoiceTicketService {
	return &VoiceTicketService{
		store:     store,
		connector: connector,
		tickets:   tickets,
		fb:        fb,
		logger:    fb.logger,
		location:  location,
	}
}

// Submit uploads the recording, then posts a ticket referencing it. An
// upload failure creates no ticket. A post failure keeps the ticket
// locally. Nothing removes an uploaded object whose ticket never reached
// the API.
func (s *VoiceTicketService) Submit(ctx context.Context, params ports.VoiceTicketParams) (*ports.SubmitOutcome, error) {
	// 1. Require a stopped recording and a listed classification
	st := s.store.Snapshot()
	if st.Session == nil {
		return nil, apperrors.ErrNoSession
	}
	if !st.Recording.HasBlob() {
		s.fb.failure(ctx, domain.MsgNoRecording)
		return nil, apperrors.ErrNoRecording
	}

	if params.Department == "" {
		params.Department = st.Session.Department
	}
	if params.Priority == "" {
		params.Priority = domain.PriorityMedium
	}
	if err := domain.ValidateClassification(params.Department, params.Priority); err != nil {
		s.fb.failure(ctx, domain.MsgTicketInvalid)
		return nil, err
	}

	// 2. Acquire credentials and upload
	now := s.fb.now()
	key := domain.AudioKey(s.location.Prefix, st.Session.Email, now)
	if err := s.upload(ctx, key, st.Recording.Blob); err != nil {
		s.logger.WarnContext(ctx, "audio upload failed", "key", key, "error", err)
		s.fb.failure(ctx, domain.MsgUploadFailed+err.Error())
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUploadFailed, err)
	}
	s.fb.success(ctx, domain.MsgAudioUploaded)

	// 3. File the ticket through the shared path
	ticket, err := domain.NewVoiceTicket(params.Department, params.Priority, st.Session.Email, key, now)
	if err != nil {
		return nil, err
	}
	outcome := s.tickets.post(ctx, ticket)
	if !outcome.Persisted {
		s.logger.WarnContext(ctx, "uploaded audio has no persisted ticket", "key", key)
	}

	// 4. Back to idle, unless a new capture replaced the uploaded one
	uploaded := st.Recording
	s.store.Update(func(st domain.AppState) domain.AppState {
		if !st.Recording.SameCapture(uploaded) {
			return st
		}
		return st.WithRecording(st.Recording.Reset())
	})
	return outcome, nil
}

func (s *VoiceTicketService) upload(ctx context.Context, key string, blob []byte) error {
	store, err := s.connector.Connect(ctx)
	if err != nil {
		return err
	}
	return store.PutObject(ctx, key, blob, domain.AudioContentType)
}
