package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lorrc/voice2ticket/internal/core/domain"
	apperrors "github.com/lorrc/voice2ticket/internal/core/errors"
	"github.com/lorrc/voice2ticket/internal/core/ports"
)

// maxListPages bounds a listing against a store that never stops
// reporting truncation.
const maxListPages = 10000

// AudioLibraryService implements the administrative audio browser
type AudioLibraryService struct {
	store     *Store
	connector ports.StorageConnector
	fb        *Feedback
	logger    *slog.Logger
	location  StorageLocation
}

var _ ports.AudioLibraryService = (*AudioLibraryService)(nil)

// NewAudioLibraryService creates a new audio library service
func NewAudioLibraryService(store *Store, connector ports.StorageConnector, fb *Feedback, location StorageLocation) *AudioLibraryService {
	return &AudioLibraryService{
		store:     store,
		connector: connector,
		fb:        fb,
		logger:    fb.logger,
		location:  location,
	}
}

// Refresh lists every recording under the prefix. A failure keeps the
// previous listing and discards any pages already read.
func (s *AudioLibraryService) Refresh(ctx context.Context) ([]domain.AudioEntry, error) {
	// 1. Authorization Check
	if !s.store.Snapshot().Session.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	// 2. Page through the bucket
	objects, err := s.listAll(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "audio listing failed", "error", err)
		s.fb.failure(ctx, domain.MsgAudioListFailed+err.Error())
		return nil, fmt.Errorf("%w: %w", apperrors.ErrListFailed, err)
	}

	// 3. Keep recordings, newest first
	entries := domain.BuildAudioEntries(objects, s.location.Bucket, s.location.Region)
	s.store.Update(func(st domain.AppState) domain.AppState {
		return st.WithAudio(entries)
	})
	return entries, nil
}

// Entries returns the last successful listing
func (s *AudioLibraryService) Entries() []domain.AudioEntry {
	return s.store.Snapshot().Audio
}

func (s *AudioLibraryService) listAll(ctx context.Context) ([]domain.StoredObject, error) {
	store, err := s.connector.Connect(ctx)
	if err != nil {
		return nil, err
	}

	var (
		objects []domain.StoredObject
		token   string
	)
	for range maxListPages {
		page, err := store.ListObjects(ctx, s.location.Prefix, token)
		if err != nil {
			return nil, err
		}
		objects = append(objects, page.Objects...)
		if !page.Truncated || page.NextToken == "" {
			return objects, nil
		}
		token = page.NextToken
	}
	return nil, fmt.Errorf("listing exceeded %d pages", maxListPages)
}
