package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lorrc/voice2ticket/internal/core/domain"
	apperrors "github.com/lorrc/voice2ticket/internal/core/errors"
	"github.com/lorrc/voice2ticket/internal/core/ports"
)

// RecorderService drives the capture device and the elapsed-time ticker
type RecorderService struct {
	store     *Store
	device    ports.CaptureDevice
	publisher ports.EventPublisher
	fb        *Feedback
	logger    *slog.Logger
	tick      time.Duration

	mu     sync.Mutex
	stream ports.CaptureStream
	cancel context.CancelFunc
	done   chan struct{}
	ticks  sync.WaitGroup
}

var _ ports.RecorderService = (*RecorderService)(nil)

// NewRecorderService creates a new recorder service. A nil publisher
// disables tick events; the elapsed time is still kept on the state.
func NewRecorderService(store *Store, device ports.CaptureDevice, publisher ports.EventPublisher, fb *Feedback, tick time.Duration) *RecorderService {
	if tick <= 0 {
		tick = domain.RecordingTick
	}
	return &RecorderService{
		store:     store,
		device:    device,
		publisher: publisher,
		fb:        fb,
		logger:    fb.logger,
		tick:      tick,
	}
}

// Start opens the microphone and begins capturing
func (s *RecorderService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 1. One recording at a time
	if s.stream != nil {
		return apperrors.ErrRecordingActive
	}

	// 2. Ask for the microphone
	stream, err := s.device.Open(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "microphone unavailable", "error", err)
		s.store.Update(func(st domain.AppState) domain.AppState {
			return st.WithRecording(domain.NewRecording())
		})
		s.fb.failure(ctx, domain.MsgMicDenied)
		if !errors.Is(err, apperrors.ErrMicPermissionDenied) {
			err = fmt.Errorf("%w: %v", apperrors.ErrMicPermissionDenied, err)
		}
		return err
	}

	// 3. Enter the capturing phase
	var startErr error
	s.store.Update(func(st domain.AppState) domain.AppState {
		rec, err := st.Recording.Start(s.fb.now())
		if err != nil {
			startErr = err
			return st
		}
		return st.WithRecording(rec)
	})
	if startErr != nil {
		_ = stream.Stop()
		return startErr
	}

	// 4. Collect chunks and tick until stopped. The capture outlives the
	// triggering request, so it must not inherit its cancellation.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.stream = stream
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.drain(stream, s.done)
	s.ticks.Add(1)
	go s.runTicker(runCtx)

	s.logger.DebugContext(ctx, "recording started")
	return nil
}

// Stop ends the capture and assembles the blob
func (s *RecorderService) Stop(ctx context.Context) (domain.RecordingView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream == nil {
		return s.State(), apperrors.ErrNotRecording
	}
	s.halt(ctx)

	var stopErr error
	st := s.store.Update(func(st domain.AppState) domain.AppState {
		rec, err := st.Recording.Stop(s.fb.now())
		if err != nil {
			stopErr = err
			return st
		}
		return st.WithRecording(rec)
	})
	if stopErr != nil {
		return st.Recording.View(), stopErr
	}

	s.logger.DebugContext(ctx, "recording stopped", "bytes", len(st.Recording.Blob))
	return st.Recording.View(), nil
}

// Reset discards the blob, stopping an active capture first
func (s *RecorderService) Reset(ctx context.Context) domain.RecordingView {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream != nil {
		s.halt(ctx)
	}
	st := s.store.Update(func(st domain.AppState) domain.AppState {
		return st.WithRecording(st.Recording.Reset())
	})
	return st.Recording.View()
}

// State returns the current recorder view
func (s *RecorderService) State() domain.RecordingView {
	return s.store.Snapshot().Recording.View()
}

// Blob returns the assembled recording, or nil when none is ready
func (s *RecorderService) Blob() []byte {
	rec := s.store.Snapshot().Recording
	if !rec.HasBlob() {
		return nil
	}
	return rec.Blob
}

// halt stops the ticker and the device and waits for the last chunks.
// Callers hold s.mu.
func (s *RecorderService) halt(ctx context.Context) {
	s.cancel()
	s.ticks.Wait()

	if err := s.stream.Stop(); err != nil {
		s.logger.WarnContext(ctx, "capture stop failed", "error", err)
	}
	select {
	case <-s.done:
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "gave up waiting for capture to drain")
	}

	s.stream = nil
	s.cancel = nil
	s.done = nil
}

func (s *RecorderService) drain(stream ports.CaptureStream, done chan<- struct{}) {
	defer close(done)
	for chunk := range stream.Chunks() {
		s.store.Update(func(st domain.AppState) domain.AppState {
			return st.WithRecording(st.Recording.Append(chunk))
		})
	}
}

func (s *RecorderService) runTicker(ctx context.Context) {
	defer s.ticks.Done()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := s.store.Update(func(st domain.AppState) domain.AppState {
				return st.WithRecording(st.Recording.Tick(s.fb.now()))
			})
			if s.publisher != nil {
				s.publisher.Publish(ctx, domain.Event{
					Type:    domain.EventRecordingTick,
					Payload: st.Recording.View(),
				})
			}
		}
	}
}
