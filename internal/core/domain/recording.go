package domain

import (
	"fmt"
	"time"

	apperrors "github.com/lorrc/voice2ticket/internal/core/errors"
)

// RecordingTick is how often the elapsed-time display is refreshed.
const RecordingTick = 250 * time.Millisecond

// AudioContentType is the media type of captured blobs.
const AudioContentType = "audio/webm"

// RecordingPhase is the state of the recorder.
type RecordingPhase string

const (
	RecordingIdle      RecordingPhase = "idle"
	RecordingCapturing RecordingPhase = "recording"
	RecordingStopped   RecordingPhase = "stopped"
)

// Recording holds one capture. Blob is non-nil exactly when Phase is
// RecordingStopped.
type Recording struct {
	Phase     RecordingPhase
	StartedAt time.Time
	Elapsed   time.Duration
	Chunks    [][]byte
	Blob      []byte
}

// NewRecording returns an idle recorder.
func NewRecording() Recording {
	return Recording{Phase: RecordingIdle}
}

// Start moves an idle recording into the capturing phase. Call it only after
// the capture device has been opened.
func (r Recording) Start(now time.Time) (Recording, error) {
	if r.Phase == RecordingCapturing {
		return r, apperrors.ErrRecordingActive
	}
	return Recording{
		Phase:     RecordingCapturing,
		StartedAt: now,
		Chunks:    [][]byte{},
	}, nil
}

// Append stores a captured chunk. Empty chunks are dropped.
func (r Recording) Append(chunk []byte) Recording {
	if r.Phase != RecordingCapturing || len(chunk) == 0 {
		return r
	}
	chunks := make([][]byte, len(r.Chunks), len(r.Chunks)+1)
	copy(chunks, r.Chunks)
	r.Chunks = append(chunks, chunk)
	return r
}

// Tick refreshes the elapsed time while capturing.
func (r Recording) Tick(now time.Time) Recording {
	if r.Phase != RecordingCapturing {
		return r
	}
	r.Elapsed = now.Sub(r.StartedAt)
	return r
}

// Stop assembles the chunks into a single blob. The blob is never nil,
// even for a capture that produced no data.
func (r Recording) Stop(now time.Time) (Recording, error) {
	if r.Phase != RecordingCapturing {
		return r, apperrors.ErrNotRecording
	}

	size := 0
	for _, c := range r.Chunks {
		size += len(c)
	}
	blob := make([]byte, 0, size)
	for _, c := range r.Chunks {
		blob = append(blob, c...)
	}

	r.Phase = RecordingStopped
	r.Elapsed = now.Sub(r.StartedAt)
	r.Blob = blob
	return r, nil
}

// Reset discards the blob and chunks.
func (r Recording) Reset() Recording {
	return NewRecording()
}

// SameCapture reports whether r is still the stopped capture other was
// taken from.
func (r Recording) SameCapture(other Recording) bool {
	return r.Phase == RecordingStopped &&
		other.Phase == RecordingStopped &&
		r.StartedAt.Equal(other.StartedAt) &&
		len(r.Blob) == len(other.Blob)
}

// IsCapturing reports whether a capture is in progress.
func (r Recording) IsCapturing() bool {
	return r.Phase == RecordingCapturing
}

// HasBlob reports whether a stopped recording is ready for upload.
func (r Recording) HasBlob() bool {
	return r.Phase == RecordingStopped && r.Blob != nil
}

// FormatElapsed renders a duration as mm:ss.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// RecordingView is the serialisable projection of a Recording.
type RecordingView struct {
	Phase   RecordingPhase `json:"phase"`
	Elapsed string         `json:"elapsed"`
	Size    int            `json:"size"`
	Chunks  int            `json:"chunks"`
}

// View projects the recording for display.
func (r Recording) View() RecordingView {
	return RecordingView{
		Phase:   r.Phase,
		Elapsed: FormatElapsed(r.Elapsed),
		Size:    len(r.Blob),
		Chunks:  len(r.Chunks),
	}
}
