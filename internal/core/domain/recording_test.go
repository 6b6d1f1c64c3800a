package domain_test

import (
	"testing"
	"time"

	"github.com/lorrc/voice2ticket/internal/core/domain"
	apperrors "github.com/lorrc/voice2ticket/internal/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecording_Lifecycle(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	rec := domain.NewRecording()
	assert.Equal(t, domain.RecordingIdle, rec.Phase)

	rec, err := rec.Start(start)
	require.NoError(t, err)
	assert.True(t, rec.IsCapturing())

	rec = rec.Append([]byte("ab"))
	rec = rec.Append(nil)
	rec = rec.Append([]byte{})
	rec = rec.Append([]byte("cd"))
	assert.Len(t, rec.Chunks, 2)

	rec = rec.Tick(start.Add(65 * time.Second))
	assert.Equal(t, "01:05", domain.FormatElapsed(rec.Elapsed))

	rec, err = rec.Stop(start.Add(70 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, domain.RecordingStopped, rec.Phase)
	assert.Equal(t, []byte("abcd"), rec.Blob)
	assert.True(t, rec.HasBlob())

	rec = rec.Reset()
	assert.Equal(t, domain.RecordingIdle, rec.Phase)
	assert.Nil(t, rec.Blob)
	assert.Empty(t, rec.Chunks)
}

func TestRecording_StopWithoutChunksYieldsEmptyBlob(t *testing.T) {
	rec, err := domain.NewRecording().Start(time.Now())
	require.NoError(t, err)

	rec, err = rec.Stop(time.Now())
	require.NoError(t, err)
	assert.NotNil(t, rec.Blob)
	assert.Empty(t, rec.Blob)
	assert.True(t, rec.HasBlob())
}

func TestRecording_InvalidTransitions(t *testing.T) {
	_, err := domain.NewRecording().Stop(time.Now())
	assert.ErrorIs(t, err, apperrors.ErrNotRecording)

	rec, err := domain.NewRecording().Start(time.Now())
	require.NoError(t, err)
	_, err = rec.Start(time.Now())
	assert.ErrorIs(t, err, apperrors.ErrRecordingActive)
}

func TestRecording_AppendIgnoredOutsideCapture(t *testing.T) {
	rec := domain.NewRecording().Append([]byte("x"))
	assert.Empty(t, rec.Chunks)
}

func TestRecording_AppendDoesNotAliasPrevious(t *testing.T) {
	rec, _ := domain.NewRecording().Start(time.Now())
	first := rec.Append([]byte("a"))
	second := first.Append([]byte("b"))

	assert.Len(t, first.Chunks, 1)
	assert.Len(t, second.Chunks, 2)
}

func TestRecording_SameCapture(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	rec, err := domain.NewRecording().Start(start)
	require.NoError(t, err)
	stopped, err := rec.Append([]byte("abc")).Stop(start.Add(time.Second))
	require.NoError(t, err)

	assert.True(t, stopped.SameCapture(stopped))
	assert.False(t, stopped.Reset().SameCapture(stopped))

	next, err := stopped.Start(start.Add(2 * time.Second))
	require.NoError(t, err)
	assert.False(t, next.SameCapture(stopped))

	nextStopped, err := next.Append([]byte("defg")).Stop(start.Add(3 * time.Second))
	require.NoError(t, err)
	assert.False(t, nextStopped.SameCapture(stopped))
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "00:00", domain.FormatElapsed(0))
	assert.Equal(t, "00:00", domain.FormatElapsed(-time.Second))
	assert.Equal(t, "00:09", domain.FormatElapsed(9*time.Second+900*time.Millisecond))
	assert.Equal(t, "12:34", domain.FormatElapsed(12*time.Minute+34*time.Second))
}
