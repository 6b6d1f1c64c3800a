package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lorrc/voice2ticket/internal/core/domain"
	apperrors "github.com/lorrc/voice2ticket/internal/core/errors"
	"github.com/lorrc/voice2ticket/internal/core/mocks"
	"github.com/lorrc/voice2ticket/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestVoiceTicketService_Submit(t *testing.T) {
	ctx := context.Background()
	params := ports.VoiceTicketParams{Department: "HR", Priority: domain.PriorityHigh}
	wantKey := "voice/bo%40example.com/1714979289000.webm"

	t.Run("no recording", func(t *testing.T) {
		h := newHarness(t)
		h.loginUser(t)

		outcome, err := h.console.Voice().Submit(ctx, params)

		assert.Nil(t, outcome)
		assert.ErrorIs(t, err, apperrors.ErrNoRecording)
		assert.Equal(t, domain.MsgNoRecording, h.notifier.Last().Message)
		h.storage.AssertNotCalled(t, "Connect", mock.Anything)
	})

	t.Run("credential failure aborts", func(t *testing.T) {
		h := newHarness(t)
		h.loginUser(t)
		h.record(t, "abc")
		h.storage.On("Connect", mock.Anything).Return(nil, errors.New("pool not found")).Once()

		_, err := h.console.Voice().Submit(ctx, params)

		assert.ErrorIs(t, err, apperrors.ErrUploadFailed)
		assert.Equal(t, domain.MsgUploadFailed+"pool not found", h.notifier.Last().Message)
		assert.Empty(t, h.console.State().Tickets)
		assert.Equal(t, domain.RecordingStopped, h.console.Recorder().State().Phase)
		h.api.AssertNotCalled(t, "CreateTicket", mock.Anything, mock.Anything)
	})

	t.Run("put failure aborts", func(t *testing.T) {
		h := newHarness(t)
		h.loginUser(t)
		h.record(t, "abc")
		h.storage.On("Connect", mock.Anything).Return(h.objects, nil).Once()
		h.objects.On("PutObject", mock.Anything, wantKey, []byte("abc"), "audio/webm").
			Return(errors.New("AccessDenied")).Once()

		_, err := h.console.Voice().Submit(ctx, params)

		assert.ErrorIs(t, err, apperrors.ErrUploadFailed)
		assert.Equal(t, "S3 upload failed: AccessDenied", h.notifier.Last().Message)
		assert.Empty(t, h.console.State().Tickets)
		h.api.AssertNotCalled(t, "CreateTicket", mock.Anything, mock.Anything)
	})

	t.Run("upload and post succeed", func(t *testing.T) {
		h := newHarness(t)
		h.loginUser(t)
		h.record(t, "ab", "c")
		h.storage.On("Connect", mock.Anything).Return(h.objects, nil).Once()
		h.objects.On("PutObject", mock.Anything, wantKey, []byte("abc"), "audio/webm").Return(nil).Once()
		h.api.On("CreateTicket", mock.Anything, mock.MatchedBy(func(tk *domain.Ticket) bool {
			return tk.Title == domain.VoiceTicketTitle &&
				tk.Description == domain.VoiceTicketDescription &&
				tk.Department == "HR" &&
				tk.Priority == domain.PriorityHigh &&
				tk.AudioKey == wantKey
		})).Return(nil).Once()

		outcome, err := h.console.Voice().Submit(ctx, params)

		require.NoError(t, err)
		assert.True(t, outcome.Persisted)
		assert.Equal(t, []string{
			domain.MsgSignedIn,
			domain.MsgAudioUploaded,
			domain.MsgTicketSubmitted,
		}, h.notifier.Messages())
		assert.Equal(t, domain.RecordingIdle, h.console.Recorder().State().Phase)
		h.objects.AssertExpectations(t)
		h.api.AssertExpectations(t)
	})

	t.Run("post failure keeps voice ticket locally", func(t *testing.T) {
		h := newHarness(t)
		h.loginUser(t)
		h.record(t, "abc")
		h.storage.On("Connect", mock.Anything).Return(h.objects, nil).Once()
		h.objects.On("PutObject", mock.Anything, wantKey, mock.Anything, mock.Anything).Return(nil).Once()
		h.api.On("CreateTicket", mock.Anything, mock.Anything).Return(errors.New("timeout")).Once()

		outcome, err := h.console.Voice().Submit(ctx, params)

		require.NoError(t, err)
		assert.False(t, outcome.Persisted)
		tickets := h.console.State().Tickets
		require.Len(t, tickets, 1)
		assert.Equal(t, wantKey, tickets[0].AudioKey)
		assert.Equal(t, domain.MsgTicketLocal, h.notifier.Last().Message)
		assert.Equal(t, domain.RecordingIdle, h.console.Recorder().State().Phase)
	})

	t.Run("unlisted department uploads nothing", func(t *testing.T) {
		h := newHarness(t)
		h.loginUser(t)
		h.record(t, "abc")

		_, err := h.console.Voice().Submit(ctx, ports.VoiceTicketParams{Department: "Finance"})

		assert.ErrorIs(t, err, apperrors.ErrInvalidDepartment)
		assert.Equal(t, domain.MsgTicketInvalid, h.notifier.Last().Message)
		assert.Equal(t, domain.RecordingStopped, h.console.Recorder().State().Phase)
		h.storage.AssertNotCalled(t, "Connect", mock.Anything)
	})

	t.Run("capture started during the post survives", func(t *testing.T) {
		h := newHarness(t)
		h.loginUser(t)
		h.record(t, "abc")
		h.storage.On("Connect", mock.Anything).Return(h.objects, nil).Once()
		h.objects.On("PutObject", mock.Anything, wantKey, []byte("abc"), "audio/webm").Return(nil).Once()

		next := mocks.NewFakeCaptureStream(4)
		h.capture.On("Open", mock.Anything).Return(next, nil).Once()
		h.api.On("CreateTicket", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
			require.NoError(t, h.console.Recorder().Start(ctx))
		}).Return(nil).Once()

		outcome, err := h.console.Voice().Submit(ctx, params)

		require.NoError(t, err)
		assert.True(t, outcome.Persisted)
		assert.Equal(t, domain.RecordingCapturing, h.console.Recorder().State().Phase)

		next.Emit([]byte("new"))
		view, err := h.console.Recorder().Stop(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.RecordingStopped, view.Phase)
		assert.Equal(t, []byte("new"), h.console.Recorder().Blob())
	})
}
