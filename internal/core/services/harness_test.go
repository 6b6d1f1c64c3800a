package services_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/lorrc/voice2ticket/internal/core/domain"
	"github.com/lorrc/voice2ticket/internal/core/mocks"
	"github.com/lorrc/voice2ticket/internal/core/ports"
	"github.com/lorrc/voice2ticket/internal/core/services"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testLocation = services.StorageLocation{
	Bucket: "v2t-audio",
	Region: "eu-west-1",
	Prefix: "voice/",
}

// tickSink is an EventPublisher that buffers events without blocking.
type tickSink chan domain.Event

func (s tickSink) Publish(_ context.Context, event domain.Event) {
	select {
	case s <- event:
	default:
	}
}

type harness struct {
	api      *mocks.MockTicketAPI
	storage  *mocks.MockStorageConnector
	objects  *mocks.MockObjectStore
	sessions *mocks.MockSessionStore
	capture  *mocks.MockCaptureDevice
	notifier *mocks.RecordingNotifier
	ticks    tickSink
	console  *services.Console
	now      time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		api:      mocks.NewMockTicketAPI(),
		storage:  mocks.NewMockStorageConnector(),
		objects:  mocks.NewMockObjectStore(),
		sessions: mocks.NewMockSessionStore(),
		capture:  mocks.NewMockCaptureDevice(),
		notifier: mocks.NewRecordingNotifier(),
		ticks:    make(tickSink, 64),
		now:      time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
	}

	h.console = services.NewConsole("test-console", services.ConsoleDeps{
		TicketAPI: h.api,
		Storage:   h.storage,
		Sessions:  h.sessions,
		Capture:   h.capture,
		Notifier:  h.notifier,
		Publisher: h.ticks,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:     func() time.Time { return h.now },
	}, services.ConsoleConfig{
		PageSize: 10,
		Tick:     5 * time.Millisecond,
		Location: testLocation,
	})

	t.Cleanup(func() { h.console.Close(context.Background()) })
	return h
}

// loginUser signs in a regular user.
func (h *harness) loginUser(t *testing.T) {
	t.Helper()
	h.sessions.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

	_, err := h.console.Sessions().Login(context.Background(), domain.LoginParams{
		Email: "bo@example.com", Password: "pw", Role: "user",
	})
	require.NoError(t, err)
}

// loginAdmin signs in an admin whose initial fetch returns tickets and whose
// initial audio listing is empty.
func (h *harness) loginAdmin(t *testing.T, tickets []domain.Ticket) {
	t.Helper()
	h.sessions.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
	h.api.On("ListTickets", mock.Anything).Return(tickets, nil).Once()
	h.storage.On("Connect", mock.Anything).Return(h.objects, nil).Once()
	h.objects.On("ListObjects", mock.Anything, testLocation.Prefix, "").
		Return(&ports.ObjectPage{}, nil).Once()

	_, err := h.console.Sessions().Login(context.Background(), domain.LoginParams{
		Email: "ana@example.com", Password: "pw", Role: "admin",
	})
	require.NoError(t, err)
}

// record leaves the recorder stopped with the given chunks as its blob.
func (h *harness) record(t *testing.T, chunks ...string) {
	t.Helper()
	ctx := context.Background()
	stream := mocks.NewFakeCaptureStream(len(chunks) + 1)
	h.capture.On("Open", mock.Anything).Return(stream, nil).Once()

	require.NoError(t, h.console.Recorder().Start(ctx))
	for _, c := range chunks {
		stream.Emit([]byte(c))
	}
	_, err := h.console.Recorder().Stop(ctx)
	require.NoError(t, err)
}
