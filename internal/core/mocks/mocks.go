package mocks

import (
	"context"
	"sync"

	"github.com/lorrc/voice2ticket/internal/core/domain"
	"github.com/lorrc/voice2ticket/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// MockTicketAPI is a mock implementation of ports.TicketAPI
type MockTicketAPI struct {
	mock.Mock
}

func NewMockTicketAPI() *MockTicketAPI {
	return &MockTicketAPI{}
}

func (m *MockTicketAPI) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *MockTicketAPI) CreateTicket(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

// MockObjectStore is a mock implementation of ports.ObjectStore
type MockObjectStore struct {
	mock.Mock
}

func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{}
}

func (m *MockObjectStore) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	args := m.Called(ctx, key, body, contentType)
	return args.Error(0)
}

func (m *MockObjectStore) ListObjects(ctx context.Context, prefix, continuationToken string) (*ports.ObjectPage, error) {
	args := m.Called(ctx, prefix, continuationToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.ObjectPage), args.Error(1)
}

// MockStorageConnector is a mock implementation of ports.StorageConnector
type MockStorageConnector struct {
	mock.Mock
}

func NewMockStorageConnector() *MockStorageConnector {
	return &MockStorageConnector{}
}

func (m *MockStorageConnector) Connect(ctx context.Context) (ports.ObjectStore, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.ObjectStore), args.Error(1)
}

// MockSessionStore is a mock implementation of ports.SessionStore
type MockSessionStore struct {
	mock.Mock
}

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{}
}

func (m *MockSessionStore) Load(ctx context.Context) (*domain.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionStore) Save(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockCaptureDevice is a mock implementation of ports.CaptureDevice
type MockCaptureDevice struct {
	mock.Mock
}

func NewMockCaptureDevice() *MockCaptureDevice {
	return &MockCaptureDevice{}
}

func (m *MockCaptureDevice) Open(ctx context.Context) (ports.CaptureStream, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.CaptureStream), args.Error(1)
}

// FakeCaptureStream is a ports.CaptureStream fed by the test through Emit.
type FakeCaptureStream struct {
	chunks   chan []byte
	stopOnce sync.Once
	StopErr  error
}

// NewFakeCaptureStream creates a stream buffering up to size chunks.
func NewFakeCaptureStream(size int) *FakeCaptureStream {
	return &FakeCaptureStream{chunks: make(chan []byte, size)}
}

// Emit queues a chunk. It must not be called after Stop.
func (f *FakeCaptureStream) Emit(chunk []byte) {
	f.chunks <- chunk
}

func (f *FakeCaptureStream) Chunks() <-chan []byte {
	return f.chunks
}

func (f *FakeCaptureStream) Stop() error {
	f.stopOnce.Do(func() {
		close(f.chunks)
	})
	return f.StopErr
}

// RecordingNotifier is a ports.Notifier that keeps what it was sent.
type RecordingNotifier struct {
	mu            sync.Mutex
	Notifications []domain.Notification
}

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

func (n *RecordingNotifier) Notify(_ context.Context, note domain.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Notifications = append(n.Notifications, note)
}

// Messages returns the notification texts in order.
func (n *RecordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	msgs := make([]string, 0, len(n.Notifications))
	for _, note := range n.Notifications {
		msgs = append(msgs, note.Message)
	}
	return msgs
}

// Last returns the most recent notification, or the zero value.
func (n *RecordingNotifier) Last() domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Notifications) == 0 {
		return domain.Notification{}
	}
	return n.Notifications[len(n.Notifications)-1]
}
