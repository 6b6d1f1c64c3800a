package ports

import (
	"context"

	"github.com/lorrc/voice2ticket/internal/core/domain"
)

// TicketAPI is the external ticket REST service.
type TicketAPI interface {
	ListTickets(ctx context.Context) ([]domain.Ticket, error)
	CreateTicket(ctx context.Context, ticket *domain.Ticket) error
}

// ObjectPage is one page of a bucket listing.
type ObjectPage struct {
	Objects   []domain.StoredObject
	NextToken string
	Truncated bool
}

// ObjectStore is the narrow put/list view of the audio bucket.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
	ListObjects(ctx context.Context, prefix, continuationToken string) (*ObjectPage, error)
}

// StorageConnector acquires temporary credentials and returns a store bound
// to them. It is called once per upload or listing.
type StorageConnector interface {
	Connect(ctx context.Context) (ObjectStore, error)
}

// SessionStore persists the serialized session under a single key.
// Load returns apperrors.ErrNoSession when nothing is stored.
type SessionStore interface {
	Load(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Clear(ctx context.Context) error
}

// CaptureStream is an open microphone capture. Chunks is closed once the
// capture has ended, after Stop or on device failure.
type CaptureStream interface {
	Chunks() <-chan []byte
	Stop() error
}

// CaptureDevice opens microphone captures. Open fails with
// apperrors.ErrMicPermissionDenied when the microphone cannot be used.
type CaptureDevice interface {
	Open(ctx context.Context) (CaptureStream, error)
}

// Notifier delivers user-facing notifications.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}

// EventPublisher pushes real-time events to whoever renders the console.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event)
}
