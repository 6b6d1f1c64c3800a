package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/lorrc/voice2ticket/internal/core/domain"
	"github.com/lorrc/voice2ticket/internal/core/ports"
)

// Feedback turns outcomes into the toast on the state and a notification on
// whichever channel the console is rendered through.
type Feedback struct {
	store    *Store
	notifier ports.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewFeedback creates the notification sink shared by a console's services.
// A nil notifier only updates the toast.
func NewFeedback(store *Store, notifier ports.Notifier, logger *slog.Logger, now func() time.Time) *Feedback {
	if now == nil {
		now = time.Now
	}
	return &Feedback{store: store, notifier: notifier, logger: logger, now: now}
}

func (f *Feedback) success(ctx context.Context, msg string) {
	f.notify(ctx, domain.LevelSuccess, msg)
}

func (f *Feedback) info(ctx context.Context, msg string) {
	f.notify(ctx, domain.LevelInfo, msg)
}

func (f *Feedback) failure(ctx context.Context, msg string) {
	f.notify(ctx, domain.LevelError, msg)
}

func (f *Feedback) notify(ctx context.Context, level domain.NotificationLevel, msg string) {
	n := domain.NewNotification(level, msg, f.now())
	f.store.Update(func(s domain.AppState) domain.AppState {
		return s.WithToast(n)
	})
	if f.notifier != nil {
		f.notifier.Notify(ctx, n)
	}
}
