// Package notify delivers console notifications outside the rendering
// channel.
package notify

import (
	"context"
	"log/slog"

	"github.com/lorrc/voice2ticket/internal/core/domain"
	"github.com/lorrc/voice2ticket/internal/core/ports"
)

// LogNotifier is a secondary adapter that records notifications in the log.
// It implements the ports.Notifier interface.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a new log notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With("component", "notifier")}
}

// Notify logs the notification at a level matching its severity.
func (n *LogNotifier) Notify(ctx context.Context, note domain.Notification) {
	level := slog.LevelInfo
	if note.Level == domain.LevelError {
		level = slog.LevelWarn
	}
	n.logger.Log(ctx, level, "notification",
		"severity", string(note.Level),
		"message", note.Message,
	)
}

// Multi fans one notification out to several notifiers in order.
type Multi []ports.Notifier

// Notify delivers to every non-nil notifier.
func (m Multi) Notify(ctx context.Context, note domain.Notification) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, note)
		}
	}
}

var (
	_ ports.Notifier = (*LogNotifier)(nil)
	_ ports.Notifier = Multi(nil)
)
