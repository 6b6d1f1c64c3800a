package notify_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/voice2ticket/internal/adapters/secondary/notify"
	"github.com/lorrc/voice2ticket/internal/core/domain"
	"github.com/lorrc/voice2ticket/internal/core/mocks"
)

func TestLogNotifier_Notify(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	notifier := notify.NewLogNotifier(logger)

	notifier.Notify(context.Background(), domain.NewNotification(domain.LevelError, domain.MsgMicDenied, time.Now()))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "notifier", entry["component"])
	assert.Equal(t, domain.MsgMicDenied, entry["message"])
	assert.Equal(t, "error", entry["severity"])
}

func TestMulti_Notify(t *testing.T) {
	first := &mocks.RecordingNotifier{}
	second := &mocks.RecordingNotifier{}
	multi := notify.Multi{first, nil, second}

	multi.Notify(context.Background(), domain.NewNotification(domain.LevelSuccess, domain.MsgSignedIn, time.Now()))

	assert.Equal(t, []string{domain.MsgSignedIn}, first.Messages())
	assert.Equal(t, []string{domain.MsgSignedIn}, second.Messages())
}
