package domain

import "time"

// NotificationLevel colours a notification.
type NotificationLevel string

const (
	LevelSuccess NotificationLevel = "success"
	LevelInfo    NotificationLevel = "info"
	LevelError   NotificationLevel = "error"
)

// Notification is a transient message shown to the user.
type Notification struct {
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
	At      time.Time         `json:"at"`
}

// User-facing messages.
const (
	MsgSignedIn         = "Signed in"
	MsgSignedOut        = "Signed out"
	MsgEnterCredentials = "Enter email & password"
	MsgCompleteFields   = "Complete all fields"
	MsgTicketRequired   = "Title & description required"
	MsgTicketInvalid    = "Pick a listed department & priority"
	MsgTicketSubmitted  = "Ticket submitted"
	MsgTicketLocal      = "Ticket saved (local). Connect API for persistence."
	MsgMicDenied        = "Mic permission denied"
	MsgNoRecording      = "No recording to upload"
	MsgAudioUploaded    = "Audio uploaded to S3"
	MsgUploadFailed     = "S3 upload failed: "
	MsgAudioListFailed  = "Audio list failed: "
	MsgInvalidPoolID    = "Set a valid Cognito Identity Pool ID"
)

// NewNotification stamps a message.
func NewNotification(level NotificationLevel, message string, now time.Time) Notification {
	return Notification{Level: level, Message: message, At: now}
}

// EventType defines the type of real-time event pushed to a console.
type EventType string

const (
	EventNotification  EventType = "NOTIFICATION"
	EventRecordingTick EventType = "RECORDING_TICK"
	EventStateChanged  EventType = "STATE_CHANGED"
	EventPong          EventType = "PONG"
)

// Event is the payload sent over WebSocket.
type Event struct {
	Type      EventType `json:"type"`
	Payload   any       `json:"payload"`
	ConsoleID string    `json:"consoleId"` // Used for routing to a single console
}
