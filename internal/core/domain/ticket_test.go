package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/lorrc/voice2ticket/internal/core/domain"
	apperrors "github.com/lorrc/voice2ticket/internal/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketPriority_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		priority domain.TicketPriority
		want     bool
	}{
		{"Low is valid", domain.PriorityLow, true},
		{"Medium is valid", domain.PriorityMedium, true},
		{"High is valid", domain.PriorityHigh, true},
		{"empty is invalid", domain.TicketPriority(""), false},
		{"Urgent is invalid", domain.TicketPriority("Urgent"), false},
		{"lowercase is invalid", domain.TicketPriority("low"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.priority.IsValid())
		})
	}
}

func TestNewTicket(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 7, 9, 123_000_000, time.UTC)

	tests := []struct {
		name        string
		params      domain.TicketParams
		expectError error
	}{
		{
			name: "valid ticket",
			params: domain.TicketParams{
				Title:       "VPN down",
				Description: "Cannot connect since this morning",
				Department:  "IT",
				Priority:    domain.PriorityHigh,
			},
		},
		{
			name:        "empty title",
			params:      domain.TicketParams{Title: "", Description: "desc"},
			expectError: apperrors.ErrTitleRequired,
		},
		{
			name:        "whitespace title",
			params:      domain.TicketParams{Title: "   ", Description: "desc"},
			expectError: apperrors.ErrTitleRequired,
		},
		{
			name:        "empty description",
			params:      domain.TicketParams{Title: "title", Description: "\t"},
			expectError: apperrors.ErrDescriptionRequired,
		},
		{
			name:   "blank classification is left to the caller",
			params: domain.TicketParams{Title: "title", Description: "desc"},
		},
		{
			name: "unknown department",
			params: domain.TicketParams{
				Title: "title", Description: "desc", Department: "Finance", Priority: domain.PriorityLow,
			},
			expectError: apperrors.ErrInvalidDepartment,
		},
		{
			name: "unknown priority",
			params: domain.TicketParams{
				Title: "title", Description: "desc", Department: "IT", Priority: "Urgent",
			},
			expectError: apperrors.ErrInvalidPriority,
		},
		{
			name: "lowercase priority",
			params: domain.TicketParams{
				Title: "title", Description: "desc", Department: "IT", Priority: "high",
			},
			expectError: apperrors.ErrInvalidPriority,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket, err := domain.NewTicket(tt.params, "ana@example.com", now)

			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				assert.Nil(t, ticket)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.params.Title, ticket.Title)
			assert.Equal(t, domain.StatusOpen, ticket.Status)
			assert.Equal(t, "ana@example.com", ticket.UserEmail)
			assert.Equal(t, "2024-03-05T14:07:09.123Z", ticket.CreatedAt)
			assert.Empty(t, ticket.AudioKey)
		})
	}
}

func TestNewTicket_TrimsFields(t *testing.T) {
	ticket, err := domain.NewTicket(domain.TicketParams{Title: "  Printer  ", Description: " jammed "}, "u@x", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Printer", ticket.Title)
	assert.Equal(t, "jammed", ticket.Description)
}

func TestNewVoiceTicket(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ticket, err := domain.NewVoiceTicket("HR", domain.PriorityLow, "bo@example.com", "voice/bo%40example.com/1704067200000.webm", now)
	require.NoError(t, err)

	assert.Equal(t, domain.VoiceTicketTitle, ticket.Title)
	assert.Equal(t, domain.VoiceTicketDescription, ticket.Description)
	assert.Equal(t, "HR", ticket.Department)
	assert.Equal(t, domain.PriorityLow, ticket.Priority)
	assert.True(t, ticket.HasAudio())
}

func TestTicket_CreatedTime(t *testing.T) {
	tests := []struct {
		name      string
		createdAt string
		wantZero  bool
	}{
		{"millisecond iso", "2024-03-05T14:07:09.123Z", false},
		{"offset iso", "2024-03-05T14:07:09+02:00", false},
		{"naive iso", "2024-03-05T14:07:09", false},
		{"naive iso with fraction", "2024-03-05T14:07:09.5", false},
		{"space separated", "2024-03-05 14:07:09", false},
		{"date only", "2024-03-05", false},
		{"missing", "", true},
		{"garbage", "yesterday", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.Ticket{CreatedAt: tt.createdAt}.CreatedTime()
			assert.Equal(t, tt.wantZero, got.IsZero())
		})
	}
}

func TestTicket_CreatedTimeNaiveIsUTC(t *testing.T) {
	got := domain.Ticket{CreatedAt: "2024-03-05T14:07:09"}.CreatedTime()
	assert.Equal(t, time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC), got)
}

func TestTicket_UnmarshalCreatedAt(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"string kept verbatim", `{"createdAt":"2024-03-05T14:07:09"}`, "2024-03-05T14:07:09"},
		{"epoch seconds", `{"createdAt":1709647629}`, "2024-03-05T14:07:09.000Z"},
		{"fractional seconds", `{"createdAt":1709647629.25}`, "2024-03-05T14:07:09.250Z"},
		{"epoch millis", `{"createdAt":1709647629123}`, "2024-03-05T14:07:09.123Z"},
		{"null", `{"createdAt":null}`, ""},
		{"missing", `{}`, ""},
		{"object", `{"createdAt":{"$date":1}}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ticket domain.Ticket
			require.NoError(t, json.Unmarshal([]byte(tt.json), &ticket))
			assert.Equal(t, tt.want, ticket.CreatedAt)
		})
	}
}

func TestTicket_UnmarshalKeepsOtherFields(t *testing.T) {
	var ticket domain.Ticket
	require.NoError(t, json.Unmarshal([]byte(
		`{"title":"VPN","priority":"High","status":"Resolved","createdAt":1709647629,"audioKey":"voice/a.webm"}`,
	), &ticket))

	assert.Equal(t, "VPN", ticket.Title)
	assert.Equal(t, domain.PriorityHigh, ticket.Priority)
	assert.Equal(t, domain.TicketStatus("Resolved"), ticket.Status)
	assert.Equal(t, "voice/a.webm", ticket.AudioKey)

	var bad domain.Ticket
	assert.Error(t, json.Unmarshal([]byte(`{"title":5}`), &bad))
}

func TestTicket_DisplayStatus(t *testing.T) {
	assert.Equal(t, domain.StatusOpen, domain.Ticket{}.DisplayStatus())
	assert.Equal(t, domain.StatusClosed, domain.Ticket{Status: domain.StatusClosed}.DisplayStatus())
}

func TestNewVoiceTicket_RejectsUnknownClassification(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := domain.NewVoiceTicket("Finance", domain.PriorityLow, "bo@example.com", "voice/k.webm", now)
	assert.ErrorIs(t, err, apperrors.ErrInvalidDepartment)

	_, err = domain.NewVoiceTicket("HR", "Critical", "bo@example.com", "voice/k.webm", now)
	assert.ErrorIs(t, err, apperrors.ErrInvalidPriority)
}
