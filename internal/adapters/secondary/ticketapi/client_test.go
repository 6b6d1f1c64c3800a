package ticketapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lorrc/voice2ticket/internal/adapters/secondary/ticketapi"
	"github.com/lorrc/voice2ticket/internal/core/domain"
	apperrors "github.com/lorrc/voice2ticket/internal/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, baseURL string) *ticketapi.Client {
	t.Helper()
	client, err := ticketapi.NewClient(ticketapi.ClientConfig{
		BaseURL: baseURL,
		Timeout: time.Second,
	})
	require.NoError(t, err)
	return client
}

func TestClient_ListTickets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/prod/tickets", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"title":"VPN","description":"down","department":"IT","priority":"High","createdAt":"2024-01-01T00:00:00.000Z","status":"Open","userEmail":"a@x"},
			{"title":"Voice Ticket","description":"Submitted via voice","audioKey":"audio/a%40x/1.webm"}
		]`)
	}))
	defer server.Close()

	tickets, err := newClient(t, server.URL+"/prod/").ListTickets(context.Background())

	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, domain.PriorityHigh, tickets[0].Priority)
	assert.Equal(t, "a@x", tickets[0].UserEmail)
	assert.Equal(t, "audio/a%40x/1.webm", tickets[1].AudioKey)
}

func TestClient_ListTickets_MixedShapes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[
			{"title":"iso","createdAt":"2024-01-01T00:00:00.000Z"},
			{"title":"seconds","createdAt":1704067200},
			{"title":"millis","createdAt":1704067200123},
			{"title":5,"createdAt":"2024-01-01T00:00:00.000Z"},
			{"title":"naive","createdAt":"2024-01-02T08:30:00"},
			{"title":"odd","createdAt":{"$date":"2024"}},
			"not a ticket"
		]`)
	}))
	defer server.Close()

	tickets, err := newClient(t, server.URL).ListTickets(context.Background())

	require.NoError(t, err)
	require.Len(t, tickets, 5)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", tickets[0].CreatedAt)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", tickets[1].CreatedAt)
	assert.Equal(t, "2024-01-01T00:00:00.123Z", tickets[2].CreatedAt)
	assert.Equal(t, "naive", tickets[3].Title)
	assert.Equal(t, "odd", tickets[4].Title)
	assert.Empty(t, tickets[4].CreatedAt)

	got := domain.FilterTickets(tickets, domain.TicketFilter{})
	assert.Equal(t, []string{"naive", "millis", "iso", "seconds", "odd"},
		[]string{got[0].Title, got[1].Title, got[2].Title, got[3].Title, got[4].Title})
}

func TestClient_ListTickets_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{"not an array", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"message":"Forbidden"}`)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := newClient(t, server.URL).ListTickets(context.Background())
			assert.ErrorIs(t, err, apperrors.ErrTicketAPI)
		})
	}
}

func TestClient_ListTickets_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newClient(t, url).ListTickets(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrTicketAPI)
}

func TestClient_CreateTicket(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	ticket := &domain.Ticket{
		Title:       "Printer",
		Description: "Jammed",
		Department:  "Admin",
		Priority:    domain.PriorityLow,
		CreatedAt:   "2024-02-02T10:00:00.000Z",
		Status:      domain.StatusOpen,
		UserEmail:   "bo@x",
	}

	err := newClient(t, server.URL).CreateTicket(context.Background(), ticket)

	require.NoError(t, err)
	assert.Equal(t, "Printer", received["title"])
	assert.Equal(t, "2024-02-02T10:00:00.000Z", received["createdAt"])
	assert.Equal(t, "bo@x", received["userEmail"])
	_, hasAudio := received["audioKey"]
	assert.False(t, hasAudio, "audioKey is omitted for text tickets")
}

func TestClient_CreateTicket_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	err := newClient(t, server.URL).CreateTicket(context.Background(), &domain.Ticket{Title: "x"})
	assert.ErrorIs(t, err, apperrors.ErrTicketAPI)
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := ticketapi.NewClient(ticketapi.ClientConfig{})
	assert.Error(t, err)
}
