// Package ticketapi is the HTTP client of the external ticket REST API.
package ticketapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lorrc/voice2ticket/internal/core/domain"
	apperrors "github.com/lorrc/voice2ticket/internal/core/errors"
	"github.com/lorrc/voice2ticket/internal/core/ports"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the API root; "tickets" is appended to it.
	BaseURL string
	// Timeout bounds each request. Ignored when HTTPClient is set.
	Timeout time.Duration
	// HTTPClient is used for all requests. If nil, one is built from Timeout.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Client talks to the ticket API. The API takes no authentication.
type Client struct {
	ticketsURL string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.TicketAPI = (*Client)(nil)

// NewClient creates a ticket API client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("ticketapi: BaseURL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("ticketapi: invalid BaseURL %q: %w", cfg.BaseURL, err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		ticketsURL: strings.TrimRight(cfg.BaseURL, "/") + "/tickets",
		httpClient: httpClient,
		logger:     logger.With("component", "ticket_api"),
	}, nil
}

// ListTickets fetches every ticket. Any non-2xx status is an error. Items
// that do not decode as a ticket are logged and skipped.
func (c *Client) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	body, err := c.doRequest(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("%w: decoding ticket list: %v", apperrors.ErrTicketAPI, err)
	}

	tickets := make([]domain.Ticket, 0, len(items))
	for i, item := range items {
		var ticket domain.Ticket
		if err := json.Unmarshal(item, &ticket); err != nil {
			c.logger.WarnContext(ctx, "skipping undecodable ticket", "index", i, "error", err)
			continue
		}
		tickets = append(tickets, ticket)
	}
	return tickets, nil
}

// CreateTicket posts one ticket. Success is judged by status code only;
// the response body is ignored.
func (c *Client) CreateTicket(ctx context.Context, ticket *domain.Ticket) error {
	_, err := c.doRequest(ctx, http.MethodPost, ticket)
	return err
}

func (c *Client) doRequest(ctx context.Context, method string, requestBody any) ([]byte, error) {
	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("ticketapi: failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.ticketsURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("ticketapi: failed to create request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", apperrors.ErrTicketAPI, method, c.ticketsURL, err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", apperrors.ErrTicketAPI, err)
	}

	c.logger.DebugContext(ctx, "ticket api request",
		"method", method,
		"status_code", response.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d", apperrors.ErrTicketAPI, response.StatusCode)
	}
	return responseBody, nil
}
