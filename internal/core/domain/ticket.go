package domain

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	apperrors "github.com/lorrc/voice2ticket/internal/core/errors"
)

// TicketStatus is the lifecycle state reported by the ticket API. The set is
// open-ended: the API may return statuses this client does not know about.
type TicketStatus string

const (
	StatusOpen       TicketStatus = "Open"
	StatusInProgress TicketStatus = "In Progress"
	StatusClosed     TicketStatus = "Closed"
)

// TicketPriority represents the urgency of a ticket.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "Low"
	PriorityMedium TicketPriority = "Medium"
	PriorityHigh   TicketPriority = "High"
)

// Departments offered by the submission forms.
var Departments = []string{"IT", "HR", "Admin"}

// Priorities offered by the submission forms.
var Priorities = []TicketPriority{PriorityLow, PriorityMedium, PriorityHigh}

// Statuses offered by the list filter.
var Statuses = []TicketStatus{StatusOpen, StatusInProgress, StatusClosed}

// Titles used for tickets created from a recording.
const (
	VoiceTicketTitle       = "Voice Ticket"
	VoiceTicketDescription = "Submitted via voice"
)

// createdAtLayout matches the ISO form produced by browsers (millisecond
// precision, UTC designator), which is what the ticket API already stores.
const createdAtLayout = "2006-01-02T15:04:05.000Z"

// createdAtLayouts are tried in order when reading CreatedAt. Values
// without a zone are taken as UTC.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	time.DateTime,
	time.DateOnly,
}

// epochMillisThreshold separates epoch seconds from epoch milliseconds.
// 1e11 seconds is past the year 5000.
const epochMillisThreshold = 1e11

// IsValid returns true if the priority is one of the form options.
func (p TicketPriority) IsValid() bool {
	for _, known := range Priorities {
		if p == known {
			return true
		}
	}
	return false
}

// IsValidDepartment returns true if the department is one of the form options.
func IsValidDepartment(department string) bool {
	for _, known := range Departments {
		if department == known {
			return true
		}
	}
	return false
}

// Ticket is the wire and in-memory representation of a support request.
// CreatedAt stays a string because tickets fetched from the API are not
// guaranteed to carry a parseable timestamp.
type Ticket struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Department  string         `json:"department"`
	Priority    TicketPriority `json:"priority"`
	CreatedAt   string         `json:"createdAt"`
	Status      TicketStatus   `json:"status"`
	UserEmail   string         `json:"userEmail"`
	AudioKey    string         `json:"audioKey,omitempty"`
}

// ValidateClassification rejects departments and priorities the forms do
// not offer. Blank values pass; callers fill defaults before posting.
func ValidateClassification(department string, priority TicketPriority) error {
	if department != "" && !IsValidDepartment(department) {
		return apperrors.ErrInvalidDepartment
	}
	if priority != "" && !priority.IsValid() {
		return apperrors.ErrInvalidPriority
	}
	return nil
}

// TicketParams holds the fields a user fills in.
type TicketParams struct {
	Title       string
	Description string
	Department  string
	Priority    TicketPriority
}

// NewTicket validates the form fields and stamps a new open ticket.
func NewTicket(params TicketParams, userEmail string, now time.Time) (*Ticket, error) {
	title := strings.TrimSpace(params.Title)
	description := strings.TrimSpace(params.Description)
	if title == "" {
		return nil, apperrors.ErrTitleRequired
	}
	if description == "" {
		return nil, apperrors.ErrDescriptionRequired
	}
	if err := ValidateClassification(params.Department, params.Priority); err != nil {
		return nil, err
	}

	return &Ticket{
		Title:       title,
		Description: description,
		Department:  params.Department,
		Priority:    params.Priority,
		CreatedAt:   FormatCreatedAt(now),
		Status:      StatusOpen,
		UserEmail:   userEmail,
	}, nil
}

// NewVoiceTicket builds the ticket that references an uploaded recording.
func NewVoiceTicket(department string, priority TicketPriority, userEmail, audioKey string, now time.Time) (*Ticket, error) {
	if err := ValidateClassification(department, priority); err != nil {
		return nil, err
	}
	return &Ticket{
		Title:       VoiceTicketTitle,
		Description: VoiceTicketDescription,
		Department:  department,
		Priority:    priority,
		CreatedAt:   FormatCreatedAt(now),
		Status:      StatusOpen,
		UserEmail:   userEmail,
		AudioKey:    audioKey,
	}, nil
}

// FormatCreatedAt renders a creation time the way the API expects it.
func FormatCreatedAt(t time.Time) string {
	return t.UTC().Format(createdAtLayout)
}

// CreatedTime parses CreatedAt. Missing or malformed values sort as the
// zero time, i.e. after every dated ticket.
func (t Ticket) CreatedTime() time.Time {
	if t.CreatedAt == "" {
		return time.Time{}
	}
	for _, layout := range createdAtLayouts {
		if parsed, err := time.Parse(layout, t.CreatedAt); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// UnmarshalJSON accepts createdAt as a string or as an epoch number in
// seconds or milliseconds. Numbers are rewritten in the API's ISO form;
// any other shape leaves CreatedAt empty.
func (t *Ticket) UnmarshalJSON(data []byte) error {
	type plain Ticket
	var wire struct {
		plain
		CreatedAt json.RawMessage `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*t = Ticket(wire.plain)
	t.CreatedAt = decodeCreatedAt(wire.CreatedAt)
	return nil
}

func decodeCreatedAt(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	var epoch float64
	if err := json.Unmarshal(raw, &epoch); err != nil {
		return ""
	}
	if math.Abs(epoch) >= epochMillisThreshold {
		return FormatCreatedAt(time.UnixMilli(int64(epoch)))
	}
	return FormatCreatedAt(time.UnixMilli(int64(math.Round(epoch * 1000))))
}

// DisplayStatus falls back to Open for tickets the API returned without one.
func (t Ticket) DisplayStatus() TicketStatus {
	if t.Status == "" {
		return StatusOpen
	}
	return t.Status
}

// HasAudio reports whether the ticket links to a stored recording.
func (t Ticket) HasAudio() bool {
	return t.AudioKey != ""
}
