package domain

import (
	"slices"
	"strings"
)

// DefaultPageSize is the number of rows per ticket list page.
const DefaultPageSize = 10

// TicketFilter narrows the ticket list. Empty fields match everything.
type TicketFilter struct {
	Search     string         `json:"search"`
	Status     TicketStatus   `json:"status"`
	Department string         `json:"department"`
	Priority   TicketPriority `json:"priority"`
}

// Matches reports whether the ticket passes every filter.
func (f TicketFilter) Matches(t Ticket) bool {
	if f.Search != "" {
		haystack := strings.ToLower(t.Title + " " + t.Description)
		if !strings.Contains(haystack, strings.ToLower(f.Search)) {
			return false
		}
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Department != "" && t.Department != f.Department {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	return true
}

// ListState is the pagination and filter view state of the ticket list.
type ListState struct {
	Page     int          `json:"page"`
	PageSize int          `json:"pageSize"`
	Filter   TicketFilter `json:"filter"`
}

// NewListState returns page 1 with no filters.
func NewListState(pageSize int) ListState {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return ListState{Page: 1, PageSize: pageSize}
}

// FilterTickets returns the matching tickets, newest first. Tickets with
// equal creation times keep their relative order. The input is not modified.
func FilterTickets(tickets []Ticket, filter TicketFilter) []Ticket {
	matched := make([]Ticket, 0, len(tickets))
	for _, t := range tickets {
		if filter.Matches(t) {
			matched = append(matched, t)
		}
	}

	slices.SortStableFunc(matched, func(a, b Ticket) int {
		return b.CreatedTime().Compare(a.CreatedTime())
	})
	return matched
}

// TotalPages is never less than one, so an empty list still shows "1 / 1".
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pages := (count + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// Paginate returns the 1-based page of items. Pages past the end are empty.
func Paginate[T any](items []T, page, pageSize int) []T {
	if page < 1 || pageSize <= 0 {
		return []T{}
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := min(start+pageSize, len(items))
	return items[start:end]
}
