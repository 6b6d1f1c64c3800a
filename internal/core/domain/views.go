package domain

import "strconv"

// DashboardStats summarises the ticket set.
type DashboardStats struct {
	Total  int `json:"total"`
	Open   int `json:"open"`
	Closed int `json:"closed"`
}

// ComputeStats counts tickets by status. Tickets in other statuses count
// toward the total only.
func ComputeStats(tickets []Ticket) DashboardStats {
	stats := DashboardStats{Total: len(tickets)}
	for _, t := range tickets {
		switch t.Status {
		case StatusOpen:
			stats.Open++
		case StatusClosed:
			stats.Closed++
		}
	}
	return stats
}

// TicketRow is one rendered line of the ticket table.
type TicketRow struct {
	CreatedAt  string         `json:"createdAt"`
	Title      string         `json:"title"`
	Department string         `json:"department"`
	Priority   TicketPriority `json:"priority"`
	Status     TicketStatus   `json:"status"`
	AudioKey   string         `json:"audioKey,omitempty"`
	AudioURL   string         `json:"audioUrl,omitempty"`
}

// TicketListView is the rendered ticket page.
type TicketListView struct {
	Rows       []TicketRow  `json:"rows"`
	Page       int          `json:"page"`
	TotalPages int          `json:"totalPages"`
	Matched    int          `json:"matched"`
	Filter     TicketFilter `json:"filter"`
	HasPrev    bool         `json:"hasPrev"`
	HasNext    bool         `json:"hasNext"`
}

// Indicator renders "page / totalPages".
func (v TicketListView) Indicator() string {
	return strconv.Itoa(v.Page) + " / " + strconv.Itoa(v.TotalPages)
}

// BuildTicketListView projects the visible page of tickets. bucket and region
// are used to derive play URLs and may be empty.
func BuildTicketListView(tickets []Ticket, list ListState, bucket, region string) TicketListView {
	matched := FilterTickets(tickets, list.Filter)
	total := TotalPages(len(matched), list.PageSize)
	page := Paginate(matched, list.Page, list.PageSize)

	rows := make([]TicketRow, 0, len(page))
	for _, t := range page {
		row := TicketRow{
			CreatedAt:  t.CreatedAt,
			Title:      t.Title,
			Department: t.Department,
			Priority:   t.Priority,
			Status:     t.DisplayStatus(),
			AudioKey:   t.AudioKey,
		}
		if t.HasAudio() && bucket != "" {
			row.AudioURL = ObjectURL(bucket, region, t.AudioKey)
		}
		rows = append(rows, row)
	}

	return TicketListView{
		Rows:       rows,
		Page:       list.Page,
		TotalPages: total,
		Matched:    len(matched),
		Filter:     list.Filter,
		HasPrev:    list.Page > 1,
		HasNext:    list.Page < total,
	}
}

// ConsoleView is the full projection of an AppState.
type ConsoleView struct {
	Page      Page            `json:"page"`
	Title     string          `json:"title"`
	Pages     []Page          `json:"pages"`
	Session   *Session        `json:"session"`
	Stats     *DashboardStats `json:"stats,omitempty"`
	Tickets   *TicketListView `json:"tickets,omitempty"`
	Audio     []AudioEntry    `json:"audio,omitempty"`
	Recording RecordingView   `json:"recording"`
	Toast     *Notification   `json:"toast,omitempty"`
}

// Render projects the state into the view of the current page. Only the
// sections of that page are filled.
func Render(s AppState, bucket, region string) ConsoleView {
	view := ConsoleView{
		Page:      s.Page,
		Title:     s.Page.Title(),
		Pages:     PagesFor(s.Session),
		Session:   s.Session,
		Recording: s.Recording.View(),
		Toast:     s.Toast,
	}

	switch s.Page {
	case PageDashboard:
		stats := ComputeStats(s.Tickets)
		view.Stats = &stats
	case PageTickets:
		list := BuildTicketListView(s.Tickets, s.List, bucket, region)
		view.Tickets = &list
	case PageAudio:
		view.Audio = s.Audio
	}
	return view
}
