package domain

// AppState is the whole console state. Every change goes through one of the
// With* functions below, which return a new value and never mutate the
// receiver's slices.
type AppState struct {
	Session   *Session
	Page      Page
	Tickets   []Ticket
	List      ListState
	Recording Recording
	Audio     []AudioEntry
	Toast     *Notification
}

// NewAppState returns the signed-out state.
func NewAppState(pageSize int) AppState {
	return AppState{
		Page:      PageAuth,
		Tickets:   []Ticket{},
		List:      NewListState(pageSize),
		Recording: NewRecording(),
		Audio:     []AudioEntry{},
	}
}

// WithSession installs a session and moves to its landing page.
func (s AppState) WithSession(session *Session) AppState {
	s.Session = session
	s.Page = LandingPage(session)
	return s
}

// SignedOut drops everything tied to the previous session.
func (s AppState) SignedOut() AppState {
	next := NewAppState(s.List.PageSize)
	next.Toast = s.Toast
	return next
}

// WithPage navigates, subject to role gating.
func (s AppState) WithPage(requested Page) AppState {
	s.Page = ResolvePage(s.Session, requested)
	return s
}

// WithTickets replaces the ticket set and returns to the first page.
func (s AppState) WithTickets(tickets []Ticket) AppState {
	if tickets == nil {
		tickets = []Ticket{}
	}
	s.Tickets = tickets
	s.List.Page = 1
	return s
}

// WithLocalTicket puts an unsent ticket at the head of the list.
func (s AppState) WithLocalTicket(t Ticket) AppState {
	tickets := make([]Ticket, 0, len(s.Tickets)+1)
	tickets = append(tickets, t)
	tickets = append(tickets, s.Tickets...)
	return s.WithTickets(tickets)
}

// WithFilter replaces the filters and returns to the first page.
func (s AppState) WithFilter(filter TicketFilter) AppState {
	s.List.Filter = filter
	s.List.Page = 1
	return s
}

// NextPage advances unless already on the last page.
func (s AppState) NextPage() AppState {
	total := TotalPages(len(FilterTickets(s.Tickets, s.List.Filter)), s.List.PageSize)
	if s.List.Page < total {
		s.List.Page++
	}
	return s
}

// PrevPage goes back unless already on the first page.
func (s AppState) PrevPage() AppState {
	if s.List.Page > 1 {
		s.List.Page--
	}
	return s
}

// WithRecording replaces the recorder state.
func (s AppState) WithRecording(r Recording) AppState {
	s.Recording = r
	return s
}

// WithAudio replaces the audio listing.
func (s AppState) WithAudio(entries []AudioEntry) AppState {
	if entries == nil {
		entries = []AudioEntry{}
	}
	s.Audio = entries
	return s
}

// WithToast sets the current notification.
func (s AppState) WithToast(n Notification) AppState {
	s.Toast = &n
	return s
}
