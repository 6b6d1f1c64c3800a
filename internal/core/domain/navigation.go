package domain

import (
	"strings"
	"unicode"
)

// Page identifies one view of the console.
type Page string

const (
	PageAuth        Page = "auth"
	PageDashboard   Page = "dashboard"
	PageTickets     Page = "tickets"
	PageAudio       Page = "audio"
	PageRaiseTicket Page = "raise-ticket"
)

// AdminPages is the page set shown to administrators, in menu order.
var AdminPages = []Page{PageDashboard, PageTickets, PageAudio, PageRaiseTicket}

// UserPages is the page set shown to regular users.
var UserPages = []Page{PageRaiseTicket}

// IsKnown reports whether p names a console page other than the auth view.
func (p Page) IsKnown() bool {
	for _, known := range AdminPages {
		if p == known {
			return true
		}
	}
	return false
}

// Title capitalises the page name after replacing its first hyphen.
func (p Page) Title() string {
	words := strings.Fields(strings.Replace(string(p), "-", " ", 1))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// PagesFor returns the pages visible to a session.
func PagesFor(s *Session) []Page {
	if s == nil {
		return nil
	}
	if s.IsAdmin() {
		return AdminPages
	}
	return UserPages
}

// ResolvePage maps a requested page to the one actually shown. Without a
// session only the auth view exists; regular users always land on the
// submission page; admins asking for an unknown page get the dashboard.
func ResolvePage(s *Session, requested Page) Page {
	if s == nil {
		return PageAuth
	}
	if !s.IsAdmin() {
		return PageRaiseTicket
	}
	if !requested.IsKnown() {
		return PageDashboard
	}
	return requested
}

// LandingPage is where a freshly signed-in session starts.
func LandingPage(s *Session) Page {
	if s.IsAdmin() {
		return PageDashboard
	}
	return ResolvePage(s, PageRaiseTicket)
}
