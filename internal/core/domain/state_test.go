package domain_test

import (
	"testing"
	"time"

	"github.com/lorrc/voice2ticket/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminState(tickets []domain.Ticket) domain.AppState {
	return domain.NewAppState(10).
		WithSession(&domain.Session{Email: "a@x", Role: domain.RoleAdmin}).
		WithTickets(tickets)
}

func TestAppState_FilterChangeResetsPage(t *testing.T) {
	s := adminState(makeTickets(35)).NextPage().NextPage()
	require.Equal(t, 3, s.List.Page)

	s = s.WithFilter(domain.TicketFilter{Search: "ticket"})
	assert.Equal(t, 1, s.List.Page)
}

func TestAppState_TicketChangeResetsPage(t *testing.T) {
	s := adminState(makeTickets(35)).NextPage()
	require.Equal(t, 2, s.List.Page)

	s = s.WithLocalTicket(domain.Ticket{Title: "local"})
	assert.Equal(t, 1, s.List.Page)
	assert.Equal(t, "local", s.Tickets[0].Title)
	assert.Len(t, s.Tickets, 36)
}

func TestAppState_Paging(t *testing.T) {
	s := adminState(makeTickets(15))

	s = s.PrevPage()
	assert.Equal(t, 1, s.List.Page)

	s = s.NextPage().NextPage().NextPage()
	assert.Equal(t, 2, s.List.Page, "next page stops at the last page")

	s = s.PrevPage()
	assert.Equal(t, 1, s.List.Page)
}

func TestAppState_UpdatesDoNotMutateOriginal(t *testing.T) {
	original := adminState(makeTickets(3))
	_ = original.WithLocalTicket(domain.Ticket{Title: "new"})

	assert.Len(t, original.Tickets, 3)
}

func TestAppState_UserIsGatedToSubmission(t *testing.T) {
	s := domain.NewAppState(10).WithSession(&domain.Session{Role: domain.RoleUser})
	assert.Equal(t, domain.PageRaiseTicket, s.Page)

	for _, p := range domain.AdminPages {
		assert.Equal(t, domain.PageRaiseTicket, s.WithPage(p).Page)
	}
}

func TestAppState_SignedOutKeepsToastOnly(t *testing.T) {
	s := adminState(makeTickets(3)).
		WithToast(domain.NewNotification(domain.LevelInfo, domain.MsgSignedOut, time.Now())).
		SignedOut()

	assert.Nil(t, s.Session)
	assert.Equal(t, domain.PageAuth, s.Page)
	assert.Empty(t, s.Tickets)
	require.NotNil(t, s.Toast)
	assert.Equal(t, domain.MsgSignedOut, s.Toast.Message)
}

func TestRender(t *testing.T) {
	tickets := []domain.Ticket{
		{Title: "a", Status: domain.StatusOpen},
		{Title: "b", Status: domain.StatusClosed},
		{Title: "c", Status: domain.StatusInProgress},
	}
	s := adminState(tickets)

	dash := domain.Render(s, "", "")
	assert.Equal(t, "Dashboard", dash.Title)
	require.NotNil(t, dash.Stats)
	assert.Equal(t, domain.DashboardStats{Total: 3, Open: 1, Closed: 1}, *dash.Stats)
	assert.Nil(t, dash.Tickets)

	list := domain.Render(s.WithPage(domain.PageTickets), "", "")
	require.NotNil(t, list.Tickets)
	assert.Len(t, list.Tickets.Rows, 3)
	assert.Nil(t, list.Stats)
}
