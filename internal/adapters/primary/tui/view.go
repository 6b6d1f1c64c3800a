package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/lorrc/voice2ticket/internal/core/domain"
)

// View implements tea.Model.
func (model Model) View() string {
	view := model.console.View()
	if model.console.Sessions().Current() == nil {
		view.Page = domain.PageAuth
	}

	var body string
	switch view.Page {
	case domain.PageAuth:
		body = model.renderAuth()
	case domain.PageDashboard:
		body = model.renderDashboard(view)
	case domain.PageTickets:
		body = model.renderTickets(view)
	case domain.PageAudio:
		body = model.renderAudio(view)
	case domain.PageRaiseTicket:
		body = model.renderRaiseTicket(view)
	}

	sections := []string{
		model.renderHeader(view),
		"",
		body,
		"",
		model.renderToast(view.Toast),
		model.renderHelp(view.Page),
	}
	return strings.Join(sections, "\n")
}

func (model Model) renderHeader(view domain.ConsoleView) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground).
		Render("Voice2Ticket · " + view.Page.Title())
	if view.Page == domain.PageAuth {
		title = lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground).Render("Voice2Ticket")
	}

	var parts []string
	for i, page := range view.Pages {
		label := fmt.Sprintf("F%d %s", pageKeyNumber(page), page.Title())
		style := lipgloss.NewStyle().Foreground(model.theme.FaintText)
		if page == view.Page {
			style = style.Foreground(model.theme.Accent).Underline(true)
		}
		if i > 0 {
			parts = append(parts, " │ ")
		}
		parts = append(parts, style.Render(label))
	}

	line := title
	if view.Session != nil {
		who := lipgloss.NewStyle().Foreground(model.theme.FaintText).
			Render(fmt.Sprintf("  %s (%s)", view.Session.DisplayName, view.Session.Role))
		line += who
	}
	if len(parts) > 0 {
		line += "\n" + strings.Join(parts, "")
	}
	return line
}

func pageKeyNumber(page domain.Page) int {
	switch page {
	case domain.PageDashboard:
		return 1
	case domain.PageTickets:
		return 2
	case domain.PageAudio:
		return 3
	default:
		return 4
	}
}

func (model Model) renderAuth() string {
	tab := func(label string, active bool) string {
		style := lipgloss.NewStyle().Padding(0, 1).Foreground(model.theme.FaintText)
		if active {
			style = style.Foreground(model.theme.Accent).Bold(true).Underline(true)
		}
		return style.Render(label)
	}

	tabs := tab("Login", model.mode == authLogin) + tab("Sign up", model.mode == authSignup)
	return tabs + "\n\n" + model.authForm().view(model.theme, true)
}

func (model Model) renderDashboard(view domain.ConsoleView) string {
	stats := domain.DashboardStats{}
	if view.Stats != nil {
		stats = *view.Stats
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(model.theme.BorderColor).
		Padding(0, 2).
		Align(lipgloss.Center)
	card := func(label string, value int, color lipgloss.Color) string {
		number := lipgloss.NewStyle().Bold(true).Foreground(color).Render(strconv.Itoa(value))
		return box.Render(number + "\n" + label)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total", stats.Total, model.theme.HeaderForeground),
		card("Open", stats.Open, model.theme.Info),
		card("Closed", stats.Closed, model.theme.Success),
	)
}

func (model Model) renderTickets(view domain.ConsoleView) string {
	list := domain.TicketListView{Page: 1, TotalPages: 1}
	if view.Tickets != nil {
		list = *view.Tickets
	}

	rows := make([]table.Row, 0, len(list.Rows))
	for _, r := range list.Rows {
		audio := ""
		if r.AudioURL != "" {
			audio = r.AudioURL
		} else if r.AudioKey != "" {
			audio = r.AudioKey
		}
		rows = append(rows, table.Row{
			r.CreatedAt, r.Title, r.Department, string(r.Priority), string(r.Status), audio,
		})
	}

	audioWidth := model.width - 96
	if audioWidth < 10 {
		audioWidth = 10
	}
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(model.theme.BorderColor).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Cell

	tickets := table.New(
		table.WithColumns([]table.Column{
			{Title: "Created", Width: 24},
			{Title: "Title", Width: 28},
			{Title: "Dept", Width: 6},
			{Title: "Priority", Width: 8},
			{Title: "Status", Width: 11},
			{Title: "Audio", Width: audioWidth},
		}),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
		table.WithFocused(false),
		table.WithStyles(styles),
	)

	var b strings.Builder
	b.WriteString(model.filter.view(model.theme, true))
	b.WriteString("\n\n")
	if len(rows) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(model.theme.FaintText).Render("No tickets match."))
	} else {
		b.WriteString(tickets.View())
	}
	b.WriteString("\n\n")

	indicator := fmt.Sprintf("Page %s · %d matching", list.Indicator(), list.Matched)
	if list.HasPrev {
		indicator = "‹ " + indicator
	}
	if list.HasNext {
		indicator += " ›"
	}
	b.WriteString(lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(indicator))
	return b.String()
}

func (model Model) renderAudio(view domain.ConsoleView) string {
	if len(view.Audio) == 0 {
		return lipgloss.NewStyle().Foreground(model.theme.FaintText).Render("No recordings yet.")
	}

	var b strings.Builder
	for i, entry := range view.Audio {
		if i > 0 {
			b.WriteString("\n")
		}
		name := lipgloss.NewStyle().Bold(true).Render(entry.Name)
		meta := lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(fmt.Sprintf(
			"  %s · %s", formatSize(entry.Size), entry.LastModified.Local().Format("2006-01-02 15:04"),
		))
		b.WriteString(name + meta + "\n  " + entry.URL)
	}
	return b.String()
}

func (model Model) renderRaiseTicket(view domain.ConsoleView) string {
	text := newForm(model.ticket.fields[:fieldVoiceDepartment]...)
	text.focus = model.ticket.focus
	voice := newForm(model.ticket.fields[fieldVoiceDepartment:]...)
	voice.focus = model.ticket.focus - fieldVoiceDepartment

	heading := lipgloss.NewStyle().Bold(true).Foreground(model.theme.Accent)

	var b strings.Builder
	b.WriteString(heading.Render("Text ticket"))
	b.WriteString("\n")
	b.WriteString(text.view(model.theme, model.ticket.focus < fieldVoiceDepartment))
	b.WriteString("\n\n")
	b.WriteString(heading.Render("Voice ticket"))
	b.WriteString("\n")
	b.WriteString(model.renderRecorder(view.Recording))
	b.WriteString("\n")
	b.WriteString(voice.view(model.theme, model.ticket.focus >= fieldVoiceDepartment))
	return b.String()
}

func (model Model) renderRecorder(rec domain.RecordingView) string {
	var state string
	switch rec.Phase {
	case domain.RecordingCapturing:
		state = lipgloss.NewStyle().Bold(true).Foreground(model.theme.Error).Render("● REC " + rec.Elapsed)
	case domain.RecordingStopped:
		state = lipgloss.NewStyle().Foreground(model.theme.Success).
			Render(fmt.Sprintf("■ %s recorded (%s)", rec.Elapsed, formatSize(int64(rec.Size))))
	default:
		state = lipgloss.NewStyle().Foreground(model.theme.FaintText).Render("○ ready " + rec.Elapsed)
	}
	return state
}

func (model Model) renderToast(toast *domain.Notification) string {
	if toast == nil {
		return ""
	}
	return lipgloss.NewStyle().Foreground(model.theme.LevelColor(toast.Level)).Render(toast.Message)
}

func (model Model) renderHelp(page domain.Page) string {
	bindings := []key.Binding{model.keys.NextField, model.keys.Submit}
	switch page {
	case domain.PageAuth:
		bindings = append(bindings, model.keys.OptionNext, model.keys.ToggleAuthMode)
	case domain.PageTickets:
		bindings = []key.Binding{model.keys.NextField, model.keys.OptionNext,
			model.keys.ListPrev, model.keys.ListNext, model.keys.Refresh}
	case domain.PageRaiseTicket:
		bindings = append(bindings, model.keys.Record, model.keys.ResetRecord, model.keys.UploadVoice)
	default:
		bindings = []key.Binding{model.keys.Refresh}
	}
	if page != domain.PageAuth {
		bindings = append(bindings, model.keys.SignOut)
	}
	bindings = append(bindings, model.keys.Quit)

	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return lipgloss.NewStyle().Foreground(model.theme.HelpText).Render(strings.Join(parts, " · "))
}

func formatSize(bytes int64) string {
	switch {
	case bytes >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(bytes)/(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(bytes)/(1<<10))
	default:
		return strconv.FormatInt(bytes, 10) + " B"
	}
}
