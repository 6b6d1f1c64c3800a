package tui

import (
	"context"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lorrc/voice2ticket/internal/core/domain"
	"github.com/lorrc/voice2ticket/internal/core/ports"
)

// notificationMsg carries a console notification into the program.
type notificationMsg struct {
	notification domain.Notification
}

// consoleEventMsg carries a console event, such as a recording tick, into
// the program.
type consoleEventMsg struct {
	event domain.Event
}

// Bridge is the console's Notifier and EventPublisher. It forwards to a
// bubbletea program once SetProgram has been called; anything arriving
// earlier is dropped, since the first frame is drawn from the state anyway.
type Bridge struct {
	program atomic.Pointer[tea.Program]
}

var (
	_ ports.Notifier       = (*Bridge)(nil)
	_ ports.EventPublisher = (*Bridge)(nil)
)

// NewBridge creates a bridge with no program attached.
func NewBridge() *Bridge {
	return &Bridge{}
}

// SetProgram sets the program that receives notifications and events.
// Safe to call from any goroutine.
func (b *Bridge) SetProgram(program *tea.Program) {
	b.program.Store(program)
}

// Notify implements ports.Notifier.
func (b *Bridge) Notify(_ context.Context, n domain.Notification) {
	b.send(notificationMsg{notification: n})
}

// Publish implements ports.EventPublisher.
func (b *Bridge) Publish(_ context.Context, event domain.Event) {
	b.send(consoleEventMsg{event: event})
}

// send hands msg to the program from its own goroutine. Services notify
// from inside commands and Program.Send blocks until the event loop is
// free.
func (b *Bridge) send(msg tea.Msg) {
	program := b.program.Load()
	if program == nil {
		return
	}
	go program.Send(msg)
}
