// Package tui implements the terminal console. Built on bubbletea (Elm
// architecture), it drives a single [ports.Console] and renders its
// current page: the auth forms, the dashboard, the ticket table, the audio
// browser and the raise-ticket page with the recorder.
//
// The model never keeps a copy of application state. Every frame is drawn
// from Console.View, and anything the services do in the background
// (notifications, recording ticks) reaches the program through a [Bridge],
// which only asks for a redraw.
//
// Service calls that may block on the network run as tea.Cmds and report
// back with an actionDoneMsg.
package tui
