// Package ui holds the presentation side of a chat session.
//
// Both front ends implement domain.Presenter and domain.Outbox:
//
//   - TUI, a bubbletea program with a scrolling transcript and an input line
//   - Plain, a line-oriented mode for pipes and dumb terminals
//
// Neither is called from the receive loop. The TUI re-arms a tea.Cmd on the
// pump's event channel so events are applied inside Update; Plain is driven
// by message.Deliver on its own goroutine and serialises its writes.
package ui
