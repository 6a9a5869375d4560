package ui

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"securechat/internal/domain"
	"securechat/internal/services/message"
)

// maxTranscript bounds the lines kept in memory.
const maxTranscript = 500

// eventMsg carries one pump event into Update; ok is false once the channel
// has closed.
type eventMsg struct {
	ev domain.Event
	ok bool
}

// Sender is the part of the message pump the TUI drives.
type Sender interface {
	SendPending(ctx context.Context, outbox domain.Outbox) error
}

// TUI is the bubbletea model of a chat window.
type TUI struct {
	ctx    context.Context
	sender Sender
	events <-chan domain.Event

	header string
	lines  []string
	input  []rune
	height int
	ended  bool
	err    error
	st     styles
}

// NewTUI returns a model that sends through sender and renders events read
// from events. header is shown above the transcript.
func NewTUI(ctx context.Context, sender Sender, events <-chan domain.Event, header string) *TUI {
	return &TUI{
		ctx:    ctx,
		sender: sender,
		events: events,
		header: header,
		st:     defaultStyles(),
	}
}

// Err returns the session failure, if any, once the program has exited.
func (m *TUI) Err() error { return m.err }

// Init starts listening for pump events.
func (m *TUI) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func waitForEvent(events <-chan domain.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		return eventMsg{ev: ev, ok: ok}
	}
}

// Update handles key presses and pump events.
func (m *TUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil
	case eventMsg:
		if !msg.ok {
			if !m.ended {
				m.ended = true
				m.OnStatus(message.StatusPeerClosed)
			}
			return m, nil
		}
		if done, err := message.Dispatch(msg.ev, m); done {
			m.ended = true
			m.err = err
			m.OnStatus("press ctrl+c to quit")
			return m, nil
		}
		return m, waitForEvent(m.events)
	}
	return m, nil
}

func (m *TUI) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		m.send()
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
	}
	return m, nil
}

func (m *TUI) send() {
	if m.ended {
		return
	}
	text := m.TakeOutgoingText()
	if strings.TrimSpace(text) == "" {
		return
	}
	err := m.sender.SendPending(m.ctx, m)
	switch {
	case err == nil:
		m.appendLine(m.st.self.Render(selfTag) + " " + text)
	case errors.Is(err, domain.ErrMessageTooLong):
		m.OnStatus(message.StatusTooLong)
	default:
		m.ended = true
		m.err = err
		m.OnStatus("send failed: " + err.Error())
	}
}

// View renders the header, the transcript tail and the input line.
func (m *TUI) View() string {
	var b strings.Builder
	if m.header != "" {
		b.WriteString(m.st.status.Render(m.header))
		b.WriteString("\n\n")
	}
	lines := m.lines
	if room := m.height - 4; room > 0 && len(lines) > room {
		lines = lines[len(lines)-room:]
	}
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteString("\n")
	b.WriteString(m.st.prompt.Render("> "))
	b.WriteString(string(m.input))
	return b.String()
}

// OnMessageReceived implements domain.Presenter.
func (m *TUI) OnMessageReceived(text string) {
	m.appendLine(m.st.friend.Render(friendTag) + " " + strings.TrimSuffix(text, "\n"))
}

// OnStatus implements domain.Presenter.
func (m *TUI) OnStatus(text string) {
	m.appendLine(m.st.status.Render(text))
}

// TakeOutgoingText implements domain.Outbox.
func (m *TUI) TakeOutgoingText() string { return string(m.input) }

// ClearOutgoingText implements domain.Outbox.
func (m *TUI) ClearOutgoingText() { m.input = m.input[:0] }

func (m *TUI) appendLine(l string) {
	m.lines = append(m.lines, l)
	if len(m.lines) > maxTranscript {
		m.lines = m.lines[len(m.lines)-maxTranscript:]
	}
}

var (
	_ tea.Model        = (*TUI)(nil)
	_ domain.Presenter = (*TUI)(nil)
	_ domain.Outbox    = (*TUI)(nil)
)
