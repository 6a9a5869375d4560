package ui_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securechat/internal/domain"
	"securechat/internal/ui"
)

// fakeSender records what the front end sends.
type fakeSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeSender) SendPending(_ context.Context, outbox domain.Outbox) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	text := outbox.TakeOutgoingText()
	if text == "" {
		return nil
	}
	f.sent = append(f.sent, text)
	outbox.ClearOutgoingText()
	return nil
}

func (f *fakeSender) Sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func typeText(m *ui.TUI, s string) {
	for _, r := range s {
		if r == ' ' {
			m.Update(tea.KeyMsg{Type: tea.KeySpace})
			continue
		}
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestTUI_EnterSendsAndClears(t *testing.T) {
	sender := &fakeSender{}
	m := ui.NewTUI(context.Background(), sender, make(chan domain.Event), "session abc")

	typeText(m, "hi there")
	assert.Equal(t, "hi there", m.TakeOutgoingText())

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"hi there"}, sender.Sent())
	assert.Empty(t, m.TakeOutgoingText())

	view := m.View()
	assert.Contains(t, view, "me:")
	assert.Contains(t, view, "hi there")
	assert.Contains(t, view, "session abc")
}

func TestTUI_BackspaceAndEmptyEnter(t *testing.T) {
	sender := &fakeSender{}
	m := ui.NewTUI(context.Background(), sender, make(chan domain.Event), "")

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, sender.Sent(), "empty input sends nothing")

	typeText(m, "ab")
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "a", m.TakeOutgoingText())
}

func TestTUI_TooLongKeepsInput(t *testing.T) {
	sender := &fakeSender{err: oops.Wrapf(domain.ErrMessageTooLong, "513 bytes exceeds 512")}
	m := ui.NewTUI(context.Background(), sender, make(chan domain.Event), "")

	typeText(m, "long")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "long", m.TakeOutgoingText())
	assert.Contains(t, m.View(), "message too long")
	assert.NoError(t, m.Err())
}

func TestTUI_ReceivesEvents(t *testing.T) {
	events := make(chan domain.Event, 2)
	m := ui.NewTUI(context.Background(), &fakeSender{}, events, "")

	events <- domain.Event{Kind: domain.EventMessage, Text: "hello\n"}
	msg := m.Init()()
	_, next := m.Update(msg)
	require.NotNil(t, next, "listener must be re-armed after a message")
	assert.Contains(t, m.View(), "peer:")
	assert.Contains(t, m.View(), "hello")

	events <- domain.Event{Kind: domain.EventPeerClosed}
	_, next = m.Update(next())
	assert.Nil(t, next)
	assert.Contains(t, m.View(), "peer disconnected")
}

func TestTUI_FailureIsRecorded(t *testing.T) {
	events := make(chan domain.Event, 1)
	m := ui.NewTUI(context.Background(), &fakeSender{}, events, "")

	boom := errors.New("reset by peer")
	events <- domain.Event{Kind: domain.EventFailed, Text: boom.Error(), Err: boom}
	m.Update(m.Init()())
	assert.ErrorIs(t, m.Err(), boom)
	assert.Contains(t, m.View(), "connection error: reset by peer")
}

func TestTUI_CtrlCQuits(t *testing.T) {
	m := ui.NewTUI(context.Background(), &fakeSender{}, make(chan domain.Event), "")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestPlain_SendsLines(t *testing.T) {
	in := strings.NewReader("first\n\nsecond\n")
	var out bytes.Buffer
	p := ui.NewPlain(in, &out)
	sender := &fakeSender{}

	require.NoError(t, p.ReadInput(context.Background(), sender))
	assert.Equal(t, []string{"first", "second"}, sender.Sent())
}

func TestPlain_TooLongIsReported(t *testing.T) {
	var out bytes.Buffer
	p := ui.NewPlain(strings.NewReader("x\n"), &out)
	sender := &fakeSender{err: oops.Wrapf(domain.ErrMessageTooLong, "too long")}

	require.NoError(t, p.ReadInput(context.Background(), sender))
	assert.Equal(t, "* message too long\n", out.String())
	assert.Empty(t, p.TakeOutgoingText())
}

func TestPlain_SendFailureStops(t *testing.T) {
	p := ui.NewPlain(strings.NewReader("x\ny\n"), io.Discard)
	err := p.ReadInput(context.Background(), &fakeSender{err: domain.ErrSessionClosed})
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
}

func TestPlain_ContextStopsBlockedInput(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	p := ui.NewPlain(r, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- p.ReadInput(ctx, &fakeSender{}) }()
	cancel()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("ReadInput ignored cancellation")
	}
}

func TestPlain_Presenter(t *testing.T) {
	var out bytes.Buffer
	p := ui.NewPlain(strings.NewReader(""), &out)
	p.OnMessageReceived("hello\n")
	p.OnStatus("peer disconnected")
	assert.Equal(t, "peer: hello\n* peer disconnected\n", out.String())
}
