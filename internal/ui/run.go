package ui

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"securechat/internal/domain"
	"securechat/internal/services/message"
)

// Pump is what a front end needs from the message pump.
type Pump interface {
	Sender
	Events() <-chan domain.Event
}

// RunTUI runs the bubbletea front end until the user quits or ctx is done.
// It returns the session failure, if the session failed.
func RunTUI(ctx context.Context, pump Pump, header string) error {
	m := NewTUI(ctx, pump, pump.Events(), header)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return m.Err()
}

// RunPlain runs the line-mode front end. It returns when the session ends,
// the input ends or ctx is done.
func RunPlain(ctx context.Context, pump Pump, in io.Reader, out io.Writer, header string) error {
	p := NewPlain(in, out)
	if header != "" {
		p.OnStatus(header)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return message.Deliver(gctx, pump.Events(), p)
	})
	g.Go(func() error {
		defer cancel()
		return p.ReadInput(gctx, pump)
	})
	return g.Wait()
}
