package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"securechat/internal/domain"
	"securechat/internal/services/message"
)

// Plain is the line-mode front end. Each input line is one message.
type Plain struct {
	in  io.Reader
	out io.Writer

	mu      sync.Mutex // guards out and pending
	pending string
}

// NewPlain returns a line-mode front end reading from in and writing to out.
func NewPlain(in io.Reader, out io.Writer) *Plain {
	return &Plain{in: in, out: out}
}

// OnMessageReceived implements domain.Presenter.
func (p *Plain) OnMessageReceived(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s %s", friendTag, text)
}

// OnStatus implements domain.Presenter.
func (p *Plain) OnStatus(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "* %s\n", text)
}

// TakeOutgoingText implements domain.Outbox.
func (p *Plain) TakeOutgoingText() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending
}

// ClearOutgoingText implements domain.Outbox.
func (p *Plain) ClearOutgoingText() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = ""
}

// ReadInput sends each input line until the input ends, a send fails or ctx
// is done. Oversize lines are reported and dropped.
func (p *Plain) ReadInput(ctx context.Context, sender Sender) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(p.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			p.mu.Lock()
			p.pending = line
			p.mu.Unlock()

			err := sender.SendPending(ctx, p)
			switch {
			case err == nil:
			case errors.Is(err, domain.ErrMessageTooLong):
				p.OnStatus(message.StatusTooLong)
				p.ClearOutgoingText()
			default:
				return err
			}
		}
	}
}

var (
	_ domain.Presenter = (*Plain)(nil)
	_ domain.Outbox    = (*Plain)(nil)
)
