package message

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"securechat/internal/domain"
	"securechat/internal/protocol/transport"
	"securechat/internal/util/logger"
)

var log = logger.GetLogger()

// Status lines handed to the presentation.
const (
	StatusPeerClosed = "peer disconnected"
	StatusTooLong    = "message too long"
)

const (
	defaultDrainTimeout = 5 * time.Second
	eventBuffer         = 16
)

// Options configures a Pump.
type Options struct {
	Cipher       string
	MaxFrame     int
	DrainTimeout time.Duration
}

// Pump is the send path, receive loop and teardown of one session.
type Pump struct {
	sess     *domain.Session
	enc, dec *transport.Codec
	maxFrame int
	drain    time.Duration

	sendMu sync.Mutex
	dead   bool // guarded by sendMu

	events  chan domain.Event
	started atomic.Bool
	closing atomic.Bool
	done    chan struct{} // receive loop exited
	abandon chan struct{} // stream closed; stop publishing

	closeOnce sync.Once
	closeErr  error
}

// New builds the codecs for sess and returns a Pump that owns it.
func New(sess *domain.Session, opts Options) (*Pump, error) {
	if opts.MaxFrame == 0 {
		opts.MaxFrame = transport.DefaultMaxFrame
	}
	if opts.Cipher == "" {
		opts.Cipher = transport.CipherAES256CTR
	}
	if opts.DrainTimeout <= 0 {
		opts.DrainTimeout = defaultDrainTimeout
	}
	enc, dec, err := transport.New(sess.Secret, opts.Cipher, opts.MaxFrame)
	if err != nil {
		return nil, oops.In("message").With("session", sess.ID).Wrapf(err, "build codecs")
	}
	return &Pump{
		sess:     sess,
		enc:      enc,
		dec:      dec,
		maxFrame: opts.MaxFrame,
		drain:    opts.DrainTimeout,
		events:   make(chan domain.Event, eventBuffer),
		done:     make(chan struct{}),
		abandon:  make(chan struct{}),
	}, nil
}

// Session returns the session the pump owns.
func (p *Pump) Session() *domain.Session { return p.sess }

// Events is closed when the receive loop exits.
func (p *Pump) Events() <-chan domain.Event { return p.events }

// Send encrypts plaintext and writes it as one frame. Empty input is a
// no-op; input above the frame limit is rejected before anything is
// encrypted. A write error ends the session.
func (p *Pump) Send(ctx context.Context, plaintext []byte) error {
	if len(plaintext) == 0 {
		return nil
	}
	if len(plaintext) > p.maxFrame {
		return oops.In("message").With("length", len(plaintext), "max", p.maxFrame).
			Wrapf(domain.ErrMessageTooLong, "%d bytes exceeds %d", len(plaintext), p.maxFrame)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := p.write(plaintext)
	if err != nil && !errors.Is(err, domain.ErrSessionClosed) {
		_ = p.Close()
		return oops.In("message").Code("transport").With("session", p.sess.ID).
			Wrapf(errors.Join(domain.ErrSessionClosed, err), "send")
	}
	return err
}

func (p *Pump) write(plaintext []byte) error {
	p.sendMu.Lock()
	defer p.sendMu.Unlock()

	if p.dead || p.closing.Load() {
		return oops.In("message").Wrapf(domain.ErrSessionClosed, "send")
	}
	ct, err := p.enc.Encrypt(plaintext)
	if err != nil {
		return err
	}
	if _, err := p.sess.Stream.Write(ct); err != nil {
		p.dead = true
		return err
	}
	log.WithFields(logger.Fields{
		"at":      "(message.Pump) Send",
		"session": p.sess.ID,
		"length":  len(ct),
	}).Debug("Sent frame")
	return nil
}

// SendPending sends the outbox's pending text and clears it on success.
// Text that could not be sent, including oversize text, stays pending.
func (p *Pump) SendPending(ctx context.Context, outbox domain.Outbox) error {
	text := outbox.TakeOutgoingText()
	if text == "" {
		return nil
	}
	if err := p.Send(ctx, []byte(text)); err != nil {
		return err
	}
	outbox.ClearOutgoingText()
	return nil
}

// Run is the receive loop. It returns nil when the peer closes the stream,
// when ctx is cancelled or when Close is called, and the read error
// otherwise. Either Run or Start may be called, once.
func (p *Pump) Run(ctx context.Context) error {
	if err := p.claim(); err != nil {
		return err
	}
	return p.receive(ctx)
}

// Start runs the receive loop in its own goroutine. The pump counts as
// running as soon as Start returns, so a Close that follows still
// half-closes and drains. The channel yields Run's result.
func (p *Pump) Start(ctx context.Context) <-chan error {
	errc := make(chan error, 1)
	if err := p.claim(); err != nil {
		errc <- err
		close(errc)
		return errc
	}
	go func() {
		defer close(errc)
		errc <- p.receive(ctx)
	}()
	return errc
}

func (p *Pump) claim() error {
	if !p.started.CompareAndSwap(false, true) {
		return oops.In("message").Errorf("receive loop already running")
	}
	return nil
}

func (p *Pump) receive(ctx context.Context) error {
	defer close(p.done)
	defer close(p.events)

	stop := context.AfterFunc(ctx, func() { _ = p.Close() })
	defer stop()

	buf := make([]byte, p.maxFrame)
	for {
		n, err := p.sess.Stream.Read(buf)
		if n > 0 {
			pt, derr := p.dec.Decrypt(buf[:n])
			if derr != nil {
				return p.fail(derr)
			}
			text := string(pt)
			if !strings.HasSuffix(text, "\n") {
				text += "\n"
			}
			p.publish(domain.Event{Kind: domain.EventMessage, Text: text})
		}
		switch {
		case err == nil:
			continue
		case errors.Is(err, io.EOF):
			log.WithFields(logger.Fields{
				"at":      "(message.Pump) Run",
				"session": p.sess.ID,
				"closing": p.closing.Load(),
			}).Debug("Stream ended")
			if !p.closing.Load() {
				p.publish(domain.Event{Kind: domain.EventPeerClosed, Text: StatusPeerClosed})
				// Our side may still be open on screen; the stream is not.
				go func() { _ = p.Close() }()
			}
			return nil
		case p.closing.Load():
			return nil
		default:
			return p.fail(err)
		}
	}
}

func (p *Pump) fail(err error) error {
	wrapped := oops.In("message").Code("transport").With("session", p.sess.ID).Wrapf(err, "receive")
	log.WithError(err).WithField("at", "(message.Pump) Run").Error("Receive loop failed")
	p.publish(domain.Event{Kind: domain.EventFailed, Text: err.Error(), Err: wrapped})
	return wrapped
}

func (p *Pump) publish(ev domain.Event) {
	select {
	case p.events <- ev:
	case <-p.abandon:
	}
}

// Close ends the session. It is safe to call more than once and from any
// goroutine; later calls return the first call's result.
func (p *Pump) Close() error {
	p.closeOnce.Do(func() {
		p.closing.Store(true)
		stream := p.sess.Stream

		if cw, ok := stream.(interface{ CloseWrite() error }); ok && p.started.Load() {
			_ = cw.CloseWrite()
			p.drainReceive(stream)
		}

		if err := stream.Close(); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, io.ErrClosedPipe) {
			p.closeErr = oops.In("message").Code("transport").With("session", p.sess.ID).Wrapf(err, "close stream")
		}
		close(p.abandon)
		if p.started.Load() {
			<-p.done
		}

		p.sendMu.Lock()
		p.dead = true
		p.sess.Destroy()
		p.sendMu.Unlock()

		log.WithFields(logger.Fields{
			"at":      "(message.Pump) Close",
			"session": p.sess.ID,
		}).Debug("Session closed")
	})
	return p.closeErr
}

// drainReceive waits for the receive loop to see the peer's end of stream,
// then forces it out with a read deadline once the drain timeout passes.
func (p *Pump) drainReceive(stream domain.Stream) {
	timer := time.NewTimer(p.drain)
	defer timer.Stop()
	select {
	case <-p.done:
		return
	case <-timer.C:
	}
	if rd, ok := stream.(interface{ SetReadDeadline(time.Time) error }); ok {
		_ = rd.SetReadDeadline(time.Now())
	}
	log.WithFields(logger.Fields{
		"at":      "(message.Pump) Close",
		"session": p.sess.ID,
		"timeout": p.drain,
	}).Warn("Peer did not close within drain timeout")
}

// Deliver hands events to presenter until the channel closes, the session
// ends or ctx is done. It must run in the presentation's context. A failed
// session is reported to presenter and returned.
func Deliver(ctx context.Context, events <-chan domain.Event, presenter domain.Presenter) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if done, err := Dispatch(ev, presenter); done {
				return err
			}
		}
	}
}

// Dispatch applies one event to presenter. It reports whether the event ends
// the session, with the session error if it failed.
func Dispatch(ev domain.Event, presenter domain.Presenter) (bool, error) {
	switch ev.Kind {
	case domain.EventMessage:
		presenter.OnMessageReceived(ev.Text)
		return false, nil
	case domain.EventPeerClosed:
		presenter.OnStatus(StatusPeerClosed)
		return true, nil
	case domain.EventFailed:
		presenter.OnStatus("connection error: " + ev.Text)
		return true, ev.Err
	default:
		return false, nil
	}
}

// Compile-time assertion that Pump implements domain.MessagePump.
var _ domain.MessagePump = (*Pump)(nil)
