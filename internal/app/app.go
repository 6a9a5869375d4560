package app

import (
	"context"
	"io"
	"net"
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"

	"securechat/internal/crypto"
	"securechat/internal/domain"
	messagesvc "securechat/internal/services/message"
	"securechat/internal/util/logger"
)

var log = logger.GetLogger()

// LogFileName is where logs go in TUI mode when no log file is configured.
const LogFileName = "securechat.log"

// Frontend presents one running session until the user quits or the
// session ends.
type Frontend func(ctx context.Context, pump *messagesvc.Pump) error

// App runs chat sessions over connections obtained by Listen or Dial.
type App struct {
	*Wire
}

// New wires an App from cfg.
func New(cfg Config) (*App, error) {
	w, err := NewWire(cfg)
	if err != nil {
		return nil, err
	}
	return &App{Wire: w}, nil
}

// ConfigureLogging applies the configured level and destination. Logging
// enabled from the environment is moved off the terminal in TUI mode too.
// The returned closer releases a log file, if one was opened.
func ConfigureLogging(cfg Config) (io.Closer, error) {
	level := cfg.LogLevel
	if level == "" {
		// SECURECHAT_DEBUG may have enabled logging to stderr already.
		if !logger.GetLogger().Enabled() {
			return nopCloser{}, nil
		}
		level = logger.GetLogger().GetLevel().String()
	}
	path := cfg.LogFile
	if path == "" && !cfg.Plain {
		// The TUI owns the terminal.
		path = filepath.Join(cfg.Home, LogFileName)
	}
	if path == "" {
		return nopCloser{}, logger.Configure(level, os.Stderr)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, oops.In("app").With("path", path).Wrapf(err, "create log directory")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, oops.In("app").With("path", path).Wrapf(err, "open log file")
	}
	if err := logger.Configure(level, f); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Listen accepts exactly one connection on addr, then closes the listening
// socket.
func Listen(ctx context.Context, addr string) (net.Conn, error) {
	errb := oops.In("app").Code("peer_unreachable").With("addr", addr)

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, errb.Wrapf(err, "listen")
	}
	defer ln.Close()
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	log.WithFields(logger.Fields{"at": "app.Listen", "addr": ln.Addr().String()}).Info("Waiting for peer")
	conn, err := ln.Accept()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errb.Wrapf(ctxErr, "accept")
		}
		return nil, errb.Wrapf(err, "accept")
	}
	log.WithFields(logger.Fields{"at": "app.Listen", "peer": conn.RemoteAddr().String()}).Info("Peer connected")
	return conn, nil
}

// Dial connects to addr.
func Dial(ctx context.Context, addr string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, oops.In("app").Code("peer_unreachable").With("addr", addr).Wrapf(err, "connect")
	}
	return conn, nil
}

// Chat keys a session over conn as role and runs it: the receive loop and
// the frontend run side by side until either ends. conn is closed on return.
func (a *App) Chat(ctx context.Context, role domain.Role, conn net.Conn, front Frontend) error {
	sess, err := a.Establisher(role).Establish(ctx, conn)
	if err != nil {
		_ = conn.Close()
		return err
	}
	pump, err := a.NewPump(sess)
	if err != nil {
		sess.Destroy()
		_ = conn.Close()
		return err
	}
	log.WithFields(logger.Fields{
		"at":          "(app.App) Chat",
		"session":     sess.ID,
		"role":        role,
		"peer":        sess.Peer,
		"fingerprint": crypto.SessionFingerprint(sess.Secret),
	}).Info("Session started")

	g, gctx := errgroup.WithContext(ctx)
	received := pump.Start(gctx)
	g.Go(func() error { return <-received })
	g.Go(func() error {
		defer pump.Close()
		return front(gctx, pump)
	})
	err = g.Wait()
	if cerr := pump.Close(); err == nil {
		err = cerr
	}
	return err
}

// Header summarises a session for display: the peer's key fingerprint and
// the session fingerprint both users can compare.
func Header(sess *domain.Session) string {
	return "peer " + string(sess.Peer) + " " + crypto.Fingerprint(sess.PeerPublic).String() +
		" | session " + crypto.SessionFingerprint(sess.Secret).String()
}
