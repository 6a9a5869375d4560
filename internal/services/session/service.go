package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"securechat/internal/crypto"
	"securechat/internal/domain"
	"securechat/internal/protocol/tripledh"
	"securechat/internal/util/logger"
)

var log = logger.GetLogger()

// State is a step of the key exchange.
type State int

const (
	StateStart State = iota
	StateSentEphemeral
	StateReceivedPeerEphemeral
	StateKeyed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "START"
	case StateSentEphemeral:
		return "SENT_EPHEMERAL"
	case StateReceivedPeerEphemeral:
		return "RECEIVED_PEER_EPHEMERAL"
	case StateKeyed:
		return "KEYED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// deadliner is implemented by streams whose blocking calls can be bounded.
type deadliner interface {
	SetDeadline(t time.Time) error
}

// Establisher performs the triple-DH exchange for one role.
type Establisher struct {
	prim    domain.DHPrimitive
	ids     domain.IdentityService
	role    domain.Role
	peer    domain.KeyName
	timeout time.Duration

	mu    sync.Mutex
	state State
}

// New returns an Establisher for role that authenticates the peer stored
// under peer. A zero timeout leaves the exchange bounded only by ctx.
func New(
	prim domain.DHPrimitive,
	ids domain.IdentityService,
	role domain.Role,
	peer domain.KeyName,
	timeout time.Duration,
) *Establisher {
	return &Establisher{prim: prim, ids: ids, role: role, peer: peer, timeout: timeout}
}

// State returns the current step.
func (e *Establisher) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Establisher) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
	log.WithFields(logger.Fields{
		"at":    "(session.Establisher) setState",
		"role":  e.role,
		"state": s,
	}).Debug("Key exchange state")
}

// Establish runs the exchange on stream and returns the keyed session. The
// stream is not closed on failure; that is left to the caller.
func (e *Establisher) Establish(ctx context.Context, stream domain.Stream) (*domain.Session, error) {
	e.setState(StateStart)
	sess, err := e.establish(ctx, stream)
	if err != nil {
		at := e.State()
		e.setState(StateFailed)
		return nil, oops.In("session").Code("key_exchange").
			With("role", e.role, "peer", e.peer, "state", at.String()).
			Wrapf(err, "key exchange failed in %s", at)
	}
	e.setState(StateKeyed)
	log.WithFields(logger.Fields{
		"at":          "(session.Establisher) Establish",
		"role":        e.role,
		"peer":        e.peer,
		"session":     sess.ID,
		"fingerprint": crypto.SessionFingerprint(sess.Secret),
	}).Info("Session keyed")
	return sess, nil
}

func (e *Establisher) establish(ctx context.Context, stream domain.Stream) (*domain.Session, error) {
	if !e.role.Valid() {
		return nil, oops.Errorf("invalid role %q", e.role)
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Both identities are needed for KEYED; fail before touching the wire
	// when either is unavailable.
	own, err := e.ids.EnsureIdentity(e.role)
	if err != nil {
		return nil, err
	}
	defer own.Wipe()
	peer, err := e.ids.LoadPeer(e.peer)
	if err != nil {
		return nil, err
	}

	eph, err := e.prim.GenerateKeyPair()
	if err != nil {
		return nil, oops.Wrapf(err, "generate ephemeral key pair")
	}
	defer eph.Wipe()

	stop := bindDeadline(ctx, stream)
	peerEph, err := e.exchange(stream, eph.Public)
	stop()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, oops.With("io", err).Wrapf(ctxErr, "handshake interrupted")
	}
	if err != nil {
		return nil, err
	}

	secret, err := e.prim.CombineTriple(own, eph, peer.Public, peerEph, domain.SharedSecretSize)
	if err != nil {
		return nil, oops.Wrapf(err, "combine")
	}
	return &domain.Session{
		ID:            uuid.NewString(),
		Role:          e.role,
		Peer:          peer.Name,
		PeerPublic:    peer.Public,
		Secret:        secret,
		Stream:        stream,
		EstablishedAt: time.Now(),
	}, nil
}

// exchange swaps ephemeral public values in the role's fixed order.
func (e *Establisher) exchange(stream domain.Stream, mine domain.PublicValue) (domain.PublicValue, error) {
	send := func() error {
		if err := tripledh.WritePublic(stream, e.prim, mine); err != nil {
			return err
		}
		e.setState(StateSentEphemeral)
		return nil
	}
	var theirs domain.PublicValue
	recv := func() error {
		v, err := tripledh.ReadPublic(stream, e.prim)
		if err != nil {
			return err
		}
		theirs = v
		e.setState(StateReceivedPeerEphemeral)
		return nil
	}

	steps := []func() error{send, recv}
	if e.role == domain.RoleConnector {
		steps = []func() error{recv, send}
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return theirs, nil
}

// bindDeadline expires the stream's deadline once ctx is done, so blocked
// reads and writes return after ctx.Err() is already set. The returned stop
// clears the deadline unless ctx already fired.
func bindDeadline(ctx context.Context, stream domain.Stream) (stop func()) {
	d, ok := stream.(deadliner)
	if !ok {
		return func() {}
	}
	stopAfter := context.AfterFunc(ctx, func() { _ = d.SetDeadline(time.Now()) })
	return func() {
		if stopAfter() {
			_ = d.SetDeadline(time.Time{})
		}
	}
}

// Compile-time assertion that Establisher implements domain.SessionEstablisher.
var _ domain.SessionEstablisher = (*Establisher)(nil)
