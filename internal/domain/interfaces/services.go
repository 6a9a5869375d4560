package interfaces

import (
	"context"

	domaintypes "securechat/internal/domain/types"
)

// IdentityService loads or lazily creates long-term identities.
type IdentityService interface {
	EnsureIdentity(role domaintypes.Role) (domaintypes.KeyPair, error)
	LoadPeer(name domaintypes.KeyName) (domaintypes.PeerIdentity, error)
	Fingerprint(role domaintypes.Role) (domaintypes.Fingerprint, error)
}

// SessionEstablisher runs the key exchange on a freshly connected stream.
type SessionEstablisher interface {
	Establish(ctx context.Context, stream domaintypes.Stream) (*domaintypes.Session, error)
}

// MessagePump moves messages over an established session.
type MessagePump interface {
	// Run blocks in the receive loop until the peer closes, the stream
	// fails or ctx is cancelled.
	Run(ctx context.Context) error
	// Start runs the receive loop in the background and yields its result.
	Start(ctx context.Context) <-chan error
	Send(ctx context.Context, plaintext []byte) error
	SendPending(ctx context.Context, outbox Outbox) error
	Events() <-chan domaintypes.Event
	Close() error
}
