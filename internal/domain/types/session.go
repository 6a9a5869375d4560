package types

import (
	"io"
	"time"

	"securechat/internal/util/memzero"
)

// SharedSecretSize is the length of the buffer produced by the triple-DH
// combiner. The first half keys the transport cipher, the second half seeds
// its counter.
const SharedSecretSize = 128

// Stream is the already-connected, ordered, reliable byte stream a session
// runs over.
type Stream = io.ReadWriteCloser

// Session holds the state of the one live connection of this process.
type Session struct {
	ID            string
	Role          Role
	Peer          KeyName
	PeerPublic    PublicValue
	Secret        []byte
	Stream        Stream
	EstablishedAt time.Time
}

// Destroy zeroes the shared secret.
func (s *Session) Destroy() {
	memzero.Zero(s.Secret)
	s.Secret = nil
}
