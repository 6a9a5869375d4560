package types

import (
	"crypto/subtle"

	"securechat/internal/util/memzero"
)

// PrivateScalar is the secret half of a Diffie-Hellman key pair. Its length
// is fixed by the group that produced it.
type PrivateScalar []byte

// PublicValue is the public half of a Diffie-Hellman key pair in the group's
// canonical encoding.
type PublicValue []byte

// Equal compares two public values in constant time.
func (p PublicValue) Equal(o PublicValue) bool {
	return len(p) == len(o) && subtle.ConstantTimeCompare(p, o) == 1
}

// Clone returns a copy of p.
func (p PublicValue) Clone() PublicValue { return append(PublicValue(nil), p...) }

// KeyPair is either a long-term identity pair (one per role, persisted) or an
// ephemeral pair (one per session, never persisted).
type KeyPair struct {
	Private PrivateScalar
	Public  PublicValue
}

// Wipe zeroes the private half. The pair must not be used afterwards.
func (k *KeyPair) Wipe() {
	memzero.Zero(k.Private)
	k.Private = nil
}

// PeerIdentity is the counterpart's long-term public value, obtained out of
// band and stored locally under Name.
type PeerIdentity struct {
	Name   KeyName
	Public PublicValue
}
