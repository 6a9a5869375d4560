package crypto

import (
	"crypto/rand"

	"github.com/samber/oops"
	"golang.org/x/crypto/curve25519"

	"securechat/internal/domain"
	"securechat/internal/protocol/tripledh"
)

// X25519Name is the configuration name of the Curve25519 group.
const X25519Name = "x25519"

// X25519 is the Curve25519 Diffie-Hellman group.
type X25519 struct{}

// NewX25519 returns the Curve25519 primitive.
func NewX25519() *X25519 { return &X25519{} }

// Name implements domain.DHPrimitive.
func (*X25519) Name() string { return X25519Name }

// GenerateKeyPair returns a fresh Curve25519 key pair.
// The private key is clamped per RFC 7748.
func (x *X25519) GenerateKeyPair() (domain.KeyPair, error) {
	priv := make(domain.PrivateScalar, curve25519.ScalarSize)
	if _, err := rand.Read(priv); err != nil {
		return domain.KeyPair{}, oops.In("crypto").Wrapf(err, "read random scalar")
	}
	clamp(priv)
	pub, err := x.PublicFromPrivate(priv)
	if err != nil {
		return domain.KeyPair{}, err
	}
	return domain.KeyPair{Private: priv, Public: pub}, nil
}

// PublicFromPrivate implements domain.DHPrimitive.
func (*X25519) PublicFromPrivate(priv domain.PrivateScalar) (domain.PublicValue, error) {
	if len(priv) != curve25519.ScalarSize {
		return nil, oops.In("crypto").Errorf("x25519 private: want %d bytes, got %d", curve25519.ScalarSize, len(priv))
	}
	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return nil, oops.In("crypto").Wrapf(err, "x25519 base point multiplication")
	}
	return pub, nil
}

// MarshalPublic implements domain.DHPrimitive.
func (*X25519) MarshalPublic(pub domain.PublicValue) []byte {
	return append([]byte(nil), pub...)
}

// UnmarshalPublic accepts exactly 32 bytes. The all-zero point is rejected
// here; other low-order points are rejected by the DH computation.
func (*X25519) UnmarshalPublic(b []byte) (domain.PublicValue, error) {
	if len(b) != curve25519.PointSize {
		return nil, oops.In("crypto").Wrapf(domain.ErrInvalidPublic, "x25519 public: want %d bytes, got %d", curve25519.PointSize, len(b))
	}
	var acc byte
	for _, c := range b {
		acc |= c
	}
	if acc == 0 {
		return nil, oops.In("crypto").Wrapf(domain.ErrInvalidPublic, "x25519 public is the zero point")
	}
	return append(domain.PublicValue(nil), b...), nil
}

// CombineTriple implements domain.DHPrimitive.
func (x *X25519) CombineTriple(
	myLongTerm domain.KeyPair,
	myEphemeral domain.KeyPair,
	peerLongTerm domain.PublicValue,
	peerEphemeral domain.PublicValue,
	outLen int,
) ([]byte, error) {
	return tripledh.Combine(x.Name(), dh, tripledh.Inputs{
		MyLongTerm:    myLongTerm,
		MyEphemeral:   myEphemeral,
		PeerLongTerm:  peerLongTerm,
		PeerEphemeral: peerEphemeral,
	}, outLen)
}

// dh computes X25519 Diffie–Hellman.
func dh(priv domain.PrivateScalar, pub domain.PublicValue) ([]byte, error) {
	secret, err := curve25519.X25519(priv, pub)
	if err != nil {
		return nil, oops.In("crypto").Wrapf(domain.ErrInvalidPublic, "x25519: %v", err)
	}
	return secret, nil
}

func clamp(k []byte) {
	k[0] &= 248
	k[31] &= 127
	k[31] |= 64
}

var _ domain.DHPrimitive = (*X25519)(nil)
