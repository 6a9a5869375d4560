package crypto

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/samber/oops"

	"securechat/internal/domain"
	"securechat/internal/protocol/tripledh"
)

// MODP2048Name is the configuration name of the RFC 3526 group 14.
const MODP2048Name = "modp2048"

// rfc3526Group14 is the 2048-bit MODP prime from RFC 3526 section 3.
const rfc3526Group14 = `
FFFFFFFF FFFFFFFF C90FDAA2 2168C234 C4C6628B 80DC1CD1
29024E08 8A67CC74 020BBEA6 3B139B22 514A0879 8E3404DD
EF9519B3 CD3A431B 302B0A6D F25F1437 4FE1356D 6D51C245
E485B576 625E7EC6 F44C42E9 A637ED6B 0BFF5CB6 F406B7ED
EE386BFB 5A899FA5 AE9F2411 7C4B1FE6 49286651 ECE45B3D
C2007CB8 A163BF05 98DA4836 1C55D39A 69163FA8 FD24CF5F
83655D23 DCA3AD96 1C62F356 208552BB 9ED52907 7096966D
670C354E 4ABC9804 F1746C08 CA18217C 32905E46 2E36CE3B
E39E772C 180E8603 9B2783A2 EC07A28F B5C55DF0 6F4C52C9
DE2BCBF6 95581718 3995497C EA956AE5 15D22618 98FA0510
15728E5A 8AACAA68 FFFFFFFF FFFFFFFF`

// MODP is a finite-field Diffie-Hellman group over a safe prime p = 2q+1.
// Public values live in the order-q subgroup generated by g.
type MODP struct {
	name string
	p    *big.Int
	q    *big.Int
	g    *big.Int
	size int // byte length of p; every encoding is padded to it
}

// NewMODP2048 returns the RFC 3526 2048-bit group with generator 2.
func NewMODP2048() *MODP {
	hex := strings.Join(strings.Fields(rfc3526Group14), "")
	p, ok := new(big.Int).SetString(hex, 16)
	if !ok {
		panic("crypto: malformed RFC 3526 prime")
	}
	return newMODP(MODP2048Name, p, big.NewInt(2))
}

func newMODP(name string, p, g *big.Int) *MODP {
	q := new(big.Int).Rsh(p, 1)
	return &MODP{name: name, p: p, q: q, g: g, size: (p.BitLen() + 7) / 8}
}

// Name implements domain.DHPrimitive.
func (m *MODP) Name() string { return m.name }

// GenerateKeyPair draws the private exponent uniformly from [2, q-1].
func (m *MODP) GenerateKeyPair() (domain.KeyPair, error) {
	span := new(big.Int).Sub(m.q, big.NewInt(2))
	x, err := rand.Int(rand.Reader, span)
	if err != nil {
		return domain.KeyPair{}, oops.In("crypto").Wrapf(err, "read random exponent")
	}
	x.Add(x, big.NewInt(2))

	priv := make(domain.PrivateScalar, m.size)
	x.FillBytes(priv)
	pub := m.encode(new(big.Int).Exp(m.g, x, m.p))
	return domain.KeyPair{Private: priv, Public: pub}, nil
}

// PublicFromPrivate implements domain.DHPrimitive.
func (m *MODP) PublicFromPrivate(priv domain.PrivateScalar) (domain.PublicValue, error) {
	x, err := m.exponent(priv)
	if err != nil {
		return nil, err
	}
	return m.encode(new(big.Int).Exp(m.g, x, m.p)), nil
}

// MarshalPublic implements domain.DHPrimitive.
func (m *MODP) MarshalPublic(pub domain.PublicValue) []byte {
	return append([]byte(nil), pub...)
}

// UnmarshalPublic accepts a big-endian value of exactly the modulus length
// that lies in the prime-order subgroup.
func (m *MODP) UnmarshalPublic(b []byte) (domain.PublicValue, error) {
	if len(b) != m.size {
		return nil, oops.In("crypto").Wrapf(domain.ErrInvalidPublic, "%s public: want %d bytes, got %d", m.name, m.size, len(b))
	}
	if _, err := m.element(b); err != nil {
		return nil, err
	}
	return append(domain.PublicValue(nil), b...), nil
}

// CombineTriple implements domain.DHPrimitive.
func (m *MODP) CombineTriple(
	myLongTerm domain.KeyPair,
	myEphemeral domain.KeyPair,
	peerLongTerm domain.PublicValue,
	peerEphemeral domain.PublicValue,
	outLen int,
) ([]byte, error) {
	return tripledh.Combine(m.name, m.dh, tripledh.Inputs{
		MyLongTerm:    myLongTerm,
		MyEphemeral:   myEphemeral,
		PeerLongTerm:  peerLongTerm,
		PeerEphemeral: peerEphemeral,
	}, outLen)
}

func (m *MODP) dh(priv domain.PrivateScalar, pub domain.PublicValue) ([]byte, error) {
	x, err := m.exponent(priv)
	if err != nil {
		return nil, err
	}
	y, err := m.element(pub)
	if err != nil {
		return nil, err
	}
	z := new(big.Int).Exp(y, x, m.p)
	out := m.encode(z)
	z.SetInt64(0)
	x.SetInt64(0)
	return out, nil
}

func (m *MODP) exponent(priv domain.PrivateScalar) (*big.Int, error) {
	if len(priv) != m.size {
		return nil, oops.In("crypto").Errorf("%s private: want %d bytes, got %d", m.name, m.size, len(priv))
	}
	x := new(big.Int).SetBytes(priv)
	if x.Cmp(big.NewInt(2)) < 0 || x.Cmp(m.q) >= 0 {
		return nil, oops.In("crypto").Errorf("%s private exponent out of range", m.name)
	}
	return x, nil
}

// element checks 1 < y < p-1 and y^q = 1 (mod p).
func (m *MODP) element(b []byte) (*big.Int, error) {
	y := new(big.Int).SetBytes(b)
	pm1 := new(big.Int).Sub(m.p, big.NewInt(1))
	if y.Cmp(big.NewInt(1)) <= 0 || y.Cmp(pm1) >= 0 {
		return nil, oops.In("crypto").Wrapf(domain.ErrInvalidPublic, "%s public out of range", m.name)
	}
	if new(big.Int).Exp(y, m.q, m.p).Cmp(big.NewInt(1)) != 0 {
		return nil, oops.In("crypto").Wrapf(domain.ErrInvalidPublic, "%s public outside the prime-order subgroup", m.name)
	}
	return y, nil
}

func (m *MODP) encode(v *big.Int) []byte {
	out := make([]byte, m.size)
	v.FillBytes(out)
	return out
}

var _ domain.DHPrimitive = (*MODP)(nil)
