package tripledh

import (
	"bytes"
	"crypto/sha512"
	"io"

	"github.com/samber/oops"
	"golang.org/x/crypto/hkdf"

	"securechat/internal/domain"
	"securechat/internal/util/memzero"
)

// maxOutput is the HKDF-SHA512 output limit (255 hash blocks).
const maxOutput = 255 * sha512.Size

// Agreement computes a raw Diffie-Hellman value in some group.
type Agreement func(priv domain.PrivateScalar, pub domain.PublicValue) ([]byte, error)

// Inputs are the four key materials seen from one endpoint.
type Inputs struct {
	MyLongTerm    domain.KeyPair
	MyEphemeral   domain.KeyPair
	PeerLongTerm  domain.PublicValue
	PeerEphemeral domain.PublicValue
}

// Combine derives outLen bytes from the triple-DH transcript.
func Combine(group string, agree Agreement, in Inputs, outLen int) ([]byte, error) {
	if outLen <= 0 || outLen > maxOutput {
		return nil, oops.In("tripledh").Errorf("output length %d out of range (1..%d)", outLen, maxOutput)
	}
	if in.MyEphemeral.Public.Equal(in.PeerEphemeral) {
		return nil, oops.In("tripledh").Wrapf(domain.ErrReflection, "peer ephemeral equals ours")
	}
	order := compareTuples(in)
	if order == 0 {
		return nil, oops.In("tripledh").Wrapf(domain.ErrReflection, "peer key tuple equals ours")
	}

	tLT, err := agree(in.MyLongTerm.Private, in.PeerEphemeral) // DH(a, Y)
	if err != nil {
		return nil, oops.In("tripledh").Wrapf(err, "long-term x peer ephemeral")
	}
	defer memzero.Zero(tLT)
	tEph, err := agree(in.MyEphemeral.Private, in.PeerLongTerm) // DH(x, B)
	if err != nil {
		return nil, oops.In("tripledh").Wrapf(err, "ephemeral x peer long-term")
	}
	defer memzero.Zero(tEph)
	tEE, err := agree(in.MyEphemeral.Private, in.PeerEphemeral) // DH(x, Y)
	if err != nil {
		return nil, oops.In("tripledh").Wrapf(err, "ephemeral x peer ephemeral")
	}
	defer memzero.Zero(tEE)

	transcript := make([]byte, 0, len(tLT)+len(tEph)+len(tEE))
	if order < 0 {
		transcript = append(transcript, tLT...)
		transcript = append(transcript, tEph...)
	} else {
		transcript = append(transcript, tEph...)
		transcript = append(transcript, tLT...)
	}
	transcript = append(transcript, tEE...)
	defer memzero.Zero(transcript)

	out := make([]byte, outLen)
	kdf := hkdf.New(sha512.New, transcript, nil, []byte("securechat 3dh "+group))
	if _, err := io.ReadFull(kdf, out); err != nil {
		return nil, oops.In("tripledh").Wrapf(err, "expand shared secret")
	}
	return out, nil
}

// compareTuples orders (own long-term, own ephemeral) against the peer's.
func compareTuples(in Inputs) int {
	if c := bytes.Compare(in.MyLongTerm.Public, in.PeerLongTerm); c != 0 {
		return c
	}
	return bytes.Compare(in.MyEphemeral.Public, in.PeerEphemeral)
}
