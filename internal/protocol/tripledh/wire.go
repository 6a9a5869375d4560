package tripledh

import (
	"encoding/binary"
	"io"

	"github.com/samber/oops"

	"securechat/internal/domain"
)

// MaxPublicSize bounds the length prefix accepted from the peer.
const MaxPublicSize = 1024

// WritePublic sends pub as a length-prefixed value in a single write.
func WritePublic(w io.Writer, prim domain.DHPrimitive, pub domain.PublicValue) error {
	body := prim.MarshalPublic(pub)
	if len(body) > MaxPublicSize {
		return oops.In("tripledh").Errorf("public value of %d bytes exceeds %d", len(body), MaxPublicSize)
	}
	buf := make([]byte, 4+len(body))
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(body)))
	copy(buf[4:], body)
	if _, err := w.Write(buf); err != nil {
		return oops.In("tripledh").Wrapf(err, "write public value")
	}
	return nil
}

// ReadPublic reads exactly one length-prefixed public value and validates it.
// A stream that ends before the value is complete yields io.ErrUnexpectedEOF
// (or io.EOF if nothing was read).
func ReadPublic(r io.Reader, prim domain.DHPrimitive) (domain.PublicValue, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, oops.In("tripledh").Wrapf(err, "read public value length")
	}
	n := binary.LittleEndian.Uint32(hdr[:])
	if n == 0 || n > MaxPublicSize {
		return nil, oops.In("tripledh").Wrapf(domain.ErrInvalidPublic, "public value length %d out of range", n)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, oops.In("tripledh").Wrapf(err, "read public value")
	}
	pub, err := prim.UnmarshalPublic(body)
	if err != nil {
		return nil, oops.In("tripledh").Wrapf(err, "decode public value")
	}
	return pub, nil
}
