package transport

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/samber/oops"
	"golang.org/x/crypto/chacha20"

	"securechat/internal/domain"
)

const (
	// CipherAES256CTR is AES-256 in counter mode with a 16-byte initial counter block.
	CipherAES256CTR = "aes-256-ctr"
	// CipherChaCha20 is the ChaCha20 stream cipher with a 12-byte nonce.
	CipherChaCha20 = "chacha20"

	// DefaultMaxFrame is the largest plaintext a single message may carry.
	DefaultMaxFrame = 512

	keySize = 32
	// counterOffset is where the counter seed starts within the secret.
	counterOffset = domain.SharedSecretSize / 2
)

// Codec applies one direction's keystream.
type Codec struct {
	stream   cipher.Stream
	maxFrame int
	offset   uint64
}

// Ciphers lists the accepted cipher names.
func Ciphers() []string { return []string{CipherAES256CTR, CipherChaCha20} }

// New builds the outbound and inbound codecs for a session. Both are seeded
// from the same key and counter block.
func New(secret []byte, cipherName string, maxFrame int) (enc *Codec, dec *Codec, err error) {
	if len(secret) < domain.SharedSecretSize {
		return nil, nil, oops.In("transport").Code("transport").
			Wrapf(domain.ErrSecretTooShort, "have %d bytes, need %d", len(secret), domain.SharedSecretSize)
	}
	if maxFrame <= 0 {
		return nil, nil, oops.In("transport").Code("transport").Errorf("max frame must be positive, got %d", maxFrame)
	}
	if enc, err = newCodec(secret, cipherName, maxFrame); err != nil {
		return nil, nil, err
	}
	if dec, err = newCodec(secret, cipherName, maxFrame); err != nil {
		return nil, nil, err
	}
	return enc, dec, nil
}

func newCodec(secret []byte, cipherName string, maxFrame int) (*Codec, error) {
	key := secret[:keySize]
	var (
		stream cipher.Stream
		err    error
	)
	switch cipherName {
	case CipherAES256CTR:
		var block cipher.Block
		block, err = aes.NewCipher(key)
		if err == nil {
			stream = cipher.NewCTR(block, secret[counterOffset:counterOffset+aes.BlockSize])
		}
	case CipherChaCha20:
		stream, err = chacha20.NewUnauthenticatedCipher(key, secret[counterOffset:counterOffset+chacha20.NonceSize])
	default:
		return nil, oops.In("transport").Code("transport").
			With("known", Ciphers()).Errorf("unknown cipher %q", cipherName)
	}
	if err != nil {
		return nil, oops.In("transport").Code("transport").Wrapf(err, "init %s", cipherName)
	}
	return &Codec{stream: stream, maxFrame: maxFrame}, nil
}

// Encrypt returns the ciphertext of pt and advances the keystream by len(pt).
// Plaintext longer than the maximum frame is rejected before any keystream
// is consumed.
func (c *Codec) Encrypt(pt []byte) ([]byte, error) {
	return c.apply(pt)
}

// Decrypt returns the plaintext of ct and advances the keystream by len(ct).
func (c *Codec) Decrypt(ct []byte) ([]byte, error) {
	return c.apply(ct)
}

// Offset reports how many keystream bytes have been consumed.
func (c *Codec) Offset() uint64 { return c.offset }

// MaxFrame returns the frame limit the codec enforces.
func (c *Codec) MaxFrame() int { return c.maxFrame }

func (c *Codec) apply(in []byte) ([]byte, error) {
	if len(in) > c.maxFrame {
		return nil, oops.In("transport").
			With("length", len(in), "max", c.maxFrame).
			Wrapf(domain.ErrMessageTooLong, "%d bytes exceeds %d", len(in), c.maxFrame)
	}
	out := make([]byte, len(in))
	c.stream.XORKeyStream(out, in)
	c.offset += uint64(len(in))
	return out, nil
}
