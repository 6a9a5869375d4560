package transport_test

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securechat/internal/domain"
	"securechat/internal/protocol/transport"
)

func newSecret(t *testing.T) []byte {
	t.Helper()
	s := make([]byte, domain.SharedSecretSize)
	_, err := rand.Read(s)
	require.NoError(t, err)
	return s
}

func TestCodec_RoundTripAllLengths(t *testing.T) {
	for _, name := range transport.Ciphers() {
		t.Run(name, func(t *testing.T) {
			secret := newSecret(t)
			enc, _, err := transport.New(secret, name, transport.DefaultMaxFrame)
			require.NoError(t, err)
			_, dec, err := transport.New(secret, name, transport.DefaultMaxFrame)
			require.NoError(t, err)

			for n := 0; n <= transport.DefaultMaxFrame; n++ {
				pt := bytes.Repeat([]byte{byte(n)}, n)
				ct, err := enc.Encrypt(pt)
				require.NoError(t, err)
				require.Len(t, ct, n, "ciphertext length must equal plaintext length")

				got, err := dec.Decrypt(ct)
				require.NoError(t, err)
				require.Equal(t, pt, got, "length %d", n)
			}
			assert.Equal(t, enc.Offset(), dec.Offset())
		})
	}
}

func TestCodec_KeystreamNeverRestarts(t *testing.T) {
	for _, name := range transport.Ciphers() {
		t.Run(name, func(t *testing.T) {
			secret := newSecret(t)
			a, _, err := transport.New(secret, name, transport.DefaultMaxFrame)
			require.NoError(t, err)
			b, _, err := transport.New(secret, name, 1024)
			require.NoError(t, err)

			m1 := bytes.Repeat([]byte("A"), 100)
			m2 := bytes.Repeat([]byte("A"), 100)
			c1, err := a.Encrypt(m1)
			require.NoError(t, err)
			c2, err := a.Encrypt(m2)
			require.NoError(t, err)

			// Same plaintext twice must not produce the same ciphertext.
			assert.NotEqual(t, c1, c2)

			// Two calls equal one call over the concatenation.
			whole, err := b.Encrypt(append(append([]byte{}, m1...), m2...))
			require.NoError(t, err)
			assert.Equal(t, whole, append(c1, c2...))
			assert.Equal(t, uint64(200), a.Offset())
		})
	}
}

func TestCodec_SplitReadsDecrypt(t *testing.T) {
	secret := newSecret(t)
	enc, dec, err := transport.New(secret, transport.CipherAES256CTR, transport.DefaultMaxFrame)
	require.NoError(t, err)

	ct, err := enc.Encrypt([]byte("hello, world"))
	require.NoError(t, err)

	// A stream may deliver one frame across several reads.
	p1, err := dec.Decrypt(ct[:5])
	require.NoError(t, err)
	p2, err := dec.Decrypt(ct[5:])
	require.NoError(t, err)
	assert.Equal(t, "hello, world", string(p1)+string(p2))
}

func TestCodec_RejectsOversize(t *testing.T) {
	secret := newSecret(t)
	enc, _, err := transport.New(secret, transport.CipherChaCha20, transport.DefaultMaxFrame)
	require.NoError(t, err)

	_, err = enc.Encrypt(make([]byte, transport.DefaultMaxFrame+1))
	require.ErrorIs(t, err, domain.ErrMessageTooLong)
	assert.Zero(t, enc.Offset(), "rejected input must not consume keystream")
}

func TestNew_Validation(t *testing.T) {
	_, _, err := transport.New(make([]byte, 64), transport.CipherAES256CTR, 512)
	assert.ErrorIs(t, err, domain.ErrSecretTooShort)

	_, _, err = transport.New(newSecret(t), "rc4", 512)
	assert.ErrorContains(t, err, "unknown cipher")

	_, _, err = transport.New(newSecret(t), transport.CipherAES256CTR, 0)
	assert.Error(t, err)
}

func TestNew_CiphersDiffer(t *testing.T) {
	secret := newSecret(t)
	aes, _, err := transport.New(secret, transport.CipherAES256CTR, 512)
	require.NoError(t, err)
	cc, _, err := transport.New(secret, transport.CipherChaCha20, 512)
	require.NoError(t, err)

	pt := make([]byte, 64)
	c1, _ := aes.Encrypt(pt)
	c2, _ := cc.Encrypt(pt)
	assert.NotEqual(t, c1, c2)
}
