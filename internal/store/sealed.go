package store

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"strconv"

	"github.com/samber/oops"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"securechat/internal/domain"
)

const (
	// The current supported version of the sealed key format.
	sealedVersion = 1

	hdrVersion = "Version"
	hdrKDF     = "KDF"
	hdrSalt    = "Salt"
	hdrN       = "Scrypt-N"
	hdrR       = "Scrypt-r"
	hdrP       = "Scrypt-p"

	// Upper bounds on parameters read from disk.
	maxScryptN = 1 << 20
	maxScryptR = 32
	maxScryptP = 16
)

// Tunables for scrypt key derivation.
func scryptParamsDefault() (N, r, p int) { return 1 << 15, 8, 1 }

// seal derives a key from passphrase and encrypts raw. The KDF parameters are
// returned as PEM headers; the group name is bound as additional data.
func seal(passphrase string, raw []byte, group string) (map[string]string, []byte, error) {
	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, nil, err
	}
	N, r, p := scryptParamsDefault()
	aead, err := sealKey(passphrase, salt[:], N, r, p)
	if err != nil {
		return nil, nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte // zero nonce; salt-bound key is unique per seal
	ct := aead.Seal(nil, nonce[:], raw, additionalData(salt[:], group))

	headers := map[string]string{
		hdrVersion: strconv.Itoa(sealedVersion),
		hdrKDF:     "scrypt",
		hdrSalt:    hex.EncodeToString(salt[:]),
		hdrN:       strconv.Itoa(N),
		hdrR:       strconv.Itoa(r),
		hdrP:       strconv.Itoa(p),
	}
	return headers, ct, nil
}

// unseal opens ciphertext produced by seal.
func unseal(passphrase string, headers map[string]string, ct []byte, group string) ([]byte, error) {
	v, err := strconv.Atoi(headers[hdrVersion])
	if err != nil || v < 1 || v > sealedVersion {
		return nil, oops.In("store").Wrapf(domain.ErrIdentityCorrupt, "unsupported sealed key version %q", headers[hdrVersion])
	}
	if headers[hdrKDF] != "scrypt" {
		return nil, oops.In("store").Wrapf(domain.ErrIdentityCorrupt, "unsupported KDF %q", headers[hdrKDF])
	}
	salt, err := hex.DecodeString(headers[hdrSalt])
	if err != nil || len(salt) == 0 {
		return nil, oops.In("store").Wrapf(domain.ErrIdentityCorrupt, "bad salt")
	}
	N, errN := strconv.Atoi(headers[hdrN])
	r, errR := strconv.Atoi(headers[hdrR])
	p, errP := strconv.Atoi(headers[hdrP])
	if errN != nil || errR != nil || errP != nil ||
		N <= 1 || N > maxScryptN || r <= 0 || r > maxScryptR || p <= 0 || p > maxScryptP {
		return nil, oops.In("store").Wrapf(domain.ErrIdentityCorrupt, "bad scrypt parameters")
	}

	aead, err := sealKey(passphrase, salt, N, r, p)
	if err != nil {
		return nil, oops.In("store").Wrapf(domain.ErrIdentityCorrupt, "derive key: %v", err)
	}
	var nonce [chacha20poly1305.NonceSize]byte
	pt, err := aead.Open(nil, nonce[:], ct, additionalData(salt, group))
	if err != nil {
		return nil, domain.ErrWrongPassphrase
	}
	return pt, nil
}

func sealKey(passphrase string, salt []byte, N, r, p int) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(passphrase), salt, N, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	return chacha20poly1305.New(key)
}

func additionalData(salt []byte, group string) []byte {
	ad := make([]byte, 0, len(salt)+len(group))
	ad = append(ad, salt...)
	return append(ad, group...)
}
