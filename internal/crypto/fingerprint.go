package crypto

import (
	"crypto/sha256"
	"encoding/hex"

	"securechat/internal/domain"
)

// Fingerprint returns a short hex fingerprint of a public value.
//
// It hashes with SHA-256 and truncates to 10 bytes (20 hex chars).
func Fingerprint(pub domain.PublicValue) domain.Fingerprint {
	sum := sha256.Sum256(pub)
	return domain.Fingerprint(hex.EncodeToString(sum[:10]))
}

// sessionLabel domain-separates session fingerprints from key fingerprints.
const sessionLabel = "securechat session fingerprint"

// SessionFingerprint returns a short hex digest of a shared secret. Both
// endpoints of a correctly keyed session print the same value.
func SessionFingerprint(secret []byte) domain.Fingerprint {
	h := sha256.New()
	h.Write([]byte(sessionLabel))
	h.Write(secret)
	return domain.Fingerprint(hex.EncodeToString(h.Sum(nil)[:10]))
}
