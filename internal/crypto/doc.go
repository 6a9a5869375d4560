// Package crypto provides the Diffie-Hellman groups the key exchange can run
// in, plus short public-key fingerprints.
//
// Contents
//
//   - X25519 (default): clamped 32-byte scalars over Curve25519
//   - MODP2048: the RFC 3526 2048-bit safe-prime group with generator 2,
//     arithmetic on math/big
//   - Lookup, selecting a group by its configured name
//   - Fingerprint, a short hex digest of a public value for display
//
// # Notes
//
// Both groups implement domain.DHPrimitive and share the triple-DH combiner
// from internal/protocol/tripledh, so a listener and a connector configured
// with the same group derive the same secret. Private scalars are plain byte
// slices; callers wipe them with KeyPair.Wipe once they are no longer needed.
package crypto
