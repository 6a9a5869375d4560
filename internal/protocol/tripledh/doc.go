// Package tripledh implements the triple Diffie-Hellman combiner that turns
// two long-term and two ephemeral key pairs into one session secret.
//
// # Overview
//
// Each endpoint owns a long-term pair (identity, persisted) and an ephemeral
// pair (fresh per session). With a = own long-term private, x = own ephemeral
// private, B = peer long-term public and Y = peer ephemeral public, an
// endpoint computes:
//
//	t_lt  = DH(a, Y)   own long-term  x peer ephemeral
//	t_eph = DH(x, B)   own ephemeral  x peer long-term
//	t_ee  = DH(x, Y)   ephemeral      x ephemeral
//
// The peer computes the same three values, with t_lt and t_eph swapped.
//
// # Ordering
//
// The transcript is t_lt || t_eph || t_ee when (own long-term public, own
// ephemeral public) sorts before the peer's tuple, and t_eph || t_lt || t_ee
// otherwise. Both sides see the same two tuples, so both build the same
// transcript regardless of which role they play. Identical tuples mean the
// peer reflected our own values and are rejected with domain.ErrReflection.
//
// # Key derivation
//
// The transcript is expanded with HKDF-SHA512 under a label naming the group.
// The three DH values and the transcript are zeroed before Combine returns.
//
// # Wire encoding
//
// WritePublic and ReadPublic move one public value over a stream as a 4-byte
// little-endian length followed by the group's canonical encoding. No version
// or type tag is sent.
package tripledh
