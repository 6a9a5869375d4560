// Package transport is the counter-mode codec that protects chat messages on
// the wire once a session is keyed.
//
// New splits the 128-byte shared secret into a 32-byte key (from the first
// half) and a counter seed (from the second half) and returns two codecs, one
// per direction. Each codec owns a single keystream that is never reset:
// successive calls continue where the previous call stopped, so a keystream
// position is used at most once per direction.
//
// Ciphertext has the same length as the plaintext. There is no length prefix
// and no authentication tag; a frame is whatever one read returns.
//
// A Codec is not safe for concurrent use. The message pump serialises the
// encrypt side under its send lock and runs the decrypt side on the single
// receive goroutine.
package transport
