// Package store keeps long-term key material on disk.
//
// Every key name maps to two files under the store directory: <name> holds
// the private half and <name>.pub the public half. Both are single PEM blocks
// whose Group header names the Diffie-Hellman group, so a key generated for
// one group is never silently used in another.
//
// When a passphrase is configured, private keys are written as
// SECURECHAT ENCRYPTED PRIVATE KEY blocks: the key is derived with scrypt and
// the scalar sealed with ChaCha20-Poly1305; the KDF parameters travel in the
// PEM headers.
//
// Writes go through a temp file and a rename. All methods are safe for
// concurrent use.
package store
