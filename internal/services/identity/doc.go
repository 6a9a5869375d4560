// Package identity loads or lazily creates the long-term Diffie-Hellman
// identity of each role and reads peer public identities.
//
// A role's identity is the pair of files <name> and <name>.pub in the key
// store. EnsureIdentity repairs a missing half where it safely can (a missing
// public file is re-derived, a lone public file is replaced by a fresh pair)
// and refuses to touch files it cannot read.
package identity
