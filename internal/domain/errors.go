package domain

import "errors"

var (
	// ErrMessageTooLong is returned for plaintext above the maximum frame size.
	ErrMessageTooLong = errors.New("message too long")
	// ErrSessionClosed is returned when sending on a torn-down session.
	ErrSessionClosed = errors.New("session closed")
	// ErrIdentityCorrupt is returned when stored key files cannot be used.
	ErrIdentityCorrupt = errors.New("identity files are corrupt")
	// ErrPeerUnknown is returned when no public identity is stored for a peer.
	ErrPeerUnknown = errors.New("peer public identity not found")
	// ErrGroupMismatch is returned for key material from another DH group.
	ErrGroupMismatch = errors.New("key belongs to a different group")
	// ErrInvalidPublic is returned for public values outside the group.
	ErrInvalidPublic = errors.New("invalid public value")
	// ErrReflection is returned when the peer echoes our own key material.
	ErrReflection = errors.New("peer key material equals ours")
	// ErrSecretTooShort is returned when a shared secret cannot seed the codec.
	ErrSecretTooShort = errors.New("shared secret too short")
	// ErrWrongPassphrase is returned when a sealed private key cannot be opened.
	ErrWrongPassphrase = errors.New("wrong passphrase or corrupted private key")
)
