package interfaces

import domaintypes "securechat/internal/domain/types"

// DHPrimitive is the Diffie-Hellman group the key exchange runs in.
type DHPrimitive interface {
	// Name identifies the group in key files and in the KDF label.
	Name() string

	// GenerateKeyPair returns a fresh pair drawn from crypto/rand.
	GenerateKeyPair() (domaintypes.KeyPair, error)

	// PublicFromPrivate recomputes the public half of a stored private scalar.
	PublicFromPrivate(priv domaintypes.PrivateScalar) (domaintypes.PublicValue, error)

	// MarshalPublic and UnmarshalPublic are the canonical transmission
	// encoding. UnmarshalPublic rejects values outside the group.
	MarshalPublic(pub domaintypes.PublicValue) []byte
	UnmarshalPublic(b []byte) (domaintypes.PublicValue, error)

	// CombineTriple mixes both long-term and both ephemeral values into outLen
	// bytes. Listener and connector get the same output for the same session.
	CombineTriple(
		myLongTerm domaintypes.KeyPair,
		myEphemeral domaintypes.KeyPair,
		peerLongTerm domaintypes.PublicValue,
		peerEphemeral domaintypes.PublicValue,
		outLen int,
	) ([]byte, error)
}
