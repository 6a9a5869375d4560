package interfaces

import domaintypes "securechat/internal/domain/types"

// KeyStore persists key halves under a base name. Load methods report
// ok=false, with a nil error, when the file does not exist.
type KeyStore interface {
	LoadPrivate(name domaintypes.KeyName) (domaintypes.PrivateScalar, bool, error)
	SavePrivate(name domaintypes.KeyName, priv domaintypes.PrivateScalar) error
	LoadPublic(name domaintypes.KeyName) (domaintypes.PublicValue, bool, error)
	SavePublic(name domaintypes.KeyName, pub domaintypes.PublicValue) error

	// PublicPath is the file a peer needs a copy of.
	PublicPath(name domaintypes.KeyName) string
}
