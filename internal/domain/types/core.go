package types

// Role is the part an endpoint plays in a session.
type Role string

const (
	// RoleListener accepts the connection and sends its ephemeral value first.
	RoleListener Role = "listener"
	// RoleConnector dials the listener and reads the listener's ephemeral value first.
	RoleConnector Role = "connector"
)

// String returns the string form of the role.
func (r Role) String() string { return string(r) }

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool { return r == RoleListener || r == RoleConnector }

// Peer returns the opposite role.
func (r Role) Peer() Role {
	if r == RoleListener {
		return RoleConnector
	}
	return RoleListener
}

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// KeyName is the base file name under which a key pair is stored.
type KeyName string

// String returns the string form of the key name.
func (n KeyName) String() string { return string(n) }
