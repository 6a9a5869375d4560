package domain

import (
	interfaces "securechat/internal/domain/interfaces"
	types "securechat/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Role          = types.Role
	Fingerprint   = types.Fingerprint
	KeyName       = types.KeyName
	PrivateScalar = types.PrivateScalar
	PublicValue   = types.PublicValue
	KeyPair       = types.KeyPair
	PeerIdentity  = types.PeerIdentity
	Stream        = types.Stream
	Session       = types.Session
	EventKind     = types.EventKind
	Event         = types.Event
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	DHPrimitive        = interfaces.DHPrimitive
	KeyStore           = interfaces.KeyStore
	IdentityService    = interfaces.IdentityService
	SessionEstablisher = interfaces.SessionEstablisher
	MessagePump        = interfaces.MessagePump
	Presenter          = interfaces.Presenter
	Outbox             = interfaces.Outbox
)

const (
	RoleListener  = types.RoleListener
	RoleConnector = types.RoleConnector

	EventMessage    = types.EventMessage
	EventPeerClosed = types.EventPeerClosed
	EventFailed     = types.EventFailed

	SharedSecretSize = types.SharedSecretSize
)
