package app

import (
	"securechat/internal/crypto"
	"securechat/internal/domain"
	identitysvc "securechat/internal/services/identity"
	messagesvc "securechat/internal/services/message"
	sessionsvc "securechat/internal/services/session"
	"securechat/internal/store"
)

// Wire bundles the group, the key store and the services for the CLI.
type Wire struct {
	Config   Config
	Group    domain.DHPrimitive
	Keys     *store.FileStore
	Identity *identitysvc.Service
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	group, err := crypto.Lookup(cfg.Group)
	if err != nil {
		return nil, err
	}

	// File-based key store, sealed when a passphrase is configured
	keys := store.NewFileStore(cfg.Home, group.Name(), cfg.Passphrase)

	return &Wire{
		Config:   cfg,
		Group:    group,
		Keys:     keys,
		Identity: identitysvc.New(group, keys, cfg.ListenerName, cfg.ConnectorName),
	}, nil
}

// Establisher returns a key-exchange state machine for one connection
// played as role.
func (w *Wire) Establisher(role domain.Role) *sessionsvc.Establisher {
	return sessionsvc.New(w.Group, w.Identity, role, w.Config.PeerName(role), w.Config.HandshakeTimeout)
}

// NewPump hands an established session to a message pump.
func (w *Wire) NewPump(sess *domain.Session) (*messagesvc.Pump, error) {
	return messagesvc.New(sess, messagesvc.Options{
		Cipher:       w.Config.Cipher,
		MaxFrame:     w.Config.MaxFrame,
		DrainTimeout: w.Config.DrainTimeout,
	})
}
