package identity

import (
	"github.com/samber/oops"

	"securechat/internal/crypto"
	"securechat/internal/domain"
	"securechat/internal/util/logger"
)

var log = logger.GetLogger()

// Service manages long-term identities using a backing key store.
type Service struct {
	prim  domain.DHPrimitive
	store domain.KeyStore
	names map[domain.Role]domain.KeyName
}

// New returns an identity service for the given group and store. The names
// are the file base names used for each role's own identity.
func New(prim domain.DHPrimitive, store domain.KeyStore, listenerName, connectorName domain.KeyName) *Service {
	return &Service{
		prim:  prim,
		store: store,
		names: map[domain.Role]domain.KeyName{
			domain.RoleListener:  listenerName,
			domain.RoleConnector: connectorName,
		},
	}
}

// KeyName returns the identity file base name of role.
func (s *Service) KeyName(role domain.Role) (domain.KeyName, error) {
	name, ok := s.names[role]
	if !ok || name == "" {
		return "", oops.In("identity").Code("identity").Errorf("no key name for role %q", role)
	}
	return name, nil
}

// EnsureIdentity returns the long-term pair of role, creating or repairing
// the key files as needed:
//
//   - both files present: load, and check the public half matches the private
//   - neither present: generate and persist a fresh pair
//   - private only: re-derive and rewrite the public file
//   - public only: generate a fresh pair and overwrite both
//
// Unreadable or corrupt files, and failed writes, are returned as errors;
// nothing is regenerated over a file that exists but cannot be used.
func (s *Service) EnsureIdentity(role domain.Role) (domain.KeyPair, error) {
	name, err := s.KeyName(role)
	if err != nil {
		return domain.KeyPair{}, err
	}
	errb := oops.In("identity").Code("identity").With("role", role, "name", name)

	priv, havePriv, err := s.store.LoadPrivate(name)
	if err != nil {
		return domain.KeyPair{}, errb.Wrapf(err, "load private key")
	}
	pub, havePub, err := s.store.LoadPublic(name)
	if err != nil {
		return domain.KeyPair{}, errb.Wrapf(err, "load public key")
	}

	if !havePriv {
		if havePub {
			log.WithFields(logger.Fields{
				"at":   "(identity.Service) EnsureIdentity",
				"role": role,
				"name": name,
			}).Warn("Public key without private key, generating a new identity")
		}
		return s.generate(role, name)
	}

	derived, err := s.prim.PublicFromPrivate(priv)
	if err != nil {
		return domain.KeyPair{}, errb.Wrapf(domain.ErrIdentityCorrupt, "derive public key: %v", err)
	}
	if havePub {
		if !derived.Equal(pub) {
			return domain.KeyPair{}, errb.Wrapf(domain.ErrIdentityCorrupt, "public key file does not match private key")
		}
		log.WithFields(logger.Fields{
			"at":          "(identity.Service) EnsureIdentity",
			"role":        role,
			"fingerprint": crypto.Fingerprint(pub),
		}).Debug("Loaded identity")
		return domain.KeyPair{Private: priv, Public: pub}, nil
	}

	if err := s.store.SavePublic(name, derived); err != nil {
		return domain.KeyPair{}, errb.Wrapf(err, "rewrite public key")
	}
	log.WithFields(logger.Fields{
		"at":          "(identity.Service) EnsureIdentity",
		"role":        role,
		"fingerprint": crypto.Fingerprint(derived),
	}).Info("Re-derived missing public key")
	return domain.KeyPair{Private: priv, Public: derived}, nil
}

func (s *Service) generate(role domain.Role, name domain.KeyName) (domain.KeyPair, error) {
	errb := oops.In("identity").Code("identity").With("role", role, "name", name)

	kp, err := s.prim.GenerateKeyPair()
	if err != nil {
		return domain.KeyPair{}, errb.Wrapf(err, "generate key pair")
	}
	// Private first: a crash between the writes leaves a state the next run repairs.
	if err := s.store.SavePrivate(name, kp.Private); err != nil {
		kp.Wipe()
		return domain.KeyPair{}, errb.Wrapf(err, "save private key")
	}
	if err := s.store.SavePublic(name, kp.Public); err != nil {
		kp.Wipe()
		return domain.KeyPair{}, errb.Wrapf(err, "save public key")
	}
	log.WithFields(logger.Fields{
		"at":          "(identity.Service) generate",
		"role":        role,
		"group":       s.prim.Name(),
		"fingerprint": crypto.Fingerprint(kp.Public),
	}).Info("Generated new identity")
	return kp, nil
}

// LoadPeer reads and validates the public identity stored under name.
func (s *Service) LoadPeer(name domain.KeyName) (domain.PeerIdentity, error) {
	errb := oops.In("identity").Code("identity").With("peer", name, "path", s.store.PublicPath(name))

	raw, ok, err := s.store.LoadPublic(name)
	if err != nil {
		return domain.PeerIdentity{}, errb.Wrapf(err, "load peer public key")
	}
	if !ok {
		return domain.PeerIdentity{}, errb.Wrapf(domain.ErrPeerUnknown, "no public key for %q at %s", name, s.store.PublicPath(name))
	}
	pub, err := s.prim.UnmarshalPublic(raw)
	if err != nil {
		return domain.PeerIdentity{}, errb.Wrapf(err, "peer public key")
	}
	return domain.PeerIdentity{Name: name, Public: pub}, nil
}

// Fingerprint returns a short fingerprint of role's public key, creating the
// identity first if it does not exist yet.
func (s *Service) Fingerprint(role domain.Role) (domain.Fingerprint, error) {
	kp, err := s.EnsureIdentity(role)
	if err != nil {
		return "", err
	}
	defer kp.Wipe()
	return crypto.Fingerprint(kp.Public), nil
}

// PublicPath returns the public key file of role for out-of-band export.
func (s *Service) PublicPath(role domain.Role) (string, error) {
	name, err := s.KeyName(role)
	if err != nil {
		return "", err
	}
	return s.store.PublicPath(name), nil
}

// Compile-time assertion that Service implements domain.IdentityService.
var _ domain.IdentityService = (*Service)(nil)
