package store

import (
	"encoding/pem"
	"path/filepath"
	"sync"

	"github.com/samber/oops"

	"securechat/internal/domain"
	"securechat/internal/util/memzero"
)

const (
	pemPrivate = "SECURECHAT PRIVATE KEY"
	pemSealed  = "SECURECHAT ENCRYPTED PRIVATE KEY"
	pemPublic  = "SECURECHAT PUBLIC KEY"

	hdrGroup = "Group"

	// PublicSuffix is appended to a key name to form its public file name.
	PublicSuffix = ".pub"
)

// FileStore keeps PEM key files under one directory. Private files are
// written 0600, public files 0644.
type FileStore struct {
	dir        string
	group      string
	passphrase string
	mu         sync.Mutex
}

// NewFileStore returns a FileStore rooted at dir for keys of the named group.
// A non-empty passphrase seals private keys written from now on and is
// required to read sealed ones.
func NewFileStore(dir, group, passphrase string) *FileStore {
	return &FileStore{dir: dir, group: group, passphrase: passphrase}
}

// Dir returns the directory the store writes to.
func (s *FileStore) Dir() string { return s.dir }

// PrivatePath returns the private key file for name.
func (s *FileStore) PrivatePath(name domain.KeyName) string {
	return filepath.Join(s.dir, string(name))
}

// PublicPath returns the public key file for name.
func (s *FileStore) PublicPath(name domain.KeyName) string {
	return filepath.Join(s.dir, string(name)+PublicSuffix)
}

// ---------- Private ----------

func (s *FileStore) LoadPrivate(name domain.KeyName) (domain.PrivateScalar, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.PrivatePath(name)
	errb := oops.In("store").Code("identity").With("path", path)

	b, err := readFile(path)
	if err != nil {
		return nil, false, errb.Wrapf(err, "read private key")
	}
	if b == nil {
		return nil, false, nil
	}
	defer memzero.Zero(b)

	block, err := s.decode(b, path)
	if err != nil {
		return nil, false, err
	}
	defer memzero.Zero(block.Bytes)

	var raw []byte
	switch block.Type {
	case pemPrivate:
		raw = append([]byte(nil), block.Bytes...)
	case pemSealed:
		if s.passphrase == "" {
			return nil, false, errb.Wrapf(domain.ErrWrongPassphrase, "private key is sealed and no passphrase was given")
		}
		raw, err = unseal(s.passphrase, block.Headers, block.Bytes, s.group)
		if err != nil {
			return nil, false, errb.Wrapf(err, "unseal private key")
		}
	default:
		return nil, false, errb.Wrapf(domain.ErrIdentityCorrupt, "unexpected PEM type %q", block.Type)
	}
	if len(raw) == 0 {
		return nil, false, errb.Wrapf(domain.ErrIdentityCorrupt, "empty private key")
	}
	return domain.PrivateScalar(raw), true, nil
}

func (s *FileStore) SavePrivate(name domain.KeyName, priv domain.PrivateScalar) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.PrivatePath(name)
	block := &pem.Block{Type: pemPrivate, Headers: map[string]string{hdrGroup: s.group}, Bytes: priv}
	if s.passphrase != "" {
		headers, ct, err := seal(s.passphrase, priv, s.group)
		if err != nil {
			return oops.In("store").Code("identity").With("path", path).Wrapf(err, "seal private key")
		}
		headers[hdrGroup] = s.group
		block = &pem.Block{Type: pemSealed, Headers: headers, Bytes: ct}
	}
	b := pem.EncodeToMemory(block)
	defer memzero.Zero(b)
	if err := writeFile(path, b, 0o600); err != nil {
		return oops.In("store").Code("identity").With("path", path).Wrapf(err, "write private key")
	}
	return nil
}

// ---------- Public ----------

func (s *FileStore) LoadPublic(name domain.KeyName) (domain.PublicValue, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.PublicPath(name)
	b, err := readFile(path)
	if err != nil {
		return nil, false, oops.In("store").Code("identity").With("path", path).Wrapf(err, "read public key")
	}
	if b == nil {
		return nil, false, nil
	}
	block, err := s.decode(b, path)
	if err != nil {
		return nil, false, err
	}
	if block.Type != pemPublic || len(block.Bytes) == 0 {
		return nil, false, oops.In("store").Code("identity").With("path", path).
			Wrapf(domain.ErrIdentityCorrupt, "unexpected PEM type %q", block.Type)
	}
	return domain.PublicValue(block.Bytes), true, nil
}

func (s *FileStore) SavePublic(name domain.KeyName, pub domain.PublicValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.PublicPath(name)
	b := pem.EncodeToMemory(&pem.Block{Type: pemPublic, Headers: map[string]string{hdrGroup: s.group}, Bytes: pub})
	if err := writeFile(path, b, 0o644); err != nil {
		return oops.In("store").Code("identity").With("path", path).Wrapf(err, "write public key")
	}
	return nil
}

// ---------- helpers ----------

// decode parses exactly one PEM block and checks its group.
func (s *FileStore) decode(b []byte, path string) (*pem.Block, error) {
	errb := oops.In("store").Code("identity").With("path", path)
	block, _ := pem.Decode(b)
	if block == nil {
		return nil, errb.Wrapf(domain.ErrIdentityCorrupt, "no PEM block")
	}
	if g := block.Headers[hdrGroup]; g != s.group {
		return nil, errb.With("found", g, "want", s.group).Wrapf(domain.ErrGroupMismatch, "key file is for group %q", g)
	}
	return block, nil
}

var _ domain.KeyStore = (*FileStore)(nil)
