package app

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/viper"

	"securechat/internal/crypto"
	"securechat/internal/domain"
	"securechat/internal/protocol/transport"
)

// BaseDir is the default home directory name under the user's home.
const BaseDir = ".securechat"

// Configuration keys. Each can also be set as SECURECHAT_<KEY>.
const (
	KeyHome             = "home"
	KeyHost             = "host"
	KeyPort             = "port"
	KeyGroup            = "group"
	KeyCipher           = "cipher"
	KeyMaxFrame         = "max_frame"
	KeyListenerName     = "listener_name"
	KeyConnectorName    = "connector_name"
	KeyPeer             = "peer"
	KeyPassphrase       = "passphrase"
	KeyHandshakeTimeout = "handshake_timeout"
	KeyDrainTimeout     = "drain_timeout"
	KeyLogLevel         = "log_level"
	KeyLogFile          = "log_file"
	KeyPlain            = "plain"
)

// maxFrameLimit caps max_frame; one frame is one stream read.
const maxFrameLimit = 64 * 1024

// Config holds runtime options for building the app.
type Config struct {
	Home             string // key and config directory, e.g. $HOME/.securechat
	Host             string
	Port             int
	Group            string
	Cipher           string
	MaxFrame         int
	ListenerName     domain.KeyName
	ConnectorName    domain.KeyName
	Peer             domain.KeyName // empty: the other role's identity name
	Passphrase       string
	HandshakeTimeout time.Duration
	DrainTimeout     time.Duration
	LogLevel         string
	LogFile          string
	Plain            bool
}

// DefaultHome returns $HOME/.securechat, or a relative .securechat when the
// user's home cannot be determined.
func DefaultHome() string {
	h, err := os.UserHomeDir()
	if err != nil {
		return BaseDir
	}
	return filepath.Join(h, BaseDir)
}

// SetDefaults registers every key's default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyHome, DefaultHome())
	v.SetDefault(KeyHost, "localhost")
	v.SetDefault(KeyPort, 1337)
	v.SetDefault(KeyGroup, crypto.X25519Name)
	v.SetDefault(KeyCipher, transport.CipherAES256CTR)
	v.SetDefault(KeyMaxFrame, transport.DefaultMaxFrame)
	v.SetDefault(KeyListenerName, "serverKey")
	v.SetDefault(KeyConnectorName, "clientKey")
	v.SetDefault(KeyPeer, "")
	v.SetDefault(KeyPassphrase, "")
	v.SetDefault(KeyHandshakeTimeout, 30*time.Second)
	v.SetDefault(KeyDrainTimeout, 5*time.Second)
	v.SetDefault(KeyLogLevel, "")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyPlain, false)
}

// Load resolves the configuration from flags already bound to v, the
// environment, the config file and the defaults, in that order of
// precedence. With an empty cfgFile, <home>/config.yaml is used and created
// with the defaults when missing.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix("SECURECHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	home := v.GetString(KeyHome)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(home)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := handleConfigFile(v, cfgFile, home); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Home:             v.GetString(KeyHome),
		Host:             v.GetString(KeyHost),
		Port:             v.GetInt(KeyPort),
		Group:            v.GetString(KeyGroup),
		Cipher:           v.GetString(KeyCipher),
		MaxFrame:         v.GetInt(KeyMaxFrame),
		ListenerName:     domain.KeyName(v.GetString(KeyListenerName)),
		ConnectorName:    domain.KeyName(v.GetString(KeyConnectorName)),
		Peer:             domain.KeyName(v.GetString(KeyPeer)),
		Passphrase:       v.GetString(KeyPassphrase),
		HandshakeTimeout: v.GetDuration(KeyHandshakeTimeout),
		DrainTimeout:     v.GetDuration(KeyDrainTimeout),
		LogLevel:         v.GetString(KeyLogLevel),
		LogFile:          v.GetString(KeyLogFile),
		Plain:            v.GetBool(KeyPlain),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func handleConfigFile(v *viper.Viper, cfgFile, home string) error {
	err := v.ReadInConfig()
	if err == nil {
		log.WithField("path", v.ConfigFileUsed()).Debug("Using config file")
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if cfgFile != "" || !errors.As(err, &notFound) {
		return oops.In("config").With("path", cfgFile).Wrapf(err, "read config file")
	}
	return createDefaultConfig(home)
}

// createDefaultConfig writes the defaults, and nothing taken from flags or
// the environment, to <home>/config.yaml.
func createDefaultConfig(home string) error {
	path := filepath.Join(home, "config.yaml")
	if err := os.MkdirAll(home, 0o700); err != nil {
		return oops.In("config").With("path", home).Wrapf(err, "create home directory")
	}
	dv := viper.New()
	SetDefaults(dv)
	dv.Set(KeyHome, home)
	if err := dv.SafeWriteConfigAs(path); err != nil {
		return oops.In("config").With("path", path).Wrapf(err, "write default config")
	}
	log.WithField("path", path).Debug("Created default configuration")
	return nil
}

// Validate rejects values the rest of the program cannot work with.
func (c Config) Validate() error {
	errb := oops.In("config")
	switch {
	case c.Home == "":
		return errb.Errorf("%s must not be empty", KeyHome)
	case c.Port <= 0 || c.Port > 65535:
		return errb.Errorf("%s %d out of range", KeyPort, c.Port)
	case !slices.Contains(crypto.Groups(), c.Group):
		return errb.With("known", crypto.Groups()).Errorf("unknown %s %q", KeyGroup, c.Group)
	case !slices.Contains(transport.Ciphers(), c.Cipher):
		return errb.With("known", transport.Ciphers()).Errorf("unknown %s %q", KeyCipher, c.Cipher)
	case c.MaxFrame <= 0 || c.MaxFrame > maxFrameLimit:
		return errb.Errorf("%s %d out of range (1..%d)", KeyMaxFrame, c.MaxFrame, maxFrameLimit)
	case c.HandshakeTimeout < 0 || c.DrainTimeout < 0:
		return errb.Errorf("timeouts must not be negative")
	}
	for _, n := range []domain.KeyName{c.ListenerName, c.ConnectorName, c.Peer} {
		if strings.ContainsAny(string(n), `/\`) || n == "." || n == ".." {
			return errb.Errorf("key name %q must be a plain file name", n)
		}
	}
	if c.ListenerName == "" || c.ConnectorName == "" {
		return errb.Errorf("%s and %s must not be empty", KeyListenerName, KeyConnectorName)
	}
	if c.ListenerName == c.ConnectorName {
		return errb.Errorf("%s and %s must differ", KeyListenerName, KeyConnectorName)
	}
	return nil
}

// KeyName returns the identity file name of role.
func (c Config) KeyName(role domain.Role) domain.KeyName {
	if role == domain.RoleConnector {
		return c.ConnectorName
	}
	return c.ListenerName
}

// PeerName returns the peer identity file name for a session played as role.
func (c Config) PeerName(role domain.Role) domain.KeyName {
	if c.Peer != "" {
		return c.Peer
	}
	return c.KeyName(role.Peer())
}

// Address joins host with the configured port.
func (c Config) Address(host string) string {
	return net.JoinHostPort(host, strconv.Itoa(c.Port))
}
