package commands

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"securechat/internal/app"
	"securechat/internal/domain"
)

var (
	cfgFile   string
	v         *viper.Viper
	appCtx    *app.App
	logCloser io.Closer
)

// Execute runs the CLI until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	v = viper.New()
	root := &cobra.Command{
		Use:          "securechat",
		Short:        "Peer-to-peer encrypted chat",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Load(v, cfgFile)
			if err != nil {
				return err
			}
			if logCloser, err = app.ConfigureLogging(cfg); err != nil {
				return err
			}
			appCtx, err = app.New(cfg)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if logCloser != nil {
				return logCloser.Close()
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default <home>/config.yaml)")
	pf.String("home", "", "key and config directory (default ~/.securechat)")
	pf.IntP("port", "p", 1337, "port to listen on or connect to")
	pf.String("group", "x25519", "Diffie-Hellman group: x25519 or modp2048")
	pf.String("cipher", "aes-256-ctr", "transport cipher: aes-256-ctr or chacha20")
	pf.String("peer", "", "peer public key name (default: the other role's key)")
	pf.String("passphrase", "", "passphrase sealing private key files")
	pf.Bool("plain", false, "line mode instead of the full-screen interface")
	pf.String("log-level", "", "log level (debug, info, warn, error); empty disables logging")
	pf.String("log-file", "", "log file (default <home>/securechat.log in full-screen mode)")

	for flag, key := range map[string]string{
		"home":       app.KeyHome,
		"port":       app.KeyPort,
		"group":      app.KeyGroup,
		"cipher":     app.KeyCipher,
		"peer":       app.KeyPeer,
		"passphrase": app.KeyPassphrase,
		"plain":      app.KeyPlain,
		"log-level":  app.KeyLogLevel,
		"log-file":   app.KeyLogFile,
	} {
		if err := v.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	root.AddCommand(initCmd(), fingerprintCmd(), exportCmd(), listenCmd(), connectCmd())
	return root
}

// roleFlag adds --role to cmd and returns a getter for the parsed role.
func roleFlag(cmd *cobra.Command) func() (domain.Role, error) {
	var role string
	cmd.Flags().StringVar(&role, "role", string(domain.RoleListener), "identity to use: listener or connector")
	return func() (domain.Role, error) {
		r := domain.Role(strings.ToLower(role))
		if !r.Valid() {
			return "", errInvalidRole(role)
		}
		return r, nil
	}
}
