package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"securechat/internal/crypto"
	"securechat/internal/domain"
)

func fingerprintCmd() *cobra.Command {
	var peer string
	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Print identity fingerprint",
		Args:  cobra.NoArgs,
	}
	role := roleFlag(cmd)
	cmd.Flags().StringVar(&peer, "of", "", "print the fingerprint of this stored peer key instead")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if peer != "" {
			id, err := appCtx.Identity.LoadPeer(domain.KeyName(peer))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fingerprint: %s\n", crypto.Fingerprint(id.Public))
			return nil
		}
		r, err := role()
		if err != nil {
			return err
		}
		fp, err := appCtx.Identity.Fingerprint(r)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Fingerprint: %s\n", fp)
		return nil
	}
	return cmd
}
