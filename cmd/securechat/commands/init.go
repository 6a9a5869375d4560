package commands

import (
	"fmt"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

func errInvalidRole(role string) error {
	return oops.In("cli").Errorf("invalid role %q: want listener or connector", role)
}

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the identity keys of a role if they do not exist",
		Args:  cobra.NoArgs,
	}
	role := roleFlag(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		r, err := role()
		if err != nil {
			return err
		}
		fp, err := appCtx.Identity.Fingerprint(r)
		if err != nil {
			return err
		}
		path, err := appCtx.Identity.PublicPath(r)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Identity ready (%s, %s).\nFingerprint: %s\nPublic key: %s\n",
			r, appCtx.Group.Name(), fp, path)
		return nil
	}
	return cmd
}
