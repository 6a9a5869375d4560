package commands

import (
	"fmt"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the public key file to copy to the peer",
		Long: "Print the path and contents of a role's public key file. The peer stores it\n" +
			"in its own home directory under the name it uses for this role.",
		Args: cobra.NoArgs,
	}
	role := roleFlag(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		r, err := role()
		if err != nil {
			return err
		}
		kp, err := appCtx.Identity.EnsureIdentity(r)
		if err != nil {
			return err
		}
		kp.Wipe()
		path, err := appCtx.Identity.PublicPath(r)
		if err != nil {
			return err
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return oops.In("cli").With("path", path).Wrapf(err, "read public key")
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", path)
		_, err = cmd.OutOrStdout().Write(b)
		return err
	}
	return cmd
}
