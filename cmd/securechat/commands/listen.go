package commands

import (
	"github.com/spf13/cobra"

	"securechat/internal/app"
	"securechat/internal/domain"
)

func listenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Wait for one peer to connect, then chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := prepare(cmd, domain.RoleListener); err != nil {
				return err
			}
			addr := appCtx.Config.Address("")
			cmd.PrintErrf("Listening on %s\n", addr)
			conn, err := app.Listen(cmd.Context(), addr)
			if err != nil {
				return err
			}
			return chat(cmd, domain.RoleListener, conn)
		},
	}
}
