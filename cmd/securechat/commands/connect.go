package commands

import (
	"github.com/spf13/cobra"

	"securechat/internal/app"
	"securechat/internal/domain"
)

func connectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect [host]",
		Short: "Connect to a listening peer, then chat",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host := appCtx.Config.Host
			if len(args) == 1 {
				host = args[0]
			}
			if err := prepare(cmd, domain.RoleConnector); err != nil {
				return err
			}
			addr := appCtx.Config.Address(host)
			cmd.PrintErrf("Connecting to %s\n", addr)
			conn, err := app.Dial(cmd.Context(), addr)
			if err != nil {
				return err
			}
			return chat(cmd, domain.RoleConnector, conn)
		},
	}
}
