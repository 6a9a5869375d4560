package commands

import (
	"context"
	"net"

	"github.com/spf13/cobra"

	"securechat/internal/app"
	"securechat/internal/crypto"
	"securechat/internal/domain"
	messagesvc "securechat/internal/services/message"
	"securechat/internal/ui"
)

// prepare makes sure both identities a session needs are in place before
// any network activity.
func prepare(cmd *cobra.Command, role domain.Role) error {
	fp, err := appCtx.Identity.Fingerprint(role)
	if err != nil {
		return err
	}
	peer, err := appCtx.Identity.LoadPeer(appCtx.Config.PeerName(role))
	if err != nil {
		return err
	}
	cmd.PrintErrf("You are %s (%s). Expecting peer %s (%s).\n", role, fp, peer.Name, crypto.Fingerprint(peer.Public))
	return nil
}

// chat keys the session on conn and hands it to the configured front end.
func chat(cmd *cobra.Command, role domain.Role, conn net.Conn) error {
	var front app.Frontend
	if appCtx.Config.Plain {
		front = func(ctx context.Context, pump *messagesvc.Pump) error {
			return ui.RunPlain(ctx, pump, cmd.InOrStdin(), cmd.OutOrStdout(), app.Header(pump.Session()))
		}
	} else {
		front = func(ctx context.Context, pump *messagesvc.Pump) error {
			return ui.RunTUI(ctx, pump, app.Header(pump.Session()))
		}
	}
	return appCtx.Chat(cmd.Context(), role, conn, front)
}
