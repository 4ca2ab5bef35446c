package cli

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/api/response"
)

func newPlayersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "players",
		Short: "Inspect and remove player records",
	}

	cmd.AddCommand(newPlayersFindCmd())
	cmd.AddCommand(newPlayersGetCmd())
	cmd.AddCommand(newPlayersDeleteCmd())

	return cmd
}

func newPlayersFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <username>",
		Short: "List every record stored under a username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var players []response.PlayerRecord

			query := url.Values{"username": {args[0]}}
			if err := client.Get(cmd.Context(), "/api/v1/admin/players?"+query.Encode(), &players); err != nil {
				return err
			}

			output(cmd).Print(players)
			return nil
		},
	}
}

func newPlayersGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <player_id>",
		Short: "Show a player record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var player response.PlayerRecord

			if err := client.Get(cmd.Context(), "/api/v1/admin/players/"+url.PathEscape(args[0]), &player); err != nil {
				return err
			}

			output(cmd).Print(player)
			return nil
		},
	}
}

func newPlayersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <player_id>",
		Short: "Delete a player record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(cmd.Context(), "/api/v1/admin/players/"+url.PathEscape(args[0])); err != nil {
				return err
			}

			output(cmd).PrintMessage("Deleted player " + args[0])
			return nil
		},
	}
}
