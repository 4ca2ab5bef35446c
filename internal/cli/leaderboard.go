package cli

import (
	"github.com/spf13/cobra"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/model"
)

func newLeaderboardCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the top scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []model.LeaderboardEntry

			if err := client.Get(cmd.Context(), "/api/v1/leaderboard", &entries); err != nil {
				return err
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			output(cmd).Print(entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many entries")

	return cmd
}
