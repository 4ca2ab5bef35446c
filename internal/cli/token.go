package cli

import (
	"github.com/spf13/cobra"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/api/middleware"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the admin token",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "hash <token>",
		Short: "Print the bcrypt hash to configure as admin.token_hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := middleware.HashToken(args[0])
			if err != nil {
				return err
			}

			output(cmd).Print(TokenHash{Hash: hash})
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "save <token>",
		Short: "Store the admin token in the token file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.SaveToken(args[0]); err != nil {
				return err
			}

			output(cmd).PrintMessage("Token saved to " + cfg.TokenFile)
			return nil
		},
	})

	return cmd
}
