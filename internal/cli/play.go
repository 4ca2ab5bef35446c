package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/model"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/services/arcade"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/services/records"
)

const playTimeout = 30 * time.Second

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Talk to the server over the realtime protocol",
		Long: `Talk to the server over the realtime protocol, the way the game client does.

Each command opens a websocket session, sends one event and prints the reply.`,
	}

	cmd.AddCommand(newPlayLookupCmd())
	cmd.AddCommand(newPlayScoreCmd())
	cmd.AddCommand(newPlayDeleteCmd())

	return cmd
}

// withSession dials the server and runs fn with a bounded context
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *Session) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), playTimeout)
	defer cancel()

	s, err := Dial(ctx, cfg.ServerURL)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	return fn(ctx, s)
}

func newPlayLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <username>",
		Short: "Fetch the stored data for a username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *Session) error {
				event, data, err := s.Request(ctx, arcade.EventUserData, arcade.UserDataRequest{Username: args[0]},
					arcade.EventUserData, arcade.EventUserNotFound, arcade.EventError)
				if err != nil {
					return err
				}

				out := output(cmd)
				switch event {
				case arcade.EventUserNotFound:
					out.PrintMessage("No player named " + args[0])
					return nil
				case arcade.EventError:
					var msg arcade.ErrorMessage
					_ = json.Unmarshal(data, &msg)
					return errors.New(msg.Message)
				}

				var view records.SessionView
				if err := json.Unmarshal(data, &view); err != nil {
					return fmt.Errorf("failed to parse userData payload: %w", err)
				}
				out.Print(view)
				return nil
			})
		},
	}
}

func newPlayScoreCmd() *cobra.Command {
	var (
		username string
		email    string
		score    float64
		news     bool
		playerID string
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Submit a score",
		Long: `Submit a score. Without --player-id a new record is created and the
username must be free; with it the existing record is updated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateSubmission(username, email, score); err != nil {
				return err
			}

			req := arcade.ScoreUpdateRequest{
				Username: username,
				Email:    email,
				Score:    json.RawMessage(strconv.FormatFloat(score, 'f', -1, 64)),
				PlayerID: model.PlayerID(playerID),
			}
			if cmd.Flags().Changed("news") {
				req.News = json.RawMessage(strconv.FormatBool(news))
			}

			return withSession(cmd, func(ctx context.Context, s *Session) error {
				var ack arcade.ScoreUpdateAck
				if err := s.Call(ctx, arcade.EventScoreUpdate, req, &ack); err != nil {
					return err
				}
				if !ack.Success {
					return fmt.Errorf("score rejected: %s", ack.Error)
				}

				output(cmd).Print(ack)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Player username (required)")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Player email")
	cmd.Flags().Float64VarP(&score, "score", "s", 0, "Score to submit (required)")
	cmd.Flags().BoolVar(&news, "news", false, "Opt in to the newsletter")
	cmd.Flags().StringVar(&playerID, "player-id", "", "Existing player ID")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("score")

	return cmd
}

// validateSubmission applies the checks the game client runs before submitting
func validateSubmission(username, email string, score float64) error {
	if username == "" {
		return errors.New(arcade.MsgUsernameRequired)
	}
	if !records.ValidUsername(username) {
		return fmt.Errorf("invalid username %q: at most %d characters, no spaces or . $ # [ ] /",
			username, records.MaxUsernameLength)
	}
	if email != "" && !records.ValidEmail(email) {
		return fmt.Errorf("invalid email %q", email)
	}
	if score < 0 {
		return errors.New(arcade.MsgInvalidScore)
	}
	return nil
}

func newPlayDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <player_id>",
		Short: "Delete a player's data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *Session) error {
				var ack arcade.DeleteDataAck
				req := arcade.DeleteDataRequest{PlayerID: model.PlayerID(args[0])}
				if err := s.Call(ctx, arcade.EventDeleteData, req, &ack); err != nil {
					return err
				}
				if !ack.Success {
					return fmt.Errorf("delete failed: %s", ack.Error)
				}

				output(cmd).Print(ack)
				return nil
			})
		},
	}
}
