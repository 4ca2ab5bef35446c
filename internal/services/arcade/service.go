package arcade

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"sort"

	"github.com/spf13/cast"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/metrics"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/model"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/services/records"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/services/unlock"
)

// Service coordinates one game's protocol operations. It holds no
// per-session state.
type Service struct {
	game      model.GameConfig
	records   *records.Manager
	evaluator *unlock.Evaluator
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New creates a new Service bound to game
func New(
	game model.GameConfig,
	records *records.Manager,
	evaluator *unlock.Evaluator,
	metrics *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		game:      game,
		records:   records,
		evaluator: evaluator,
		metrics:   metrics,
		logger:    logger.With(slog.String("component", "arcade-service"), slog.String("game_id", string(game.ID))),
	}
}

// Game returns the configuration the service is bound to
func (s *Service) Game() model.GameConfig {
	return s.game
}

// UserData looks a player up by username for session restore
func (s *Service) UserData(ctx context.Context, req UserDataRequest) Push {
	if req.Username == "" {
		return errorPush(MsgUsernameRequired)
	}

	view, err := s.records.FetchForSession(ctx, s.game.ID, req.Username)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return Push{Event: EventUserNotFound}
		}
		s.logger.Error("user lookup failed",
			slog.String("username", req.Username),
			slog.Any("error", err))
		return errorPush(MsgInternalServerError)
	}
	return Push{Event: EventUserData, Data: view}
}

// ScoreUpdate validates a submission, unlocks at most one code and stores
// the player's record
func (s *Service) ScoreUpdate(ctx context.Context, req ScoreUpdateRequest) ScoreUpdateAck {
	if !records.UsernameAcceptable(req.Username) {
		s.metrics.ScoreUpdate(metrics.OutcomeInvalid)
		return ScoreUpdateAck{Error: MsgInvalidUsername}
	}

	score, ok := parseScore(req.Score)
	if !ok {
		s.metrics.ScoreUpdate(metrics.OutcomeInvalid)
		return ScoreUpdateAck{Error: MsgInvalidScore}
	}

	existing := model.NormalizeCodeEntries(req.Codes)
	known := false
	if req.PlayerID != "" {
		record, err := s.records.Load(ctx, s.game.ID, req.PlayerID)
		switch {
		case err == nil:
			known = true
			existing = model.MergeClaims(record.Codes, existing)
		case errors.Is(err, model.ErrPlayerNotFound):
			// Recreated under the caller's ID once the username is free
		default:
			return s.scoreUpdateFailed(req, err)
		}
	}

	if !known {
		taken, err := s.records.UsernameExists(ctx, s.game.ID, req.Username)
		if err != nil {
			return s.scoreUpdateFailed(req, err)
		}
		if taken {
			s.metrics.ScoreUpdate(metrics.OutcomeUsernameTaken)
			return ScoreUpdateAck{Error: MsgUsernameTaken, UsernameTaken: true}
		}
	}

	result, err := s.evaluator.Evaluate(ctx, s.game.ID, score, s.game.PointLevels, existing)
	if err != nil {
		return s.scoreUpdateFailed(req, err)
	}

	record, err := s.records.CreateOrUpdate(ctx, s.game.ID, records.RecordInput{
		PlayerID: req.PlayerID,
		Username: req.Username,
		Email:    req.Email,
		Score:    score,
		News:     parseNews(req.News),
	}, result.Codes)
	if err != nil {
		if errors.Is(err, records.ErrUsernameTaken) {
			s.metrics.ScoreUpdate(metrics.OutcomeUsernameTaken)
			return ScoreUpdateAck{Error: MsgUsernameTaken, UsernameTaken: true}
		}
		return s.scoreUpdateFailed(req, err)
	}

	ack := ScoreUpdateAck{
		Success:  true,
		Codes:    record.CodeStrings(),
		PlayerID: record.ID,
	}
	if result.Unlocked != nil {
		ack.Unlocked = result.Unlocked.Code
		s.logger.Info("code unlocked",
			slog.String("player_id", string(record.ID)),
			slog.String("level", result.Unlocked.Level))
	}
	s.metrics.ScoreUpdate(metrics.OutcomeAccepted)
	return ack
}

func (s *Service) scoreUpdateFailed(req ScoreUpdateRequest, err error) ScoreUpdateAck {
	s.metrics.ScoreUpdate(metrics.OutcomeError)
	s.logger.Error("score update failed",
		slog.String("username", req.Username),
		slog.String("player_id", string(req.PlayerID)),
		slog.Any("error", err))
	return ScoreUpdateAck{Error: MsgInternalServerError}
}

// DeleteData removes a player's record
func (s *Service) DeleteData(ctx context.Context, req DeleteDataRequest) DeleteDataAck {
	if req.PlayerID == "" {
		return DeleteDataAck{Error: MsgPlayerIDRequired}
	}

	if err := s.records.Delete(ctx, s.game.ID, req.PlayerID); err != nil {
		s.logger.Error("delete failed",
			slog.String("player_id", string(req.PlayerID)),
			slog.Any("error", err))
		return DeleteDataAck{Error: MsgDeleteFailed}
	}
	return DeleteDataAck{Success: true}
}

// Leaderboard returns the top players as a push
func (s *Service) Leaderboard(ctx context.Context) Push {
	entries, err := s.TopScores(ctx)
	if err != nil {
		s.logger.Error("leaderboard failed", slog.Any("error", err))
		return errorPush(MsgLeaderboardFailed)
	}
	return Push{Event: EventLeaderboard, Data: entries}
}

// TopScores projects every record to username and score, highest first,
// capped at LeaderboardSize. Ties are ordered by username.
func (s *Service) TopScores(ctx context.Context) ([]model.LeaderboardEntry, error) {
	all, err := s.records.List(ctx, s.game.ID)
	if err != nil {
		return nil, err
	}

	entries := make([]model.LeaderboardEntry, len(all))
	for i, r := range all {
		entries[i] = model.LeaderboardEntry{Username: r.Username, Score: r.Score}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Username < entries[j].Username
	})

	if len(entries) > LeaderboardSize {
		entries = entries[:LeaderboardSize]
	}
	return entries, nil
}

func errorPush(message string) Push {
	return Push{Event: EventError, Data: ErrorMessage{Message: message}}
}

// parseScore accepts only a finite, non-negative JSON number
func parseScore(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}
	if c := raw[0]; c != '-' && (c < '0' || c > '9') {
		return 0, false
	}

	var score float64
	if err := json.Unmarshal(raw, &score); err != nil {
		return 0, false
	}
	if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 {
		return 0, false
	}
	return score, true
}

// parseNews decodes the opt-in flag from a boolean or boolean-like value.
// Absent, null and unrecognized values mean the question was not answered.
func parseNews(raw json.RawMessage) *bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil
	}
	news, err := cast.ToBoolE(value)
	if err != nil {
		return nil
	}
	return &news
}
