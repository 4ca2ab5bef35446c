package unlock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/model"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/services/codes"
)

// Allocator hands out one code for a point level and finds the level
// a previously handed out code came from
type Allocator interface {
	Allocate(ctx context.Context, gameID model.GameID, level model.PointLevel) (model.CodeClaim, error)
	LocateCodes(ctx context.Context, gameID model.GameID, codes []string, levels []model.PointLevel) (map[string]model.PointLevel, error)
}

// Result is the outcome of one evaluation
type Result struct {
	// Codes is the existing claims plus the unlocked one, if any
	Codes []model.CodeClaim
	// Unlocked is the claim made by this evaluation, nil when none
	Unlocked *model.CodeClaim
}

// Evaluator decides which point level, if any, a score unlocks
type Evaluator struct {
	allocator Allocator
	logger    *slog.Logger
}

// New creates a new Evaluator
func New(allocator Allocator, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		allocator: allocator,
		logger:    logger.With(slog.String("component", "unlock-evaluator")),
	}
}

// Evaluate unlocks at most one code: the first level, in configured order,
// that score reaches and that existing has no claim for. A level whose pool
// is empty or contended is skipped in favour of the next eligible one.
// Existing claims without a level get the level of the pool holding their
// code, and the returned Codes carry it.
func (e *Evaluator) Evaluate(
	ctx context.Context,
	gameID model.GameID,
	score float64,
	levels []model.PointLevel,
	existing []model.CodeClaim,
) (Result, error) {
	result := Result{Codes: append([]model.CodeClaim{}, existing...)}
	if len(levels) == 0 {
		return result, nil
	}

	if err := e.resolveLevels(ctx, gameID, levels, result.Codes); err != nil {
		return Result{}, err
	}

	claimed := model.ClaimedLevels(result.Codes)
	for _, level := range levels {
		if score < float64(level) {
			continue
		}
		if _, ok := claimed[level.Key()]; ok {
			continue
		}

		claim, err := e.allocator.Allocate(ctx, gameID, level)
		if err != nil {
			if errors.Is(err, codes.ErrNoCodeAvailable) || errors.Is(err, codes.ErrClaimContention) {
				e.logger.Info("level skipped",
					slog.String("game_id", string(gameID)),
					slog.String("level", level.Key()),
					slog.Any("reason", err))
				continue
			}
			return Result{}, fmt.Errorf("allocate level %s: %w", level.Key(), err)
		}

		result.Codes = append(result.Codes, claim)
		result.Unlocked = &claim
		return result, nil
	}

	return result, nil
}

func (e *Evaluator) resolveLevels(ctx context.Context, gameID model.GameID, levels []model.PointLevel, claims []model.CodeClaim) error {
	var bare []string
	for _, c := range claims {
		if c.Level == "" {
			bare = append(bare, c.Code)
		}
	}
	if len(bare) == 0 {
		return nil
	}

	found, err := e.allocator.LocateCodes(ctx, gameID, bare, levels)
	if err != nil {
		return fmt.Errorf("locate existing codes: %w", err)
	}
	for i := range claims {
		if level, ok := found[claims[i].Code]; ok && claims[i].Level == "" {
			claims[i].Level = level.Key()
			e.logger.Debug("code level recovered",
				slog.String("game_id", string(gameID)),
				slog.String("code", claims[i].Code),
				slog.String("level", level.Key()))
		}
	}
	return nil
}
