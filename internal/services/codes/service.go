package codes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/metrics"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/model"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/storage"
)

// MaxClaimAttempts bounds how often a lost claim race is retried
const MaxClaimAttempts = 5

var (
	// ErrNoCodeAvailable means the pool is absent, empty or fully used
	ErrNoCodeAvailable = errors.New("no code available")
	// ErrClaimContention means every claim attempt lost to a concurrent writer
	ErrClaimContention = errors.New("code claim contention")
)

// PoolStats summarizes one code pool
type PoolStats struct {
	Level  string `json:"level"`
	Total  int    `json:"total"`
	Unused int    `json:"unused"`
}

// Service hands out reward codes from the per-level pools
type Service struct {
	storage storage.Storage
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a new code allocation Service
func New(storage storage.Storage, metrics *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "code-allocator")),
	}
}

// Allocate claims the first unused code of the level's pool.
// It never invents a code: an empty or exhausted pool yields ErrNoCodeAvailable.
func (s *Service) Allocate(ctx context.Context, gameID model.GameID, level model.PointLevel) (model.CodeClaim, error) {
	key := level.Key()

	for attempt := 0; attempt < MaxClaimAttempts; attempt++ {
		pool, err := s.storage.GetCodePool(ctx, gameID, key)
		if err != nil {
			return model.CodeClaim{}, fmt.Errorf("read code pool %s: %w", key, err)
		}

		index := firstUnused(pool)
		if index < 0 {
			s.metrics.PoolExhaustedFor(key)
			s.logger.Info("code pool exhausted",
				slog.String("game_id", string(gameID)),
				slog.String("level", key))
			return model.CodeClaim{}, ErrNoCodeAvailable
		}

		claimed, err := s.storage.ClaimCode(ctx, gameID, key, index)
		if err != nil {
			return model.CodeClaim{}, fmt.Errorf("claim code %s[%d]: %w", key, index, err)
		}
		if claimed {
			s.metrics.CodeUnlocked(key)
			return model.CodeClaim{Code: pool[index].Code, Level: key}, nil
		}

		s.logger.Debug("code claim lost, retrying",
			slog.String("game_id", string(gameID)),
			slog.String("level", key),
			slog.Int("attempt", attempt+1))
	}

	s.logger.Warn("code claim contention",
		slog.String("game_id", string(gameID)),
		slog.String("level", key))
	return model.CodeClaim{}, ErrClaimContention
}

// Provision appends codes to a level's pool as unused entries.
// Codes are trimmed; blanks and repeats within the batch are skipped.
// It returns the number of codes added.
func (s *Service) Provision(ctx context.Context, gameID model.GameID, level model.PointLevel, codes []string) (int, error) {
	seen := make(map[string]struct{}, len(codes))
	batch := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		batch = append(batch, code)
	}

	if len(batch) == 0 {
		return 0, nil
	}

	if err := s.storage.AddCodes(ctx, gameID, level.Key(), batch); err != nil {
		return 0, fmt.Errorf("add codes to %s: %w", level.Key(), err)
	}

	s.logger.Info("code pool provisioned",
		slog.String("game_id", string(gameID)),
		slog.String("level", level.Key()),
		slog.Int("added", len(batch)))
	return len(batch), nil
}

// Stats returns the size of each level's pool in the given order
func (s *Service) Stats(ctx context.Context, gameID model.GameID, levels []model.PointLevel) ([]PoolStats, error) {
	stats := make([]PoolStats, 0, len(levels))
	for _, level := range levels {
		pool, err := s.storage.GetCodePool(ctx, gameID, level.Key())
		if err != nil {
			return nil, fmt.Errorf("read code pool %s: %w", level.Key(), err)
		}
		st := PoolStats{Level: level.Key(), Total: len(pool)}
		for _, entry := range pool {
			if !entry.Used && entry.Code != "" {
				st.Unused++
			}
		}
		stats = append(stats, st)
	}
	return stats, nil
}

// LocateCodes finds, for each of codes, the level whose pool holds it.
// Codes found in no pool are absent from the result.
func (s *Service) LocateCodes(ctx context.Context, gameID model.GameID, codes []string, levels []model.PointLevel) (map[string]model.PointLevel, error) {
	found := make(map[string]model.PointLevel, len(codes))
	if len(codes) == 0 {
		return found, nil
	}

	wanted := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		wanted[code] = struct{}{}
	}

	for _, level := range levels {
		pool, err := s.storage.GetCodePool(ctx, gameID, level.Key())
		if err != nil {
			return nil, fmt.Errorf("read code pool %s: %w", level.Key(), err)
		}
		for _, entry := range pool {
			if _, ok := wanted[entry.Code]; !ok {
				continue
			}
			if _, seen := found[entry.Code]; !seen {
				found[entry.Code] = level
			}
		}
		if len(found) == len(wanted) {
			break
		}
	}
	return found, nil
}

func firstUnused(pool []model.RewardCode) int {
	for i, entry := range pool {
		if !entry.Used && entry.Code != "" {
			return i
		}
	}
	return -1
}
