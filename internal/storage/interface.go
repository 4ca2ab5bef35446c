package storage

import (
	"context"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Player record operations
	SavePlayerRecord(ctx context.Context, gameID model.GameID, record *model.PlayerRecord) error
	GetPlayerRecord(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (*model.PlayerRecord, error)
	// FindPlayerRecordsByUsername returns every record whose username equals
	// username exactly, ordered by player ID
	FindPlayerRecordsByUsername(ctx context.Context, gameID model.GameID, username string) ([]*model.PlayerRecord, error)
	ListPlayerRecords(ctx context.Context, gameID model.GameID) ([]*model.PlayerRecord, error)
	// DeletePlayerRecord succeeds when the record does not exist
	DeletePlayerRecord(ctx context.Context, gameID model.GameID, playerID model.PlayerID) error

	// Code pool operations
	GetCodePool(ctx context.Context, gameID model.GameID, level string) ([]model.RewardCode, error)
	AddCodes(ctx context.Context, gameID model.GameID, level string, codes []string) error
	// ClaimCode marks the entry at index used if it is still unused.
	// It reports false when another writer claimed it first.
	ClaimCode(ctx context.Context, gameID model.GameID, level string, index int) (bool, error)
}
