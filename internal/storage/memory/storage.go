package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/model"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	records map[recordKey]*model.PlayerRecord
	pools   map[poolKey][]model.RewardCode
}

type recordKey struct {
	gameID   model.GameID
	playerID model.PlayerID
}

type poolKey struct {
	gameID model.GameID
	level  string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		records: make(map[recordKey]*model.PlayerRecord),
		pools:   make(map[poolKey][]model.RewardCode),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player record operations

func (s *Storage) SavePlayerRecord(ctx context.Context, gameID model.GameID, record *model.PlayerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[recordKey{gameID, record.ID}] = record.Clone()
	return nil
}

func (s *Storage) GetPlayerRecord(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (*model.PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[recordKey{gameID, playerID}]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return record.Clone(), nil
}

func (s *Storage) FindPlayerRecordsByUsername(ctx context.Context, gameID model.GameID, username string) ([]*model.PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := []*model.PlayerRecord{}
	for key, record := range s.records {
		if key.gameID == gameID && record.Username == username {
			matches = append(matches, record.Clone())
		}
	}
	sortByID(matches)
	return matches, nil
}

func (s *Storage) ListPlayerRecords(ctx context.Context, gameID model.GameID) ([]*model.PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := []*model.PlayerRecord{}
	for key, record := range s.records {
		if key.gameID == gameID {
			records = append(records, record.Clone())
		}
	}
	sortByID(records)
	return records, nil
}

func (s *Storage) DeletePlayerRecord(ctx context.Context, gameID model.GameID, playerID model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, recordKey{gameID, playerID})
	return nil
}

// Code pool operations

func (s *Storage) GetCodePool(ctx context.Context, gameID model.GameID, level string) ([]model.RewardCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pool := s.pools[poolKey{gameID, level}]
	return append([]model.RewardCode{}, pool...), nil
}

func (s *Storage) AddCodes(ctx context.Context, gameID model.GameID, level string, codes []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := poolKey{gameID, level}
	for _, code := range codes {
		s.pools[key] = append(s.pools[key], model.RewardCode{Code: code})
	}
	return nil
}

func (s *Storage) ClaimCode(ctx context.Context, gameID model.GameID, level string, index int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pool := s.pools[poolKey{gameID, level}]
	if index < 0 || index >= len(pool) {
		return false, model.ErrCodeIndexOutOfRange
	}
	if pool[index].Used {
		return false, nil
	}
	pool[index].Used = true
	return true, nil
}

func sortByID(records []*model.PlayerRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})
}
