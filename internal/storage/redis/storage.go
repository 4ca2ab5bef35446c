package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/model"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/storage"
)

// errAlreadyClaimed aborts a claim transaction whose entry is already used
var errAlreadyClaimed = errors.New("code already claimed")

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
	keys   keyspace
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &Storage{
		client: client,
		cfg:    cfg,
		keys:   keyspace(prefix),
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player record operations

func (s *Storage) SavePlayerRecord(ctx context.Context, gameID model.GameID, record *model.PlayerRecord) error {
	data, err := json.Marshal(storage.ToDocument(record))
	if err != nil {
		return err
	}

	// The username index of the previous version must be dropped on rename
	previous, err := s.GetPlayerRecord(ctx, gameID, record.ID)
	if err != nil && !errors.Is(err, model.ErrPlayerNotFound) {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if previous != nil && previous.Username != record.Username {
			pipe.SRem(ctx, s.keys.usernameIndexKey(gameID, previous.Username), string(record.ID))
		}
		pipe.Set(ctx, s.keys.scoreKey(gameID, record.ID), data, 0)
		pipe.SAdd(ctx, s.keys.scoresIndexKey(gameID), string(record.ID))
		pipe.SAdd(ctx, s.keys.usernameIndexKey(gameID, record.Username), string(record.ID))
		return nil
	})
	return err
}

func (s *Storage) GetPlayerRecord(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (*model.PlayerRecord, error) {
	data, err := s.client.Get(ctx, s.keys.scoreKey(gameID, playerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var doc storage.PlayerDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.ToRecord(playerID), nil
}

func (s *Storage) FindPlayerRecordsByUsername(ctx context.Context, gameID model.GameID, username string) ([]*model.PlayerRecord, error) {
	ids, err := s.client.SMembers(ctx, s.keys.usernameIndexKey(gameID, username)).Result()
	if err != nil {
		return nil, err
	}

	records, err := s.loadRecords(ctx, gameID, ids)
	if err != nil {
		return nil, err
	}

	// Filter out entries whose document no longer carries the username
	matches := records[:0]
	for _, r := range records {
		if r.Username == username {
			matches = append(matches, r)
		}
	}
	return matches, nil
}

func (s *Storage) ListPlayerRecords(ctx context.Context, gameID model.GameID) ([]*model.PlayerRecord, error) {
	ids, err := s.client.SMembers(ctx, s.keys.scoresIndexKey(gameID)).Result()
	if err != nil {
		return nil, err
	}
	return s.loadRecords(ctx, gameID, ids)
}

func (s *Storage) DeletePlayerRecord(ctx context.Context, gameID model.GameID, playerID model.PlayerID) error {
	previous, err := s.GetPlayerRecord(ctx, gameID, playerID)
	if err != nil && !errors.Is(err, model.ErrPlayerNotFound) {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.keys.scoreKey(gameID, playerID))
		pipe.SRem(ctx, s.keys.scoresIndexKey(gameID), string(playerID))
		if previous != nil {
			pipe.SRem(ctx, s.keys.usernameIndexKey(gameID, previous.Username), string(playerID))
		}
		return nil
	})
	return err
}

// loadRecords fetches the documents for ids with one MGET, sorted by ID
func (s *Storage) loadRecords(ctx context.Context, gameID model.GameID, ids []string) ([]*model.PlayerRecord, error) {
	if len(ids) == 0 {
		return []*model.PlayerRecord{}, nil
	}
	sort.Strings(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.keys.scoreKey(gameID, model.PlayerID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	records := make([]*model.PlayerRecord, 0, len(values))
	for i, val := range values {
		raw, ok := val.(string)
		if !ok {
			continue // Deleted between SMEMBERS and MGET
		}
		var doc storage.PlayerDocument
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			continue // Skip invalid data
		}
		records = append(records, doc.ToRecord(model.PlayerID(ids[i])))
	}
	return records, nil
}

// Code pool operations

func (s *Storage) GetCodePool(ctx context.Context, gameID model.GameID, level string) ([]model.RewardCode, error) {
	values, err := s.client.LRange(ctx, s.keys.codePoolKey(gameID, level), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	pool := make([]model.RewardCode, len(values))
	for i, raw := range values {
		// Unparseable entries keep their slot with an empty code so indexes stay stable
		_ = json.Unmarshal([]byte(raw), &pool[i])
	}
	return pool, nil
}

func (s *Storage) AddCodes(ctx context.Context, gameID model.GameID, level string, codes []string) error {
	if len(codes) == 0 {
		return nil
	}

	entries := make([]interface{}, len(codes))
	for i, code := range codes {
		data, err := json.Marshal(model.RewardCode{Code: code})
		if err != nil {
			return err
		}
		entries[i] = string(data)
	}
	return s.client.RPush(ctx, s.keys.codePoolKey(gameID, level), entries...).Err()
}

func (s *Storage) ClaimCode(ctx context.Context, gameID model.GameID, level string, index int) (bool, error) {
	if index < 0 {
		return false, model.ErrCodeIndexOutOfRange
	}
	key := s.keys.codePoolKey(gameID, level)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.LIndex(ctx, key, int64(index)).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrCodeIndexOutOfRange
			}
			return err
		}

		var entry model.RewardCode
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return err
		}
		if entry.Used {
			return errAlreadyClaimed
		}

		entry.Used = true
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.LSet(ctx, key, int64(index), string(data))
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errAlreadyClaimed), errors.Is(err, redis.TxFailedErr):
		return false, nil
	default:
		return false, err
	}
}
