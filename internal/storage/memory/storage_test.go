package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/model"
	"github.com/stretchr/testify/suite"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

// Player record tests

func (s *StorageSuite) TestSaveAndGetPlayerRecord() {
	news := true
	record := &model.PlayerRecord{
		ID:          "player-1",
		Username:    "alice",
		Email:       "alice@example.com",
		Score:       25,
		News:        &news,
		Codes:       []model.CodeClaim{{Code: "A1", Level: "20"}},
		LastUpdated: time.Now(),
	}

	err := s.storage.SavePlayerRecord(s.ctx, "duck", record)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetPlayerRecord(s.ctx, "duck", "player-1")
	s.Require().NoError(err)
	s.Equal(record.Username, retrieved.Username)
	s.Equal(record.Score, retrieved.Score)
	s.Equal(record.Codes, retrieved.Codes)
	s.Require().NotNil(retrieved.News)
	s.True(*retrieved.News)
}

func (s *StorageSuite) TestGetPlayerRecordNotFound() {
	_, err := s.storage.GetPlayerRecord(s.ctx, "duck", "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestRecordsAreScopedByGame() {
	_ = s.storage.SavePlayerRecord(s.ctx, "duck", &model.PlayerRecord{ID: "player-1", Username: "alice"})

	_, err := s.storage.GetPlayerRecord(s.ctx, "goose", "player-1")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	records, err := s.storage.ListPlayerRecords(s.ctx, "goose")
	s.Require().NoError(err)
	s.Empty(records)
}

func (s *StorageSuite) TestSaveOverwritesWholeRecord() {
	_ = s.storage.SavePlayerRecord(s.ctx, "duck", &model.PlayerRecord{
		ID: "player-1", Username: "alice", Email: "a@example.com", Score: 10,
	})
	_ = s.storage.SavePlayerRecord(s.ctx, "duck", &model.PlayerRecord{
		ID: "player-1", Username: "alice", Score: 5,
	})

	retrieved, err := s.storage.GetPlayerRecord(s.ctx, "duck", "player-1")
	s.Require().NoError(err)
	s.Equal(float64(5), retrieved.Score)
	s.Empty(retrieved.Email)
}

func (s *StorageSuite) TestReturnedRecordsAreCopies() {
	_ = s.storage.SavePlayerRecord(s.ctx, "duck", &model.PlayerRecord{ID: "player-1", Username: "alice"})

	retrieved, _ := s.storage.GetPlayerRecord(s.ctx, "duck", "player-1")
	retrieved.Username = "mallory"

	again, _ := s.storage.GetPlayerRecord(s.ctx, "duck", "player-1")
	s.Equal("alice", again.Username)
}

func (s *StorageSuite) TestFindPlayerRecordsByUsername() {
	_ = s.storage.SavePlayerRecord(s.ctx, "duck", &model.PlayerRecord{ID: "player-2", Username: "alice"})
	_ = s.storage.SavePlayerRecord(s.ctx, "duck", &model.PlayerRecord{ID: "player-1", Username: "alice"})
	_ = s.storage.SavePlayerRecord(s.ctx, "duck", &model.PlayerRecord{ID: "player-3", Username: "Alice"})

	matches, err := s.storage.FindPlayerRecordsByUsername(s.ctx, "duck", "alice")
	s.Require().NoError(err)
	s.Require().Len(matches, 2)
	s.Equal(model.PlayerID("player-1"), matches[0].ID)
	s.Equal(model.PlayerID("player-2"), matches[1].ID)
}

func (s *StorageSuite) TestFindPlayerRecordsByUsernameNoMatch() {
	matches, err := s.storage.FindPlayerRecordsByUsername(s.ctx, "duck", "nobody")
	s.Require().NoError(err)
	s.NotNil(matches)
	s.Empty(matches)
}

func (s *StorageSuite) TestDeletePlayerRecord() {
	_ = s.storage.SavePlayerRecord(s.ctx, "duck", &model.PlayerRecord{ID: "player-1", Username: "alice"})

	err := s.storage.DeletePlayerRecord(s.ctx, "duck", "player-1")
	s.Require().NoError(err)

	_, err = s.storage.GetPlayerRecord(s.ctx, "duck", "player-1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestDeleteUnknownPlayerRecord() {
	err := s.storage.DeletePlayerRecord(s.ctx, "duck", "nonexistent")
	s.NoError(err)
}

// Code pool tests

func (s *StorageSuite) TestGetCodePoolAbsent() {
	pool, err := s.storage.GetCodePool(s.ctx, "duck", "20")
	s.Require().NoError(err)
	s.Empty(pool)
}

func (s *StorageSuite) TestAddCodesAppends() {
	s.Require().NoError(s.storage.AddCodes(s.ctx, "duck", "20", []string{"A1", "A2"}))
	s.Require().NoError(s.storage.AddCodes(s.ctx, "duck", "20", []string{"A3"}))

	pool, err := s.storage.GetCodePool(s.ctx, "duck", "20")
	s.Require().NoError(err)
	s.Equal([]model.RewardCode{{Code: "A1"}, {Code: "A2"}, {Code: "A3"}}, pool)
}

func (s *StorageSuite) TestClaimCode() {
	_ = s.storage.AddCodes(s.ctx, "duck", "20", []string{"A1", "A2"})

	claimed, err := s.storage.ClaimCode(s.ctx, "duck", "20", 1)
	s.Require().NoError(err)
	s.True(claimed)

	claimed, err = s.storage.ClaimCode(s.ctx, "duck", "20", 1)
	s.Require().NoError(err)
	s.False(claimed)

	pool, _ := s.storage.GetCodePool(s.ctx, "duck", "20")
	s.False(pool[0].Used)
	s.True(pool[1].Used)
}

func (s *StorageSuite) TestClaimCodeOutOfRange() {
	_ = s.storage.AddCodes(s.ctx, "duck", "20", []string{"A1"})

	_, err := s.storage.ClaimCode(s.ctx, "duck", "20", 1)
	s.ErrorIs(err, model.ErrCodeIndexOutOfRange)

	_, err = s.storage.ClaimCode(s.ctx, "duck", "1000", 0)
	s.ErrorIs(err, model.ErrCodeIndexOutOfRange)
}

func (s *StorageSuite) TestConcurrentClaimsSucceedOnce() {
	_ = s.storage.AddCodes(s.ctx, "duck", "20", []string{"A1"})

	var wg sync.WaitGroup
	results := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := s.storage.ClaimCode(s.ctx, "duck", "20", 0)
			s.NoError(err)
			results <- claimed
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for claimed := range results {
		if claimed {
			wins++
		}
	}
	s.Equal(1, wins)
}
