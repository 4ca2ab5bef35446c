package records

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/dependencies/mocks"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/model"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/storage/memory"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/testutil"
)

// brokenStorage fails every write
type brokenStorage struct {
	*memory.Storage
}

var errWriteFailed = errors.New("write failed")

func (b *brokenStorage) SavePlayerRecord(ctx context.Context, gameID model.GameID, record *model.PlayerRecord) error {
	return errWriteFailed
}

func (b *brokenStorage) DeletePlayerRecord(ctx context.Context, gameID model.GameID, playerID model.PlayerID) error {
	return errWriteFailed
}

type ManagerSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	ids     *mocks.MockIDGenerator
	manager *Manager
	ctx     context.Context
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func (s *ManagerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.ids = mocks.NewMockIDGenerator()
	s.manager = NewManager(s.storage, s.clock, s.ids, testutil.NopLogger())
	s.ctx = context.Background()
}

func boolPtr(b bool) *bool { return &b }

// CreateOrUpdate tests

func (s *ManagerSuite) TestCreateNewPlayer() {
	s.ids.Queue("p-1")

	record, err := s.manager.CreateOrUpdate(s.ctx, "duck", RecordInput{
		Username: "alice",
		Email:    "alice@example.com",
		Score:    25,
		News:     boolPtr(true),
	}, []model.CodeClaim{{Code: "AAA", Level: "20"}})
	s.Require().NoError(err)

	s.Equal(model.PlayerID("p-1"), record.ID)
	s.Equal(s.clock.Now(), record.LastUpdated)

	stored, err := s.storage.GetPlayerRecord(s.ctx, "duck", "p-1")
	s.Require().NoError(err)
	s.Equal("alice", stored.Username)
	s.Equal(float64(25), stored.Score)
	s.Equal([]model.CodeClaim{{Code: "AAA", Level: "20"}}, stored.Codes)
	s.Require().NotNil(stored.News)
	s.True(*stored.News)
}

func (s *ManagerSuite) TestCreateRequiresUsername() {
	_, err := s.manager.CreateOrUpdate(s.ctx, "duck", RecordInput{Score: 10}, nil)
	s.ErrorIs(err, ErrUsernameRequired)
}

func (s *ManagerSuite) TestCreateRejectsTakenUsername() {
	_, err := s.manager.CreateOrUpdate(s.ctx, "duck", RecordInput{Username: "alice"}, nil)
	s.Require().NoError(err)

	_, err = s.manager.CreateOrUpdate(s.ctx, "duck", RecordInput{Username: "alice", Score: 99}, nil)
	s.ErrorIs(err, ErrUsernameTaken)

	records, _ := s.storage.ListPlayerRecords(s.ctx, "duck")
	s.Len(records, 1)
}

func (s *ManagerSuite) TestUsernameIsCaseSensitive() {
	_, _ = s.manager.CreateOrUpdate(s.ctx, "duck", RecordInput{Username: "alice"}, nil)

	_, err := s.manager.CreateOrUpdate(s.ctx, "duck", RecordInput{Username: "Alice"}, nil)
	s.NoError(err)
}

func (s *ManagerSuite) TestUpdateOverwritesWholeRecord() {
	s.ids.Queue("p-1")
	_, _ = s.manager.CreateOrUpdate(s.ctx, "duck", RecordInput{
		Username: "alice", Email: "alice@example.com", Score: 1200, News: boolPtr(true),
	}, nil)

	s.clock.Advance(time.Minute)
	record, err := s.manager.CreateOrUpdate(s.ctx, "duck", RecordInput{
		PlayerID: "p-1", Username: "alice", Score: 10,
	}, nil)
	s.Require().NoError(err)

	s.Equal(float64(10), record.Score, "score is not monotonic")
	stored, _ := s.storage.GetPlayerRecord(s.ctx, "duck", "p-1")
	s.Empty(stored.Email)
	s.Nil(stored.News)
	s.Equal(s.clock.Now(), stored.LastUpdated)
}

func (s *ManagerSuite) TestStoredCodesUsedWhenNoClaimsPassed() {
	record, err := s.manager.CreateOrUpdate(s.ctx, "duck", RecordInput{
		Username:    "alice",
		StoredCodes: `["AAA", {"code":"BBB","points":"1000"}, 5]`,
	}, nil)
	s.Require().NoError(err)
	s.Equal([]model.CodeClaim{{Code: "AAA"}, {Code: "BBB", Level: "1000"}, {Code: "CODE-5"}}, record.Codes)
}

func (s *ManagerSuite) TestClaimsWinOverStoredCodes() {
	record, err := s.manager.CreateOrUpdate(s.ctx, "duck", RecordInput{
		Username:    "alice",
		StoredCodes: `["OLD"]`,
	}, []model.CodeClaim{{Code: "NEW", Level: "20"}, {Code: "NEW"}})
	s.Require().NoError(err)
	s.Equal([]model.CodeClaim{{Code: "NEW", Level: "20"}}, record.Codes)
}

func (s *ManagerSuite) TestUnparseableStoredCodesYieldEmptyList() {
	record, err := s.manager.CreateOrUpdate(s.ctx, "duck", RecordInput{
		Username:    "alice",
		StoredCodes: `[broken`,
	}, nil)
	s.Require().NoError(err)
	s.Empty(record.Codes)
}

func (s *ManagerSuite) TestCreateStoreFault() {
	manager := NewManager(&brokenStorage{Storage: s.storage}, s.clock, s.ids, testutil.NopLogger())

	_, err := manager.CreateOrUpdate(s.ctx, "duck", RecordInput{Username: "alice"}, nil)
	s.ErrorIs(err, errWriteFailed)
}

// FetchForSession tests

func (s *ManagerSuite) TestFetchForSession() {
	s.ids.Queue("p-1")
	_, _ = s.manager.CreateOrUpdate(s.ctx, "duck", RecordInput{
		Username: "alice", Email: "alice@example.com", Score: 1200, News: boolPtr(true),
	}, []model.CodeClaim{{Code: "AAA", Level: "20"}, {Code: "BBB", Level: "1000"}})

	view, err := s.manager.FetchForSession(s.ctx, "duck", "alice")
	s.Require().NoError(err)
	s.Equal(&SessionView{
		PlayerID: "p-1",
		Username: "alice",
		Email:    "alice@example.com",
		Score:    1200,
		News:     true,
		Codes:    `["AAA","BBB"]`,
	}, view)

	data, err := json.Marshal(view)
	s.Require().NoError(err)
	s.JSONEq(`{"playerId":"p-1","username":"alice","email":"alice@example.com","score":1200,"news":true,"codes":"[\"AAA\",\"BBB\"]"}`, string(data))
}

func (s *ManagerSuite) TestFetchForSessionDefaults() {
	_ = s.storage.SavePlayerRecord(s.ctx, "duck", &model.PlayerRecord{ID: "p-1", Username: "bob"})

	view, err := s.manager.FetchForSession(s.ctx, "duck", "bob")
	s.Require().NoError(err)
	s.False(view.News)
	s.Zero(view.Score)
	s.Equal("[]", view.Codes)
}

func (s *ManagerSuite) TestFetchForSessionNotFound() {
	_, err := s.manager.FetchForSession(s.ctx, "duck", "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ManagerSuite) TestFetchForSessionDuplicate() {
	_ = s.storage.SavePlayerRecord(s.ctx, "duck", &model.PlayerRecord{ID: "p-1", Username: "alice"})
	_ = s.storage.SavePlayerRecord(s.ctx, "duck", &model.PlayerRecord{ID: "p-2", Username: "alice"})

	_, err := s.manager.FetchForSession(s.ctx, "duck", "alice")
	s.ErrorIs(err, ErrDuplicateUsername)

	matches, err := s.manager.FindByUsername(s.ctx, "duck", "alice")
	s.Require().NoError(err)
	s.Len(matches, 2)
}

// Delete tests

func (s *ManagerSuite) TestDelete() {
	s.ids.Queue("p-1")
	_, _ = s.manager.CreateOrUpdate(s.ctx, "duck", RecordInput{Username: "alice"}, nil)

	s.Require().NoError(s.manager.Delete(s.ctx, "duck", "p-1"))

	exists, err := s.manager.UsernameExists(s.ctx, "duck", "alice")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *ManagerSuite) TestDeleteUnknown() {
	s.NoError(s.manager.Delete(s.ctx, "duck", "nonexistent"))
}

func (s *ManagerSuite) TestDeleteStoreFault() {
	manager := NewManager(&brokenStorage{Storage: s.storage}, s.clock, s.ids, testutil.NopLogger())
	s.ErrorIs(manager.Delete(s.ctx, "duck", "p-1"), errWriteFailed)
}
