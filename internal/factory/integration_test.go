package factory

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/model"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/services/arcade"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/services/records"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.Require().NoError(s.app.Close())
}

func (s *IntegrationSuite) provision(level model.PointLevel, codes ...string) {
	added, err := s.app.CodeService.Provision(s.ctx, s.app.Game.ID, level, codes)
	s.Require().NoError(err)
	s.Require().Equal(len(codes), added)
}

func (s *IntegrationSuite) submit(req arcade.ScoreUpdateRequest) arcade.ScoreUpdateAck {
	return s.app.ArcadeService.ScoreUpdate(s.ctx, req)
}

func rawScore(v float64) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

// Test: A player climbs through every level, one unlock per submission
func (s *IntegrationSuite) TestPlayerClimbsEveryLevel() {
	s.provision(20, "DUCK-20-A", "DUCK-20-B")
	s.provision(1000, "DUCK-1K-A")
	s.provision(5000, "DUCK-5K-A")

	// Step 1: first submission creates the record and unlocks the first level
	ack := s.submit(arcade.ScoreUpdateRequest{Username: "alice", Score: rawScore(25)})
	s.Require().True(ack.Success)
	s.Equal("DUCK-20-A", ack.Unlocked)
	s.Equal(model.PlayerID("player-1"), ack.PlayerID)

	// Step 2: a big jump still unlocks only one level
	ack = s.submit(arcade.ScoreUpdateRequest{Username: "alice", Score: rawScore(6000), PlayerID: ack.PlayerID})
	s.Require().True(ack.Success)
	s.Equal("DUCK-1K-A", ack.Unlocked)
	s.Equal([]string{"DUCK-20-A", "DUCK-1K-A"}, ack.Codes)

	// Step 3: the next submission picks up the remaining level
	ack = s.submit(arcade.ScoreUpdateRequest{Username: "alice", Score: rawScore(6000), PlayerID: ack.PlayerID})
	s.Equal("DUCK-5K-A", ack.Unlocked)

	// Step 4: nothing left to unlock
	ack = s.submit(arcade.ScoreUpdateRequest{Username: "alice", Score: rawScore(7000), PlayerID: ack.PlayerID})
	s.True(ack.Success)
	s.Empty(ack.Unlocked)
	s.Len(ack.Codes, 3)

	stats, err := s.app.CodeService.Stats(s.ctx, s.app.Game.ID, s.app.Game.PointLevels)
	s.Require().NoError(err)
	s.Equal(1, stats[0].Unused)
	s.Equal(0, stats[1].Unused)
	s.Equal(0, stats[2].Unused)
}

// Test: The session view and leaderboard reflect persisted state
func (s *IntegrationSuite) TestSessionViewAndLeaderboard() {
	s.provision(20, "DUCK-20-A")

	ack := s.submit(arcade.ScoreUpdateRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Score:    rawScore(30),
		News:     json.RawMessage(`"true"`),
	})
	s.Require().True(ack.Success)
	s.submit(arcade.ScoreUpdateRequest{Username: "bob", Score: rawScore(90)})

	push := s.app.ArcadeService.UserData(s.ctx, arcade.UserDataRequest{Username: "alice"})
	s.Equal(arcade.EventUserData, push.Event)
	view := push.Data.(*records.SessionView)
	s.Equal(`["DUCK-20-A"]`, view.Codes)
	s.True(view.News)
	s.Equal(float64(30), view.Score)

	board, err := s.app.ArcadeService.TopScores(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.LeaderboardEntry{{Username: "bob", Score: 90}, {Username: "alice", Score: 30}}, board)
}

// Test: A second player cannot take an existing username, and no code is spent
func (s *IntegrationSuite) TestUsernameUniquenessProtectsPool() {
	s.provision(20, "DUCK-20-A", "DUCK-20-B")

	s.Require().True(s.submit(arcade.ScoreUpdateRequest{Username: "alice", Score: rawScore(25)}).Success)

	ack := s.submit(arcade.ScoreUpdateRequest{Username: "alice", Score: rawScore(25)})
	s.False(ack.Success)
	s.True(ack.UsernameTaken)

	stats, err := s.app.CodeService.Stats(s.ctx, s.app.Game.ID, []model.PointLevel{20})
	s.Require().NoError(err)
	s.Equal(1, stats[0].Unused)
}

// Test: Deleting data removes the player from lookups and the leaderboard
func (s *IntegrationSuite) TestDeleteData() {
	ack := s.submit(arcade.ScoreUpdateRequest{Username: "alice", Score: rawScore(10)})
	s.Require().True(ack.Success)

	del := s.app.ArcadeService.DeleteData(s.ctx, arcade.DeleteDataRequest{PlayerID: ack.PlayerID})
	s.True(del.Success)

	push := s.app.ArcadeService.UserData(s.ctx, arcade.UserDataRequest{Username: "alice"})
	s.Equal(arcade.EventUserNotFound, push.Event)

	board, err := s.app.ArcadeService.TopScores(s.ctx)
	s.Require().NoError(err)
	s.Empty(board)

	// The name is free again
	ack = s.submit(arcade.ScoreUpdateRequest{Username: "alice", Score: rawScore(1)})
	s.True(ack.Success)
}

func TestNewRejectsUnknownStorage(t *testing.T) {
	_, err := New(Config{StorageType: "etcd"})
	if err == nil {
		t.Fatal("expected an error for an unknown storage type")
	}
}

func TestNewRequiresBackendConfig(t *testing.T) {
	for _, storageType := range []string{StorageTypeRedis, StorageTypePostgres} {
		if _, err := New(Config{StorageType: storageType}); err == nil {
			t.Fatalf("expected an error for %s without config", storageType)
		}
	}
}

func TestNewDefaults(t *testing.T) {
	app, err := New(Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = app.Close() }()

	if app.Game.ID != model.DefaultGameConfig().ID {
		t.Fatalf("unexpected game %q", app.Game.ID)
	}
}
