package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/model"
)

func TestPlayerRowRoundTrip(t *testing.T) {
	news := true
	record := &model.PlayerRecord{
		ID:          "player-1",
		Username:    "alice",
		Email:       "alice@example.com",
		Score:       25,
		News:        &news,
		Codes:       []model.CodeClaim{{Code: "A1", Level: "20"}, {Code: "OLD"}},
		LastUpdated: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	row, err := toPlayerRow("duck", record)
	require.NoError(t, err)
	assert.Equal(t, "duck", row.GameID)
	assert.Equal(t, "player-1", row.PlayerID)
	assert.Equal(t, "Yes", row.News)
	assert.Equal(t, `["A1","OLD"]`, row.Codes)
	assert.JSONEq(t, `{"A1":"20"}`, row.CodeLevels)

	assert.Equal(t, record, row.toRecord())
}

func TestPlayerRowWithoutLevels(t *testing.T) {
	row, err := toPlayerRow("duck", &model.PlayerRecord{ID: "p", Username: "bob"})
	require.NoError(t, err)
	assert.Empty(t, row.CodeLevels)
	assert.Empty(t, row.News)
	assert.Equal(t, "[]", row.Codes)
}

func TestPlayerRowCorruptLevels(t *testing.T) {
	row := playerRecordRow{
		PlayerID:   "p",
		Username:   "bob",
		Codes:      `["A1"]`,
		CodeLevels: "{broken",
	}

	record := row.toRecord()
	assert.Equal(t, []model.CodeClaim{{Code: "A1"}}, record.Codes)
}

func TestToRewardCodes(t *testing.T) {
	rows := []rewardCodeRow{
		{Position: 0, Code: "A1", Used: true},
		{Position: 1, Code: "A2"},
	}
	assert.Equal(t, []model.RewardCode{{Code: "A1", Used: true}, {Code: "A2"}}, toRewardCodes(rows))
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "player_records", playerRecordRow{}.TableName())
	assert.Equal(t, "reward_codes", rewardCodeRow{}.TableName())
}
