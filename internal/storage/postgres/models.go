package postgres

import (
	"encoding/json"
	"time"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/model"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/storage"
)

// playerRecordRow is the player_records table
type playerRecordRow struct {
	GameID      string    `gorm:"primaryKey;size:64"`
	PlayerID    string    `gorm:"primaryKey;size:64"`
	Username    string    `gorm:"size:64;not null;index:idx_player_records_username"`
	Email       string    `gorm:"size:320;not null;default:''"`
	Score       float64   `gorm:"not null;default:0"`
	News        string    `gorm:"size:3"`
	Codes       string    `gorm:"type:text;not null;default:'[]'"`
	CodeLevels  string    `gorm:"type:text"`
	LastUpdated time.Time `gorm:"not null"`
}

func (playerRecordRow) TableName() string { return "player_records" }

// rewardCodeRow is the reward_codes table. Position is the entry's index in its pool.
type rewardCodeRow struct {
	GameID   string `gorm:"primaryKey;size:64"`
	Level    string `gorm:"primaryKey;size:32"`
	Position int    `gorm:"primaryKey"`
	Code     string `gorm:"size:128;not null"`
	Used     bool   `gorm:"not null;default:false"`
}

func (rewardCodeRow) TableName() string { return "reward_codes" }

func toPlayerRow(gameID model.GameID, record *model.PlayerRecord) (playerRecordRow, error) {
	doc := storage.ToDocument(record)
	row := playerRecordRow{
		GameID:      string(gameID),
		PlayerID:    string(record.ID),
		Username:    doc.Username,
		Email:       doc.Email,
		Score:       doc.Score,
		News:        doc.News,
		Codes:       doc.Codes,
		LastUpdated: doc.LastUpdated,
	}
	if len(doc.CodeLevels) > 0 {
		levels, err := json.Marshal(doc.CodeLevels)
		if err != nil {
			return playerRecordRow{}, err
		}
		row.CodeLevels = string(levels)
	}
	return row, nil
}

func (r playerRecordRow) toRecord() *model.PlayerRecord {
	doc := storage.PlayerDocument{
		Username:    r.Username,
		Email:       r.Email,
		Score:       r.Score,
		LastUpdated: r.LastUpdated,
		News:        r.News,
		Codes:       r.Codes,
	}
	if r.CodeLevels != "" {
		// A corrupt level index only loses level information
		_ = json.Unmarshal([]byte(r.CodeLevels), &doc.CodeLevels)
	}
	return doc.ToRecord(model.PlayerID(r.PlayerID))
}

func toRecords(rows []playerRecordRow) []*model.PlayerRecord {
	records := make([]*model.PlayerRecord, len(rows))
	for i, row := range rows {
		records[i] = row.toRecord()
	}
	return records
}

func toRewardCodes(rows []rewardCodeRow) []model.RewardCode {
	pool := make([]model.RewardCode, len(rows))
	for i, row := range rows {
		pool[i] = model.RewardCode{Code: row.Code, Used: row.Used}
	}
	return pool
}
