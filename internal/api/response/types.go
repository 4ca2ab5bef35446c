package response

import (
	"time"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/model"
)

// Health is the response of the health endpoint
type Health struct {
	Status string `json:"status"`
}

// CodeClaim is a claimed code in API responses
type CodeClaim struct {
	Code  string `json:"code"`
	Level string `json:"level,omitempty"`
}

// PlayerRecord is a stored player record in admin responses
type PlayerRecord struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Score       float64     `json:"score"`
	News        *bool       `json:"news"`
	Codes       []CodeClaim `json:"codes"`
	LastUpdated time.Time   `json:"last_updated"`
}

// PlayerRecordFromModel converts a model.PlayerRecord
func PlayerRecordFromModel(r *model.PlayerRecord) PlayerRecord {
	codes := make([]CodeClaim, len(r.Codes))
	for i, c := range r.Codes {
		codes[i] = CodeClaim{Code: c.Code, Level: c.Level}
	}
	return PlayerRecord{
		ID:          string(r.ID),
		Username:    r.Username,
		Email:       r.Email,
		Score:       r.Score,
		News:        r.News,
		Codes:       codes,
		LastUpdated: r.LastUpdated,
	}
}

// PlayerRecordsFromModel converts a list of records, never returning nil
func PlayerRecordsFromModel(records []*model.PlayerRecord) []PlayerRecord {
	out := make([]PlayerRecord, len(records))
	for i, r := range records {
		out[i] = PlayerRecordFromModel(r)
	}
	return out
}

// ProvisionResult is the response after adding codes to a pool
type ProvisionResult struct {
	Level string `json:"level"`
	Added int    `json:"added"`
}
