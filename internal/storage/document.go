package storage

import (
	"time"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/model"
)

// PlayerDocument is the persisted shape of a player record shared by the
// document-style backends. Codes holds a JSON array of bare code strings.
type PlayerDocument struct {
	Username    string            `json:"username"`
	Email       string            `json:"email"`
	Score       float64           `json:"score"`
	LastUpdated time.Time         `json:"lastUpdated"`
	News        string            `json:"news,omitempty"`
	Codes       string            `json:"codes"`
	CodeLevels  map[string]string `json:"codeLevels,omitempty"`
}

// ToDocument converts a record to its persisted shape
func ToDocument(record *model.PlayerRecord) PlayerDocument {
	doc := PlayerDocument{
		Username:    record.Username,
		Email:       record.Email,
		Score:       record.Score,
		LastUpdated: record.LastUpdated,
		Codes:       model.EncodeCodeList(record.Codes),
	}
	if record.News != nil {
		doc.News = model.NewsValue(*record.News)
	}
	if levels := model.EncodeCodeLevels(record.Codes); len(levels) > 0 {
		doc.CodeLevels = levels
	}
	return doc
}

// ToRecord converts a persisted document back to a record.
// Codes go through the legacy-tolerant decoder.
func (d PlayerDocument) ToRecord(id model.PlayerID) *model.PlayerRecord {
	record := &model.PlayerRecord{
		ID:          id,
		Username:    d.Username,
		Email:       d.Email,
		Score:       d.Score,
		LastUpdated: d.LastUpdated,
		Codes:       model.ApplyCodeLevels(model.DecodeCodeList(d.Codes), d.CodeLevels),
	}
	switch d.News {
	case "Yes":
		news := true
		record.News = &news
	case "No":
		news := false
		record.News = &news
	}
	return record
}
