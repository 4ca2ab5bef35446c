package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/dependencies/clock"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/dependencies/idgen"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/model"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/storage"
)

var (
	ErrUsernameRequired  = errors.New("username is required")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrDuplicateUsername = errors.New("username is held by more than one player")
)

// RecordInput carries the caller-supplied fields of a record write
type RecordInput struct {
	// PlayerID is empty for a first submission
	PlayerID model.PlayerID
	Username string
	Email    string
	Score    float64
	// News is nil when the caller did not answer the opt-in question
	News *bool
	// StoredCodes is a JSON code list used when no claims are passed
	StoredCodes string
}

// SessionView is the record as pushed to a client looking itself up
type SessionView struct {
	PlayerID model.PlayerID `json:"playerId"`
	Username string         `json:"username"`
	Email    string         `json:"email"`
	Score    float64        `json:"score"`
	News     bool           `json:"news"`
	// Codes is a JSON-encoded array of bare code strings
	Codes string `json:"codes"`
}

// Manager owns reads and writes of player records
type Manager struct {
	storage storage.Storage
	clock   clock.Clock
	ids     idgen.Generator
	logger  *slog.Logger
}

// NewManager creates a new record Manager
func NewManager(
	storage storage.Storage,
	clock clock.Clock,
	ids idgen.Generator,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		storage: storage,
		clock:   clock,
		ids:     ids,
		logger:  logger.With(slog.String("component", "record-manager")),
	}
}

// UsernameExists reports whether any record of the game has exactly username
func (m *Manager) UsernameExists(ctx context.Context, gameID model.GameID, username string) (bool, error) {
	matches, err := m.storage.FindPlayerRecordsByUsername(ctx, gameID, username)
	if err != nil {
		return false, fmt.Errorf("query username: %w", err)
	}
	return len(matches) > 0, nil
}

// Load reads one record
func (m *Manager) Load(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (*model.PlayerRecord, error) {
	return m.storage.GetPlayerRecord(ctx, gameID, playerID)
}

// CreateOrUpdate writes the full record for input, replacing any previous
// version. A new player gets a fresh ID once the username is known to be free.
// Non-empty codes replace the record's code list; otherwise input.StoredCodes
// is decoded.
func (m *Manager) CreateOrUpdate(
	ctx context.Context,
	gameID model.GameID,
	input RecordInput,
	codes []model.CodeClaim,
) (*model.PlayerRecord, error) {
	if input.Username == "" {
		return nil, ErrUsernameRequired
	}

	playerID := input.PlayerID
	if playerID == "" {
		exists, err := m.UsernameExists(ctx, gameID, input.Username)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrUsernameTaken
		}
		playerID = model.PlayerID(m.ids.NewID())
	}

	var claims []model.CodeClaim
	if len(codes) > 0 {
		claims = model.NormalizeClaims(codes)
	} else {
		claims = model.DecodeCodeList(input.StoredCodes)
	}

	record := &model.PlayerRecord{
		ID:          playerID,
		Username:    input.Username,
		Email:       input.Email,
		Score:       input.Score,
		Codes:       claims,
		LastUpdated: m.clock.Now(),
	}
	if input.News != nil {
		news := *input.News
		record.News = &news
	}

	if err := m.storage.SavePlayerRecord(ctx, gameID, record); err != nil {
		return nil, fmt.Errorf("save player record: %w", err)
	}

	m.logger.Info("player record stored",
		slog.String("game_id", string(gameID)),
		slog.String("player_id", string(playerID)),
		slog.Bool("new_player", input.PlayerID == ""),
		slog.Int("codes", len(claims)))
	return record, nil
}

// FetchForSession looks a player up by exact username.
// More than one match is reported as ErrDuplicateUsername.
func (m *Manager) FetchForSession(ctx context.Context, gameID model.GameID, username string) (*SessionView, error) {
	matches, err := m.storage.FindPlayerRecordsByUsername(ctx, gameID, username)
	if err != nil {
		return nil, fmt.Errorf("query username: %w", err)
	}

	switch len(matches) {
	case 0:
		return nil, model.ErrPlayerNotFound
	case 1:
	default:
		ids := make([]string, len(matches))
		for i, r := range matches {
			ids[i] = string(r.ID)
		}
		m.logger.Warn("duplicate username",
			slog.String("game_id", string(gameID)),
			slog.String("username", username),
			slog.Any("player_ids", ids))
		return nil, ErrDuplicateUsername
	}

	record := matches[0]
	codes, err := json.Marshal(record.CodeStrings())
	if err != nil {
		return nil, err
	}

	view := &SessionView{
		PlayerID: record.ID,
		Username: record.Username,
		Email:    record.Email,
		Score:    record.Score,
		Codes:    string(codes),
	}
	if record.News != nil {
		view.News = *record.News
	}
	return view, nil
}

// FindByUsername returns every record holding username
func (m *Manager) FindByUsername(ctx context.Context, gameID model.GameID, username string) ([]*model.PlayerRecord, error) {
	return m.storage.FindPlayerRecordsByUsername(ctx, gameID, username)
}

// List returns every record of the game
func (m *Manager) List(ctx context.Context, gameID model.GameID) ([]*model.PlayerRecord, error) {
	return m.storage.ListPlayerRecords(ctx, gameID)
}

// Delete removes a record. Unknown IDs are not an error.
func (m *Manager) Delete(ctx context.Context, gameID model.GameID, playerID model.PlayerID) error {
	if err := m.storage.DeletePlayerRecord(ctx, gameID, playerID); err != nil {
		return fmt.Errorf("delete player record: %w", err)
	}
	m.logger.Info("player record deleted",
		slog.String("game_id", string(gameID)),
		slog.String("player_id", string(playerID)))
	return nil
}
