package arcade

import (
	"encoding/json"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/model"
)

// Event names of the realtime protocol
const (
	EventUserData     = "userData"
	EventUserNotFound = "userNotFound"
	EventScoreUpdate  = "scoreUpdate"
	EventDeleteData   = "deleteData"
	EventLeaderboard  = "leaderboard"
	EventError        = "error"
)

// Client-facing error messages
const (
	MsgUsernameRequired    = "Username is required"
	MsgInvalidUsername     = "Invalid username"
	MsgInvalidScore        = "Invalid score"
	MsgUsernameTaken       = "Username already taken"
	MsgPlayerIDRequired    = "Player ID is required"
	MsgDeleteFailed        = "Failed to delete data"
	MsgLeaderboardFailed   = "Failed to fetch leaderboard"
	MsgInternalServerError = "Internal server error"
	MsgInvalidPayload      = "Invalid payload"
	MsgTooManyRequests     = "Too many requests"
)

// LeaderboardSize caps the number of leaderboard entries
const LeaderboardSize = 100

// Push is a server-initiated event sent back on the requesting session
type Push struct {
	Event string
	Data  any
}

// ErrorMessage is the payload of an error push
type ErrorMessage struct {
	Message string `json:"message"`
}

type UserDataRequest struct {
	Username string `json:"username"`
}

// ScoreUpdateRequest is a score submission. Score and News are kept raw so
// their JSON types can be checked; remember and newUser are client-local and
// ignored.
type ScoreUpdateRequest struct {
	Username string          `json:"username"`
	Email    string          `json:"email,omitempty"`
	Score    json.RawMessage `json:"score"`
	News     json.RawMessage `json:"news,omitempty"`
	PlayerID model.PlayerID  `json:"playerId,omitempty"`
	// Codes are the caller's known codes in any accepted shape
	Codes []any `json:"codes,omitempty"`
}

// ScoreUpdateAck acknowledges a score submission
type ScoreUpdateAck struct {
	Success       bool           `json:"success"`
	Unlocked      string         `json:"unlocked,omitempty"`
	Codes         []string       `json:"codes,omitempty"`
	PlayerID      model.PlayerID `json:"playerId,omitempty"`
	Error         string         `json:"error,omitempty"`
	UsernameTaken bool           `json:"usernameTaken,omitempty"`
}

// MarshalJSON always renders codes as an array on success and omits it on failure
func (a ScoreUpdateAck) MarshalJSON() ([]byte, error) {
	type wire struct {
		Success       bool           `json:"success"`
		Unlocked      string         `json:"unlocked,omitempty"`
		Codes         *[]string      `json:"codes,omitempty"`
		PlayerID      model.PlayerID `json:"playerId,omitempty"`
		Error         string         `json:"error,omitempty"`
		UsernameTaken bool           `json:"usernameTaken,omitempty"`
	}
	w := wire{
		Success:       a.Success,
		Unlocked:      a.Unlocked,
		PlayerID:      a.PlayerID,
		Error:         a.Error,
		UsernameTaken: a.UsernameTaken,
	}
	if a.Success {
		codes := a.Codes
		if codes == nil {
			codes = []string{}
		}
		w.Codes = &codes
	}
	return json.Marshal(w)
}

type DeleteDataRequest struct {
	PlayerID model.PlayerID `json:"playerId"`
}

type DeleteDataAck struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
