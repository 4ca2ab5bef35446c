package redis

import (
	"fmt"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/model"
)

const defaultKeyPrefix = "rabble"

// keyspace builds the keys for one prefix
type keyspace string

// scoreKey returns the key holding one player record document
func (k keyspace) scoreKey(gameID model.GameID, playerID model.PlayerID) string {
	return fmt.Sprintf("%s:games:%s:scores:%s", k, gameID, playerID)
}

// scoresIndexKey returns the key of the SET of player IDs for a game
func (k keyspace) scoresIndexKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:games:%s:idx:scores", k, gameID)
}

// usernameIndexKey returns the key of the SET of player IDs holding a username
func (k keyspace) usernameIndexKey(gameID model.GameID, username string) string {
	return fmt.Sprintf("%s:games:%s:idx:username:%s", k, gameID, username)
}

// codePoolKey returns the key of the LIST of code entries for a level
func (k keyspace) codePoolKey(gameID model.GameID, level string) string {
	return fmt.Sprintf("%s:games:%s:codes:available:%s", k, gameID, level)
}
