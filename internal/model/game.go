package model

import (
	"strconv"
)

// GameID identifies a game's namespace in both stores
type GameID string

// PointLevel is a score threshold at which one reward code can be unlocked
type PointLevel float64

// Key returns the canonical store key for the level ("20", "1000", "2.5")
func (l PointLevel) Key() string {
	return strconv.FormatFloat(float64(l), 'f', -1, 64)
}

// GameConfig is the static per-deployment game configuration
type GameConfig struct {
	ID GameID
	// PointLevels are evaluated in this order, not sorted by value
	PointLevels []PointLevel
}

// DefaultGameConfig returns the configuration of the original duck game
func DefaultGameConfig() GameConfig {
	return GameConfig{
		ID:          "duck",
		PointLevels: []PointLevel{20, 1000, 5000},
	}
}

// HasLevel reports whether key names one of the configured point levels
func (c GameConfig) HasLevel(key string) bool {
	_, ok := c.LevelByKey(key)
	return ok
}

// LevelByKey returns the configured point level whose Key is key
func (c GameConfig) LevelByKey(key string) (PointLevel, bool) {
	for _, l := range c.PointLevels {
		if l.Key() == key {
			return l, true
		}
	}
	return 0, false
}

// RewardCode is one entry of a per-level code pool
type RewardCode struct {
	Code string `json:"code"`
	Used bool   `json:"used"`
}

// LeaderboardEntry is the public projection of a player record
type LeaderboardEntry struct {
	Username string  `json:"username"`
	Score    float64 `json:"score"`
}
