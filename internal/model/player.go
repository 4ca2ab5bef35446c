package model

import "time"

// PlayerID is the opaque store-generated identifier of a player record
type PlayerID string

// CodeClaim is a redeemed reward code and the point level it was claimed for.
// Level is empty when it cannot be recovered (bare legacy strings).
type CodeClaim struct {
	Code  string `json:"code"`
	Level string `json:"level,omitempty"`
}

// PlayerRecord is one player's persisted identity, score and codes for one game
type PlayerRecord struct {
	ID       PlayerID
	Username string
	Email    string
	Score    float64
	// News is nil when the player never answered the opt-in question
	News        *bool
	Codes       []CodeClaim // unlock order
	LastUpdated time.Time
}

// CodeStrings returns the bare code strings in unlock order
func (r *PlayerRecord) CodeStrings() []string {
	return ClaimCodes(r.Codes)
}

// ClaimedLevels returns the set of level keys already claimed
func (r *PlayerRecord) ClaimedLevels() map[string]struct{} {
	return ClaimedLevels(r.Codes)
}

// Clone returns a deep copy of the record
func (r *PlayerRecord) Clone() *PlayerRecord {
	c := *r
	if r.News != nil {
		news := *r.News
		c.News = &news
	}
	c.Codes = append([]CodeClaim(nil), r.Codes...)
	return &c
}

// ClaimCodes returns the bare code strings of claims
func ClaimCodes(claims []CodeClaim) []string {
	codes := make([]string, len(claims))
	for i, c := range claims {
		codes[i] = c.Code
	}
	return codes
}

// ClaimedLevels returns the set of non-empty level keys in claims
func ClaimedLevels(claims []CodeClaim) map[string]struct{} {
	levels := make(map[string]struct{}, len(claims))
	for _, c := range claims {
		if c.Level != "" {
			levels[c.Level] = struct{}{}
		}
	}
	return levels
}

// NewsValue renders the opt-in flag the way it is stored
func NewsValue(news bool) string {
	if news {
		return "Yes"
	}
	return "No"
}
