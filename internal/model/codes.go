package model

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cast"
)

// legacyNumericPrefix is prepended to codes that were stored as bare numbers
const legacyNumericPrefix = "CODE-"

// NormalizeCodeEntries converts decoded JSON code entries to claims.
//
// Accepted shapes are bare strings, legacy {code, points} objects (the level
// is recovered from points) and legacy numbers (rendered as CODE-{n}).
// Anything else and empty codes are dropped. Duplicates keep their first
// position.
func NormalizeCodeEntries(entries []any) []CodeClaim {
	claims := make([]CodeClaim, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		claim, ok := normalizeCodeEntry(entry)
		if !ok {
			continue
		}
		if _, dup := seen[claim.Code]; dup {
			continue
		}
		seen[claim.Code] = struct{}{}
		claims = append(claims, claim)
	}
	return claims
}

// NormalizeClaims applies the same de-duplication rules to typed claims
func NormalizeClaims(claims []CodeClaim) []CodeClaim {
	entries := make([]any, len(claims))
	for i, c := range claims {
		entries[i] = c
	}
	return NormalizeCodeEntries(entries)
}

func normalizeCodeEntry(entry any) (CodeClaim, bool) {
	switch v := entry.(type) {
	case CodeClaim:
		return v, v.Code != ""
	case string:
		return CodeClaim{Code: v}, v != ""
	case float64, json.Number, int, int64:
		n, err := cast.ToStringE(v)
		if err != nil || n == "" {
			return CodeClaim{}, false
		}
		return CodeClaim{Code: legacyNumericPrefix + n}, true
	case map[string]any:
		code, err := cast.ToStringE(v["code"])
		if err != nil || code == "" {
			return CodeClaim{}, false
		}
		claim := CodeClaim{Code: code}
		if points, ok := v["points"]; ok && points != nil {
			if level, err := cast.ToStringE(points); err == nil {
				claim.Level = level
			}
		}
		return claim, true
	}
	return CodeClaim{}, false
}

// DecodeCodeList parses the stored JSON representation of a code list.
// Parse failures and absent values yield an empty list; a single JSON string
// becomes a one-element list.
func DecodeCodeList(raw string) []CodeClaim {
	if strings.TrimSpace(raw) == "" {
		return []CodeClaim{}
	}

	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return []CodeClaim{}
	}

	switch v := parsed.(type) {
	case []any:
		return NormalizeCodeEntries(v)
	case string:
		if v == "" {
			return []CodeClaim{}
		}
		return []CodeClaim{{Code: v}}
	}
	return []CodeClaim{}
}

// EncodeCodeList renders claims in the stored form: a JSON array of bare strings
func EncodeCodeList(claims []CodeClaim) string {
	data, _ := json.Marshal(ClaimCodes(claims))
	return string(data)
}

// EncodeCodeLevels returns the code -> level index persisted next to the code list
func EncodeCodeLevels(claims []CodeClaim) map[string]string {
	levels := make(map[string]string, len(claims))
	for _, c := range claims {
		if c.Level != "" {
			levels[c.Code] = c.Level
		}
	}
	return levels
}

// ApplyCodeLevels fills missing claim levels from a persisted code -> level index
func ApplyCodeLevels(claims []CodeClaim, levels map[string]string) []CodeClaim {
	for i := range claims {
		if claims[i].Level != "" {
			continue
		}
		if level, ok := levels[claims[i].Code]; ok {
			claims[i].Level = level
		}
	}
	return claims
}

// MergeClaims appends the claims of extra whose code is not already in base
func MergeClaims(base, extra []CodeClaim) []CodeClaim {
	merged := append([]CodeClaim(nil), base...)
	index := make(map[string]int, len(base))
	for i, c := range merged {
		index[c.Code] = i
	}
	for _, c := range extra {
		if i, ok := index[c.Code]; ok {
			if merged[i].Level == "" {
				merged[i].Level = c.Level
			}
			continue
		}
		index[c.Code] = len(merged)
		merged = append(merged, c)
	}
	return merged
}
