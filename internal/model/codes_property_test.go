package model

import (
	"testing"

	"pgregory.net/rapid"
)

func claimGen() *rapid.Generator[CodeClaim] {
	return rapid.Custom(func(t *rapid.T) CodeClaim {
		return CodeClaim{
			Code:  rapid.StringMatching(`[A-Z0-9-]{0,8}`).Draw(t, "code"),
			Level: rapid.SampledFrom([]string{"", "20", "1000", "5000"}).Draw(t, "level"),
		}
	})
}

func TestStoredCodeListRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		claims := NormalizeClaims(rapid.SliceOf(claimGen()).Draw(t, "claims"))

		decoded := ApplyCodeLevels(DecodeCodeList(EncodeCodeList(claims)), EncodeCodeLevels(claims))

		if len(decoded) != len(claims) {
			t.Fatalf("decoded %d claims, want %d", len(decoded), len(claims))
		}
		for i := range claims {
			if decoded[i] != claims[i] {
				t.Fatalf("claim %d: got %+v, want %+v", i, decoded[i], claims[i])
			}
		}
	})
}

func TestNormalizeClaimsIsDuplicateFree(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		claims := NormalizeClaims(rapid.SliceOf(claimGen()).Draw(t, "claims"))

		seen := make(map[string]struct{}, len(claims))
		for _, c := range claims {
			if c.Code == "" {
				t.Fatalf("empty code kept")
			}
			if _, dup := seen[c.Code]; dup {
				t.Fatalf("duplicate code %q", c.Code)
			}
			seen[c.Code] = struct{}{}
		}

		again := NormalizeClaims(claims)
		if len(again) != len(claims) {
			t.Fatalf("normalizing twice changed the list")
		}
	})
}

func TestMergeClaimsKeepsBase(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := NormalizeClaims(rapid.SliceOf(claimGen()).Draw(t, "base"))
		extra := NormalizeClaims(rapid.SliceOf(claimGen()).Draw(t, "extra"))

		merged := MergeClaims(base, extra)
		if len(merged) < len(base) {
			t.Fatalf("merge dropped claims")
		}
		for i, c := range base {
			if merged[i].Code != c.Code {
				t.Fatalf("position %d: got %q, want %q", i, merged[i].Code, c.Code)
			}
		}
		if len(NormalizeClaims(merged)) != len(merged) {
			t.Fatalf("merge produced duplicates")
		}
	})
}
