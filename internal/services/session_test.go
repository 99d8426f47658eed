package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	issuedAt := time.Date(2026, 3, 2, 8, 15, 42, 0, time.UTC)

	token := EncodeSessionToken(userID, issuedAt)
	if token == "" {
		t.Fatal("empty token")
	}

	gotID, gotAt, err := DecodeSessionToken(token)
	if err != nil {
		t.Fatalf("DecodeSessionToken: %v", err)
	}
	if gotID != userID {
		t.Errorf("user id = %s, want %s", gotID, userID)
	}
	if !gotAt.Equal(issuedAt) {
		t.Errorf("issued at = %v, want %v", gotAt, issuedAt)
	}
}

func TestDecodeSessionToken_Malformed(t *testing.T) {
	tokens := []string{
		"",
		"not base64 at all!!",
		"aGVsbG8",          // valid base64, no separator
		"bm90LXV1aWR8MTIz", // "not-uuid|123"
	}
	for _, token := range tokens {
		if _, _, err := DecodeSessionToken(token); err == nil {
			t.Errorf("DecodeSessionToken(%q) succeeded, want error", token)
		}
	}
}
