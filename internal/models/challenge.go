package models

import (
	"time"

	"github.com/google/uuid"
)

// ChallengeStatus is the lifecycle state of a weekly challenge.
// Valid values: "active", "completed", "skipped".
type ChallengeStatus string

const (
	ChallengeStatusActive    ChallengeStatus = "active"
	ChallengeStatusCompleted ChallengeStatus = "completed"
	ChallengeStatusSkipped   ChallengeStatus = "skipped"
)

// Challenge is a to-do item promoted from a coach reply and persisted in PostgreSQL.
// CompletedAt is non-nil exactly when Status is "completed".
type Challenge struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Deadline    string          `json:"deadline"`
	Status      ChallengeStatus `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// PendingChallenge is an unconfirmed extraction candidate. It lives in Redis
// under the owning user's id until the user confirms or dismisses it; a newer
// candidate overwrites any unconfirmed prior one.
type PendingChallenge struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Deadline    string    `json:"deadline"`
	ExtractedAt time.Time `json:"extracted_at"`
}
