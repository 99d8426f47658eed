package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/heartview/spark-backend/internal/database"
	"github.com/heartview/spark-backend/internal/models"
)

// ErrChallengeNotFound means no challenge with that id belongs to the user.
var ErrChallengeNotFound = errors.New("challenge not found")

// CreateChallenge promotes a confirmed candidate into a persisted challenge in
// active status.
func CreateChallenge(ctx context.Context, userID uuid.UUID, pending models.PendingChallenge) (*models.Challenge, error) {
	challenge := &models.Challenge{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       pending.Title,
		Description: pending.Description,
		Deadline:    pending.Deadline,
		Status:      models.ChallengeStatusActive,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := database.PostgresDB.ExecContext(ctx, `
		INSERT INTO challenges (id, user_id, title, description, deadline, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, challenge.ID, challenge.UserID, challenge.Title, challenge.Description,
		challenge.Deadline, challenge.Status, challenge.CreatedAt)
	if err != nil {
		return nil, err
	}

	return challenge, nil
}

// ListChallenges returns the user's challenges, newest first.
func ListChallenges(ctx context.Context, userID uuid.UUID) ([]models.Challenge, error) {
	rows, err := database.PostgresDB.QueryContext(ctx, `
		SELECT id, user_id, title, description, deadline, status, created_at, completed_at
		FROM challenges WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	challenges := make([]models.Challenge, 0)
	for rows.Next() {
		var c models.Challenge
		var completedAt sql.NullTime
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.Description, &c.Deadline,
			&c.Status, &c.CreatedAt, &completedAt); err != nil {
			return nil, err
		}
		if completedAt.Valid {
			t := completedAt.Time
			c.CompletedAt = &t
		}
		challenges = append(challenges, c)
	}

	return challenges, rows.Err()
}

// ToggleCompletion applies the active ⇄ completed transition and returns the
// transition result. completed_at is set exactly when the new status is
// completed and cleared on the way back; skipped challenges return to active
// when toggled.
func ToggleCompletion(status models.ChallengeStatus, now time.Time) (models.ChallengeStatus, *time.Time) {
	if status == models.ChallengeStatusCompleted {
		return models.ChallengeStatusActive, nil
	}
	return models.ChallengeStatusCompleted, &now
}

// ToggleChallenge flips a challenge between active and completed.
func ToggleChallenge(ctx context.Context, userID, challengeID uuid.UUID) (*models.Challenge, error) {
	var status models.ChallengeStatus
	err := database.PostgresDB.QueryRowContext(ctx, `
		SELECT status FROM challenges WHERE id = $1 AND user_id = $2
	`, challengeID, userID).Scan(&status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrChallengeNotFound
		}
		return nil, err
	}

	newStatus, completedAt := ToggleCompletion(status, time.Now().UTC())

	_, err = database.PostgresDB.ExecContext(ctx, `
		UPDATE challenges SET status = $1, completed_at = $2 WHERE id = $3 AND user_id = $4
	`, newStatus, completedAt, challengeID, userID)
	if err != nil {
		return nil, err
	}

	return getChallenge(ctx, userID, challengeID)
}

// SkipChallenge marks a challenge skipped. Skipping clears completed_at since
// the challenge is no longer completed.
func SkipChallenge(ctx context.Context, userID, challengeID uuid.UUID) (*models.Challenge, error) {
	res, err := database.PostgresDB.ExecContext(ctx, `
		UPDATE challenges SET status = $1, completed_at = NULL WHERE id = $2 AND user_id = $3
	`, models.ChallengeStatusSkipped, challengeID, userID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrChallengeNotFound
	}

	return getChallenge(ctx, userID, challengeID)
}

// DeleteChallenge removes a challenge by id. Deleting an id that does not
// exist (or was already deleted) is a no-op, not an error.
func DeleteChallenge(ctx context.Context, userID, challengeID uuid.UUID) error {
	_, err := database.PostgresDB.ExecContext(ctx, `
		DELETE FROM challenges WHERE id = $1 AND user_id = $2
	`, challengeID, userID)
	return err
}

// ChallengeStore persists a user's challenges. PostgresChallenges is the
// production implementation; tests substitute fakes.
type ChallengeStore interface {
	Create(ctx context.Context, userID uuid.UUID, pending models.PendingChallenge) (*models.Challenge, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Challenge, error)
	Toggle(ctx context.Context, userID, challengeID uuid.UUID) (*models.Challenge, error)
	Skip(ctx context.Context, userID, challengeID uuid.UUID) (*models.Challenge, error)
	Delete(ctx context.Context, userID, challengeID uuid.UUID) error
}

// PostgresChallenges is the PostgreSQL-backed ChallengeStore.
type PostgresChallenges struct{}

func (PostgresChallenges) Create(ctx context.Context, userID uuid.UUID, pending models.PendingChallenge) (*models.Challenge, error) {
	return CreateChallenge(ctx, userID, pending)
}

func (PostgresChallenges) List(ctx context.Context, userID uuid.UUID) ([]models.Challenge, error) {
	return ListChallenges(ctx, userID)
}

func (PostgresChallenges) Toggle(ctx context.Context, userID, challengeID uuid.UUID) (*models.Challenge, error) {
	return ToggleChallenge(ctx, userID, challengeID)
}

func (PostgresChallenges) Skip(ctx context.Context, userID, challengeID uuid.UUID) (*models.Challenge, error) {
	return SkipChallenge(ctx, userID, challengeID)
}

func (PostgresChallenges) Delete(ctx context.Context, userID, challengeID uuid.UUID) error {
	return DeleteChallenge(ctx, userID, challengeID)
}

func getChallenge(ctx context.Context, userID, challengeID uuid.UUID) (*models.Challenge, error) {
	var c models.Challenge
	var completedAt sql.NullTime
	err := database.PostgresDB.QueryRowContext(ctx, `
		SELECT id, user_id, title, description, deadline, status, created_at, completed_at
		FROM challenges WHERE id = $1 AND user_id = $2
	`, challengeID, userID).Scan(&c.ID, &c.UserID, &c.Title, &c.Description, &c.Deadline,
		&c.Status, &c.CreatedAt, &completedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrChallengeNotFound
		}
		return nil, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		c.CompletedAt = &t
	}
	return &c, nil
}
