package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/heartview/spark-backend/internal/database"
	"github.com/heartview/spark-backend/pkg/utils"
)

var (
	// ErrInvalidCredentials means the username/password pair did not match.
	// Callers must not reveal which of the two was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrAccountInactive means the account exists but has been deactivated.
	ErrAccountInactive = errors.New("account is inactive")
)

// Identity is the result of a successful credential check.
type Identity struct {
	UserID      uuid.UUID
	Username    string
	DisplayName string
	AvatarURL   string
}

// CredentialValidator checks a username/password pair. Implementations must
// return ErrInvalidCredentials for any mismatch and reserve other errors for
// backend failures.
type CredentialValidator interface {
	Validate(ctx context.Context, username, password string) (*Identity, error)
}

// PostgresCredentials validates against the users table using argon2id hashes.
type PostgresCredentials struct{}

func (PostgresCredentials) Validate(ctx context.Context, username, password string) (*Identity, error) {
	normalized := utils.NormalizeUsername(username)

	var userID uuid.UUID
	var storedUsername, displayName string
	var passwordHash, avatarURL sql.NullString
	var isActive bool

	err := database.PostgresDB.QueryRowContext(ctx, `
		SELECT id, username, display_name, password_hash, avatar_url, is_active
		FROM users WHERE LOWER(username) = $1
	`, normalized).Scan(&userID, &storedUsername, &displayName, &passwordHash, &avatarURL, &isActive)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !isActive {
		return nil, ErrAccountInactive
	}

	// OAuth-only accounts have no password hash and cannot log in by password.
	if !passwordHash.Valid {
		return nil, ErrInvalidCredentials
	}

	valid, err := utils.VerifyPassword(password, passwordHash.String)
	if err != nil || !valid {
		return nil, ErrInvalidCredentials
	}

	return &Identity{
		UserID:      userID,
		Username:    storedUsername,
		DisplayName: displayName,
		AvatarURL:   avatarURL.String,
	}, nil
}

// StaticCredentials is an in-process username → password table. Used when
// CREDENTIALS_BACKEND=static and in tests; user ids are derived from the
// username so they stay stable across restarts.
type StaticCredentials map[string]string

func (s StaticCredentials) Validate(_ context.Context, username, password string) (*Identity, error) {
	normalized := utils.NormalizeUsername(username)
	stored, ok := s[normalized]
	if !ok || stored != password {
		return nil, ErrInvalidCredentials
	}
	return &Identity{
		UserID:   uuid.NewSHA1(uuid.NameSpaceOID, []byte("heartview:"+normalized)),
		Username: normalized,
	}, nil
}
