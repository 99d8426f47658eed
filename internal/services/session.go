package services

import (
	"context"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartview/spark-backend/internal/database"
)

const (
	// SessionDuration is 7 days.
	SessionDuration = 7 * 24 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for sessions.
	SessionKeyPrefix = "session:"
	// UserSessionKeyPrefix is the Redis key prefix for user->session mapping.
	UserSessionKeyPrefix = "user_session:"
)

var ErrMalformedToken = errors.New("malformed session token")

// EncodeSessionToken builds the opaque session token: base64 over
// "<user id>|<issued-at unix>". The token is unsigned and reversible; the
// server treats presence in Redis as the only validity check.
func EncodeSessionToken(userID uuid.UUID, issuedAt time.Time) string {
	payload := userID.String() + "|" + strconv.FormatInt(issuedAt.Unix(), 10)
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// DecodeSessionToken reverses EncodeSessionToken.
func DecodeSessionToken(token string) (uuid.UUID, time.Time, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return uuid.Nil, time.Time{}, ErrMalformedToken
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return uuid.Nil, time.Time{}, ErrMalformedToken
	}
	userID, err := uuid.Parse(parts[0])
	if err != nil {
		return uuid.Nil, time.Time{}, ErrMalformedToken
	}
	unix, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return uuid.Nil, time.Time{}, ErrMalformedToken
	}
	return userID, time.Unix(unix, 0).UTC(), nil
}

// CreateSession mints a session token for a user and registers it in Redis.
// Any existing session for the user is invalidated first so the 7-day window
// restarts from this login.
func CreateSession(ctx context.Context, userID uuid.UUID) (string, error) {
	InvalidateUserSessions(ctx, userID)

	token := EncodeSessionToken(userID, time.Now().UTC())

	sessionKey := SessionKeyPrefix + token
	userSessionKey := UserSessionKeyPrefix + userID.String()

	if err := database.RedisClient.Set(ctx, sessionKey, userID.String(), SessionDuration).Err(); err != nil {
		return "", err
	}
	if err := database.RedisClient.Set(ctx, userSessionKey, token, SessionDuration).Err(); err != nil {
		return "", err
	}

	return token, nil
}

// ValidateSession checks whether a session token is registered and returns the
// user id it belongs to.
func ValidateSession(ctx context.Context, token string) (uuid.UUID, bool, error) {
	if token == "" {
		return uuid.Nil, false, nil
	}

	userIDStr, err := database.RedisClient.Get(ctx, SessionKeyPrefix+token).Result()
	if err != nil {
		return uuid.Nil, false, nil
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false, err
	}

	return userID, true, nil
}

// InvalidateSession removes a session from Redis (logout).
func InvalidateSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	sessionKey := SessionKeyPrefix + token
	userIDStr, err := database.RedisClient.Get(ctx, sessionKey).Result()
	if err == nil && userIDStr != "" {
		database.RedisClient.Del(ctx, UserSessionKeyPrefix+userIDStr)
	}

	return database.RedisClient.Del(ctx, sessionKey).Err()
}

// SessionStore issues and checks session tokens. The Redis implementation is
// the only one in production; tests substitute fakes.
type SessionStore interface {
	Create(ctx context.Context, userID uuid.UUID) (string, error)
	Validate(ctx context.Context, token string) (uuid.UUID, bool, error)
	Invalidate(ctx context.Context, token string) error
}

// RedisSessions is the Redis-backed SessionStore.
type RedisSessions struct{}

func (RedisSessions) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	return CreateSession(ctx, userID)
}

func (RedisSessions) Validate(ctx context.Context, token string) (uuid.UUID, bool, error) {
	return ValidateSession(ctx, token)
}

func (RedisSessions) Invalidate(ctx context.Context, token string) error {
	return InvalidateSession(ctx, token)
}

// InvalidateUserSessions removes the current session for a user, if any.
func InvalidateUserSessions(ctx context.Context, userID uuid.UUID) error {
	userSessionKey := UserSessionKeyPrefix + userID.String()

	token, err := database.RedisClient.Get(ctx, userSessionKey).Result()
	if err == nil && token != "" {
		database.RedisClient.Del(ctx, SessionKeyPrefix+token)
	}

	return database.RedisClient.Del(ctx, userSessionKey).Err()
}
