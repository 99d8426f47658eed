package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/heartview/spark-backend/internal/database"
	"github.com/heartview/spark-backend/internal/models"
)

const (
	// PendingKeyPrefix is the Redis key prefix for the per-user pending slot.
	PendingKeyPrefix = "pending_challenge:"
	// PendingTTL bounds how long an unconfirmed candidate survives.
	PendingTTL = time.Hour
)

// PendingStore holds at most one unconfirmed challenge candidate per user.
// Set overwrites any prior candidate (last-write-wins); Clear is idempotent.
type PendingStore interface {
	Set(ctx context.Context, userID uuid.UUID, pending models.PendingChallenge) error
	Get(ctx context.Context, userID uuid.UUID) (*models.PendingChallenge, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// RedisPendingStore keeps pending candidates in Redis with a TTL, so the slot
// stays session-scoped and transient rather than living in process memory.
type RedisPendingStore struct{}

func (RedisPendingStore) Set(ctx context.Context, userID uuid.UUID, pending models.PendingChallenge) error {
	data, err := json.Marshal(pending)
	if err != nil {
		return err
	}
	return database.RedisClient.Set(ctx, PendingKeyPrefix+userID.String(), data, PendingTTL).Err()
}

func (RedisPendingStore) Get(ctx context.Context, userID uuid.UUID) (*models.PendingChallenge, error) {
	data, err := database.RedisClient.Get(ctx, PendingKeyPrefix+userID.String()).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var pending models.PendingChallenge
	if err := json.Unmarshal([]byte(data), &pending); err != nil {
		return nil, err
	}
	return &pending, nil
}

func (RedisPendingStore) Clear(ctx context.Context, userID uuid.UUID) error {
	return database.RedisClient.Del(ctx, PendingKeyPrefix+userID.String()).Err()
}
