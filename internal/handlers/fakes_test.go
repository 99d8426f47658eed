package handlers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/heartview/spark-backend/internal/models"
	"github.com/heartview/spark-backend/internal/services"
)

// fakeSessions maps fixed tokens to user ids.
type fakeSessions struct {
	tokens map[string]uuid.UUID
}

func (f *fakeSessions) Create(_ context.Context, userID uuid.UUID) (string, error) {
	token := "test-token-" + userID.String()
	f.tokens[token] = userID
	return token, nil
}

func (f *fakeSessions) Validate(_ context.Context, token string) (uuid.UUID, bool, error) {
	id, ok := f.tokens[token]
	return id, ok, nil
}

func (f *fakeSessions) Invalidate(_ context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

// fakePending is an in-memory PendingStore.
type fakePending struct {
	mu    sync.Mutex
	slots map[uuid.UUID]models.PendingChallenge
}

func newFakePending() *fakePending {
	return &fakePending{slots: make(map[uuid.UUID]models.PendingChallenge)}
}

func (f *fakePending) Set(_ context.Context, userID uuid.UUID, pending models.PendingChallenge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slots[userID] = pending
	return nil
}

func (f *fakePending) Get(_ context.Context, userID uuid.UUID) (*models.PendingChallenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pending, ok := f.slots[userID]
	if !ok {
		return nil, nil
	}
	return &pending, nil
}

func (f *fakePending) Clear(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.slots, userID)
	return nil
}

// fakeChallenges is an in-memory ChallengeStore.
type fakeChallenges struct {
	mu    sync.Mutex
	items map[uuid.UUID]models.Challenge
}

func newFakeChallenges() *fakeChallenges {
	return &fakeChallenges{items: make(map[uuid.UUID]models.Challenge)}
}

func (f *fakeChallenges) Create(_ context.Context, userID uuid.UUID, pending models.PendingChallenge) (*models.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := models.Challenge{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       pending.Title,
		Description: pending.Description,
		Deadline:    pending.Deadline,
		Status:      models.ChallengeStatusActive,
		CreatedAt:   time.Now().UTC(),
	}
	f.items[c.ID] = c
	return &c, nil
}

func (f *fakeChallenges) List(_ context.Context, userID uuid.UUID) ([]models.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Challenge, 0)
	for _, c := range f.items {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeChallenges) Toggle(_ context.Context, userID, challengeID uuid.UUID) (*models.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.items[challengeID]
	if !ok || c.UserID != userID {
		return nil, services.ErrChallengeNotFound
	}
	c.Status, c.CompletedAt = services.ToggleCompletion(c.Status, time.Now().UTC())
	f.items[challengeID] = c
	return &c, nil
}

func (f *fakeChallenges) Skip(_ context.Context, userID, challengeID uuid.UUID) (*models.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.items[challengeID]
	if !ok || c.UserID != userID {
		return nil, services.ErrChallengeNotFound
	}
	c.Status = models.ChallengeStatusSkipped
	c.CompletedAt = nil
	f.items[challengeID] = c
	return &c, nil
}

func (f *fakeChallenges) Delete(_ context.Context, userID, challengeID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.items[challengeID]; ok && c.UserID == userID {
		delete(f.items, challengeID)
	}
	return nil
}

func (f *fakeChallenges) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// fakeMessages records appended conversation turns.
type fakeMessages struct {
	mu       sync.Mutex
	appended []models.ChatMessage
}

func (f *fakeMessages) Append(_ context.Context, msg models.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, msg)
	return nil
}

// rejectAllCredentials fails the test if the validator is ever consulted.
type rejectAllCredentials struct {
	t *testing.T
}

func (r rejectAllCredentials) Validate(context.Context, string, string) (*services.Identity, error) {
	r.t.Error("credential validator consulted; validation should have failed first")
	return nil, errors.New("unreachable")
}

// swapBackends replaces the handler backends for one test and restores them
// on cleanup.
func swapBackends(t *testing.T, creds services.CredentialValidator, sessions services.SessionStore, pending services.PendingStore) {
	t.Helper()
	prevCreds, prevSessions, prevPending := Credentials, Sessions, Pending
	if creds != nil {
		Credentials = creds
	}
	if sessions != nil {
		Sessions = sessions
	}
	if pending != nil {
		Pending = pending
	}
	t.Cleanup(func() {
		Credentials, Sessions, Pending = prevCreds, prevSessions, prevPending
	})
}

// swapStores replaces the challenge store and message log for one test and
// restores them on cleanup.
func swapStores(t *testing.T, challenges services.ChallengeStore, messages services.MessageLog) {
	t.Helper()
	prevChallenges, prevMessages := Challenges, Messages
	if challenges != nil {
		Challenges = challenges
	}
	if messages != nil {
		Messages = messages
	}
	t.Cleanup(func() {
		Challenges, Messages = prevChallenges, prevMessages
	})
}
