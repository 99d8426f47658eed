package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/heartview/spark-backend/internal/models"
	"github.com/heartview/spark-backend/internal/services"
)

type ChallengeListResponse struct {
	Success    bool                     `json:"success"`
	Message    string                   `json:"message,omitempty"`
	Challenges []models.Challenge       `json:"challenges"`
	Pending    *models.PendingChallenge `json:"pending,omitempty"`
}

type ChallengeActionRequest struct {
	ID string `json:"id"`
}

type ChallengeActionResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message,omitempty"`
	Challenge *models.Challenge `json:"challenge,omitempty"`
}

// GetChallenges lists the user's challenges newest first, alongside any
// unconfirmed pending candidate.
func GetChallenges(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}

	challenges, err := Challenges.List(r.Context(), userID)
	if err != nil {
		log.Printf("[GetChallenges] list failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, ChallengeListResponse{
			Success:    false,
			Message:    "Failed to load challenges",
			Challenges: []models.Challenge{},
		})
		return
	}

	pending, err := Pending.Get(r.Context(), userID)
	if err != nil {
		log.Printf("[GetChallenges] pending lookup failed: %v", err)
		pending = nil
	}

	writeJSON(w, http.StatusOK, ChallengeListResponse{
		Success:    true,
		Challenges: challenges,
		Pending:    pending,
	})
}

// ConfirmChallenge promotes the pending candidate into a persisted active
// challenge, appends a confirmation message to the thread, and clears the
// pending slot.
func ConfirmChallenge(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}

	pending, err := Pending.Get(r.Context(), userID)
	if err != nil {
		log.Printf("[ConfirmChallenge] pending lookup failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, ChallengeActionResponse{Success: false, Message: "Server error"})
		return
	}
	if pending == nil {
		writeJSON(w, http.StatusNotFound, ChallengeActionResponse{Success: false, Message: "No pending challenge to confirm"})
		return
	}

	challenge, err := Challenges.Create(r.Context(), userID, *pending)
	if err != nil {
		log.Printf("[ConfirmChallenge] create failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, ChallengeActionResponse{Success: false, Message: "Failed to create challenge"})
		return
	}

	if err := Pending.Clear(r.Context(), userID); err != nil {
		log.Printf("[ConfirmChallenge] failed to clear pending slot: %v", err)
	}

	// The confirmation shows up in the conversation thread as a coach message.
	confirmation := fmt.Sprintf("'%s' 챌린지가 등록되었어요! 이번 주도 화이팅! 🔥", challenge.Title)
	if err := Messages.Append(r.Context(), models.ChatMessage{
		UserID:    userID.String(),
		Role:      models.RoleAssistant,
		Content:   confirmation,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		log.Printf("[ConfirmChallenge] failed to append confirmation message: %v", err)
	}

	writeJSON(w, http.StatusCreated, ChallengeActionResponse{
		Success:   true,
		Message:   confirmation,
		Challenge: challenge,
	})
}

// DismissChallenge discards the pending candidate without persisting anything.
// Dismissing an empty slot succeeds.
func DismissChallenge(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}

	if err := Pending.Clear(r.Context(), userID); err != nil {
		log.Printf("[DismissChallenge] clear failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, ChallengeActionResponse{Success: false, Message: "Server error"})
		return
	}

	writeJSON(w, http.StatusOK, ChallengeActionResponse{Success: true, Message: "Challenge dismissed"})
}

// ToggleChallenge flips a challenge between active and completed.
func ToggleChallenge(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}

	challengeID, ok := challengeIDFromBody(w, r)
	if !ok {
		return
	}

	challenge, err := Challenges.Toggle(r.Context(), userID, challengeID)
	if err != nil {
		respondChallengeError(w, "ToggleChallenge", err)
		return
	}

	writeJSON(w, http.StatusOK, ChallengeActionResponse{Success: true, Challenge: challenge})
}

// SkipChallenge marks a challenge skipped.
func SkipChallenge(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}

	challengeID, ok := challengeIDFromBody(w, r)
	if !ok {
		return
	}

	challenge, err := Challenges.Skip(r.Context(), userID, challengeID)
	if err != nil {
		respondChallengeError(w, "SkipChallenge", err)
		return
	}

	writeJSON(w, http.StatusOK, ChallengeActionResponse{Success: true, Challenge: challenge})
}

// DeleteChallenge removes a challenge by id (?id= query parameter). Deleting
// an id that is already gone is a no-op success.
func DeleteChallenge(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}

	idStr := r.URL.Query().Get("id")
	challengeID, err := uuid.Parse(idStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ChallengeActionResponse{Success: false, Message: "Valid challenge id is required"})
		return
	}

	if err := Challenges.Delete(r.Context(), userID, challengeID); err != nil {
		log.Printf("[DeleteChallenge] delete failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, ChallengeActionResponse{Success: false, Message: "Failed to delete challenge"})
		return
	}

	writeJSON(w, http.StatusOK, ChallengeActionResponse{Success: true, Message: "Challenge deleted"})
}

func challengeIDFromBody(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var req ChallengeActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ChallengeActionResponse{Success: false, Message: "Invalid request body"})
		return uuid.Nil, false
	}
	challengeID, err := uuid.Parse(req.ID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ChallengeActionResponse{Success: false, Message: "Valid challenge id is required"})
		return uuid.Nil, false
	}
	return challengeID, true
}

func respondChallengeError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, services.ErrChallengeNotFound) {
		writeJSON(w, http.StatusNotFound, ChallengeActionResponse{Success: false, Message: "Challenge not found"})
		return
	}
	log.Printf("[%s] failed: %v", op, err)
	writeJSON(w, http.StatusInternalServerError, ChallengeActionResponse{Success: false, Message: "Server error"})
}
