package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/heartview/spark-backend/internal/config"
	"github.com/heartview/spark-backend/internal/extract"
	"github.com/heartview/spark-backend/internal/models"
	"github.com/heartview/spark-backend/internal/services"
)

var chatRelay *services.ChatRelay

// InitChatRelay wires the model API client from configuration.
func InitChatRelay(cfg *config.Config) {
	chatRelay = services.NewChatRelay(cfg.ChatAPIKey, cfg.ChatAPIBaseURL, cfg.ChatModel)
}

type SendMessageRequest struct {
	Messages       []models.ChatTurn `json:"messages"`
	ConversationID string            `json:"conversation_id,omitempty"`
}

// SendMessageResponse carries the assistant reply and, when the reply
// contained a challenge block, the extracted candidate awaiting confirmation.
type SendMessageResponse struct {
	Success   bool                     `json:"success"`
	Message   string                   `json:"message,omitempty"`
	Reply     string                   `json:"reply,omitempty"`
	Challenge *models.PendingChallenge `json:"challenge,omitempty"`
}

// SendMessage relays the running history to the model API, appends both sides
// of the turn to the persisted history, and scans the reply for a challenge
// candidate. A candidate overwrites any unconfirmed prior one.
func SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, SendMessageResponse{Success: false, Message: "Invalid request body"})
		return
	}

	if len(req.Messages) == 0 {
		writeJSON(w, http.StatusBadRequest, SendMessageResponse{Success: false, Message: "At least one message is required"})
		return
	}
	latest := req.Messages[len(req.Messages)-1]
	if latest.Role != string(models.RoleUser) || latest.Content == "" {
		writeJSON(w, http.StatusBadRequest, SendMessageResponse{Success: false, Message: "Last message must be a non-empty user message"})
		return
	}

	reply, err := chatRelay.Complete(r.Context(), req.Messages)
	if err != nil {
		log.Printf("[SendMessage] model call failed: %v", err)
		writeJSON(w, http.StatusBadGateway, SendMessageResponse{Success: false, Message: "The coach is unavailable right now. Please try again."})
		return
	}

	now := time.Now().UTC()

	// Persist the turn. History failures are logged but don't lose the reply.
	if err := Messages.Append(r.Context(), models.ChatMessage{
		UserID:         userID.String(),
		ConversationID: req.ConversationID,
		Role:           models.RoleUser,
		Content:        latest.Content,
		Timestamp:      now,
	}); err != nil {
		log.Printf("[SendMessage] failed to persist user message: %v", err)
	}
	if err := Messages.Append(r.Context(), models.ChatMessage{
		UserID:         userID.String(),
		ConversationID: req.ConversationID,
		Role:           models.RoleAssistant,
		Content:        reply,
		Timestamp:      now.Add(time.Millisecond),
	}); err != nil {
		log.Printf("[SendMessage] failed to persist assistant message: %v", err)
	}

	candidate := extract.Challenge(reply, now)
	if candidate != nil {
		if err := Pending.Set(r.Context(), userID, *candidate); err != nil {
			log.Printf("[SendMessage] failed to store pending challenge: %v", err)
			candidate = nil
		}
	}

	writeJSON(w, http.StatusOK, SendMessageResponse{
		Success:   true,
		Reply:     reply,
		Challenge: candidate,
	})
}

type ChatHistoryResponse struct {
	Success  bool                 `json:"success"`
	Message  string               `json:"message,omitempty"`
	Messages []models.ChatMessage `json:"messages"`
	HasMore  bool                 `json:"has_more"`
}

// GetChatHistory loads paginated conversation history for the authenticated
// user. Query params:
//
//	before (optional RFC3339 timestamp for pagination)
//	limit  (optional, default 50)
func GetChatHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}

	limit := int64(50)
	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		if parsed, err := strconv.ParseInt(lStr, 10, 64); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	var before *time.Time
	if bStr := r.URL.Query().Get("before"); bStr != "" {
		if t, err := time.Parse(time.RFC3339, bStr); err == nil {
			before = &t
		}
	}

	msgs, hasMore, err := services.LoadMessages(r.Context(), userID.String(), before, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ChatHistoryResponse{
			Success:  false,
			Message:  "Failed to load messages",
			Messages: []models.ChatMessage{},
		})
		return
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}

	writeJSON(w, http.StatusOK, ChatHistoryResponse{
		Success:  true,
		Messages: msgs,
		HasMore:  hasMore,
	})
}
