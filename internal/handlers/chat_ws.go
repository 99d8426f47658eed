package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/heartview/spark-backend/internal/extract"
	"github.com/heartview/spark-backend/internal/models"
)

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS for WebSocket is handled at the HTTP layer already.
		return true
	},
}

// ChatSocketRequest is a client frame. Only "message" frames carry turns.
type ChatSocketRequest struct {
	Type           string            `json:"type"` // "message", "ping"
	Messages       []models.ChatTurn `json:"messages,omitempty"`
	ConversationID string            `json:"conversation_id,omitempty"`
}

// ChatSocketEvent is a server frame pushed back over the socket.
type ChatSocketEvent struct {
	Type      string                   `json:"type"` // "reply", "error", "pong"
	Reply     string                   `json:"reply,omitempty"`
	Challenge *models.PendingChallenge `json:"challenge,omitempty"`
	Message   string                   `json:"message,omitempty"`
}

// ChatWebSocket carries the same relay semantics as POST /api/chat for clients
// holding a live connection. Turns are handled one at a time in arrival order;
// there is no fan-out between users.
// Authentication uses the session token (Authorization: Bearer <token>, or
// ?token= for browser WebSocket clients).
func ChatWebSocket(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		token = r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing session token", http.StatusUnauthorized)
			return
		}
	}

	userID, ok, err := Sessions.Validate(r.Context(), token)
	if err != nil || !ok {
		http.Error(w, "invalid session token", http.StatusUnauthorized)
		return
	}

	conn, err := chatUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	conn.SetReadLimit(64 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))

		var req ChatSocketRequest
		if err := json.Unmarshal(data, &req); err != nil {
			_ = conn.WriteJSON(ChatSocketEvent{Type: "error", Message: "Invalid frame"})
			continue
		}

		switch req.Type {
		case "ping":
			_ = conn.WriteJSON(ChatSocketEvent{Type: "pong"})
		case "message":
			handleSocketTurn(conn, userID, req)
		default:
			_ = conn.WriteJSON(ChatSocketEvent{Type: "error", Message: "Unknown frame type"})
		}
	}
}

func handleSocketTurn(conn *websocket.Conn, userID uuid.UUID, req ChatSocketRequest) {
	if len(req.Messages) == 0 {
		_ = conn.WriteJSON(ChatSocketEvent{Type: "error", Message: "At least one message is required"})
		return
	}
	latest := req.Messages[len(req.Messages)-1]
	if latest.Role != string(models.RoleUser) || latest.Content == "" {
		_ = conn.WriteJSON(ChatSocketEvent{Type: "error", Message: "Last message must be a non-empty user message"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 75*time.Second)
	defer cancel()

	reply, err := chatRelay.Complete(ctx, req.Messages)
	if err != nil {
		log.Printf("[ChatWebSocket] model call failed: %v", err)
		_ = conn.WriteJSON(ChatSocketEvent{Type: "error", Message: "The coach is unavailable right now. Please try again."})
		return
	}

	now := time.Now().UTC()
	if err := Messages.Append(ctx, models.ChatMessage{
		UserID:         userID.String(),
		ConversationID: req.ConversationID,
		Role:           models.RoleUser,
		Content:        latest.Content,
		Timestamp:      now,
	}); err != nil {
		log.Printf("[ChatWebSocket] failed to persist user message: %v", err)
	}
	if err := Messages.Append(ctx, models.ChatMessage{
		UserID:         userID.String(),
		ConversationID: req.ConversationID,
		Role:           models.RoleAssistant,
		Content:        reply,
		Timestamp:      now.Add(time.Millisecond),
	}); err != nil {
		log.Printf("[ChatWebSocket] failed to persist assistant message: %v", err)
	}

	candidate := extract.Challenge(reply, now)
	if candidate != nil {
		if err := Pending.Set(ctx, userID, *candidate); err != nil {
			log.Printf("[ChatWebSocket] failed to store pending challenge: %v", err)
			candidate = nil
		}
	}

	_ = conn.WriteJSON(ChatSocketEvent{
		Type:      "reply",
		Reply:     reply,
		Challenge: candidate,
	})
}
