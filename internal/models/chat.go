package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageRole identifies who authored a chat message.
// Valid values: "user", "assistant".
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ChatMessage is one turn of a coaching conversation, stored in MongoDB.
// Messages are append-only and ordered by Timestamp; they are never mutated.
type ChatMessage struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         string             `bson:"user_id" json:"user_id"`
	ConversationID string             `bson:"conversation_id" json:"conversation_id"`
	Role           MessageRole        `bson:"role" json:"role"`
	Content        string             `bson:"content" json:"content"`
	Timestamp      time.Time          `bson:"timestamp" json:"timestamp"`
}

// ChatTurn is the wire form of a message as sent by the client and forwarded
// to the model API.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
