package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/heartview/spark-backend/internal/database"
	"github.com/heartview/spark-backend/internal/models"
)

const messagesCollection = "chat_messages"

// EnsureChatIndexes configures indexes for the chat_messages collection.
// Called on startup from main after Mongo has connected.
func EnsureChatIndexes(ctx context.Context) error {
	col := database.DB.Collection(messagesCollection)

	// Compound index on (user_id, timestamp) to support ordered history reads.
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_user_timestamp"),
		},
	}

	for _, m := range indexes {
		if _, err := col.Indexes().CreateOne(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// AppendMessage persists one conversation turn. History is append-only;
// messages are never updated after insert.
func AppendMessage(ctx context.Context, msg models.ChatMessage) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}

	_, err := database.DB.Collection(messagesCollection).InsertOne(ctx, msg)
	return err
}

// MessageLog appends conversation turns to the persisted history.
type MessageLog interface {
	Append(ctx context.Context, msg models.ChatMessage) error
}

// MongoMessages is the MongoDB-backed MessageLog.
type MongoMessages struct{}

func (MongoMessages) Append(ctx context.Context, msg models.ChatMessage) error {
	return AppendMessage(ctx, msg)
}

// LoadMessages returns paginated history for a user, newest first.
// hasMore reports whether older messages exist past the returned page.
func LoadMessages(ctx context.Context, userID string, before *time.Time, limit int64) ([]models.ChatMessage, bool, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	col := database.DB.Collection(messagesCollection)

	filter := bson.M{"user_id": userID}
	if before != nil {
		filter["timestamp"] = bson.M{"$lt": before.UTC()}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit + 1)

	cur, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, false, err
	}
	defer cur.Close(ctx)

	var msgs []models.ChatMessage
	for cur.Next(ctx) {
		var m models.ChatMessage
		if err := cur.Decode(&m); err != nil {
			continue
		}
		msgs = append(msgs, m)
	}

	hasMore := int64(len(msgs)) > limit
	if hasMore {
		msgs = msgs[:limit]
	}

	return msgs, hasMore, nil
}
