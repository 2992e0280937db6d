package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jkarimi/wacrm-backend/internal/model"
)

// MessageRepositoryInterface defines the message store operations. Messages
// are always addressed through their owning batch, except the owner-scoped
// dashboard counts.
type MessageRepositoryInterface interface {
	InsertMany(ctx context.Context, messages []model.Message) error
	ListByBatch(ctx context.Context, batchID string) ([]model.Message, error)
	ListPendingByBatch(ctx context.Context, batchID string) ([]model.Message, error)
	MarkSent(ctx context.Context, id string, sentAt time.Time) error
	MarkFailed(ctx context.Context, id, reason string) error

	// ResetFailed flips every failed message of the batch back to pending and
	// clears its error. Returns how many messages were reset.
	ResetFailed(ctx context.Context, batchID string) (int64, error)

	CountByBatchAndStatus(ctx context.Context, batchID string, status model.MessageStatus) (int64, error)
	CountByUserAndStatus(ctx context.Context, userID string, status model.MessageStatus) (int64, error)
}

// MessageRepository is the MongoDB implementation.
type MessageRepository struct {
	Coll *mongo.Collection
}

func NewMessageRepository(database *mongo.Database) *MessageRepository {
	return &MessageRepository{Coll: database.Collection("messages")}
}

func (r *MessageRepository) InsertMany(ctx context.Context, messages []model.Message) error {
	if len(messages) == 0 {
		return nil
	}
	_, err := r.Coll.InsertMany(ctx, messages)
	return err
}

func (r *MessageRepository) ListByBatch(ctx context.Context, batchID string) ([]model.Message, error) {
	return r.findByBatch(ctx, bson.M{"batch_id": batchID})
}

func (r *MessageRepository) ListPendingByBatch(ctx context.Context, batchID string) ([]model.Message, error) {
	return r.findByBatch(ctx, bson.M{"batch_id": batchID, "status": model.MessageStatusPending})
}

func (r *MessageRepository) findByBatch(ctx context.Context, filter bson.M) ([]model.Message, error) {
	cursor, err := r.Coll.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	messages := []model.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *MessageRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	_, err := r.Coll.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"status": model.MessageStatusSent, "sent_at": sentAt}},
	)
	return err
}

func (r *MessageRepository) MarkFailed(ctx context.Context, id, reason string) error {
	_, err := r.Coll.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"status": model.MessageStatusFailed, "error": reason}},
	)
	return err
}

func (r *MessageRepository) ResetFailed(ctx context.Context, batchID string) (int64, error) {
	result, err := r.Coll.UpdateMany(ctx,
		bson.M{"batch_id": batchID, "status": model.MessageStatusFailed},
		bson.M{
			"$set":   bson.M{"status": model.MessageStatusPending},
			"$unset": bson.M{"error": ""},
		},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (r *MessageRepository) CountByBatchAndStatus(ctx context.Context, batchID string, status model.MessageStatus) (int64, error) {
	return r.Coll.CountDocuments(ctx, bson.M{"batch_id": batchID, "status": status})
}

func (r *MessageRepository) CountByUserAndStatus(ctx context.Context, userID string, status model.MessageStatus) (int64, error) {
	return r.Coll.CountDocuments(ctx, bson.M{"user_id": userID, "status": status})
}

var _ MessageRepositoryInterface = (*MessageRepository)(nil)
