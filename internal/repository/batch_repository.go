package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jkarimi/wacrm-backend/internal/model"
)

// BatchRepositoryInterface defines the batch store operations used by the
// lifecycle service, the dispatcher and the recovery sweep.
type BatchRepositoryInterface interface {
	InsertMany(ctx context.Context, batches []model.Batch) error
	ListByUser(ctx context.Context, userID string) ([]model.Batch, error)
	GetByIDAndUser(ctx context.Context, id, userID string) (*model.Batch, error)

	// ClaimNextPending atomically flips the most eligible pending batch of the
	// owner to sending and returns it. Eligibility order: lowest priority
	// value first, then earliest created_at. Returns (nil, nil) when no
	// pending batch exists. This is the single concurrency guard of the
	// dispatch design: two concurrent dispatchers can never claim the same
	// batch.
	ClaimNextPending(ctx context.Context, userID string, claimedAt time.Time) (*model.Batch, error)

	Finalize(ctx context.Context, id string, status model.BatchStatus, successCount, failedCount int, completedAt time.Time) error
	Reschedule(ctx context.Context, id string, pendingCount int) error

	// ReleaseStale returns every batch stuck in sending since before cutoff
	// back to pending. It reports exactly the batches it released, in their
	// released state; a batch that reaches a terminal status concurrently is
	// never included.
	ReleaseStale(ctx context.Context, cutoff time.Time) ([]model.Batch, error)

	CountActiveByUser(ctx context.Context, userID string) (int64, error)
}

// BatchRepository is the MongoDB implementation.
type BatchRepository struct {
	Coll *mongo.Collection
}

func NewBatchRepository(database *mongo.Database) *BatchRepository {
	return &BatchRepository{Coll: database.Collection("batches")}
}

func (r *BatchRepository) InsertMany(ctx context.Context, batches []model.Batch) error {
	if len(batches) == 0 {
		return nil
	}
	_, err := r.Coll.InsertMany(ctx, batches)
	return err
}

func (r *BatchRepository) ListByUser(ctx context.Context, userID string) ([]model.Batch, error) {
	cursor, err := r.Coll.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	batches := []model.Batch{}
	if err := cursor.All(ctx, &batches); err != nil {
		return nil, err
	}
	return batches, nil
}

func (r *BatchRepository) GetByIDAndUser(ctx context.Context, id, userID string) (*model.Batch, error) {
	var b model.Batch
	err := r.Coll.FindOne(ctx, bson.M{"id": id, "user_id": userID}).Decode(&b)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *BatchRepository) ClaimNextPending(ctx context.Context, userID string, claimedAt time.Time) (*model.Batch, error) {
	var b model.Batch
	err := r.Coll.FindOneAndUpdate(ctx,
		bson.M{"user_id": userID, "status": model.BatchStatusPending},
		bson.M{"$set": bson.M{"status": model.BatchStatusSending, "claimed_at": claimedAt}},
		options.FindOneAndUpdate().
			SetSort(bson.D{{Key: "priority", Value: 1}, {Key: "created_at", Value: 1}}).
			SetReturnDocument(options.After),
	).Decode(&b)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *BatchRepository) Finalize(ctx context.Context, id string, status model.BatchStatus, successCount, failedCount int, completedAt time.Time) error {
	_, err := r.Coll.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{
			"status":        status,
			"success_count": successCount,
			"failed_count":  failedCount,
			"pending_count": 0,
			"completed_at":  completedAt,
		}},
	)
	return err
}

func (r *BatchRepository) Reschedule(ctx context.Context, id string, pendingCount int) error {
	_, err := r.Coll.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{
			"status":        model.BatchStatusPending,
			"priority":      1,
			"failed_count":  0,
			"pending_count": pendingCount,
		}},
	)
	return err
}

func (r *BatchRepository) ReleaseStale(ctx context.Context, cutoff time.Time) ([]model.Batch, error) {
	filter := bson.M{
		"status":     model.BatchStatusSending,
		"claimed_at": bson.M{"$lt": cutoff},
	}

	cursor, err := r.Coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	stale := []model.Batch{}
	if err := cursor.All(ctx, &stale); err != nil {
		return nil, err
	}
	// A candidate can finalize between the find and the update; the status
	// guard makes that update a no-op, and only batches actually flipped are
	// reported so the sweep never re-queues a finished batch.
	released := []model.Batch{}
	for _, b := range stale {
		result, err := r.Coll.UpdateOne(ctx,
			bson.M{"id": b.ID, "status": model.BatchStatusSending},
			bson.M{"$set": bson.M{"status": model.BatchStatusPending}, "$unset": bson.M{"claimed_at": ""}},
		)
		if err != nil {
			return nil, err
		}
		if result.ModifiedCount == 0 {
			continue
		}
		b.Status = model.BatchStatusPending
		b.ClaimedAt = nil
		released = append(released, b)
	}
	if len(released) == 0 {
		return nil, nil
	}
	return released, nil
}

func (r *BatchRepository) CountActiveByUser(ctx context.Context, userID string) (int64, error) {
	return r.Coll.CountDocuments(ctx, bson.M{
		"user_id": userID,
		"status":  bson.M{"$in": []model.BatchStatus{model.BatchStatusPending, model.BatchStatusSending}},
	})
}

var _ BatchRepositoryInterface = (*BatchRepository)(nil)
