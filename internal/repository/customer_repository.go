package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jkarimi/wacrm-backend/internal/model"
)

// CustomerRepositoryInterface defines the customer store operations used by
// ingestion and the batch lifecycle.
type CustomerRepositoryInterface interface {
	InsertMany(ctx context.Context, customers []model.Customer) error

	// FindByIDs resolves the given ids for the owner. Ids that do not match
	// are silently dropped; the result preserves the order of the input ids.
	FindByIDs(ctx context.Context, userID string, ids []string) ([]model.Customer, error)

	ListByUser(ctx context.Context, userID string) ([]model.Customer, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
}

// CustomerRepository is the MongoDB implementation.
type CustomerRepository struct {
	Coll *mongo.Collection
}

func NewCustomerRepository(database *mongo.Database) *CustomerRepository {
	return &CustomerRepository{Coll: database.Collection("customers")}
}

func (r *CustomerRepository) InsertMany(ctx context.Context, customers []model.Customer) error {
	if len(customers) == 0 {
		return nil
	}
	_, err := r.Coll.InsertMany(ctx, customers)
	return err
}

func (r *CustomerRepository) FindByIDs(ctx context.Context, userID string, ids []string) ([]model.Customer, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := r.Coll.Find(ctx, bson.M{"user_id": userID, "id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	found := []model.Customer{}
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}

	// Reorder to the caller's id order so batch splitting is deterministic.
	byID := make(map[string]model.Customer, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	customers := make([]model.Customer, 0, len(found))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			customers = append(customers, c)
		}
	}
	return customers, nil
}

func (r *CustomerRepository) ListByUser(ctx context.Context, userID string) ([]model.Customer, error) {
	cursor, err := r.Coll.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	customers := []model.Customer{}
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *CustomerRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	result, err := r.Coll.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *CustomerRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	return r.Coll.CountDocuments(ctx, bson.M{"user_id": userID})
}

var _ CustomerRepositoryInterface = (*CustomerRepository)(nil)
