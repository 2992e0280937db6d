package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jkarimi/wacrm-backend/internal/model"
)

// TemplateRepositoryInterface defines the template store operations.
type TemplateRepositoryInterface interface {
	Insert(ctx context.Context, t *model.Template) error
	GetByIDAndUser(ctx context.Context, id, userID string) (*model.Template, error)
	ListByUser(ctx context.Context, userID string) ([]model.Template, error)
	DeleteByIDAndUser(ctx context.Context, id, userID string) (bool, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
}

// TemplateRepository is the MongoDB implementation.
type TemplateRepository struct {
	Coll *mongo.Collection
}

func NewTemplateRepository(database *mongo.Database) *TemplateRepository {
	return &TemplateRepository{Coll: database.Collection("templates")}
}

func (r *TemplateRepository) Insert(ctx context.Context, t *model.Template) error {
	_, err := r.Coll.InsertOne(ctx, t)
	return err
}

func (r *TemplateRepository) GetByIDAndUser(ctx context.Context, id, userID string) (*model.Template, error) {
	var t model.Template
	err := r.Coll.FindOne(ctx, bson.M{"id": id, "user_id": userID}).Decode(&t)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TemplateRepository) ListByUser(ctx context.Context, userID string) ([]model.Template, error) {
	cursor, err := r.Coll.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	templates := []model.Template{}
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *TemplateRepository) DeleteByIDAndUser(ctx context.Context, id, userID string) (bool, error) {
	result, err := r.Coll.DeleteOne(ctx, bson.M{"id": id, "user_id": userID})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

func (r *TemplateRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	return r.Coll.CountDocuments(ctx, bson.M{"user_id": userID})
}

var _ TemplateRepositoryInterface = (*TemplateRepository)(nil)
