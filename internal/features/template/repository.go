package template

import (
	"context"
	"errors"

	"go-contractor/internal/database"
	"go-contractor/internal/engine"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TemplateRepository interface {
	Create(ctx context.Context, t *engine.Template) error
	Get(ctx context.Context, id string) (*engine.Template, error)
	ListByOwner(ctx context.Context, ownerID string, category *engine.Category) ([]engine.Template, error)
	Delete(ctx context.Context, id string) error
}

type TemplateRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewTemplateRepository(mongodb *database.MongodbDB) TemplateRepository {
	return &TemplateRepositoryImpl{
		Collection: mongodb.DB.Collection("report_templates"),
	}
}

func (r *TemplateRepositoryImpl) Create(ctx context.Context, t *engine.Template) error {
	_, err := r.Collection.InsertOne(ctx, t)
	return err
}

func (r *TemplateRepositoryImpl) Get(ctx context.Context, id string) (*engine.Template, error) {
	var t engine.Template
	err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TemplateRepositoryImpl) ListByOwner(ctx context.Context, ownerID string, category *engine.Category) ([]engine.Template, error) {
	filter := bson.M{"owner_id": ownerID}
	if category != nil {
		filter["category"] = *category
	}
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})

	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var templates []engine.Template
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *TemplateRepositoryImpl) Delete(ctx context.Context, id string) error {
	res, err := r.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrTemplateNotFound
	}
	return nil
}
