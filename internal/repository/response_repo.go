package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"formpulse/internal/model"
)

// ErrNotFound is returned by writes that target a missing document
var ErrNotFound = errors.New("document not found")

// ResponseRepo handles MongoDB operations for form submissions
type ResponseRepo interface {
	Create(ctx context.Context, response *model.Response) error
	ListByFormID(ctx context.Context, formID string) ([]model.Response, error)
	DeleteByFormID(ctx context.Context, formID string) (int64, error)
}

type responseRepo struct {
	collection *mongo.Collection
}

// NewResponseRepo creates a new response repository
func NewResponseRepo(db *mongo.Database) ResponseRepo {
	return &responseRepo{
		collection: db.Collection("responses"),
	}
}

func (r *responseRepo) Create(ctx context.Context, response *model.Response) error {
	_, err := r.collection.InsertOne(ctx, response)
	return err
}

// ListByFormID returns a form's responses in submission order.
func (r *responseRepo) ListByFormID(ctx context.Context, formID string) ([]model.Response, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "submittedAt", Value: 1},
		{Key: "_id", Value: 1},
	})
	cursor, err := r.collection.Find(ctx, bson.M{"formId": formID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	responses := []model.Response{}
	if err = cursor.All(ctx, &responses); err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *responseRepo) DeleteByFormID(ctx context.Context, formID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"formId": formID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates the indexes the repositories query by.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("forms").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return err
	}
	_, err = db.Collection("responses").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "formId", Value: 1}, {Key: "submittedAt", Value: 1}, {Key: "_id", Value: 1}},
	})
	return err
}
