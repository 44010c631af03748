package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"elderease/internal/models"
)

// CollectionRepository exposes raw get/find/insert/update operations on any
// named collection. It backs the generic fallback surface that serves every
// collection not claimed by a bespoke route.
type CollectionRepository struct {
	db *mongo.Database
}

func NewCollectionRepository(db *mongo.Database) *CollectionRepository {
	return &CollectionRepository{db: db}
}

func (r *CollectionRepository) List(ctx context.Context, name string, filter map[string]string) ([]bson.M, error) {
	query := bson.M{}
	for key, value := range filter {
		if key == "id" {
			key = "_id"
		}
		query[key] = value
	}
	cursor, err := r.db.Collection(name).Find(ctx, query)
	if err != nil {
		return nil, err
	}
	docs := []bson.M{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *CollectionRepository) Get(ctx context.Context, name, id string) (bson.M, error) {
	var doc bson.M
	err := r.db.Collection(name).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *CollectionRepository) Create(ctx context.Context, name string, doc bson.M) (bson.M, error) {
	if id, ok := doc["id"]; ok {
		doc["_id"] = id
		delete(doc, "id")
	}
	if _, ok := doc["_id"]; !ok {
		doc["_id"] = uuid.NewString()
	}
	if _, err := r.db.Collection(name).InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *CollectionRepository) Update(ctx context.Context, name, id string, fields bson.M) error {
	delete(fields, "id")
	delete(fields, "_id")
	res, err := r.db.Collection(name).UpdateByID(ctx, id, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrDocumentNotFound
	}
	return nil
}

func (r *CollectionRepository) Replace(ctx context.Context, name, id string, doc bson.M) error {
	delete(doc, "id")
	doc["_id"] = id
	res, err := r.db.Collection(name).ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrDocumentNotFound
	}
	return nil
}

func (r *CollectionRepository) Delete(ctx context.Context, name, id string) error {
	res, err := r.db.Collection(name).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.ErrDocumentNotFound
	}
	return nil
}
