package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"elderease/internal/models"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByTaskID(ctx context.Context, taskID string) ([]models.Message, error)
}

type messageRepository struct {
	collection *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) MessageRepository {
	return &messageRepository{collection: db.Collection("messages")}
}

func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	_, err := r.collection.InsertOne(ctx, msg)
	return err
}

func (r *messageRepository) GetByTaskID(ctx context.Context, taskID string) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"taskId": taskID}, opts)
	if err != nil {
		return nil, err
	}
	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}
