package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"elderease/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByType(ctx context.Context, userType models.UserType) ([]models.User, error)
	AppendRating(ctx context.Context, id string, rating, average float64) error
}

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{collection: db.Collection("users")}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	_, err := r.collection.InsertOne(ctx, user)
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByType(ctx context.Context, userType models.UserType) ([]models.User, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userType": userType})
	if err != nil {
		return nil, err
	}
	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AppendRating pushes the rating and stores the caller-computed average in
// the same update, so the derived value can never lag the sequence.
func (r *userRepository) AppendRating(ctx context.Context, id string, rating, average float64) error {
	res, err := r.collection.UpdateByID(ctx, id, bson.M{
		"$push": bson.M{"ratings": rating},
		"$set":  bson.M{"averageRating": average},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrUserNotFound
	}
	return nil
}
