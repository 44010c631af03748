package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"elderease/internal/models"
	"elderease/internal/repository"
)

type RatingService struct {
	users    repository.UserRepository
	tasks    repository.TaskRepository
	notifier Notifier
	redis    *redis.Client
}

func NewRatingService(users repository.UserRepository, tasks repository.TaskRepository, notifier Notifier, rdb *redis.Client) *RatingService {
	return &RatingService{users: users, tasks: tasks, notifier: notifier, redis: rdb}
}

// RateUser appends the rating to the user's history, recomputes the average
// from the full sequence, and stamps the rating onto the task
// (last-write-wins; re-rating is allowed). Returns the updated user.
func (s *RatingService) RateUser(ctx context.Context, userID string, rating float64, taskID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	ratings := append(user.Ratings, rating)
	average, err := mean(ratings)
	if err != nil {
		return nil, err
	}

	if err := s.users.AppendRating(ctx, userID, rating, average); err != nil {
		return nil, err
	}
	if err := s.tasks.Update(ctx, taskID, map[string]interface{}{
		"rating":    rating,
		"updatedAt": time.Now(),
	}); err != nil {
		return nil, err
	}
	if err := s.redis.Del(ctx, allTasksCacheKey).Err(); err != nil {
		log.Printf("Failed to invalidate task cache: %v", err)
	}

	user.Ratings = ratings
	user.AverageRating = average

	if _, err := s.notifier.Notify(ctx, user.ID, "New Rating Received",
		fmt.Sprintf("You received a new rating of %v for the task \"%s\".", rating, task.Title), taskID); err != nil {
		log.Printf("Failed to notify user %s about new rating: %v", user.ID, err)
	}

	return user, nil
}

// mean guards the undefined empty-sequence case; it cannot trigger on the
// append-then-compute path but keeps the invariant explicit.
func mean(ratings []float64) (float64, error) {
	if len(ratings) == 0 {
		return 0, models.ErrEmptyRatings
	}
	var sum float64
	for _, r := range ratings {
		sum += r
	}
	return sum / float64(len(ratings)), nil
}
