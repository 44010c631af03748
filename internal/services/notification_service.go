package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"elderease/internal/models"
	"elderease/internal/repository"
)

// Notifier is implemented by NotificationService and is the only producer
// of user-visible notifications in the system.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message, taskID string) (*models.Notification, error)
}

type NotificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// Notify persists a fresh unread notification. It deliberately carries no
// business logic and never checks that the recipient exists.
func (s *NotificationService) Notify(ctx context.Context, userID, title, message, taskID string) (*models.Notification, error) {
	notif := &models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		TaskID:    taskID,
		Read:      false,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, notif); err != nil {
		return nil, fmt.Errorf("failed to save notification: %w", err)
	}
	return notif, nil
}

func (s *NotificationService) GetForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id string) error {
	return s.repo.MarkAsRead(ctx, id)
}
