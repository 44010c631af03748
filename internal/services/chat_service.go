package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"elderease/internal/models"
	"elderease/internal/repository"
)

type ChatService struct {
	messages repository.MessageRepository
	tasks    repository.TaskRepository
	notifier Notifier
}

func NewChatService(messages repository.MessageRepository, tasks repository.TaskRepository, notifier Notifier) *ChatService {
	return &ChatService{messages: messages, tasks: tasks, notifier: notifier}
}

func (s *ChatService) ListMessages(ctx context.Context, taskID string) ([]models.Message, error) {
	return s.messages.GetByTaskID(ctx, taskID)
}

// PostMessage appends a message to the task's log and notifies the task
// participant who is not the sender. A task has exactly one requester and
// at most one assignee, so the counterpart is the binary complement.
func (s *ChatService) PostMessage(ctx context.Context, taskID, senderID, content string) (*models.Message, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ID:        uuid.NewString(),
		TaskID:    taskID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	recipientID := task.ElderlyID
	if senderID == task.ElderlyID {
		recipientID = ""
		if task.VolunteerID != nil {
			recipientID = *task.VolunteerID
		}
	}
	if _, err := s.notifier.Notify(ctx, recipientID, "New Message",
		fmt.Sprintf("You have a new message in task \"%s\".", task.Title), taskID); err != nil {
		log.Printf("Failed to notify user %s about new message: %v", recipientID, err)
	}

	return msg, nil
}
