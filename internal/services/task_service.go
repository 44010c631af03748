package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"elderease/internal/models"
	"elderease/internal/repository"
)

const allTasksCacheKey = "tasks:all"

type TaskService interface {
	CreateTask(ctx context.Context, task *models.Task) error
	UpdateTask(ctx context.Context, id string, patch *models.TaskUpdate) error
	ArchiveTask(ctx context.Context, id string) error
	GetTaskByID(ctx context.Context, id string) (*models.Task, error)
	GetAllTasks(ctx context.Context) ([]models.Task, error)
}

type taskService struct {
	tasks    repository.TaskRepository
	users    repository.UserRepository
	notifier Notifier
	redis    *redis.Client
}

func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository, notifier Notifier, rdb *redis.Client) TaskService {
	return &taskService{tasks: tasks, users: users, notifier: notifier, redis: rdb}
}

// CreateTask inserts the task and fans one notification out to every
// volunteer. Zero volunteers is not an error; a failed notification is
// logged and does not fail the create.
func (s *taskService) CreateTask(ctx context.Context, task *models.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	task.ID = uuid.NewString()
	if task.Status == "" {
		task.Status = models.StatusCreated
	}
	task.Archived = false
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt

	if err := s.tasks.Create(ctx, task); err != nil {
		return err
	}
	s.invalidateCache(ctx)

	volunteers, err := s.users.GetByType(ctx, models.UserTypeVolunteer)
	if err != nil {
		log.Printf("Failed to list volunteers for task %s: %v", task.ID, err)
		return nil
	}
	for _, volunteer := range volunteers {
		s.notify(ctx, volunteer.ID, "New Task Available",
			fmt.Sprintf("A new task \"%s\" is available.", task.Title), task.ID)
	}
	return nil
}

// UpdateTask merges the patch into the task and then applies at most one
// notification rule, evaluated in priority order: Accepted, Completed,
// confirmed-and-rated. Any other status merges silently.
func (s *taskService) UpdateTask(ctx context.Context, id string, patch *models.TaskUpdate) error {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// An Accept must name a resolvable volunteer. Checked before the merge
	// is persisted so a failed Accept does not half-apply.
	var volunteer *models.User
	if patch.Status != nil && *patch.Status == models.StatusAccepted {
		volunteerID := task.VolunteerID
		if patch.VolunteerID != nil {
			volunteerID = patch.VolunteerID
		}
		if volunteerID == nil {
			return models.ErrUserNotFound
		}
		volunteer, err = s.users.GetByID(ctx, *volunteerID)
		if err != nil {
			return err
		}
	}

	fields := patch.Fields()
	fields["updatedAt"] = time.Now()
	if err := s.tasks.Update(ctx, id, fields); err != nil {
		return err
	}
	s.invalidateCache(ctx)

	switch {
	case patch.Status != nil && *patch.Status == models.StatusAccepted:
		s.notify(ctx, task.ElderlyID, "Task Accepted",
			fmt.Sprintf("Your task \"%s\" has been accepted by %s.", task.Title, volunteer.FullName()), id)
	case patch.Status != nil && *patch.Status == models.StatusCompleted:
		s.notify(ctx, task.ElderlyID, "Task Completed",
			fmt.Sprintf("Your task \"%s\" has been marked as completed. Please confirm and rate the volunteer.", task.Title), id)
		s.notify(ctx, resolveVolunteerID(task, patch), "Task Completed",
			fmt.Sprintf("You have marked the task \"%s\" as completed. Waiting for elderly confirmation.", task.Title), id)
	case patch.ElderlyConfirmed != nil && *patch.ElderlyConfirmed && patch.Rating != nil:
		s.notify(ctx, resolveVolunteerID(task, patch), "Task Rated",
			fmt.Sprintf("The task \"%s\" has been confirmed completed and you've received a rating of %v.", task.Title, *patch.Rating), id)
	}
	return nil
}

// ArchiveTask gates archiving on a completed, confirmed task. A missing
// task reports the same client error as an unconfirmed one.
func (s *taskService) ArchiveTask(ctx context.Context, id string) error {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrTaskNotFound) {
			return models.ErrTaskNotArchivable
		}
		return err
	}
	if task.Status != models.StatusCompleted || !task.ElderlyConfirmed {
		return models.ErrTaskNotArchivable
	}
	if err := s.tasks.Update(ctx, id, map[string]interface{}{
		"archived":  true,
		"updatedAt": time.Now(),
	}); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *taskService) GetTaskByID(ctx context.Context, id string) (*models.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

func (s *taskService) GetAllTasks(ctx context.Context) ([]models.Task, error) {
	val, err := s.redis.Get(ctx, allTasksCacheKey).Result()
	if err == nil {
		var cached []models.Task
		if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr == nil {
			return cached, nil
		}
	}

	tasks, err := s.tasks.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	data, _ := json.Marshal(tasks)
	_ = s.redis.Set(ctx, allTasksCacheKey, data, 5*time.Minute).Err()

	return tasks, nil
}

func (s *taskService) notify(ctx context.Context, userID, title, message, taskID string) {
	if _, err := s.notifier.Notify(ctx, userID, title, message, taskID); err != nil {
		log.Printf("Failed to notify user %s: %v", userID, err)
	}
}

func (s *taskService) invalidateCache(ctx context.Context) {
	if err := s.redis.Del(ctx, allTasksCacheKey).Err(); err != nil {
		log.Printf("Failed to invalidate task cache: %v", err)
	}
}

// resolveVolunteerID prefers the patch's volunteerId over the stored one.
// Both absent yields an empty recipient; Notify does not validate
// recipients, so the record is still written.
func resolveVolunteerID(task *models.Task, patch *models.TaskUpdate) string {
	if patch.VolunteerID != nil {
		return *patch.VolunteerID
	}
	if task.VolunteerID != nil {
		return *task.VolunteerID
	}
	return ""
}
