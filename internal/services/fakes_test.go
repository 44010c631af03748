package services

import (
	"context"
	"time"

	"elderease/internal/models"
)

type fakeTaskRepo struct {
	tasks map[string]*models.Task
}

func newFakeTaskRepo(tasks ...*models.Task) *fakeTaskRepo {
	repo := &fakeTaskRepo{tasks: map[string]*models.Task{}}
	for _, t := range tasks {
		repo.tasks[t.ID] = t
	}
	return repo
}

func (f *fakeTaskRepo) Create(ctx context.Context, task *models.Task) error {
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskRepo) GetByID(ctx context.Context, id string) (*models.Task, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, models.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskRepo) GetAll(ctx context.Context) ([]models.Task, error) {
	tasks := []models.Task{}
	for _, t := range f.tasks {
		tasks = append(tasks, *t)
	}
	return tasks, nil
}

func (f *fakeTaskRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	task, ok := f.tasks[id]
	if !ok {
		return models.ErrTaskNotFound
	}
	for key, value := range fields {
		switch key {
		case "title":
			task.Title = value.(string)
		case "description":
			task.Description = value.(string)
		case "status":
			task.Status = value.(models.TaskStatus)
		case "volunteerId":
			v := value.(string)
			task.VolunteerID = &v
		case "elderlyConfirmed":
			task.ElderlyConfirmed = value.(bool)
		case "rating":
			r := value.(float64)
			task.Rating = &r
		case "archived":
			task.Archived = value.(bool)
		case "updatedAt":
			task.UpdatedAt = value.(time.Time)
		}
	}
	return nil
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[string]*models.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByType(ctx context.Context, userType models.UserType) ([]models.User, error) {
	users := []models.User{}
	for _, u := range f.users {
		if u.UserType == userType {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (f *fakeUserRepo) AppendRating(ctx context.Context, id string, rating, average float64) error {
	user, ok := f.users[id]
	if !ok {
		return models.ErrUserNotFound
	}
	user.Ratings = append(user.Ratings, rating)
	user.AverageRating = average
	return nil
}

type fakeMessageRepo struct {
	messages []models.Message
}

func (f *fakeMessageRepo) Create(ctx context.Context, msg *models.Message) error {
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeMessageRepo) GetByTaskID(ctx context.Context, taskID string) ([]models.Message, error) {
	matched := []models.Message{}
	for _, m := range f.messages {
		if m.TaskID == taskID {
			matched = append(matched, m)
		}
	}
	return matched, nil
}

// fakeNotifier records every emitted notification so tests can assert on
// fan-out counts and recipients.
type fakeNotifier struct {
	sent []models.Notification
}

func (f *fakeNotifier) Notify(ctx context.Context, userID, title, message, taskID string) (*models.Notification, error) {
	notif := models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		TaskID:  taskID,
	}
	f.sent = append(f.sent, notif)
	return &notif, nil
}

func (f *fakeNotifier) sentTo(userID string) []models.Notification {
	matched := []models.Notification{}
	for _, n := range f.sent {
		if n.UserID == userID {
			matched = append(matched, n)
		}
	}
	return matched
}
