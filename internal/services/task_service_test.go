package services

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"elderease/internal/models"
)

func newTestTaskService(t *testing.T, tasks *fakeTaskRepo, users *fakeUserRepo) (TaskService, *fakeNotifier) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	notifier := &fakeNotifier{}
	return NewTaskService(tasks, users, notifier, rdb), notifier
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }

func statusPtr(s models.TaskStatus) *models.TaskStatus { return &s }

func volunteer(id, first, last string) *models.User {
	return &models.User{ID: id, UserType: models.UserTypeVolunteer, FirstName: first, LastName: last}
}

func TestCreateTask_NotifiesEveryVolunteer(t *testing.T) {
	users := newFakeUserRepo(
		volunteer("v1", "Anna", "Kovacs"),
		volunteer("v2", "Ben", "Osei"),
		volunteer("v3", "Carla", "Diaz"),
		&models.User{ID: "e1", UserType: models.UserTypeElderly},
	)
	svc, notifier := newTestTaskService(t, newFakeTaskRepo(), users)

	task := &models.Task{Title: "Buy groceries", ElderlyID: "e1"}
	if err := svc.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.ID == "" {
		t.Fatal("CreateTask did not assign an id")
	}
	if task.Status != models.StatusCreated {
		t.Errorf("status = %q, want %q", task.Status, models.StatusCreated)
	}

	if len(notifier.sent) != 3 {
		t.Fatalf("sent %d notifications, want 3", len(notifier.sent))
	}
	seen := map[string]bool{}
	for _, n := range notifier.sent {
		seen[n.UserID] = true
		if n.Title != "New Task Available" {
			t.Errorf("title = %q, want %q", n.Title, "New Task Available")
		}
		if n.TaskID != task.ID {
			t.Errorf("taskId = %q, want %q", n.TaskID, task.ID)
		}
		if n.Message != `A new task "Buy groceries" is available.` {
			t.Errorf("unexpected message %q", n.Message)
		}
	}
	for _, id := range []string{"v1", "v2", "v3"} {
		if !seen[id] {
			t.Errorf("volunteer %s was not notified", id)
		}
	}
	if seen["e1"] {
		t.Error("elderly user was notified about their own task")
	}
}

func TestCreateTask_NoVolunteersIsNotAnError(t *testing.T) {
	users := newFakeUserRepo(&models.User{ID: "e1", UserType: models.UserTypeElderly})
	svc, notifier := newTestTaskService(t, newFakeTaskRepo(), users)

	err := svc.CreateTask(context.Background(), &models.Task{Title: "Walk the dog", ElderlyID: "e1"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("sent %d notifications, want 0", len(notifier.sent))
	}
}

func TestUpdateTask_AcceptedNotifiesRequester(t *testing.T) {
	tasks := newFakeTaskRepo(&models.Task{ID: "t1", Title: "Buy groceries", ElderlyID: "e1", Status: models.StatusCreated})
	users := newFakeUserRepo(volunteer("v1", "Anna", "Kovacs"))
	svc, notifier := newTestTaskService(t, tasks, users)

	patch := &models.TaskUpdate{Status: statusPtr(models.StatusAccepted), VolunteerID: strPtr("v1")}
	if err := svc.UpdateTask(context.Background(), "t1", patch); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(notifier.sent))
	}
	n := notifier.sent[0]
	if n.UserID != "e1" || n.Title != "Task Accepted" {
		t.Errorf("notification = %+v, want Task Accepted to e1", n)
	}
	want := `Your task "Buy groceries" has been accepted by Anna Kovacs.`
	if n.Message != want {
		t.Errorf("message = %q, want %q", n.Message, want)
	}

	stored, _ := tasks.GetByID(context.Background(), "t1")
	if stored.Status != models.StatusAccepted || stored.VolunteerID == nil || *stored.VolunteerID != "v1" {
		t.Errorf("stored task = %+v, want accepted by v1", stored)
	}
}

func TestUpdateTask_AcceptedUnknownVolunteer(t *testing.T) {
	tasks := newFakeTaskRepo(&models.Task{ID: "t1", Title: "Buy groceries", ElderlyID: "e1", Status: models.StatusCreated})
	svc, notifier := newTestTaskService(t, tasks, newFakeUserRepo())

	patch := &models.TaskUpdate{Status: statusPtr(models.StatusAccepted), VolunteerID: strPtr("ghost")}
	err := svc.UpdateTask(context.Background(), "t1", patch)
	if !errors.Is(err, models.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
	if len(notifier.sent) != 0 {
		t.Errorf("sent %d notifications, want 0", len(notifier.sent))
	}

	// The failed accept must not half-apply.
	stored, _ := tasks.GetByID(context.Background(), "t1")
	if stored.Status != models.StatusCreated || stored.VolunteerID != nil {
		t.Errorf("stored task was modified: %+v", stored)
	}
}

func TestUpdateTask_CompletedNotifiesBothParticipants(t *testing.T) {
	tasks := newFakeTaskRepo(&models.Task{
		ID: "t1", Title: "Buy groceries", ElderlyID: "e1",
		VolunteerID: strPtr("v1"), Status: models.StatusAccepted,
	})
	svc, notifier := newTestTaskService(t, tasks, newFakeUserRepo(volunteer("v1", "Anna", "Kovacs")))

	patch := &models.TaskUpdate{Status: statusPtr(models.StatusCompleted), Description: strPtr("done early")}
	if err := svc.UpdateTask(context.Background(), "t1", patch); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	if len(notifier.sent) != 2 {
		t.Fatalf("sent %d notifications, want 2", len(notifier.sent))
	}
	if got := notifier.sentTo("e1"); len(got) != 1 || got[0].Title != "Task Completed" {
		t.Errorf("requester notifications = %+v", got)
	}
	if got := notifier.sentTo("v1"); len(got) != 1 || got[0].Title != "Task Completed" {
		t.Errorf("assignee notifications = %+v", got)
	}
}

func TestUpdateTask_ConfirmedAndRatedNotifiesAssignee(t *testing.T) {
	tasks := newFakeTaskRepo(&models.Task{
		ID: "t1", Title: "Buy groceries", ElderlyID: "e1",
		VolunteerID: strPtr("v1"), Status: models.StatusCompleted,
	})
	svc, notifier := newTestTaskService(t, tasks, newFakeUserRepo())

	patch := &models.TaskUpdate{ElderlyConfirmed: boolPtr(true), Rating: floatPtr(5)}
	if err := svc.UpdateTask(context.Background(), "t1", patch); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(notifier.sent))
	}
	n := notifier.sent[0]
	if n.UserID != "v1" || n.Title != "Task Rated" {
		t.Errorf("notification = %+v, want Task Rated to v1", n)
	}
	want := `The task "Buy groceries" has been confirmed completed and you've received a rating of 5.`
	if n.Message != want {
		t.Errorf("message = %q, want %q", n.Message, want)
	}
}

func TestUpdateTask_OnlyOneRuleFires(t *testing.T) {
	tasks := newFakeTaskRepo(&models.Task{
		ID: "t1", Title: "Buy groceries", ElderlyID: "e1",
		VolunteerID: strPtr("v1"), Status: models.StatusAccepted,
	})
	svc, notifier := newTestTaskService(t, tasks, newFakeUserRepo())

	// Completed outranks confirmed-and-rated when both appear in one patch.
	patch := &models.TaskUpdate{
		Status:           statusPtr(models.StatusCompleted),
		ElderlyConfirmed: boolPtr(true),
		Rating:           floatPtr(4),
	}
	if err := svc.UpdateTask(context.Background(), "t1", patch); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if len(notifier.sent) != 2 {
		t.Fatalf("sent %d notifications, want 2 (Completed rule only)", len(notifier.sent))
	}
	for _, n := range notifier.sent {
		if n.Title != "Task Completed" {
			t.Errorf("unexpected notification %q", n.Title)
		}
	}
}

func TestUpdateTask_UnrecognizedStatusMergesSilently(t *testing.T) {
	tasks := newFakeTaskRepo(&models.Task{ID: "t1", Title: "Buy groceries", ElderlyID: "e1", Status: models.StatusCreated})
	svc, notifier := newTestTaskService(t, tasks, newFakeUserRepo())

	patch := &models.TaskUpdate{Status: statusPtr("Cancelled")}
	if err := svc.UpdateTask(context.Background(), "t1", patch); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Errorf("sent %d notifications, want 0", len(notifier.sent))
	}
	stored, _ := tasks.GetByID(context.Background(), "t1")
	if stored.Status != "Cancelled" {
		t.Errorf("status = %q, want Cancelled", stored.Status)
	}
}

func TestUpdateTask_NotFound(t *testing.T) {
	svc, _ := newTestTaskService(t, newFakeTaskRepo(), newFakeUserRepo())
	err := svc.UpdateTask(context.Background(), "missing", &models.TaskUpdate{})
	if !errors.Is(err, models.ErrTaskNotFound) {
		t.Fatalf("err = %v, want ErrTaskNotFound", err)
	}
}

func TestArchiveTask_Succeeds(t *testing.T) {
	tasks := newFakeTaskRepo(&models.Task{
		ID: "t1", Title: "Buy groceries", ElderlyID: "e1",
		Status: models.StatusCompleted, ElderlyConfirmed: true,
	})
	svc, notifier := newTestTaskService(t, tasks, newFakeUserRepo())

	if err := svc.ArchiveTask(context.Background(), "t1"); err != nil {
		t.Fatalf("ArchiveTask: %v", err)
	}
	stored, _ := tasks.GetByID(context.Background(), "t1")
	if !stored.Archived {
		t.Error("task was not archived")
	}
	if len(notifier.sent) != 0 {
		t.Errorf("archive emitted %d notifications, want 0", len(notifier.sent))
	}
}

func TestArchiveTask_RejectsUnmetPreconditions(t *testing.T) {
	cases := []struct {
		name string
		task *models.Task
	}{
		{"not completed", &models.Task{ID: "t1", Status: models.StatusAccepted, ElderlyConfirmed: true}},
		{"not confirmed", &models.Task{ID: "t1", Status: models.StatusCompleted}},
		{"neither", &models.Task{ID: "t1", Status: models.StatusCreated}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tasks := newFakeTaskRepo(tc.task)
			svc, _ := newTestTaskService(t, tasks, newFakeUserRepo())

			err := svc.ArchiveTask(context.Background(), "t1")
			if !errors.Is(err, models.ErrTaskNotArchivable) {
				t.Fatalf("err = %v, want ErrTaskNotArchivable", err)
			}
			stored, _ := tasks.GetByID(context.Background(), "t1")
			if stored.Archived {
				t.Error("task was archived despite unmet preconditions")
			}
		})
	}
}

func TestArchiveTask_MissingTaskIsClientError(t *testing.T) {
	svc, _ := newTestTaskService(t, newFakeTaskRepo(), newFakeUserRepo())
	err := svc.ArchiveTask(context.Background(), "missing")
	if !errors.Is(err, models.ErrTaskNotArchivable) {
		t.Fatalf("err = %v, want ErrTaskNotArchivable", err)
	}
}

func TestGetAllTasks_CachesAndInvalidates(t *testing.T) {
	tasks := newFakeTaskRepo(&models.Task{ID: "t1", Title: "Buy groceries", ElderlyID: "e1", Status: models.StatusCreated})
	users := newFakeUserRepo()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewTaskService(tasks, users, &fakeNotifier{}, rdb)

	first, err := svc.GetAllTasks(context.Background())
	if err != nil {
		t.Fatalf("GetAllTasks: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("got %d tasks, want 1", len(first))
	}

	// A write that bypasses the service is invisible while the cache holds.
	tasks.tasks["t2"] = &models.Task{ID: "t2", Title: "Water plants", ElderlyID: "e1"}
	cached, err := svc.GetAllTasks(context.Background())
	if err != nil {
		t.Fatalf("GetAllTasks: %v", err)
	}
	if len(cached) != 1 {
		t.Fatalf("got %d tasks from cache, want 1", len(cached))
	}

	// A service-level mutation invalidates the cache.
	if err := svc.CreateTask(context.Background(), &models.Task{Title: "Pick up meds", ElderlyID: "e1"}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	fresh, err := svc.GetAllTasks(context.Background())
	if err != nil {
		t.Fatalf("GetAllTasks: %v", err)
	}
	if len(fresh) != 3 {
		t.Fatalf("got %d tasks after invalidation, want 3", len(fresh))
	}
}
