package models

import (
	"errors"
	"time"
)

type TaskStatus string

// Statuses with notification rules attached. Status is an open string:
// clients may write other values (cancellation flows etc.), which merge
// without triggering any rule.
const (
	StatusCreated   TaskStatus = "Created"
	StatusAccepted  TaskStatus = "Accepted"
	StatusCompleted TaskStatus = "Completed"
)

// Task links one elderly requester to at most one volunteer. bson keys
// match the json keys so documents read back identically through the
// generic collection surface.
type Task struct {
	ID               string     `bson:"_id,omitempty" json:"id"`
	Title            string     `bson:"title" json:"title"`
	Description      string     `bson:"description,omitempty" json:"description,omitempty"`
	ElderlyID        string     `bson:"elderlyId" json:"elderlyId"`
	VolunteerID      *string    `bson:"volunteerId,omitempty" json:"volunteerId,omitempty"`
	Status           TaskStatus `bson:"status" json:"status"`
	ElderlyConfirmed bool       `bson:"elderlyConfirmed" json:"elderlyConfirmed"`
	Rating           *float64   `bson:"rating,omitempty" json:"rating,omitempty"`
	Archived         bool       `bson:"archived" json:"archived"`
	CreatedAt        time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time  `bson:"updatedAt" json:"updatedAt"`
}

func (t *Task) Validate() error {
	if t.Title == "" || t.ElderlyID == "" {
		return errors.New("missing required task fields")
	}
	return nil
}

// TaskUpdate is a partial patch; nil fields are left untouched.
type TaskUpdate struct {
	Title            *string     `json:"title"`
	Description      *string     `json:"description"`
	Status           *TaskStatus `json:"status"`
	VolunteerID      *string     `json:"volunteerId"`
	ElderlyConfirmed *bool       `json:"elderlyConfirmed"`
	Rating           *float64    `json:"rating"`
}

// Fields returns the supplied fields as a flat map for a merge update.
func (u *TaskUpdate) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if u.Title != nil {
		fields["title"] = *u.Title
	}
	if u.Description != nil {
		fields["description"] = *u.Description
	}
	if u.Status != nil {
		fields["status"] = *u.Status
	}
	if u.VolunteerID != nil {
		fields["volunteerId"] = *u.VolunteerID
	}
	if u.ElderlyConfirmed != nil {
		fields["elderlyConfirmed"] = *u.ElderlyConfirmed
	}
	if u.Rating != nil {
		fields["rating"] = *u.Rating
	}
	return fields
}
