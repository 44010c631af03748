package models

import "time"

// Message belongs to a task's chat log. Append-only.
type Message struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	TaskID    string    `bson:"taskId" json:"taskId"`
	SenderID  string    `bson:"senderId" json:"senderId"`
	Content   string    `bson:"content" json:"content"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
