package models

import "errors"

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrDocumentNotFound     = errors.New("document not found")
	ErrTaskNotArchivable    = errors.New("task cannot be archived")
	ErrEmptyRatings         = errors.New("ratings sequence is empty")
)
