package domain

import "time"

// Task is owned by exactly one User. UserID never changes after creation.
type Task struct {
	ID          int64
	UserID      int64
	Title       string
	Description *string
	Completed   bool
	DueDate     *time.Time
	CreatedAt   time.Time
}
