package models

import "time"

// Task is a user-defined recurring activity tracked day by day.
// Deleting a task only clears IsActive; progress rows that
// reference it are kept.
type Task struct {
	ID          int64
	UserID      string
	Name        string
	Description string
	Category    string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
