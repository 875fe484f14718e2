package models

import "time"

// ProgressEntry records whether a task was completed on a calendar day.
// Day carries date granularity only (midnight UTC); at most one entry
// exists per (user, task, day).
type ProgressEntry struct {
	ID        int64
	UserID    string
	TaskID    int64
	Day       time.Time
	Completed bool
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined from the tasks table, never stored.
	TaskName     string
	TaskCategory string
}
