package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"trackguide/internal/models"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrUserPasswordMismatch = errors.New("user password mismatch")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionExpired       = errors.New("session expired")
	ErrTaskNotFound         = errors.New("task not found")
)

type AuthService interface {
	// Login authenticates the user by email and password.
	//
	// It deletes all sessions with the same user ID and creates
	// a new session and generates a new JWT token pair.
	//
	// It returns ErrUserNotFound if the user with the given
	// email doesn't exist or ErrUserPasswordMismatch if the
	// given password doesn't match the user's password.
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Refresh updates the session with the given refresh token.
	//
	// It returns ErrSessionNotFound if the session with the
	// given refresh token doesn't exist or ErrSessionExpired
	// if the session is expired.
	Refresh(ctx context.Context, params RefreshParams) (*LoginResult, error)

	// Register a user with the given email and password.
	//
	// It hashes the password, generates a unique ID and creates a
	// session with the given fingerprint and a fresh JWT token pair.
	//
	// It returns ErrUserAlreadyExists if the user
	// with the given email already exists.
	Register(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Logout invalidates all sessions with the given user ID.
	Logout(ctx context.Context, userID string) error

	// ParseJWTToken parses the given JWT token and returns the registered
	// claims or jwt.ErrTokenExpired if the token is expired.
	ParseJWTToken(token string) (*jwt.RegisteredClaims, error)
}

type SessionService interface {
	GetSessionByID(ctx context.Context, sessionID string) (*models.Session, error)
}

type TaskService interface {
	// CreateTask stores a new active task owned by params.UserID.
	CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error)

	// GetActiveTasks returns the user's active tasks,
	// newest first. Soft-deleted tasks are excluded.
	GetActiveTasks(ctx context.Context, userID string) ([]*models.Task, error)

	// GetTask returns the task regardless of its active flag.
	// It returns ErrTaskNotFound if the task doesn't exist or
	// belongs to another user.
	GetTask(ctx context.Context, userID string, taskID int64) (*models.Task, error)

	// UpdateTask applies the non-nil fields of params.
	// It returns ErrTaskNotFound if the task doesn't exist or
	// belongs to another user.
	UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error)

	// DeactivateTask soft-deletes the task. Progress entries
	// referencing it are retained.
	DeactivateTask(ctx context.Context, userID string, taskID int64) error
}

type ProgressService interface {
	// UpsertEntry sets the completion state and notes for
	// (user, task, day). The day is normalized to midnight UTC
	// before writing, so the uniqueness key is the calendar date
	// alone. The write is a single atomic upsert; concurrent
	// calls for the same key leave exactly one row, last writer
	// wins.
	//
	// The task must belong to the user but may be inactive.
	// It returns ErrTaskNotFound otherwise.
	UpsertEntry(ctx context.Context, params UpsertEntryParams) (*models.ProgressEntry, error)

	// QueryRange returns the user's entries joined with task
	// name and category, ordered by day ascending. The window is
	// applied only when both bounds are set, matching the range
	// endpoint's contract.
	QueryRange(ctx context.Context, params QueryRangeParams) ([]*models.ProgressEntry, error)
}

type ReportService interface {
	// MonthlyReport aggregates the user's progress for the given
	// month (1-12). Any store failure aborts the whole report.
	MonthlyReport(ctx context.Context, userID string, year, month int) (*MonthlyReport, error)
}

type LoginParams struct {
	Email       string
	Password    string
	Fingerprint string
}

type LoginResult struct {
	UserID                string
	SessionID             string
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

type RefreshParams struct {
	RefreshToken string
	Fingerprint  string
}

type CreateTaskParams struct {
	UserID      string
	Name        string
	Description string
	Category    string
}

type UpdateTaskParams struct {
	ID          int64
	UserID      string
	Name        *string
	Description *string
	Category    *string
	IsActive    *bool
}

type UpsertEntryParams struct {
	UserID    string
	TaskID    int64
	Day       time.Time
	Completed bool
	Notes     string
}

type QueryRangeParams struct {
	UserID    string
	StartDate time.Time
	EndDate   time.Time
}
