package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"trackguide/internal/models"
)

type progressServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewProgressService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) ProgressService {
	return &progressServiceImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

// normalizeDay strips the time-of-day so the uniqueness key is the
// calendar date alone, whatever time the client sent.
func normalizeDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *progressServiceImpl) UpsertEntry(ctx context.Context, params UpsertEntryParams) (*models.ProgressEntry, error) {
	entry := &models.ProgressEntry{
		UserID:    params.UserID,
		TaskID:    params.TaskID,
		Day:       normalizeDay(params.Day),
		Completed: params.Completed,
		Notes:     params.Notes,
	}

	// The task must belong to the user, but an inactive task still
	// accepts writes against its history.
	const selectTaskQuery = `
SELECT name,
       category
FROM tasks
WHERE id = $1 AND user_id = $2
`
	err := s.pgPool.QueryRow(
		ctx,
		selectTaskQuery,
		entry.TaskID,
		entry.UserID,
	).Scan(
		&entry.TaskName,
		&entry.TaskCategory,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().
				Int64("task_id", entry.TaskID).
				Str("user_id", entry.UserID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", entry.TaskID).
			Msg("failed to select task")
		return nil, err
	}

	// A single atomic statement keyed on (user_id, task_id, day).
	// Two concurrent upserts for the same key never leave two rows;
	// the last writer's completed/notes values survive.
	const upsertEntryQuery = `
INSERT INTO progress_entries (user_id,
                              task_id,
                              day,
                              completed,
                              notes,
                              created_at,
                              updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)
ON CONFLICT (user_id, task_id, day) DO UPDATE
SET completed = excluded.completed,
    notes = excluded.notes,
    updated_at = excluded.updated_at
RETURNING id, created_at, updated_at
`
	err = s.pgPool.QueryRow(
		ctx,
		upsertEntryQuery,
		entry.UserID,
		entry.TaskID,
		entry.Day,
		entry.Completed,
		entry.Notes,
		time.Now(),
	).Scan(
		&entry.ID,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", entry.TaskID).
			Time("day", entry.Day).
			Msg("failed to upsert progress entry")
		return nil, err
	}
	s.logger.Debug().
		Int64("entry_id", entry.ID).
		Time("day", entry.Day).
		Msg("upserted progress entry")

	s.logger.Info().
		Int64("entry_id", entry.ID).
		Int64("task_id", entry.TaskID).
		Str("user_id", entry.UserID).
		Bool("completed", entry.Completed).
		Msg("recorded progress")
	return entry, nil
}

func (s *progressServiceImpl) QueryRange(ctx context.Context, params QueryRangeParams) ([]*models.ProgressEntry, error) {
	const selectEntriesQuery = `
SELECT p.id,
       p.task_id,
       t.name,
       t.category,
       p.day,
       p.completed,
       p.notes,
       p.created_at,
       p.updated_at
FROM progress_entries p
         JOIN tasks t ON t.id = p.task_id
WHERE p.user_id = $1
ORDER BY p.day
`
	const selectEntriesInWindowQuery = `
SELECT p.id,
       p.task_id,
       t.name,
       t.category,
       p.day,
       p.completed,
       p.notes,
       p.created_at,
       p.updated_at
FROM progress_entries p
         JOIN tasks t ON t.id = p.task_id
WHERE p.user_id = $1 AND
      p.day BETWEEN $2 AND $3
ORDER BY p.day
`
	var (
		rows pgx.Rows
		err  error
	)
	// The window applies only when both bounds are present.
	if !params.StartDate.IsZero() && !params.EndDate.IsZero() {
		rows, err = s.pgPool.Query(
			ctx,
			selectEntriesInWindowQuery,
			params.UserID,
			normalizeDay(params.StartDate),
			normalizeDay(params.EndDate),
		)
	} else {
		rows, err = s.pgPool.Query(
			ctx,
			selectEntriesQuery,
			params.UserID,
		)
	}
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select progress entries")
		return nil, err
	}
	defer rows.Close()

	var entries []*models.ProgressEntry
	for rows.Next() {
		entry := &models.ProgressEntry{UserID: params.UserID}
		err = rows.Scan(
			&entry.ID,
			&entry.TaskID,
			&entry.TaskName,
			&entry.TaskCategory,
			&entry.Day,
			&entry.Completed,
			&entry.Notes,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan progress entry")
			return nil, err
		}
		entries = append(entries, entry)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(entries)).
		Str("user_id", params.UserID).
		Msg("selected progress entries")

	return entries, nil
}
