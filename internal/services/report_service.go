package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"trackguide/internal/models"
)

// MonthlyReport is the caller-facing report payload. Field names are
// part of the API contract and must not change.
type MonthlyReport struct {
	Month     string        `json:"month"`
	Summary   ReportSummary `json:"summary"`
	TaskStats []TaskStats   `json:"taskStats"`
}

type ReportSummary struct {
	TotalTasks            int     `json:"totalTasks"`
	TotalEntries          int     `json:"totalEntries"`
	CompletedEntries      int     `json:"completedEntries"`
	OverallCompletionRate float64 `json:"overallCompletionRate"`
}

type TaskStats struct {
	TaskName       string     `json:"taskName"`
	Category       string     `json:"category"`
	TotalDays      int        `json:"totalDays"`
	CompletedDays  int        `json:"completedDays"`
	CompletionRate float64    `json:"completionRate"`
	Dates          []DateStat `json:"dates"`
}

type DateStat struct {
	Date      time.Time `json:"date"`
	Completed bool      `json:"completed"`
	Notes     string    `json:"notes"`
}

type reportServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewReportService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) ReportService {
	return &reportServiceImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

// monthWindow returns the inclusive bounds of the month: the first
// instant of day 1 and 23:59:59 of the last day. Day zero of the next
// month rolls back to the last day of the target month, which handles
// 28/29/30/31-day months uniformly.
func monthWindow(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.Month(month)+1, 0, 23, 59, 59, 0, time.UTC)
	return start, end
}

// round2 rounds to two decimal places, matching the percentage
// formatting the report has always produced.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *reportServiceImpl) MonthlyReport(ctx context.Context, userID string, year, month int) (*MonthlyReport, error) {
	start, end := monthWindow(year, month)

	var (
		tasks   []*models.Task
		entries []*models.ProgressEntry
	)
	// Two independent reads; either failure aborts the report.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = s.selectActiveTasksForReport(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = s.selectEntriesInWindow(gctx, userID, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Int("year", year).
			Int("month", month).
			Msg("failed to load report data")
		return nil, err
	}

	report := buildMonthlyReport(tasks, entries, year, month)
	s.logger.Info().
		Str("user_id", userID).
		Str("month", report.Month).
		Int("total_tasks", report.Summary.TotalTasks).
		Int("total_entries", report.Summary.TotalEntries).
		Msg("built monthly report")
	return report, nil
}

// buildMonthlyReport runs the aggregation over already-fetched rows.
// Entries whose task is no longer active get no per-task stats but
// still count toward the summary totals.
func buildMonthlyReport(tasks []*models.Task, entries []*models.ProgressEntry, year, month int) *MonthlyReport {
	stats := make([]TaskStats, len(tasks))
	statIndex := make(map[int64]int, len(tasks))
	for i, task := range tasks {
		stats[i] = TaskStats{
			TaskName: task.Name,
			Category: task.Category,
			Dates:    make([]DateStat, 0),
		}
		statIndex[task.ID] = i
	}

	completedEntries := 0
	for _, entry := range entries {
		if entry.Completed {
			completedEntries++
		}

		i, ok := statIndex[entry.TaskID]
		if !ok {
			continue
		}
		stats[i].TotalDays++
		if entry.Completed {
			stats[i].CompletedDays++
		}
		stats[i].Dates = append(stats[i].Dates, DateStat{
			Date:      entry.Day,
			Completed: entry.Completed,
			Notes:     entry.Notes,
		})
	}

	for i := range stats {
		if stats[i].TotalDays > 0 {
			stats[i].CompletionRate = round2(float64(stats[i].CompletedDays) / float64(stats[i].TotalDays) * 100)
		}
	}

	summary := ReportSummary{
		TotalTasks:       len(tasks),
		TotalEntries:     len(entries),
		CompletedEntries: completedEntries,
	}
	if summary.TotalEntries > 0 {
		summary.OverallCompletionRate = round2(float64(completedEntries) / float64(summary.TotalEntries) * 100)
	}

	return &MonthlyReport{
		Month:     fmt.Sprintf("%d-%02d", year, month),
		Summary:   summary,
		TaskStats: stats,
	}
}

func (s *reportServiceImpl) selectActiveTasksForReport(ctx context.Context, userID string) ([]*models.Task, error) {
	const selectActiveTasksQuery = `
SELECT id,
       name,
       category
FROM tasks
WHERE user_id = $1 AND
      is_active
ORDER BY created_at
`
	rows, err := s.pgPool.Query(
		ctx,
		selectActiveTasksQuery,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task := &models.Task{UserID: userID, IsActive: true}
		err = rows.Scan(
			&task.ID,
			&task.Name,
			&task.Category,
		)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *reportServiceImpl) selectEntriesInWindow(ctx context.Context, userID string, start, end time.Time) ([]*models.ProgressEntry, error) {
	const selectEntriesQuery = `
SELECT task_id,
       day,
       completed,
       notes
FROM progress_entries
WHERE user_id = $1 AND
      day BETWEEN $2 AND $3
ORDER BY day
`
	rows, err := s.pgPool.Query(
		ctx,
		selectEntriesQuery,
		userID,
		start,
		end,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.ProgressEntry
	for rows.Next() {
		entry := &models.ProgressEntry{UserID: userID}
		err = rows.Scan(
			&entry.TaskID,
			&entry.Day,
			&entry.Completed,
			&entry.Notes,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
