package v1

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"trackguide/internal/models"
	"trackguide/internal/services"
)

type getProgressResponse struct {
	ID           int64     `json:"id"`
	TaskID       int64     `json:"task_id"`
	TaskName     string    `json:"task_name"`
	TaskCategory string    `json:"task_category"`
	Date         time.Time `json:"date"`
	Completed    bool      `json:"completed"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newGetProgressResponse(entry *models.ProgressEntry) getProgressResponse {
	return getProgressResponse{
		ID:           entry.ID,
		TaskID:       entry.TaskID,
		TaskName:     entry.TaskName,
		TaskCategory: entry.TaskCategory,
		Date:         entry.Day,
		Completed:    entry.Completed,
		Notes:        entry.Notes,
		CreatedAt:    entry.CreatedAt,
		UpdatedAt:    entry.UpdatedAt,
	}
}

type upsertProgressRequest struct {
	TaskID    int64  `json:"task_id" binding:"required"`
	Date      string `json:"date" binding:"required"`
	Completed bool   `json:"completed"`
	Notes     string `json:"notes" binding:"max=200"`
}

func (h *handlerImpl) HandleUpsertProgress(c *gin.Context) {
	userID, exists := getStringFromContext(c, userIDCtxKey)
	if !exists {
		h.logger.Error().Msg("no user id found in context")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	var req upsertProgressRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError("task id and date are required"))
		return
	}

	day, err := parseDate(req.Date)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("date", req.Date).
			Msg("invalid date")
		abort(c, newBadRequestError("invalid date"))
		return
	}

	entry, err := h.progress.UpsertEntry(c, services.UpsertEntryParams{
		UserID:    userID,
		TaskID:    req.TaskID,
		Day:       day,
		Completed: req.Completed,
		Notes:     req.Notes,
	})
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			abort(c, newNotFoundError(services.ErrTaskNotFound.Error()))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to upsert progress entry")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, newGetProgressResponse(entry))
}

func (h *handlerImpl) HandleGetProgress(c *gin.Context) {
	userID, exists := getStringFromContext(c, userIDCtxKey)
	if !exists {
		h.logger.Error().Msg("no user id found in context")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	params := services.QueryRangeParams{UserID: userID}
	if v := c.Query("start_date"); v != "" {
		start, err := parseDate(v)
		if err != nil {
			abort(c, newBadRequestError("invalid start_date"))
			return
		}
		params.StartDate = start
	}
	if v := c.Query("end_date"); v != "" {
		end, err := parseDate(v)
		if err != nil {
			abort(c, newBadRequestError("invalid end_date"))
			return
		}
		params.EndDate = end
	}

	entries, err := h.progress.QueryRange(c, params)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to query progress entries")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	response := make([]getProgressResponse, len(entries))
	for i, entry := range entries {
		response[i] = newGetProgressResponse(entry)
	}

	c.JSON(http.StatusOK, response)
}

// parseDate accepts both a full timestamp and a bare calendar date.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %s", s)
}
