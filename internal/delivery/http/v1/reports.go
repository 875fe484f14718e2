package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (h *handlerImpl) HandleMonthlyReport(c *gin.Context) {
	userID, exists := getStringFromContext(c, userIDCtxKey)
	if !exists {
		h.logger.Error().Msg("no user id found in context")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		h.logger.Warn().
			Str("year", c.Param("year")).
			Msg("invalid year")
		abort(c, newBadRequestError("invalid year"))
		return
	}

	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		h.logger.Warn().
			Str("month", c.Param("month")).
			Msg("invalid month")
		abort(c, newBadRequestError("invalid month"))
		return
	}

	report, err := h.reports.MonthlyReport(c, userID, year, month)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int("year", year).
			Int("month", month).
			Msg("failed to build monthly report")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, report)
}
