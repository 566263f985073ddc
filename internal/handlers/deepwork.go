package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/productify/deepwork-backend/internal/services"
)

type DeepWorkHandler struct {
	deepwork *services.DeepWorkService
}

func NewDeepWorkHandler(deepwork *services.DeepWorkService) *DeepWorkHandler {
	return &DeepWorkHandler{deepwork: deepwork}
}

// parseDateParam reads a YYYY-MM-DD query param, defaulting to today (UTC)
// when absent.
func parseDateParam(c *gin.Context, name string) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return time.Now().UTC(), nil
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, errors.New("invalid " + name + ": expected YYYY-MM-DD")
	}
	return day, nil
}

func (dh *DeepWorkHandler) GetScore(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	day, err := parseDateParam(c, "date")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_date", err)
		return
	}
	score, err := dh.deepwork.GetScoreForDate(c.Request.Context(), userID, day)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "score_lookup_failed", err)
		return
	}
	if score == nil {
		RespondError(c, http.StatusNotFound, "score_not_found", errors.New("no score calculated for that date"))
		return
	}
	RespondOK(c, score)
}

func (dh *DeepWorkHandler) Calculate(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	day, err := parseDateParam(c, "date")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_date", err)
		return
	}
	score, err := dh.deepwork.CalculateDailyScore(c.Request.Context(), userID, day)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "score_calculation_failed", err)
		return
	}
	RespondOK(c, score)
}

func (dh *DeepWorkHandler) GetRange(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	from, err := parseDateParam(c, "from")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_date", err)
		return
	}
	to, err := parseDateParam(c, "to")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_date", err)
		return
	}
	if to.Before(from) {
		RespondError(c, http.StatusBadRequest, "invalid_range", errors.New("to precedes from"))
		return
	}
	scores, err := dh.deepwork.GetScoresForRange(c.Request.Context(), userID, from, to)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "score_lookup_failed", err)
		return
	}
	RespondOK(c, gin.H{"scores": scores})
}

func (dh *DeepWorkHandler) GetWeekly(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	weekStart, err := parseDateParam(c, "week_start")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_date", err)
		return
	}
	summary, err := dh.deepwork.GetWeeklySummary(c.Request.Context(), userID, weekStart)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "weekly_summary_failed", err)
		return
	}
	RespondOK(c, summary)
}
