package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/productify/deepwork-backend/internal/services"
)

type FocusHandler struct {
	focus *services.FocusService
}

func NewFocusHandler(focus *services.FocusService) *FocusHandler {
	return &FocusHandler{focus: focus}
}

func parseIntParam(c *gin.Context, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("invalid " + name + ": expected an integer")
	}
	return n, nil
}

func (fh *FocusHandler) GetGaps(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	from, err := parseDateParam(c, "start")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_date", err)
		return
	}
	to, err := parseDateParam(c, "end")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_date", err)
		return
	}
	minMinutes, err := parseIntParam(c, "min_minutes", 0)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_param", err)
		return
	}
	gaps, err := fh.focus.DetectCalendarGaps(c.Request.Context(), userID, from, to, minMinutes)
	if err != nil {
		if strings.HasPrefix(err.Error(), "invalid range") {
			RespondError(c, http.StatusBadRequest, "invalid_range", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "gap_detection_failed", err)
		return
	}
	RespondOK(c, gin.H{"gaps": gaps})
}

func (fh *FocusHandler) GetSuggestions(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	daysAhead, err := parseIntParam(c, "days_ahead", 0)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_param", err)
		return
	}
	suggestions, err := fh.focus.GetFocusSuggestions(c.Request.Context(), userID, time.Now().UTC(), daysAhead)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "suggestions_failed", err)
		return
	}
	RespondOK(c, gin.H{"suggestions": suggestions})
}
