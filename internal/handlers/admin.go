package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/productify/deepwork-backend/internal/jobs"
)

type AdminHandler struct {
	scheduler *jobs.Scheduler
}

func NewAdminHandler(scheduler *jobs.Scheduler) *AdminHandler {
	return &AdminHandler{scheduler: scheduler}
}

// Resync recomputes every active user's daily score plus the team rollups
// for one date, synchronously. Meant for operators after backfilling
// activity data.
func (ah *AdminHandler) Resync(c *gin.Context) {
	day, err := parseDateParam(c, "date")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_date", err)
		return
	}
	if err := ah.scheduler.RunSweep(c.Request.Context(), day); err != nil {
		RespondError(c, http.StatusInternalServerError, "resync_failed", err)
		return
	}
	RespondOK(c, gin.H{"status": "ok", "date": day.Format("2006-01-02")})
}
