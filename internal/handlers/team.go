package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/productify/deepwork-backend/internal/repos"
	"github.com/productify/deepwork-backend/internal/services"
)

type TeamHandler struct {
	teamService *services.TeamDeepWorkService
	members     repos.TeamMemberRepo
}

func NewTeamHandler(teamService *services.TeamDeepWorkService, members repos.TeamMemberRepo) *TeamHandler {
	return &TeamHandler{teamService: teamService, members: members}
}

// resolveTeam parses the :id param, checks the team exists, and checks the
// caller belongs to it. Errors are written to the response; callers bail out
// on uuid.Nil.
func (th *TeamHandler) resolveTeam(c *gin.Context) uuid.UUID {
	userID, err := currentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return uuid.Nil
	}
	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_team_id", errors.New("team id must be a uuid"))
		return uuid.Nil
	}
	team, err := th.teamService.GetTeam(c.Request.Context(), teamID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "team_lookup_failed", err)
		return uuid.Nil
	}
	if team == nil {
		RespondError(c, http.StatusNotFound, "team_not_found", errors.New("team not found"))
		return uuid.Nil
	}
	member, err := th.members.IsMember(c.Request.Context(), nil, teamID, userID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "team_lookup_failed", err)
		return uuid.Nil
	}
	if !member {
		RespondError(c, http.StatusForbidden, "not_a_member", errors.New("caller is not on this team"))
		return uuid.Nil
	}
	return teamID
}

func (th *TeamHandler) GetScore(c *gin.Context) {
	teamID := th.resolveTeam(c)
	if teamID == uuid.Nil {
		return
	}
	day, err := parseDateParam(c, "date")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_date", err)
		return
	}
	score, err := th.teamService.TeamScoreForDate(c.Request.Context(), teamID, day)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "score_lookup_failed", err)
		return
	}
	if score == nil {
		RespondError(c, http.StatusNotFound, "score_not_found", errors.New("no team score calculated for that date"))
		return
	}
	RespondOK(c, score)
}

func (th *TeamHandler) CalculateScore(c *gin.Context) {
	teamID := th.resolveTeam(c)
	if teamID == uuid.Nil {
		return
	}
	day, err := parseDateParam(c, "date")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_date", err)
		return
	}
	score, err := th.teamService.CalculateTeamScore(c.Request.Context(), teamID, day)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "score_calculation_failed", err)
		return
	}
	RespondOK(c, score)
}

func (th *TeamHandler) GenerateAlerts(c *gin.Context) {
	teamID := th.resolveTeam(c)
	if teamID == uuid.Nil {
		return
	}
	day, err := parseDateParam(c, "date")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_date", err)
		return
	}
	alerts, err := th.teamService.GenerateAlerts(c.Request.Context(), teamID, day)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "alert_generation_failed", err)
		return
	}
	RespondOK(c, gin.H{"alerts": alerts})
}

func (th *TeamHandler) ListAlerts(c *gin.Context) {
	teamID := th.resolveTeam(c)
	if teamID == uuid.Nil {
		return
	}
	alerts, err := th.teamService.ActiveAlerts(c.Request.Context(), teamID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "alert_lookup_failed", err)
		return
	}
	RespondOK(c, gin.H{"alerts": alerts})
}

func (th *TeamHandler) DismissAlert(c *gin.Context) {
	teamID := th.resolveTeam(c)
	if teamID == uuid.Nil {
		return
	}
	alertID, err := uuid.Parse(c.Param("alertID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_alert_id", errors.New("alert id must be a uuid"))
		return
	}
	dismissed, err := th.teamService.DismissAlert(c.Request.Context(), teamID, alertID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "alert_dismiss_failed", err)
		return
	}
	if !dismissed {
		RespondError(c, http.StatusNotFound, "alert_not_found", errors.New("no active alert with that id"))
		return
	}
	RespondOK(c, gin.H{"dismissed": true})
}

func (th *TeamHandler) GenerateSuggestions(c *gin.Context) {
	teamID := th.resolveTeam(c)
	if teamID == uuid.Nil {
		return
	}
	daysAhead, err := parseIntParam(c, "days_ahead", 0)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_param", err)
		return
	}
	suggestions, err := th.teamService.GenerateSchedulingSuggestions(c.Request.Context(), teamID, daysAhead)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "suggestion_generation_failed", err)
		return
	}
	RespondOK(c, gin.H{"suggestions": suggestions})
}

func (th *TeamHandler) ListSuggestions(c *gin.Context) {
	teamID := th.resolveTeam(c)
	if teamID == uuid.Nil {
		return
	}
	suggestions, err := th.teamService.ListSchedulingSuggestions(c.Request.Context(), teamID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "suggestion_lookup_failed", err)
		return
	}
	RespondOK(c, gin.H{"suggestions": suggestions})
}

func (th *TeamHandler) DismissSuggestion(c *gin.Context) {
	teamID := th.resolveTeam(c)
	if teamID == uuid.Nil {
		return
	}
	suggestionID, err := uuid.Parse(c.Param("suggestionID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_suggestion_id", errors.New("suggestion id must be a uuid"))
		return
	}
	dismissed, err := th.teamService.DismissSuggestion(c.Request.Context(), teamID, suggestionID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "suggestion_dismiss_failed", err)
		return
	}
	if !dismissed {
		RespondError(c, http.StatusNotFound, "suggestion_not_found", errors.New("no pending suggestion with that id"))
		return
	}
	RespondOK(c, gin.H{"dismissed": true})
}

func (th *TeamHandler) ApplySuggestion(c *gin.Context) {
	teamID := th.resolveTeam(c)
	if teamID == uuid.Nil {
		return
	}
	suggestionID, err := uuid.Parse(c.Param("suggestionID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_suggestion_id", errors.New("suggestion id must be a uuid"))
		return
	}
	applied, err := th.teamService.ApplySuggestion(c.Request.Context(), teamID, suggestionID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "suggestion_apply_failed", err)
		return
	}
	if !applied {
		RespondError(c, http.StatusNotFound, "suggestion_not_found", errors.New("no pending suggestion with that id"))
		return
	}
	RespondOK(c, gin.H{"applied": true})
}
