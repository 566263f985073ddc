package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/productify/deepwork-backend/internal/services"
)

type ClassifyHandler struct {
	classification *services.ClassificationService
}

func NewClassifyHandler(classification *services.ClassificationService) *ClassifyHandler {
	return &ClassifyHandler{classification: classification}
}

func (ch *ClassifyHandler) Classify(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	var req services.ClassifyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if strings.TrimSpace(req.AppName) == "" && strings.TrimSpace(req.URL) == "" {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("app_name or url is required"))
		return
	}
	result, err := ch.classification.Classify(c.Request.Context(), userID, req.AppName, req.WindowTitle, req.URL)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "classify_failed", err)
		return
	}
	RespondOK(c, result)
}

func (ch *ClassifyHandler) ClassifyBatch(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	var req struct {
		Samples []services.ClassifyInput `json:"samples"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	results, err := ch.classification.ClassifyBatch(c.Request.Context(), userID, req.Samples)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "classify_failed", err)
		return
	}
	RespondOK(c, gin.H{
		"results":          results,
		"category_minutes": ch.classification.CategoryBreakdown(results, req.Samples),
	})
}
