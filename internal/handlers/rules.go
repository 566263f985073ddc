package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/productify/deepwork-backend/internal/classify"
	"github.com/productify/deepwork-backend/internal/repos"
	"github.com/productify/deepwork-backend/internal/services"
	"github.com/productify/deepwork-backend/internal/types"
)

type RulesHandler struct {
	rules     repos.RuleRepo
	ruleCache *services.RuleCacheService
}

func NewRulesHandler(rules repos.RuleRepo, ruleCache *services.RuleCacheService) *RulesHandler {
	return &RulesHandler{rules: rules, ruleCache: ruleCache}
}

func validProductivity(v string) bool {
	switch v {
	case types.ProductivityProductive, types.ProductivityNeutral,
		types.ProductivityDistracting, types.ProductivityExcluded:
		return true
	}
	return false
}

// ListRules returns the built-in domain table merged with the user's own
// platform rules, URL rules, and custom lists.
func (rh *RulesHandler) ListRules(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	ctx := c.Request.Context()
	platformRules, err := rh.rules.ListPlatformRules(ctx, nil, userID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "rules_lookup_failed", err)
		return
	}
	urlRules, err := rh.rules.ListURLRules(ctx, nil, userID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "rules_lookup_failed", err)
		return
	}
	entries, err := rh.rules.ListCustomEntries(ctx, nil, userID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "rules_lookup_failed", err)
		return
	}
	RespondOK(c, gin.H{
		"defaults":       classify.DefaultDomainRules(),
		"platform_rules": platformRules,
		"url_rules":      urlRules,
		"custom_lists":   entries,
	})
}

func (rh *RulesHandler) UpsertPlatformRule(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	var req struct {
		Domain       string `json:"domain"`
		Productivity string `json:"productivity"`
		Category     string `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	req.Domain = strings.ToLower(strings.TrimSpace(req.Domain))
	if req.Domain == "" {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("domain is required"))
		return
	}
	if !validProductivity(req.Productivity) {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("unknown productivity value"))
		return
	}
	row, err := rh.rules.UpsertPlatformRule(c.Request.Context(), nil, &types.PlatformRule{
		UserID:       userID,
		Domain:       req.Domain,
		Productivity: req.Productivity,
		Category:     req.Category,
	})
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "rule_upsert_failed", err)
		return
	}
	rh.ruleCache.Invalidate(c.Request.Context(), userID)
	RespondOK(c, row)
}

func (rh *RulesHandler) DeletePlatformRule(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	domain := strings.ToLower(strings.TrimSpace(c.Param("domain")))
	if domain == "" {
		RespondError(c, http.StatusBadRequest, "invalid_param", errors.New("domain is required"))
		return
	}
	deleted, err := rh.rules.DeletePlatformRuleByDomain(c.Request.Context(), nil, userID, domain)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "rule_delete_failed", err)
		return
	}
	if deleted == 0 {
		RespondError(c, http.StatusNotFound, "rule_not_found", errors.New("no rule for that domain"))
		return
	}
	rh.ruleCache.Invalidate(c.Request.Context(), userID)
	RespondOK(c, gin.H{"deleted": deleted})
}

func (rh *RulesHandler) UpsertURLRule(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	var req struct {
		URLPattern   string `json:"url_pattern"`
		Productivity string `json:"productivity"`
		Category     string `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	req.URLPattern = strings.TrimSpace(req.URLPattern)
	if req.URLPattern == "" {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("url_pattern is required"))
		return
	}
	if !validProductivity(req.Productivity) {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("unknown productivity value"))
		return
	}
	row, err := rh.rules.UpsertURLRule(c.Request.Context(), nil, &types.URLRule{
		UserID:       userID,
		URLPattern:   req.URLPattern,
		Productivity: req.Productivity,
		Category:     req.Category,
	})
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "rule_upsert_failed", err)
		return
	}
	rh.ruleCache.Invalidate(c.Request.Context(), userID)
	RespondOK(c, row)
}

func (rh *RulesHandler) DeleteURLRule(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	pattern := strings.TrimSpace(c.Query("pattern"))
	if pattern == "" {
		RespondError(c, http.StatusBadRequest, "invalid_param", errors.New("pattern is required"))
		return
	}
	deleted, err := rh.rules.DeleteURLRuleByPattern(c.Request.Context(), nil, userID, pattern)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "rule_delete_failed", err)
		return
	}
	if deleted == 0 {
		RespondError(c, http.StatusNotFound, "rule_not_found", errors.New("no rule for that pattern"))
		return
	}
	rh.ruleCache.Invalidate(c.Request.Context(), userID)
	RespondOK(c, gin.H{"deleted": deleted})
}

func (rh *RulesHandler) ListCustomEntries(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	entries, err := rh.rules.ListCustomEntries(c.Request.Context(), nil, userID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "rules_lookup_failed", err)
		return
	}
	RespondOK(c, gin.H{"entries": entries})
}

func (rh *RulesHandler) AddCustomEntry(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	var req struct {
		ListType string `json:"list_type"`
		Pattern  string `json:"pattern"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	req.Pattern = strings.ToLower(strings.TrimSpace(req.Pattern))
	if req.Pattern == "" {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("pattern is required"))
		return
	}
	if !validProductivity(req.ListType) {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("unknown list_type value"))
		return
	}
	row, err := rh.rules.UpsertCustomEntry(c.Request.Context(), nil, &types.CustomListEntry{
		UserID:   userID,
		ListType: req.ListType,
		Pattern:  req.Pattern,
	})
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "rule_upsert_failed", err)
		return
	}
	rh.ruleCache.Invalidate(c.Request.Context(), userID)
	RespondOK(c, row)
}

func (rh *RulesHandler) DeleteCustomEntry(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	listType := strings.TrimSpace(c.Query("list_type"))
	pattern := strings.ToLower(strings.TrimSpace(c.Query("pattern")))
	if listType == "" || pattern == "" {
		RespondError(c, http.StatusBadRequest, "invalid_param", errors.New("list_type and pattern are required"))
		return
	}
	deleted, err := rh.rules.DeleteCustomEntryByPattern(c.Request.Context(), nil, userID, listType, pattern)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "rule_delete_failed", err)
		return
	}
	if deleted == 0 {
		RespondError(c, http.StatusNotFound, "rule_not_found", errors.New("no entry for that list and pattern"))
		return
	}
	rh.ruleCache.Invalidate(c.Request.Context(), userID)
	RespondOK(c, gin.H{"deleted": deleted})
}
