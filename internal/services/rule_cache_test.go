package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/productify/deepwork-backend/internal/classify"
	"github.com/productify/deepwork-backend/internal/repos"
	"github.com/productify/deepwork-backend/internal/repos/testutil"
	"github.com/productify/deepwork-backend/internal/types"
)

func newTestRuleCache(t *testing.T) (*RuleCacheService, repos.RuleRepo) {
	t.Helper()
	db := testutil.OpenDB(t)
	log := testutil.NewLogger(t)
	ruleRepo := repos.NewRuleRepo(db, log)
	return NewRuleCacheService(log, ruleRepo, nil), ruleRepo
}

func TestRuleCacheServesAndCaches(t *testing.T) {
	cache, ruleRepo := newTestRuleCache(t)
	ctx := context.Background()
	userID := uuid.New()

	if _, err := ruleRepo.UpsertPlatformRule(ctx, nil, &types.PlatformRule{
		UserID: userID, Domain: "GitHub.com", Productivity: types.ProductivityProductive, Category: "development",
	}); err != nil {
		t.Fatalf("seed rule: %v", err)
	}

	rules, err := cache.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	// Domains are lowered so lookups are case-insensitive.
	if _, ok := rules.PlatformRules["github.com"]; !ok {
		t.Fatalf("platform rule missing from rule set: %+v", rules.PlatformRules)
	}

	// A direct table write is invisible until the TTL passes or someone
	// invalidates.
	if _, err := ruleRepo.UpsertPlatformRule(ctx, nil, &types.PlatformRule{
		UserID: userID, Domain: "reddit.com", Productivity: types.ProductivityDistracting,
	}); err != nil {
		t.Fatalf("second rule: %v", err)
	}
	cached, err := cache.Get(ctx, userID)
	if err != nil {
		t.Fatalf("cached get: %v", err)
	}
	if len(cached.PlatformRules) != 1 {
		t.Fatalf("expected stale cached rule set, got %d rules", len(cached.PlatformRules))
	}

	cache.Invalidate(ctx, userID)
	fresh, err := cache.Get(ctx, userID)
	if err != nil {
		t.Fatalf("fresh get: %v", err)
	}
	if len(fresh.PlatformRules) != 2 {
		t.Fatalf("expected reload after invalidation, got %d rules", len(fresh.PlatformRules))
	}
}

func TestRuleCacheTTLExpiry(t *testing.T) {
	cache, ruleRepo := newTestRuleCache(t)
	ctx := context.Background()
	userID := uuid.New()

	current := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return current }

	if _, err := cache.Get(ctx, userID); err != nil {
		t.Fatalf("initial get: %v", err)
	}

	if _, err := ruleRepo.UpsertURLRule(ctx, nil, &types.URLRule{
		UserID: userID, URLPattern: "youtube.com/playlist*", Productivity: types.ProductivityProductive,
	}); err != nil {
		t.Fatalf("seed rule: %v", err)
	}

	stale, err := cache.Get(ctx, userID)
	if err != nil {
		t.Fatalf("stale get: %v", err)
	}
	if len(stale.URLRules) != 0 {
		t.Fatalf("expected cached empty rule set before expiry")
	}

	current = current.Add(cache.ttl + time.Second)
	fresh, err := cache.Get(ctx, userID)
	if err != nil {
		t.Fatalf("expired get: %v", err)
	}
	if len(fresh.URLRules) != 1 {
		t.Fatalf("expected reload after TTL, got %d url rules", len(fresh.URLRules))
	}
}

func TestBuildRuleSet(t *testing.T) {
	urlRules := []*types.URLRule{
		{URLPattern: "youtube.com/playlist*", Productivity: "productive", Category: "learning"},
	}
	platformRules := []*types.PlatformRule{
		{Domain: "Slack", Productivity: "productive", Category: "communication"},
	}
	entries := []*types.CustomListEntry{
		{ListType: types.ListExcluded, Pattern: "ScreenSaver"},
		{ListType: types.ListExcluded, Pattern: "loginwindow"},
		{ListType: types.ListDistracting, Pattern: "news"},
	}

	rs := buildRuleSet(urlRules, platformRules, entries)
	if len(rs.URLRules) != 1 || rs.URLRules[0].Pattern != "youtube.com/playlist*" {
		t.Fatalf("url rules=%+v", rs.URLRules)
	}
	if _, ok := rs.PlatformRules["slack"]; !ok {
		t.Fatalf("platform rule key not lowered: %+v", rs.PlatformRules)
	}
	if len(rs.Lists[types.ListExcluded]) != 2 || len(rs.Lists[types.ListDistracting]) != 1 {
		t.Fatalf("lists=%+v", rs.Lists)
	}
	// List patterns are lowered so matching stays case-insensitive.
	if rs.Lists[types.ListExcluded][0] != "screensaver" {
		t.Fatalf("list pattern not lowered: %+v", rs.Lists[types.ListExcluded])
	}
}

func TestMixedCaseListEntryStillMatches(t *testing.T) {
	cache, ruleRepo := newTestRuleCache(t)
	ctx := context.Background()
	userID := uuid.New()

	if _, err := ruleRepo.UpsertCustomEntry(ctx, nil, &types.CustomListEntry{
		UserID: userID, ListType: types.ListDistracting, Pattern: "YouTube",
	}); err != nil {
		t.Fatalf("seed entry: %v", err)
	}

	rules, err := cache.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got := classify.Classify("youtube", "", "", rules)
	if got.Source != classify.SourceCustomList {
		t.Fatalf("expected custom list match, got %+v", got)
	}
	if got.ProductivityType != classify.TypeDistracting {
		t.Fatalf("expected distracting, got %+v", got)
	}
}
