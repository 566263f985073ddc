package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/productify/deepwork-backend/internal/repos/testutil"
	"github.com/productify/deepwork-backend/internal/types"
)

func TestPlatformRuleUpsertOverwrites(t *testing.T) {
	db := testutil.OpenDB(t)
	log := testutil.NewLogger(t)
	repo := NewRuleRepo(db, log)
	ctx := context.Background()

	userID := uuid.New()

	if _, err := repo.UpsertPlatformRule(ctx, nil, &types.PlatformRule{
		UserID: userID, Domain: "youtube.com", Productivity: types.ProductivityDistracting, Category: "entertainment",
	}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if _, err := repo.UpsertPlatformRule(ctx, nil, &types.PlatformRule{
		UserID: userID, Domain: "youtube.com", Productivity: types.ProductivityProductive, Category: "learning",
	}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	rules, err := repo.ListPlatformRules(ctx, nil, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("len=%d, want 1", len(rules))
	}
	if rules[0].Productivity != types.ProductivityProductive || rules[0].Category != "learning" {
		t.Fatalf("rule not overwritten: %+v", rules[0])
	}
}

func TestURLRuleScopedToUser(t *testing.T) {
	db := testutil.OpenDB(t)
	log := testutil.NewLogger(t)
	repo := NewRuleRepo(db, log)
	ctx := context.Background()

	alice := uuid.New()
	bob := uuid.New()

	if _, err := repo.UpsertURLRule(ctx, nil, &types.URLRule{
		UserID: alice, URLPattern: "youtube.com/playlist*", Productivity: types.ProductivityProductive,
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.ListURLRules(ctx, nil, bob)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("rules leaked across users: %d", len(got))
	}
}

func TestCustomEntryUpsertIdempotent(t *testing.T) {
	db := testutil.OpenDB(t)
	log := testutil.NewLogger(t)
	repo := NewRuleRepo(db, log)
	ctx := context.Background()

	userID := uuid.New()
	entry := func() *types.CustomListEntry {
		return &types.CustomListEntry{UserID: userID, ListType: types.ListExcluded, Pattern: "screensaver"}
	}

	if _, err := repo.UpsertCustomEntry(ctx, nil, entry()); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if _, err := repo.UpsertCustomEntry(ctx, nil, entry()); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	entries, err := repo.ListCustomEntries(ctx, nil, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len=%d, want 1", len(entries))
	}
}

func TestDeleteRuleScopedToUser(t *testing.T) {
	db := testutil.OpenDB(t)
	log := testutil.NewLogger(t)
	repo := NewRuleRepo(db, log)
	ctx := context.Background()

	owner := uuid.New()
	other := uuid.New()

	row, err := repo.UpsertPlatformRule(ctx, nil, &types.PlatformRule{
		UserID: owner, Domain: "reddit.com", Productivity: types.ProductivityDistracting,
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := repo.DeletePlatformRule(ctx, nil, other, row.ID); err != nil {
		t.Fatalf("cross-user delete: %v", err)
	}
	rules, _ := repo.ListPlatformRules(ctx, nil, owner)
	if len(rules) != 1 {
		t.Fatalf("rule deleted by wrong user")
	}

	if err := repo.DeletePlatformRule(ctx, nil, owner, row.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	rules, _ = repo.ListPlatformRules(ctx, nil, owner)
	if len(rules) != 0 {
		t.Fatalf("rule not deleted")
	}
}
