package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/productify/deepwork-backend/internal/repos/testutil"
	"github.com/productify/deepwork-backend/internal/types"
)

func TestSchedulingSuggestionRegeneration(t *testing.T) {
	db := testutil.OpenDB(t)
	log := testutil.NewLogger(t)
	repo := NewSchedulingSuggestionRepo(db, log)
	ctx := context.Background()

	teamID := uuid.New()
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	slot := func(offsetHours int, impact float64) *types.SchedulingSuggestion {
		start := now.Add(time.Duration(offsetHours) * time.Hour)
		return &types.SchedulingSuggestion{
			TeamID:         teamID,
			SuggestionType: types.SuggestionBestMeetingTime,
			SuggestedStart: start,
			SuggestedEnd:   start.Add(time.Hour),
			ImpactScore:    impact,
		}
	}

	pending := slot(2, 50)
	applied := slot(4, 60)
	applied.IsApplied = true
	if _, err := repo.Create(ctx, nil, []*types.SchedulingSuggestion{pending, applied}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Regeneration clears only untouched future slots.
	if err := repo.DeletePendingFrom(ctx, nil, teamID, now); err != nil {
		t.Fatalf("delete pending: %v", err)
	}

	fresh := []*types.SchedulingSuggestion{slot(1, 30), slot(3, 90), slot(5, 70)}
	if _, err := repo.Create(ctx, nil, fresh); err != nil {
		t.Fatalf("create fresh: %v", err)
	}

	active, err := repo.ListActive(ctx, nil, teamID, now)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 3 {
		t.Fatalf("active=%d, want 3 (applied rows are excluded, pending rows replaced)", len(active))
	}
	for i := 1; i < len(active); i++ {
		if active[i].ImpactScore > active[i-1].ImpactScore {
			t.Fatalf("not ordered by impact: %v then %v", active[i-1].ImpactScore, active[i].ImpactScore)
		}
	}

	var total int64
	if err := db.Model(&types.SchedulingSuggestion{}).Where("team_id = ?", teamID).Count(&total).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 4 {
		t.Fatalf("total=%d, want 4 (3 fresh + 1 applied kept)", total)
	}
}

func TestSchedulingSuggestionDismissAndApply(t *testing.T) {
	db := testutil.OpenDB(t)
	log := testutil.NewLogger(t)
	repo := NewSchedulingSuggestionRepo(db, log)
	ctx := context.Background()

	teamID := uuid.New()
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	rows, err := repo.Create(ctx, nil, []*types.SchedulingSuggestion{{
		TeamID:         teamID,
		SuggestionType: types.SuggestionBestMeetingTime,
		SuggestedStart: now.Add(2 * time.Hour),
		SuggestedEnd:   now.Add(3 * time.Hour),
		ImpactScore:    80,
	}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := rows[0].ID

	if n, err := repo.Dismiss(ctx, nil, teamID, id, now); err != nil || n != 1 {
		t.Fatalf("dismiss n=%d err=%v", n, err)
	}
	if n, _ := repo.Dismiss(ctx, nil, teamID, id, now); n != 0 {
		t.Fatalf("second dismiss should be a no-op")
	}

	active, _ := repo.ListActive(ctx, nil, teamID, now)
	if len(active) != 0 {
		t.Fatalf("dismissed suggestion still active")
	}

	if n, err := repo.MarkApplied(ctx, nil, teamID, id, now); err != nil || n != 1 {
		t.Fatalf("apply n=%d err=%v", n, err)
	}
}
