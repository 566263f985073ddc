package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/productify/deepwork-backend/internal/repos/testutil"
	"github.com/productify/deepwork-backend/internal/types"
)

func TestDeepWorkScoreUpsertSingleRow(t *testing.T) {
	db := testutil.OpenDB(t)
	log := testutil.NewLogger(t)
	repo := NewDeepWorkScoreRepo(db, log)
	ctx := context.Background()

	userID := uuid.New()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	first := &types.DeepWorkScore{UserID: userID, Date: day, DeepWorkScore: 40, DeepWorkMinutes: 90}
	if _, err := repo.Upsert(ctx, nil, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := &types.DeepWorkScore{UserID: userID, Date: day, DeepWorkScore: 72, DeepWorkMinutes: 180}
	if _, err := repo.Upsert(ctx, nil, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var count int64
	if err := db.Model(&types.DeepWorkScore{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single row per (user, date), got %d", count)
	}

	got, err := repo.GetByUserAndDate(ctx, nil, userID, day)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.DeepWorkScore != 72 || got.DeepWorkMinutes != 180 {
		t.Fatalf("row not overwritten: %+v", got)
	}
}

func TestDeepWorkScoreAvgBetween(t *testing.T) {
	db := testutil.OpenDB(t)
	log := testutil.NewLogger(t)
	repo := NewDeepWorkScoreRepo(db, log)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for i, score := range []int{60, 80} {
		row := &types.DeepWorkScore{UserID: userID, Date: base.AddDate(0, 0, i), DeepWorkScore: score}
		if _, err := repo.Upsert(ctx, nil, row); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	avg, err := repo.AvgScoreBetween(ctx, nil, userID, base, base.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("avg: %v", err)
	}
	if avg == nil || *avg != 70 {
		t.Fatalf("avg=%v, want 70", avg)
	}

	none, err := repo.AvgScoreBetween(ctx, nil, uuid.New(), base, base.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("avg empty: %v", err)
	}
	if none != nil {
		t.Fatalf("expected nil average for user with no history, got %v", *none)
	}
}

func TestDeepWorkScoreGetRangeOrdered(t *testing.T) {
	db := testutil.OpenDB(t)
	log := testutil.NewLogger(t)
	repo := NewDeepWorkScoreRepo(db, log)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for _, off := range []int{2, 0, 1} {
		row := &types.DeepWorkScore{UserID: userID, Date: base.AddDate(0, 0, off), DeepWorkScore: off}
		if _, err := repo.Upsert(ctx, nil, row); err != nil {
			t.Fatalf("seed %d: %v", off, err)
		}
	}

	rows, err := repo.GetRange(ctx, nil, userID, base, base.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len=%d, want 3", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].Date.Before(rows[i-1].Date) {
			t.Fatalf("rows out of order at %d", i)
		}
	}
}
