package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/productify/deepwork-backend/internal/repos/testutil"
	"github.com/productify/deepwork-backend/internal/types"
)

func TestManagerAlertDedupKey(t *testing.T) {
	db := testutil.OpenDB(t)
	log := testutil.NewLogger(t)
	repo := NewManagerAlertRepo(db, log)
	ctx := context.Background()

	teamID := uuid.New()
	memberID := uuid.New()
	dayStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	rows := []*types.ManagerAlert{{
		TeamID:       teamID,
		TargetUserID: &memberID,
		AlertType:    types.AlertOverMeeting,
		Priority:     types.PriorityMedium,
		Title:        "Heavy meeting load",
		Message:      "Meeting load is over threshold",
	}}
	if _, err := repo.Create(ctx, nil, rows); err != nil {
		t.Fatalf("create: %v", err)
	}

	cases := []struct {
		name   string
		target *uuid.UUID
		typ    string
		want   bool
	}{
		{name: "same_key_exists", target: &memberID, typ: types.AlertOverMeeting, want: true},
		{name: "different_type", target: &memberID, typ: types.AlertFocusDeficit, want: false},
		{name: "team_wide_key_is_distinct", target: nil, typ: types.AlertOverMeeting, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.ExistsActiveForKey(ctx, nil, teamID, tc.target, tc.typ, dayStart)
			if err != nil {
				t.Fatalf("exists: %v", err)
			}
			if got != tc.want {
				t.Fatalf("exists=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestManagerAlertDismiss(t *testing.T) {
	db := testutil.OpenDB(t)
	log := testutil.NewLogger(t)
	repo := NewManagerAlertRepo(db, log)
	ctx := context.Background()

	teamID := uuid.New()
	now := time.Now().UTC()

	rows, err := repo.Create(ctx, nil, []*types.ManagerAlert{{
		TeamID:    teamID,
		AlertType: types.AlertTeamTrend,
		Priority:  types.PriorityHigh,
		Title:     "Team trend declining",
		Message:   "Average score dropped",
	}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	alertID := rows[0].ID

	active, err := repo.ListActive(ctx, nil, teamID, now)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("active=%d, want 1", len(active))
	}

	n, err := repo.Dismiss(ctx, nil, teamID, alertID, now)
	if err != nil {
		t.Fatalf("dismiss: %v", err)
	}
	if n != 1 {
		t.Fatalf("dismiss affected %d rows, want 1", n)
	}

	// Dismissing again or under the wrong team is a no-op.
	if n, _ := repo.Dismiss(ctx, nil, teamID, alertID, now); n != 0 {
		t.Fatalf("second dismiss affected %d rows, want 0", n)
	}
	if n, _ := repo.Dismiss(ctx, nil, uuid.New(), alertID, now); n != 0 {
		t.Fatalf("cross-team dismiss affected %d rows, want 0", n)
	}

	active, err = repo.ListActive(ctx, nil, teamID, now)
	if err != nil {
		t.Fatalf("list after dismiss: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("active=%d after dismiss, want 0", len(active))
	}
}

func TestManagerAlertExpiry(t *testing.T) {
	db := testutil.OpenDB(t)
	log := testutil.NewLogger(t)
	repo := NewManagerAlertRepo(db, log)
	ctx := context.Background()

	teamID := uuid.New()
	now := time.Now().UTC()
	past := now.Add(-time.Hour)

	if _, err := repo.Create(ctx, nil, []*types.ManagerAlert{{
		TeamID:    teamID,
		AlertType: types.AlertOverMeeting,
		Priority:  types.PriorityHigh,
		Title:     "Stale",
		Message:   "Expired alert",
		ExpiresAt: &past,
	}}); err != nil {
		t.Fatalf("create: %v", err)
	}

	active, err := repo.ListActive(ctx, nil, teamID, now)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expired alert still listed: %d", len(active))
	}
}
