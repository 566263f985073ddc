package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/productify/deepwork-backend/internal/repos"
	"github.com/productify/deepwork-backend/internal/repos/testutil"
	"github.com/productify/deepwork-backend/internal/services"
	"github.com/productify/deepwork-backend/internal/types"
)

func TestRunSweepEndToEnd(t *testing.T) {
	db := testutil.OpenDB(t)
	log := testutil.NewLogger(t)
	ctx := context.Background()

	userRepo := repos.NewUserRepo(db, log)
	teamRepo := repos.NewTeamRepo(db, log)
	memberRepo := repos.NewTeamMemberRepo(db, log)
	activityRepo := repos.NewActivityRepo(db, log)
	eventRepo := repos.NewCalendarEventRepo(db, log)
	scoreRepo := repos.NewDeepWorkScoreRepo(db, log)
	teamScoreRepo := repos.NewTeamScoreRepo(db, log)
	scheduleRepo := repos.NewWorkScheduleRepo(db, log)
	ruleRepo := repos.NewRuleRepo(db, log)
	alertRepo := repos.NewManagerAlertRepo(db, log)
	suggestionRepo := repos.NewSchedulingSuggestionRepo(db, log)

	ruleCache := services.NewRuleCacheService(log, ruleRepo, nil)
	classifier := services.NewClassificationService(log, ruleCache)
	deepwork := services.NewDeepWorkService(log, activityRepo, eventRepo, scoreRepo, scheduleRepo, classifier)
	teamSvc := services.NewTeamDeepWorkService(log, teamRepo, memberRepo, userRepo, scoreRepo, teamScoreRepo, alertRepo, suggestionRepo, eventRepo)

	scheduler := NewScheduler(log, userRepo, teamRepo, deepwork, teamSvc)

	// Seed: one active user with a productive morning, on one team that
	// shares activity.
	user := &types.User{ID: uuid.New(), Email: "dev@example.com", Name: "Dev", IsActive: true}
	if _, err := userRepo.Create(ctx, nil, []*types.User{user}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	team := &types.Team{ID: uuid.New(), Name: "Platform", OwnerID: user.ID, IsActive: true}
	if _, err := teamRepo.Create(ctx, nil, []*types.Team{team}); err != nil {
		t.Fatalf("seed team: %v", err)
	}
	if _, err := memberRepo.Create(ctx, nil, []*types.TeamMember{{
		ID: uuid.New(), TeamID: team.ID, UserID: user.ID, Role: "member", ShareActivity: true,
	}}); err != nil {
		t.Fatalf("seed member: %v", err)
	}

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	var acts []*types.Activity
	for i := 0; i < 4; i++ {
		acts = append(acts, &types.Activity{
			ID:              uuid.New(),
			UserID:          user.ID,
			AppName:         "Visual Studio Code",
			WindowTitle:     "engine.go",
			StartTime:       day.Add(9*time.Hour + time.Duration(i*30)*time.Minute),
			DurationSeconds: 1800,
		})
	}
	if _, err := activityRepo.Create(ctx, nil, acts); err != nil {
		t.Fatalf("seed activities: %v", err)
	}

	if err := scheduler.RunSweep(ctx, day); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	score, err := scoreRepo.GetByUserAndDate(ctx, nil, user.ID, day)
	if err != nil {
		t.Fatalf("load score: %v", err)
	}
	if score == nil {
		t.Fatalf("sweep did not store a daily score")
	}
	if score.DeepWorkMinutes != 120 {
		t.Fatalf("deep work minutes=%d, want 120 (one two-hour block)", score.DeepWorkMinutes)
	}
	if score.FocusBlocksCount != 1 || score.LongestFocusBlockMinutes != 120 {
		t.Fatalf("blocks=%d longest=%d, want 1/120", score.FocusBlocksCount, score.LongestFocusBlockMinutes)
	}

	teamScore, err := teamScoreRepo.GetByTeamAndDate(ctx, nil, team.ID, day)
	if err != nil {
		t.Fatalf("load team score: %v", err)
	}
	if teamScore == nil || teamScore.MemberCount != 1 {
		t.Fatalf("team rollup missing or wrong: %+v", teamScore)
	}
	if teamScore.TotalDeepWorkMinutes != 120 {
		t.Fatalf("team deep work=%d, want 120", teamScore.TotalDeepWorkMinutes)
	}

	// Rerunning the sweep must not duplicate rows.
	if err := scheduler.RunSweep(ctx, day); err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	var scoreRows, teamRows int64
	if err := db.Model(&types.DeepWorkScore{}).Where("user_id = ?", user.ID).Count(&scoreRows).Error; err != nil {
		t.Fatalf("count scores: %v", err)
	}
	if err := db.Model(&types.TeamDeepWorkScore{}).Where("team_id = ?", team.ID).Count(&teamRows).Error; err != nil {
		t.Fatalf("count team scores: %v", err)
	}
	if scoreRows != 1 || teamRows != 1 {
		t.Fatalf("duplicate rows after rerun: scores=%d teams=%d", scoreRows, teamRows)
	}
}

func TestRunSweepHonorsCancellation(t *testing.T) {
	db := testutil.OpenDB(t)
	log := testutil.NewLogger(t)

	userRepo := repos.NewUserRepo(db, log)
	teamRepo := repos.NewTeamRepo(db, log)
	scheduler := NewScheduler(log, userRepo, teamRepo, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := scheduler.RunSweep(ctx, time.Now()); err == nil {
		t.Fatalf("expected error from cancelled context")
	}
}
