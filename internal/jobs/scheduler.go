package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/productify/deepwork-backend/internal/platform/envutil"
	"github.com/productify/deepwork-backend/internal/platform/logger"
	"github.com/productify/deepwork-backend/internal/repos"
	"github.com/productify/deepwork-backend/internal/services"
)

// Scheduler drives the periodic recomputation sweep: every active user's
// daily score for the current day, then every active team's rollup, alerts,
// and scheduling suggestions. One user's failure never stops the sweep.
type Scheduler struct {
	log      *logger.Logger
	cron     *cron.Cron
	users    repos.UserRepo
	teams    repos.TeamRepo
	deepwork *services.DeepWorkService
	teamSvc  *services.TeamDeepWorkService

	spec            string
	teamConcurrency int
	suggestionDays  int
}

func NewScheduler(
	log *logger.Logger,
	users repos.UserRepo,
	teams repos.TeamRepo,
	deepwork *services.DeepWorkService,
	teamSvc *services.TeamDeepWorkService,
) *Scheduler {
	return &Scheduler{
		log:             log.With("service", "Scheduler"),
		cron:            cron.New(cron.WithLocation(time.UTC)),
		users:           users,
		teams:           teams,
		deepwork:        deepwork,
		teamSvc:         teamSvc,
		spec:            envutil.String("SCORE_SWEEP_CRON", "0 * * * *"),
		teamConcurrency: envutil.Int("TEAM_SWEEP_CONCURRENCY", 4),
		suggestionDays:  envutil.Int("SUGGESTION_DAYS_AHEAD", 5),
	}
}

// Start registers the sweep and launches the cron loop. The loop stops when
// ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if err := s.RunSweep(ctx, time.Now().UTC()); err != nil {
			s.log.Error("sweep failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("scheduler started", "spec", s.spec)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop halts the cron loop and waits for a running sweep iteration's cron
// slot to drain.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.log.Info("scheduler stopped")
}

// RunSweep recomputes the given day for everyone. Cancellation is honored
// between users, never in the middle of one, so no user is left with a
// half-written day.
func (s *Scheduler) RunSweep(ctx context.Context, date time.Time) error {
	day := services.NormalizeDate(date)
	started := time.Now()

	users, err := s.users.ListActive(ctx, nil)
	if err != nil {
		return err
	}
	failures := 0
	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := s.deepwork.CalculateDailyScore(ctx, u.ID, day); err != nil {
			failures++
			s.log.Error("user sweep failed", "user_id", u.ID.String(), "error", err)
		}
	}

	if err := s.sweepTeams(ctx, day); err != nil {
		return err
	}

	s.log.Info("sweep complete",
		"date", day.Format("2006-01-02"),
		"users", len(users),
		"failures", failures,
		"elapsed", time.Since(started).String(),
	)
	return nil
}

func (s *Scheduler) sweepTeams(ctx context.Context, day time.Time) error {
	teams, err := s.teams.ListActive(ctx, nil)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.teamConcurrency)
	for _, team := range teams {
		teamID := team.ID
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, err := s.teamSvc.CalculateTeamScore(gctx, teamID, day); err != nil {
				s.log.Error("team score sweep failed", "team_id", teamID.String(), "error", err)
				return nil
			}
			if _, err := s.teamSvc.GenerateAlerts(gctx, teamID, day); err != nil {
				s.log.Error("alert sweep failed", "team_id", teamID.String(), "error", err)
			}
			if _, err := s.teamSvc.GenerateSchedulingSuggestions(gctx, teamID, s.suggestionDays); err != nil {
				s.log.Error("suggestion sweep failed", "team_id", teamID.String(), "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}
