package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/productify/deepwork-backend/internal/db"
	"github.com/productify/deepwork-backend/internal/handlers"
	"github.com/productify/deepwork-backend/internal/jobs"
	"github.com/productify/deepwork-backend/internal/middleware"
	"github.com/productify/deepwork-backend/internal/observability"
	"github.com/productify/deepwork-backend/internal/platform/envutil"
	"github.com/productify/deepwork-backend/internal/platform/logger"
	"github.com/productify/deepwork-backend/internal/repos"
	"github.com/productify/deepwork-backend/internal/server"
	"github.com/productify/deepwork-backend/internal/services"
)

func main() {
	// Logger
	logMode := envutil.String("LOG_MODE", "development")
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "deepwork-backend",
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),
	})
	if otelShutdown != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(shutdownCtx); err != nil {
				log.Warn("otel shutdown failed", "error", err)
			}
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Redis is optional; without it rule invalidation falls back to TTL only.
	var rdb *goredis.Client
	if addr := envutil.String("REDIS_ADDR", ""); addr != "" {
		rdb = goredis.NewClient(&goredis.Options{
			Addr:     addr,
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("Redis unreachable, rule invalidation degraded to TTL only", "error", err)
			rdb = nil
		}
	}

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	activityRepo := repos.NewActivityRepo(thePG, log)
	calendarEventRepo := repos.NewCalendarEventRepo(thePG, log)
	ruleRepo := repos.NewRuleRepo(thePG, log)
	workScheduleRepo := repos.NewWorkScheduleRepo(thePG, log)
	scoreRepo := repos.NewDeepWorkScoreRepo(thePG, log)
	teamRepo := repos.NewTeamRepo(thePG, log)
	teamMemberRepo := repos.NewTeamMemberRepo(thePG, log)
	teamScoreRepo := repos.NewTeamScoreRepo(thePG, log)
	alertRepo := repos.NewManagerAlertRepo(thePG, log)
	suggestionRepo := repos.NewSchedulingSuggestionRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	ruleCache := services.NewRuleCacheService(log, ruleRepo, rdb)
	if err := ruleCache.StartInvalidationListener(ctx); err != nil {
		log.Warn("Rule invalidation listener failed to start", "error", err)
	}
	classificationService := services.NewClassificationService(log, ruleCache)
	deepworkService := services.NewDeepWorkService(log, activityRepo, calendarEventRepo, scoreRepo, workScheduleRepo, classificationService)
	focusService := services.NewFocusService(log, calendarEventRepo, workScheduleRepo)
	teamService := services.NewTeamDeepWorkService(log, teamRepo, teamMemberRepo, userRepo, scoreRepo, teamScoreRepo, alertRepo, suggestionRepo, calendarEventRepo)

	// Scheduler
	scheduler := jobs.NewScheduler(log, userRepo, teamRepo, deepworkService, teamService)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal("Scheduler failed to start", "error", err)
	}

	// Handlers
	log.Info("Setting up handlers from main...")
	classifyHandler := handlers.NewClassifyHandler(classificationService)
	deepworkHandler := handlers.NewDeepWorkHandler(deepworkService)
	focusHandler := handlers.NewFocusHandler(focusService)
	rulesHandler := handlers.NewRulesHandler(ruleRepo, ruleCache)
	teamHandler := handlers.NewTeamHandler(teamService, teamMemberRepo)
	adminHandler := handlers.NewAdminHandler(scheduler)

	// Middleware
	identityMiddleware := middleware.NewIdentityMiddleware(log)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		IdentityMiddleware: identityMiddleware,
		ClassifyHandler:    classifyHandler,
		DeepWorkHandler:    deepworkHandler,
		FocusHandler:       focusHandler,
		RulesHandler:       rulesHandler,
		TeamHandler:        teamHandler,
		AdminHandler:       adminHandler,
	})

	port := envutil.String("PORT", "8080")
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}
	go func() {
		log.Info("Server listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("Server shutdown failed", "error", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Warn("Redis close failed", "error", err)
		}
	}
}
