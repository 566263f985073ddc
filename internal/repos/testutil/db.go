package testutil

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/productify/deepwork-backend/internal/platform/logger"
)

// schema mirrors the production tables with sqlite-friendly defaults. The
// postgres schema leans on uuid_generate_v4() and now(), which sqlite cannot
// evaluate, so the DDL is spelled out here instead of auto-migrated.
var schema = []string{
	`CREATE TABLE "user" (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		timezone TEXT NOT NULL DEFAULT 'UTC',
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		deleted_at DATETIME
	)`,
	`CREATE TABLE team (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		owner_id TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		deleted_at DATETIME
	)`,
	`CREATE TABLE team_member (
		id TEXT PRIMARY KEY,
		team_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'member',
		share_activity BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		deleted_at DATETIME,
		UNIQUE (team_id, user_id)
	)`,
	`CREATE TABLE activity (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		app_name TEXT NOT NULL DEFAULT '',
		window_title TEXT NOT NULL DEFAULT '',
		url TEXT,
		start_time DATETIME NOT NULL,
		duration_seconds INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX idx_activity_user_start ON activity (user_id, start_time)`,
	`CREATE TABLE calendar_event (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		start_time DATETIME NOT NULL,
		end_time DATETIME NOT NULL,
		duration_minutes INTEGER NOT NULL DEFAULT 0,
		is_all_day BOOLEAN NOT NULL DEFAULT 0,
		is_focus_time BOOLEAN NOT NULL DEFAULT 0,
		attendee_count INTEGER NOT NULL DEFAULT 1,
		is_organizer BOOLEAN NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'confirmed',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX idx_event_user_start ON calendar_event (user_id, start_time)`,
	`CREATE TABLE platform_rule (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		domain TEXT NOT NULL,
		productivity TEXT NOT NULL DEFAULT 'neutral',
		category TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		deleted_at DATETIME,
		UNIQUE (user_id, domain)
	)`,
	`CREATE TABLE url_rule (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		url_pattern TEXT NOT NULL,
		productivity TEXT NOT NULL DEFAULT 'neutral',
		category TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		deleted_at DATETIME,
		UNIQUE (user_id, url_pattern)
	)`,
	`CREATE TABLE custom_list_entry (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		list_type TEXT NOT NULL,
		pattern TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		deleted_at DATETIME,
		UNIQUE (user_id, list_type, pattern)
	)`,
	`CREATE TABLE work_schedule (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		work_days TEXT,
		start_time TEXT NOT NULL DEFAULT '09:00',
		end_time TEXT NOT NULL DEFAULT '18:00',
		day_start_hour INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE deep_work_score (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		date DATETIME NOT NULL,
		deep_work_score INTEGER NOT NULL DEFAULT 0,
		deep_work_minutes INTEGER NOT NULL DEFAULT 0,
		total_tracked_minutes INTEGER NOT NULL DEFAULT 0,
		total_meeting_minutes INTEGER NOT NULL DEFAULT 0,
		meeting_count INTEGER NOT NULL DEFAULT 0,
		meeting_load_percent REAL NOT NULL DEFAULT 0,
		fragmentation_score INTEGER NOT NULL DEFAULT 0,
		context_switches INTEGER NOT NULL DEFAULT 0,
		longest_focus_block_minutes INTEGER NOT NULL DEFAULT 0,
		average_focus_block_minutes REAL NOT NULL DEFAULT 0,
		focus_blocks_count INTEGER NOT NULL DEFAULT 0,
		productive_minutes INTEGER NOT NULL DEFAULT 0,
		neutral_minutes INTEGER NOT NULL DEFAULT 0,
		distracting_minutes INTEGER NOT NULL DEFAULT 0,
		focus_efficiency REAL NOT NULL DEFAULT 0,
		work_start_time DATETIME,
		work_end_time DATETIME,
		best_focus_hour INTEGER,
		vs_yesterday REAL,
		vs_week_avg REAL,
		vs_month_avg REAL,
		calculated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (user_id, date)
	)`,
	`CREATE TABLE team_deep_work_score (
		id TEXT PRIMARY KEY,
		team_id TEXT NOT NULL,
		date DATETIME NOT NULL,
		avg_deep_work_score REAL NOT NULL DEFAULT 0,
		total_deep_work_minutes INTEGER NOT NULL DEFAULT 0,
		avg_deep_work_minutes REAL NOT NULL DEFAULT 0,
		total_meeting_minutes INTEGER NOT NULL DEFAULT 0,
		avg_meeting_minutes REAL NOT NULL DEFAULT 0,
		avg_meeting_load_percent REAL NOT NULL DEFAULT 0,
		total_meeting_count INTEGER NOT NULL DEFAULT 0,
		avg_fragmentation_score REAL NOT NULL DEFAULT 0,
		avg_context_switches REAL NOT NULL DEFAULT 0,
		avg_longest_focus_block REAL NOT NULL DEFAULT 0,
		total_productive_minutes INTEGER NOT NULL DEFAULT 0,
		total_distracting_minutes INTEGER NOT NULL DEFAULT 0,
		avg_focus_efficiency REAL NOT NULL DEFAULT 0,
		member_count INTEGER NOT NULL DEFAULT 0,
		members_over_meeting_threshold INTEGER NOT NULL DEFAULT 0,
		members_with_deep_work INTEGER NOT NULL DEFAULT 0,
		needs_attention_count INTEGER NOT NULL DEFAULT 0,
		top_performer_id TEXT,
		score_distribution TEXT,
		meeting_load_distribution TEXT,
		vs_yesterday REAL,
		trend_direction TEXT NOT NULL DEFAULT 'stable',
		calculated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (team_id, date)
	)`,
	`CREATE TABLE manager_alert (
		id TEXT PRIMARY KEY,
		team_id TEXT NOT NULL,
		target_user_id TEXT,
		alert_type TEXT NOT NULL,
		priority TEXT NOT NULL DEFAULT 'medium',
		title TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL DEFAULT '',
		metric_name TEXT NOT NULL DEFAULT '',
		metric_value REAL NOT NULL DEFAULT 0,
		threshold_value REAL NOT NULL DEFAULT 0,
		suggestion TEXT NOT NULL DEFAULT '',
		is_dismissed BOOLEAN NOT NULL DEFAULT 0,
		dismissed_at DATETIME,
		expires_at DATETIME,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE scheduling_suggestion (
		id TEXT PRIMARY KEY,
		team_id TEXT NOT NULL,
		suggestion_type TEXT NOT NULL DEFAULT 'best_meeting_time',
		suggested_start DATETIME NOT NULL,
		suggested_end DATETIME NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		impact_score REAL NOT NULL DEFAULT 0,
		availability_score REAL NOT NULL DEFAULT 0,
		affected_members TEXT,
		is_applied BOOLEAN NOT NULL DEFAULT 0,
		is_dismissed BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// OpenDB returns an isolated in-memory sqlite database with the full schema
// created. The pool is pinned to one connection so the database survives for
// the whole test.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// NewLogger returns a quiet logger for repo and service tests.
func NewLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	return log
}
