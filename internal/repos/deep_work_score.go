package repos

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/productify/deepwork-backend/internal/platform/logger"
	"github.com/productify/deepwork-backend/internal/types"
)

type DeepWorkScoreRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, row *types.DeepWorkScore) (*types.DeepWorkScore, error)
	GetByUserAndDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date time.Time) (*types.DeepWorkScore, error)
	GetRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.DeepWorkScore, error)
	AvgScoreBetween(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) (*float64, error)
	GetForUsersOnDate(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID, date time.Time) ([]*types.DeepWorkScore, error)
}

type deepWorkScoreRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDeepWorkScoreRepo(db *gorm.DB, baseLog *logger.Logger) DeepWorkScoreRepo {
	repoLog := baseLog.With("repo", "DeepWorkScoreRepo")
	return &deepWorkScoreRepo{db: db, log: repoLog}
}

// Upsert writes the daily score keyed on (user_id, date). Recomputing the
// same day overwrites the metric columns instead of inserting a second row.
func (dr *deepWorkScoreRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.DeepWorkScore) (*types.DeepWorkScore, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	now := time.Now().UTC()
	row.CalculatedAt = now
	row.UpdatedAt = now

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"deep_work_score", "deep_work_minutes", "total_tracked_minutes",
				"total_meeting_minutes", "meeting_count", "meeting_load_percent",
				"fragmentation_score", "context_switches",
				"longest_focus_block_minutes", "average_focus_block_minutes", "focus_blocks_count",
				"productive_minutes", "neutral_minutes", "distracting_minutes", "focus_efficiency",
				"work_start_time", "work_end_time", "best_focus_hour",
				"vs_yesterday", "vs_week_avg", "vs_month_avg",
				"calculated_at", "updated_at",
			}),
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (dr *deepWorkScoreRepo) GetByUserAndDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date time.Time) (*types.DeepWorkScore, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var result types.DeepWorkScore
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (dr *deepWorkScoreRepo) GetRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.DeepWorkScore, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var results []*types.DeepWorkScore
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("date ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// AvgScoreBetween returns nil when no rows fall in [from, to); trend deltas
// are skipped rather than compared against zero.
func (dr *deepWorkScoreRepo) AvgScoreBetween(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) (*float64, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var avg sql.NullFloat64
	if err := transaction.WithContext(ctx).
		Model(&types.DeepWorkScore{}).
		Select("AVG(deep_work_score)").
		Where("user_id = ? AND date >= ? AND date < ?", userID, from, to).
		Scan(&avg).Error; err != nil {
		return nil, err
	}
	if !avg.Valid {
		return nil, nil
	}
	v := avg.Float64
	return &v, nil
}

func (dr *deepWorkScoreRepo) GetForUsersOnDate(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID, date time.Time) ([]*types.DeepWorkScore, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var results []*types.DeepWorkScore
	if len(userIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id IN ? AND date = ?", userIDs, date).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
