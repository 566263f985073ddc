package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/productify/deepwork-backend/internal/platform/logger"
	"github.com/productify/deepwork-backend/internal/types"
)

type SchedulingSuggestionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.SchedulingSuggestion) ([]*types.SchedulingSuggestion, error)
	DeletePendingFrom(ctx context.Context, tx *gorm.DB, teamID uuid.UUID, from time.Time) error
	ListActive(ctx context.Context, tx *gorm.DB, teamID uuid.UUID, now time.Time) ([]*types.SchedulingSuggestion, error)
	Dismiss(ctx context.Context, tx *gorm.DB, teamID, suggestionID uuid.UUID, now time.Time) (int64, error)
	MarkApplied(ctx context.Context, tx *gorm.DB, teamID, suggestionID uuid.UUID, now time.Time) (int64, error)
}

type schedulingSuggestionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSchedulingSuggestionRepo(db *gorm.DB, baseLog *logger.Logger) SchedulingSuggestionRepo {
	repoLog := baseLog.With("repo", "SchedulingSuggestionRepo")
	return &schedulingSuggestionRepo{db: db, log: repoLog}
}

func (sr *schedulingSuggestionRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.SchedulingSuggestion) ([]*types.SchedulingSuggestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if len(rows) == 0 {
		return []*types.SchedulingSuggestion{}, nil
	}

	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DeletePendingFrom clears untouched future suggestions before a regeneration
// run so stale slots do not accumulate. Applied or dismissed rows stay.
func (sr *schedulingSuggestionRepo) DeletePendingFrom(ctx context.Context, tx *gorm.DB, teamID uuid.UUID, from time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	return transaction.WithContext(ctx).
		Where("team_id = ? AND suggested_start >= ? AND is_applied = ? AND is_dismissed = ?",
			teamID, from, false, false).
		Delete(&types.SchedulingSuggestion{}).Error
}

// ListActive returns pending future suggestions ordered by impact, best first.
func (sr *schedulingSuggestionRepo) ListActive(ctx context.Context, tx *gorm.DB, teamID uuid.UUID, now time.Time) ([]*types.SchedulingSuggestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.SchedulingSuggestion
	if err := transaction.WithContext(ctx).
		Where("team_id = ? AND is_applied = ? AND is_dismissed = ? AND suggested_start >= ?",
			teamID, false, false, now).
		Order("impact_score DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *schedulingSuggestionRepo) Dismiss(ctx context.Context, tx *gorm.DB, teamID, suggestionID uuid.UUID, now time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.SchedulingSuggestion{}).
		Where("team_id = ? AND id = ? AND is_dismissed = ?", teamID, suggestionID, false).
		Updates(map[string]interface{}{
			"is_dismissed": true,
			"updated_at":   now,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (sr *schedulingSuggestionRepo) MarkApplied(ctx context.Context, tx *gorm.DB, teamID, suggestionID uuid.UUID, now time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.SchedulingSuggestion{}).
		Where("team_id = ? AND id = ? AND is_applied = ?", teamID, suggestionID, false).
		Updates(map[string]interface{}{
			"is_applied": true,
			"updated_at": now,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
