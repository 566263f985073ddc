package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/productify/deepwork-backend/internal/platform/logger"
	"github.com/productify/deepwork-backend/internal/types"
)

type TeamScoreRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, row *types.TeamDeepWorkScore) (*types.TeamDeepWorkScore, error)
	GetByTeamAndDate(ctx context.Context, tx *gorm.DB, teamID uuid.UUID, date time.Time) (*types.TeamDeepWorkScore, error)
	GetRange(ctx context.Context, tx *gorm.DB, teamID uuid.UUID, from, to time.Time) ([]*types.TeamDeepWorkScore, error)
}

type teamScoreRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTeamScoreRepo(db *gorm.DB, baseLog *logger.Logger) TeamScoreRepo {
	repoLog := baseLog.With("repo", "TeamScoreRepo")
	return &teamScoreRepo{db: db, log: repoLog}
}

// Upsert writes the team rollup keyed on (team_id, date).
func (tr *teamScoreRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.TeamDeepWorkScore) (*types.TeamDeepWorkScore, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	now := time.Now().UTC()
	row.CalculatedAt = now
	row.UpdatedAt = now

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "team_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"avg_deep_work_score", "total_deep_work_minutes", "avg_deep_work_minutes",
				"total_meeting_minutes", "avg_meeting_minutes", "avg_meeting_load_percent", "total_meeting_count",
				"avg_fragmentation_score", "avg_context_switches", "avg_longest_focus_block",
				"total_productive_minutes", "total_distracting_minutes", "avg_focus_efficiency",
				"member_count", "members_over_meeting_threshold", "members_with_deep_work",
				"needs_attention_count", "top_performer_id",
				"score_distribution", "meeting_load_distribution",
				"vs_yesterday", "trend_direction",
				"calculated_at", "updated_at",
			}),
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (tr *teamScoreRepo) GetByTeamAndDate(ctx context.Context, tx *gorm.DB, teamID uuid.UUID, date time.Time) (*types.TeamDeepWorkScore, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var result types.TeamDeepWorkScore
	if err := transaction.WithContext(ctx).
		Where("team_id = ? AND date = ?", teamID, date).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (tr *teamScoreRepo) GetRange(ctx context.Context, tx *gorm.DB, teamID uuid.UUID, from, to time.Time) ([]*types.TeamDeepWorkScore, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var results []*types.TeamDeepWorkScore
	if err := transaction.WithContext(ctx).
		Where("team_id = ? AND date >= ? AND date <= ?", teamID, from, to).
		Order("date ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
