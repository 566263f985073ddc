package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/productify/deepwork-backend/internal/platform/logger"
	"github.com/productify/deepwork-backend/internal/types"
)

type TeamMemberRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.TeamMember) ([]*types.TeamMember, error)
	ListByTeam(ctx context.Context, tx *gorm.DB, teamID uuid.UUID) ([]*types.TeamMember, error)
	ListSharingByTeam(ctx context.Context, tx *gorm.DB, teamID uuid.UUID) ([]*types.TeamMember, error)
	IsMember(ctx context.Context, tx *gorm.DB, teamID, userID uuid.UUID) (bool, error)
}

type teamMemberRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTeamMemberRepo(db *gorm.DB, baseLog *logger.Logger) TeamMemberRepo {
	repoLog := baseLog.With("repo", "TeamMemberRepo")
	return &teamMemberRepo{db: db, log: repoLog}
}

func (mr *teamMemberRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.TeamMember) ([]*types.TeamMember, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	if len(rows) == 0 {
		return []*types.TeamMember{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (mr *teamMemberRepo) ListByTeam(ctx context.Context, tx *gorm.DB, teamID uuid.UUID) ([]*types.TeamMember, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var results []*types.TeamMember
	if err := transaction.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListSharingByTeam returns only members who opted into activity sharing.
// Team aggregates and alerts must never read data from anyone else.
func (mr *teamMemberRepo) ListSharingByTeam(ctx context.Context, tx *gorm.DB, teamID uuid.UUID) ([]*types.TeamMember, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var results []*types.TeamMember
	if err := transaction.WithContext(ctx).
		Where("team_id = ? AND share_activity = ?", teamID, true).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *teamMemberRepo) IsMember(ctx context.Context, tx *gorm.DB, teamID, userID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
