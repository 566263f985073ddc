package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/productify/deepwork-backend/internal/platform/logger"
	"github.com/productify/deepwork-backend/internal/types"
)

type TeamRepo interface {
	Create(ctx context.Context, tx *gorm.DB, teams []*types.Team) ([]*types.Team, error)
	GetByID(ctx context.Context, tx *gorm.DB, teamID uuid.UUID) (*types.Team, error)
	ListActive(ctx context.Context, tx *gorm.DB) ([]*types.Team, error)
}

type teamRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTeamRepo(db *gorm.DB, baseLog *logger.Logger) TeamRepo {
	repoLog := baseLog.With("repo", "TeamRepo")
	return &teamRepo{db: db, log: repoLog}
}

func (tr *teamRepo) Create(ctx context.Context, tx *gorm.DB, teams []*types.Team) ([]*types.Team, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	if len(teams) == 0 {
		return []*types.Team{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

func (tr *teamRepo) GetByID(ctx context.Context, tx *gorm.DB, teamID uuid.UUID) (*types.Team, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var result types.Team
	if err := transaction.WithContext(ctx).
		Where("id = ?", teamID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (tr *teamRepo) ListActive(ctx context.Context, tx *gorm.DB) ([]*types.Team, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var results []*types.Team
	if err := transaction.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
