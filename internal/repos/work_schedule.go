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

type WorkScheduleRepo interface {
	GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.WorkSchedule, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.WorkSchedule) (*types.WorkSchedule, error)
}

type workScheduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWorkScheduleRepo(db *gorm.DB, baseLog *logger.Logger) WorkScheduleRepo {
	repoLog := baseLog.With("repo", "WorkScheduleRepo")
	return &workScheduleRepo{db: db, log: repoLog}
}

// GetByUser returns nil, nil when the user has no stored schedule; callers
// fall back to the default working window.
func (wr *workScheduleRepo) GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.WorkSchedule, error) {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}

	var result types.WorkSchedule
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (wr *workScheduleRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.WorkSchedule) (*types.WorkSchedule, error) {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}

	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.UpdatedAt = time.Now().UTC()

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"work_days", "start_time", "end_time", "day_start_hour", "updated_at",
			}),
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}
