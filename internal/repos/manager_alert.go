package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/productify/deepwork-backend/internal/platform/logger"
	"github.com/productify/deepwork-backend/internal/types"
)

type ManagerAlertRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.ManagerAlert) ([]*types.ManagerAlert, error)
	ExistsActiveForKey(ctx context.Context, tx *gorm.DB, teamID uuid.UUID, targetUserID *uuid.UUID, alertType string, since time.Time) (bool, error)
	ListActive(ctx context.Context, tx *gorm.DB, teamID uuid.UUID, now time.Time) ([]*types.ManagerAlert, error)
	Dismiss(ctx context.Context, tx *gorm.DB, teamID, alertID uuid.UUID, now time.Time) (int64, error)
}

type managerAlertRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewManagerAlertRepo(db *gorm.DB, baseLog *logger.Logger) ManagerAlertRepo {
	repoLog := baseLog.With("repo", "ManagerAlertRepo")
	return &managerAlertRepo{db: db, log: repoLog}
}

func (mr *managerAlertRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.ManagerAlert) ([]*types.ManagerAlert, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	if len(rows) == 0 {
		return []*types.ManagerAlert{}, nil
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

// ExistsActiveForKey reports whether a non-dismissed alert with the same
// (team, target user, type) was already created at or after since. Generation
// runs use it to stay idempotent within a day.
func (mr *managerAlertRepo) ExistsActiveForKey(ctx context.Context, tx *gorm.DB, teamID uuid.UUID, targetUserID *uuid.UUID, alertType string, since time.Time) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	q := transaction.WithContext(ctx).
		Model(&types.ManagerAlert{}).
		Where("team_id = ? AND alert_type = ? AND is_dismissed = ? AND created_at >= ?",
			teamID, alertType, false, since)
	if targetUserID == nil {
		q = q.Where("target_user_id IS NULL")
	} else {
		q = q.Where("target_user_id = ?", *targetUserID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListActive returns non-dismissed, non-expired alerts, newest first.
func (mr *managerAlertRepo) ListActive(ctx context.Context, tx *gorm.DB, teamID uuid.UUID, now time.Time) ([]*types.ManagerAlert, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var results []*types.ManagerAlert
	if err := transaction.WithContext(ctx).
		Where("team_id = ? AND is_dismissed = ?", teamID, false).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Dismiss returns the number of rows updated; zero means the alert does not
// exist under that team.
func (mr *managerAlertRepo) Dismiss(ctx context.Context, tx *gorm.DB, teamID, alertID uuid.UUID, now time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.ManagerAlert{}).
		Where("team_id = ? AND id = ? AND is_dismissed = ?", teamID, alertID, false).
		Updates(map[string]interface{}{
			"is_dismissed": true,
			"dismissed_at": now,
			"updated_at":   now,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
