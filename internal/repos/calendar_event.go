package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/productify/deepwork-backend/internal/platform/logger"
	"github.com/productify/deepwork-backend/internal/types"
)

type CalendarEventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.CalendarEvent) ([]*types.CalendarEvent, error)
	GetByUserAndRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, start, end time.Time) ([]*types.CalendarEvent, error)
}

type calendarEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCalendarEventRepo(db *gorm.DB, baseLog *logger.Logger) CalendarEventRepo {
	repoLog := baseLog.With("repo", "CalendarEventRepo")
	return &calendarEventRepo{db: db, log: repoLog}
}

func (cr *calendarEventRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.CalendarEvent) ([]*types.CalendarEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	if len(rows) == 0 {
		return []*types.CalendarEvent{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByUserAndRange returns events starting in [start, end), ordered by
// start_time.
func (cr *calendarEventRepo) GetByUserAndRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, start, end time.Time) ([]*types.CalendarEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.CalendarEvent
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND start_time >= ? AND start_time < ?", userID, start, end).
		Order("start_time ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
