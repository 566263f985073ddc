package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/productify/deepwork-backend/internal/platform/logger"
	"github.com/productify/deepwork-backend/internal/types"
)

// RuleRepo owns the three per-user rule tables consulted during
// classification: platform rules, URL rules, and custom lists.
type RuleRepo interface {
	ListPlatformRules(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.PlatformRule, error)
	UpsertPlatformRule(ctx context.Context, tx *gorm.DB, row *types.PlatformRule) (*types.PlatformRule, error)
	DeletePlatformRule(ctx context.Context, tx *gorm.DB, userID, ruleID uuid.UUID) error
	DeletePlatformRuleByDomain(ctx context.Context, tx *gorm.DB, userID uuid.UUID, domain string) (int64, error)

	ListURLRules(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.URLRule, error)
	UpsertURLRule(ctx context.Context, tx *gorm.DB, row *types.URLRule) (*types.URLRule, error)
	DeleteURLRule(ctx context.Context, tx *gorm.DB, userID, ruleID uuid.UUID) error
	DeleteURLRuleByPattern(ctx context.Context, tx *gorm.DB, userID uuid.UUID, pattern string) (int64, error)

	ListCustomEntries(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.CustomListEntry, error)
	UpsertCustomEntry(ctx context.Context, tx *gorm.DB, row *types.CustomListEntry) (*types.CustomListEntry, error)
	DeleteCustomEntry(ctx context.Context, tx *gorm.DB, userID, entryID uuid.UUID) error
	DeleteCustomEntryByPattern(ctx context.Context, tx *gorm.DB, userID uuid.UUID, listType, pattern string) (int64, error)
}

type ruleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRuleRepo(db *gorm.DB, baseLog *logger.Logger) RuleRepo {
	repoLog := baseLog.With("repo", "RuleRepo")
	return &ruleRepo{db: db, log: repoLog}
}

func (rr *ruleRepo) ListPlatformRules(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.PlatformRule, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var results []*types.PlatformRule
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("domain ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *ruleRepo) UpsertPlatformRule(ctx context.Context, tx *gorm.DB, row *types.PlatformRule) (*types.PlatformRule, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.UpdatedAt = time.Now().UTC()

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "domain"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"productivity", "category", "updated_at",
			}),
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (rr *ruleRepo) DeletePlatformRule(ctx context.Context, tx *gorm.DB, userID, ruleID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	return transaction.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, ruleID).
		Delete(&types.PlatformRule{}).Error
}

func (rr *ruleRepo) DeletePlatformRuleByDomain(ctx context.Context, tx *gorm.DB, userID uuid.UUID, domain string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	result := transaction.WithContext(ctx).
		Where("user_id = ? AND domain = ?", userID, domain).
		Delete(&types.PlatformRule{})
	return result.RowsAffected, result.Error
}

func (rr *ruleRepo) ListURLRules(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.URLRule, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var results []*types.URLRule
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("url_pattern ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *ruleRepo) UpsertURLRule(ctx context.Context, tx *gorm.DB, row *types.URLRule) (*types.URLRule, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.UpdatedAt = time.Now().UTC()

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "url_pattern"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"productivity", "category", "updated_at",
			}),
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (rr *ruleRepo) DeleteURLRule(ctx context.Context, tx *gorm.DB, userID, ruleID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	return transaction.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, ruleID).
		Delete(&types.URLRule{}).Error
}

func (rr *ruleRepo) DeleteURLRuleByPattern(ctx context.Context, tx *gorm.DB, userID uuid.UUID, pattern string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	result := transaction.WithContext(ctx).
		Where("user_id = ? AND url_pattern = ?", userID, pattern).
		Delete(&types.URLRule{})
	return result.RowsAffected, result.Error
}

func (rr *ruleRepo) ListCustomEntries(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.CustomListEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var results []*types.CustomListEntry
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("list_type ASC, pattern ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *ruleRepo) UpsertCustomEntry(ctx context.Context, tx *gorm.DB, row *types.CustomListEntry) (*types.CustomListEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "list_type"}, {Name: "pattern"}},
			DoNothing: true,
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (rr *ruleRepo) DeleteCustomEntry(ctx context.Context, tx *gorm.DB, userID, entryID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	return transaction.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, entryID).
		Delete(&types.CustomListEntry{}).Error
}

func (rr *ruleRepo) DeleteCustomEntryByPattern(ctx context.Context, tx *gorm.DB, userID uuid.UUID, listType, pattern string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	result := transaction.WithContext(ctx).
		Where("user_id = ? AND list_type = ? AND pattern = ?", userID, listType, pattern).
		Delete(&types.CustomListEntry{})
	return result.RowsAffected, result.Error
}
