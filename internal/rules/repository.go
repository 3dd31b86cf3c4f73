package rules

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/priceworks/discount-engine/pkg/db/models"
	"github.com/priceworks/discount-engine/pkg/enums"
	"github.com/priceworks/discount-engine/pkg/pagination"
)

// Repository persists discount rules and their usage audit rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads a rule row by ID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Rule, error) {
	var rule models.Rule
	if err := r.db.WithContext(ctx).First(&rule, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

// ListActive returns active rules in evaluation order: priority ascending,
// then creation time, then ID to keep equal-priority ordering stable.
func (r *Repository) ListActive(ctx context.Context) ([]models.Rule, error) {
	var rows []models.Rule
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.RuleStatusActive).
		Order("priority ASC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).
		Error
	return rows, err
}

// List returns a page of rules ordered newest first.
func (r *Repository) List(ctx context.Context, params pagination.Params) ([]models.Rule, string, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).Model(&models.Rule{})
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Rule
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, nextCursor, nil
}

// Create inserts a new rule row.
func (r *Repository) Create(ctx context.Context, rule *models.Rule) (*models.Rule, error) {
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return nil, err
	}
	return rule, nil
}

// Update saves an existing rule row.
func (r *Repository) Update(ctx context.Context, rule *models.Rule) (*models.Rule, error) {
	if err := r.db.WithContext(ctx).Save(rule).Error; err != nil {
		return nil, err
	}
	return rule, nil
}

// Delete removes a rule by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Rule{}).Error
}

// IncrementUsage bumps the usage counter atomically in the database.
func (r *Repository) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Rule{}).
		Where("id = ?", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1")).
		Error
}

// RecordUsage applies the usage increment and its audit row in one
// transaction, so a failed audit insert rolls the counter back too. The
// unique index on (order_id, rule_id) rejects a duplicate recording at the
// database level.
func (r *Repository) RecordUsage(ctx context.Context, usage *models.RuleUsage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scoped := r.WithTx(tx)
		if err := scoped.IncrementUsage(ctx, usage.RuleID); err != nil {
			return err
		}
		_, err := scoped.CreateUsage(ctx, usage)
		return err
	})
}

// CreateUsage records an audit row for an applied discount.
func (r *Repository) CreateUsage(ctx context.Context, usage *models.RuleUsage) (*models.RuleUsage, error) {
	if err := r.db.WithContext(ctx).Create(usage).Error; err != nil {
		return nil, err
	}
	return usage, nil
}

// ListUsageByRule returns the audit rows for a rule, newest first.
func (r *Repository) ListUsageByRule(ctx context.Context, ruleID uuid.UUID) ([]models.RuleUsage, error) {
	var rows []models.RuleUsage
	err := r.db.WithContext(ctx).
		Where("rule_id = ?", ruleID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}
