package settings

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/priceworks/discount-engine/pkg/db/models"
)

// Repository persists engine settings as name/value rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get loads a single setting row by name.
func (r *Repository) Get(ctx context.Context, name string) (*models.Setting, error) {
	var setting models.Setting
	if err := r.db.WithContext(ctx).First(&setting, "option_name = ?", name).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

// Upsert creates or replaces a setting value.
func (r *Repository) Upsert(ctx context.Context, setting *models.Setting) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "option_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"option_value", "updated_at"}),
		}).
		Create(setting).
		Error
}

// List returns all settings ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Setting, error) {
	var rows []models.Setting
	err := r.db.WithContext(ctx).Order("option_name ASC").Find(&rows).Error
	return rows, err
}
