package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/priceworks/discount-engine/pkg/enums"
)

// Rule is the persisted discount rule. Conditions and filters are stored as
// serialized JSON and decoded at load time; malformed payloads degrade to
// empty maps rather than failing the row.
type Rule struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title         string             `gorm:"column:title;not null"`
	Description   *string            `gorm:"column:description"`
	DiscountType  enums.DiscountType `gorm:"column:discount_type;not null;default:'percentage'"`
	DiscountValue decimal.Decimal    `gorm:"column:discount_value;type:numeric(10,2);not null"`
	Conditions    string             `gorm:"column:conditions;type:jsonb;not null;default:'{}'"`
	Filters       string             `gorm:"column:filters;type:jsonb;not null;default:'{}'"`
	UsageLimit    *int               `gorm:"column:usage_limit"`
	UsageCount    int                `gorm:"column:usage_count;not null;default:0"`
	Priority      int                `gorm:"column:priority;not null;default:10"`
	Status        enums.RuleStatus   `gorm:"column:status;not null;default:'active'"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
