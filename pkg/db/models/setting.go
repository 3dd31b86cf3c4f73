package models

import "time"

// Setting is a named configuration value for the discount engine.
type Setting struct {
	Name      string    `gorm:"column:option_name;primaryKey"`
	Value     string    `gorm:"column:option_value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
