package models

import (
	"time"

	"gorm.io/gorm"
)

// Timestamps stands in for gorm.Model on tables keyed by UUID strings, so the JSON
// payload carries a single "id".
type Timestamps struct {
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
