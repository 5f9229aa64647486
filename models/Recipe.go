package models

import (
	"gorm.io/gorm"
)

// Recipe defines how a batch of product is made. BatchSize is the quantity the
// ingredient list below yields; it must be positive before any cost-per-unit
// figure can be derived from it.
type Recipe struct {
	gorm.Model
	Name        string             `gorm:"not null" json:"name"`
	Notes       string             `gorm:"type:text" json:"notes"`
	BatchSize   float64            `gorm:"not null" json:"batch_size"`
	BatchUnit   string             `gorm:"not null" json:"batch_unit"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients"`
}
