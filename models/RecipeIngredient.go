package models

import (
	"gorm.io/gorm"
)

// RecipeIngredient is one line of a recipe. The pack specification is copied
// from the catalog ingredient at entry time so later catalog price changes do
// not silently reprice an existing recipe; IngredientID keeps the provenance
// link when the line was sourced from the catalog.
type RecipeIngredient struct {
	gorm.Model
	RecipeID uint   `gorm:"not null;index" json:"recipe_id"`
	Name     string `gorm:"not null" json:"name"`

	IngredientID *uint       `json:"ingredient_id,omitempty"`
	Ingredient   *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`

	PackSize  float64 `gorm:"not null" json:"pack_size"`
	PackUnit  string  `gorm:"not null" json:"pack_unit"`
	PackPrice float64 `gorm:"not null" json:"pack_price"`

	// UsedUnit must belong to the same unit family as PackUnit.
	UsedQuantity float64 `gorm:"not null" json:"used_quantity"`
	UsedUnit     string  `gorm:"not null" json:"used_unit"`
}
