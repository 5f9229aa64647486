package models

import (
	"time"

	"gorm.io/gorm"
)

// ProductionBatch records an actual production run of a recipe. The ingredient
// usage and cost figures are scaled from the recipe at creation time and
// snapshotted into BatchIngredient rows; the snapshot is immutable, so editing
// the recipe afterwards never changes historical batch costs.
type ProductionBatch struct {
	gorm.Model
	RecipeID         uint      `gorm:"not null;index" json:"recipe_id"`
	Recipe           *Recipe   `gorm:"foreignKey:RecipeID" json:"recipe,omitempty"`
	LotNumber        string    `gorm:"uniqueIndex;not null" json:"lot_number"`
	ProducedQuantity float64   `gorm:"not null" json:"produced_quantity"`
	ProducedUnit     string    `gorm:"not null" json:"produced_unit"`
	RunDate          time.Time `gorm:"not null" json:"run_date"`

	// Totals captured when the snapshot was written.
	TotalCost   float64 `gorm:"not null" json:"total_cost"`
	CostPerUnit float64 `gorm:"not null" json:"cost_per_unit"`

	Ingredients []BatchIngredient `gorm:"foreignKey:BatchID" json:"ingredients"`
}

// BatchIngredient is one snapshotted ingredient line of a production batch.
// Rows are written once when the batch is created and never recomputed.
type BatchIngredient struct {
	gorm.Model
	BatchID  uint    `gorm:"not null;index" json:"batch_id"`
	Name     string  `gorm:"not null" json:"name"`
	Quantity float64 `gorm:"not null" json:"quantity"`
	Unit     string  `gorm:"not null" json:"unit"`
	Cost     float64 `gorm:"not null" json:"cost"`
}
