package models

import (
	"gorm.io/gorm"
)

// Ingredient is a purchasable raw material. The pack fields describe how the
// ingredient is bought (a bag, box, or container with a known size and price);
// every cost figure derived from them is recomputed on read, never stored.
type Ingredient struct {
	gorm.Model
	Name             string  `gorm:"not null;index" json:"name"`
	Supplier         string  `json:"supplier"`
	PackSize         float64 `gorm:"not null" json:"pack_size"`
	PackUnit         string  `gorm:"not null" json:"pack_unit"`
	PackPrice        float64 `gorm:"not null" json:"pack_price"`
	PriceIncludesTax bool    `gorm:"not null;default:false" json:"price_includes_tax"`
	Notes            string  `gorm:"type:text" json:"notes"`
}
