package models

import (
	"gorm.io/gorm"
)

// Product is a sellable item. Barcode and SKU are optional but indexed because
// the POS lookup resolves scanned codes against them before falling back to a
// name search.
type Product struct {
	gorm.Model
	Name     string  `gorm:"not null;index" json:"name"`
	Barcode  string  `gorm:"index" json:"barcode"`
	SKU      string  `gorm:"index" json:"sku"`
	Category string  `json:"category"`
	Price    float64 `gorm:"not null" json:"price"`
	Active   bool    `gorm:"not null;default:true" json:"active"`

	// RecipeID links a produced good back to the recipe it is made from.
	RecipeID *uint   `json:"recipe_id,omitempty"`
	Recipe   *Recipe `gorm:"foreignKey:RecipeID" json:"recipe,omitempty"`
}

// ProductRating captures customer feedback for a product.
type ProductRating struct {
	gorm.Model
	ProductID uint     `gorm:"not null;index" json:"product_id"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Score     int      `gorm:"not null" json:"score"`
	Comment   string   `gorm:"type:text" json:"comment"`
}
