package models

import (
	"time"

	"gorm.io/gorm"
)

// Sale is a persisted POS receipt. Money fields are rounded to two decimal
// places when the ticket is built; the rows are never recomputed afterwards.
type Sale struct {
	gorm.Model
	ReceiptNumber string     `gorm:"uniqueIndex;not null" json:"receipt_number"`
	CashierID     uint       `gorm:"not null;index" json:"cashier_id"`
	Cashier       *User      `gorm:"foreignKey:CashierID" json:"cashier,omitempty"`
	SoldAt        time.Time  `gorm:"not null" json:"sold_at"`
	Subtotal      float64    `gorm:"not null" json:"subtotal"`
	Discount      float64    `gorm:"not null" json:"discount"`
	Tax           float64    `gorm:"not null" json:"tax"`
	Total         float64    `gorm:"not null" json:"total"`
	Items         []SaleItem `gorm:"foreignKey:SaleID" json:"items"`
}

// SaleItem is one receipt line. The product name and unit price are copied at
// sale time so later product edits do not rewrite past receipts.
type SaleItem struct {
	gorm.Model
	SaleID    uint    `gorm:"not null;index" json:"sale_id"`
	ProductID uint    `gorm:"not null;index" json:"product_id"`
	Name      string  `gorm:"not null" json:"name"`
	UnitPrice float64 `gorm:"not null" json:"unit_price"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	Discount  float64 `gorm:"not null" json:"discount"`
	LineTotal float64 `gorm:"not null" json:"line_total"`
}
