package models

import (
	"time"

	"gorm.io/gorm"
)

// Promotion is a date-windowed percent-off discount for a single product.
type Promotion struct {
	gorm.Model
	Name       string    `gorm:"not null" json:"name"`
	ProductID  uint      `gorm:"not null;index" json:"product_id"`
	Product    *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	PercentOff float64   `gorm:"not null" json:"percent_off"`
	StartDate  time.Time `gorm:"not null" json:"start_date"`
	EndDate    time.Time `gorm:"not null" json:"end_date"`
	Active     bool      `gorm:"not null;default:true" json:"active"`
}

// AppliesOn reports whether the promotion is live at the supplied time.
func (p Promotion) AppliesOn(at time.Time) bool {
	if !p.Active {
		return false
	}
	if at.Before(p.StartDate) {
		return false
	}
	return !at.After(p.EndDate)
}
