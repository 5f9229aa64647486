package models

import "gorm.io/gorm"

// User represents a staff account that can authenticate with the platform.
type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Name         string
	Role         string `gorm:"type:varchar(32);default:staff"`
}

// Known account roles.
const (
	RoleStaff   = "staff"
	RoleManager = "manager"
)

// ValidRole reports whether the supplied value is a recognised account role.
func ValidRole(value string) bool {
	switch value {
	case RoleStaff, RoleManager:
		return true
	default:
		return false
	}
}

// NormalizeRole returns the supplied role when valid, falling back to staff.
func NormalizeRole(value string) string {
	if ValidRole(value) {
		return value
	}
	return RoleStaff
}
