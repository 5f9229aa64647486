package models

import (
	"time"

	"gorm.io/gorm"
)

// Department groups staff members for scheduling purposes.
type Department struct {
	gorm.Model
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// StaffMember is an employee record. It is distinct from User: not every
// employee has a login, and not every login maps to a rostered employee.
type StaffMember struct {
	gorm.Model
	Name         string      `gorm:"not null" json:"name"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	Position     string      `json:"position"`
	DepartmentID *uint       `json:"department_id,omitempty"`
	Department   *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}

// Assignment places a staff member on a shift or task for a given date.
type Assignment struct {
	gorm.Model
	StaffID uint         `gorm:"not null;index" json:"staff_id"`
	Staff   *StaffMember `gorm:"foreignKey:StaffID" json:"staff,omitempty"`
	Date    time.Time    `gorm:"not null" json:"date"`
	Shift   string       `json:"shift"`
	Task    string       `json:"task"`
}
