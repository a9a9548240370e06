package entity

import (
	"time"
)

// Employee is a back-office user. PasswordHash is a bcrypt hash and is never
// serialized.
type Employee struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	StoreID      string     `json:"store_id" gorm:"size:32;index"`
	Username     string     `json:"username" gorm:"size:64;not null;uniqueIndex"`
	PasswordHash string     `json:"-" gorm:"size:128;not null"`
	Name         string     `json:"name" gorm:"size:128;not null"`
	Email        string     `json:"email" gorm:"size:128"`
	Role         string     `json:"role" gorm:"size:32;not null;default:staff"`
	Status       string     `json:"status" gorm:"size:16;not null;default:active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at" gorm:"index"`

	Store *Store `json:"store,omitempty" gorm:"foreignKey:StoreID"`
}

func (Employee) TableName() string {
	return "employees"
}

const (
	EmployeeRoleAdmin   = "admin"
	EmployeeRoleManager = "manager"
	EmployeeRoleStaff   = "staff"

	EmployeeStatusActive   = "active"
	EmployeeStatusInactive = "inactive"
)
