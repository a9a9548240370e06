package entity

import (
	"time"
)

// Store is a physical shop. Every catalog and inventory record belongs to one.
type Store struct {
	ID        string     `json:"id" gorm:"primaryKey;size:32"`
	Code      string     `json:"code" gorm:"size:32;not null;uniqueIndex"`
	Name      string     `json:"name" gorm:"size:128;not null"`
	Address   string     `json:"address" gorm:"size:256"`
	Phone     string     `json:"phone" gorm:"size:32"`
	Status    string     `json:"status" gorm:"size:16;not null;default:active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" gorm:"index"`
}

func (Store) TableName() string {
	return "stores"
}

const (
	StoreStatusActive   = "active"
	StoreStatusInactive = "inactive"
)
