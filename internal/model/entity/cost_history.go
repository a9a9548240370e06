package entity

import (
	"time"
)

// CostHistory is an append-only record of a derived-cost change, written by
// the cost update pipeline. It backs the cost trend reports.
type CostHistory struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	EntityType string    `json:"entity_type" gorm:"size:16;not null;index:idx_cost_history_entity"`
	EntityID   string    `json:"entity_id" gorm:"size:32;not null;index:idx_cost_history_entity"`
	EntityName string    `json:"entity_name" gorm:"size:128"`
	OldCost    float64   `json:"old_cost" gorm:"type:decimal(15,4)"`
	NewCost    float64   `json:"new_cost" gorm:"type:decimal(15,4)"`
	Reason     string    `json:"reason" gorm:"size:64"`
	SourceID   string    `json:"source_id" gorm:"size:32"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

func (CostHistory) TableName() string {
	return "cost_histories"
}

// CostHistory entity types.
const (
	CostEntityIngredient = "ingredient"
	CostEntityRecipe     = "recipe"
	CostEntityProduct    = "product"
	CostEntityComposite  = "composite"
)
