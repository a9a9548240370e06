package entity

import (
	"time"
)

// Ingredient is a stocked raw material. StandardCost is the reference price
// per base unit; AverageCost is derived from stock-in transactions and, when
// present, is the authoritative unit cost for recipe costing.
type Ingredient struct {
	ID            string     `json:"id" gorm:"primaryKey;size:32"`
	StoreID       string     `json:"store_id" gorm:"size:32;not null;index"`
	Code          string     `json:"code" gorm:"size:64;not null;uniqueIndex"`
	Name          string     `json:"name" gorm:"size:128;not null"`
	Unit          string     `json:"unit" gorm:"size:16;not null;default:kg"`
	StandardCost  float64    `json:"standard_cost" gorm:"type:decimal(15,4)"`
	AverageCost   float64    `json:"average_cost" gorm:"type:decimal(15,4)"`
	StockQuantity float64    `json:"stock_quantity" gorm:"type:decimal(15,4)"`
	Description   string     `json:"description" gorm:"type:text"`
	CreatedBy     string     `json:"created_by" gorm:"size:32"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at" gorm:"index"`

	Store *Store `json:"store,omitempty" gorm:"foreignKey:StoreID"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}

// StockTransaction records a single stock movement for an ingredient.
type StockTransaction struct {
	ID              string    `json:"id" gorm:"primaryKey;size:32"`
	StoreID         string    `json:"store_id" gorm:"size:32;not null;index"`
	IngredientID    string    `json:"ingredient_id" gorm:"size:32;not null;index"`
	Type            string    `json:"type" gorm:"size:16;not null"`
	Quantity        float64   `json:"quantity" gorm:"type:decimal(15,4)"`
	Unit            string    `json:"unit" gorm:"size:16;not null"`
	UnitPrice       float64   `json:"unit_price" gorm:"type:decimal(15,4)"`
	ResultingStock  float64   `json:"resulting_stock" gorm:"type:decimal(15,4)"`
	ResultingAvg    float64   `json:"resulting_avg" gorm:"type:decimal(15,4)"`
	Note            string    `json:"note" gorm:"size:256"`
	PerformedBy     string    `json:"performed_by" gorm:"size:32"`
	CreatedAt       time.Time `json:"created_at"`

	Ingredient *Ingredient `json:"ingredient,omitempty" gorm:"foreignKey:IngredientID"`
}

func (StockTransaction) TableName() string {
	return "stock_transactions"
}

// StockTransactionType values.
const (
	StockTransactionIn   = "in"
	StockTransactionOut  = "out"
	StockTransactionTake = "take"
)
