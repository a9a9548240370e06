package entity

import (
	"time"
)

// Recipe is a list of ingredient lines plus the yield it produces per batch.
// CostPerUnit is persisted but derived: it is rewritten by the cost update
// pipeline whenever the recipe or any referenced ingredient changes.
type Recipe struct {
	ID            string     `json:"id" gorm:"primaryKey;size:32"`
	StoreID       string     `json:"store_id" gorm:"size:32;not null;index"`
	Code          string     `json:"code" gorm:"size:64;not null;uniqueIndex"`
	Name          string     `json:"name" gorm:"size:128;not null"`
	Description   string     `json:"description" gorm:"type:text"`
	YieldQuantity float64    `json:"yield_quantity" gorm:"type:decimal(15,4);default:1"`
	YieldUnit     string     `json:"yield_unit" gorm:"size:16;default:pcs"`
	CostPerUnit   float64    `json:"cost_per_unit" gorm:"type:decimal(15,4)"`
	CreatedBy     string     `json:"created_by" gorm:"size:32"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at" gorm:"index"`

	Ingredients []RecipeIngredient `json:"ingredients,omitempty" gorm:"foreignKey:RecipeID"`
}

func (Recipe) TableName() string {
	return "recipes"
}

// RecipeIngredient is one line of a recipe: how much of an ingredient is used,
// in the unit the recipe author wrote it in (which may differ from the
// ingredient's stock unit).
type RecipeIngredient struct {
	ID           string  `json:"id" gorm:"primaryKey;size:32"`
	RecipeID     string  `json:"recipe_id" gorm:"size:32;not null;index"`
	IngredientID string  `json:"ingredient_id" gorm:"size:32;not null;index"`
	AmountUsed   float64 `json:"amount_used" gorm:"type:decimal(15,4);not null"`
	Unit         string  `json:"unit" gorm:"size:16;not null"`

	Ingredient *Ingredient `json:"ingredient,omitempty" gorm:"foreignKey:IngredientID"`
}

func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}
