package entity

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// JSONB maps to the PostgreSQL jsonb column type.
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// Product is a sellable item. A regular product derives its cost price from
// its default recipe. A composite product is assembled from prepared child
// products; its cost price is the sum of child cost prices weighted by
// quantity per serving, and its batch stock decays with an expiry window.
type Product struct {
	ID              string     `json:"id" gorm:"primaryKey;size:32"`
	StoreID         string     `json:"store_id" gorm:"size:32;not null;index"`
	Code            string     `json:"code" gorm:"size:64;not null;uniqueIndex"`
	Name            string     `json:"name" gorm:"size:128;not null"`
	Status          string     `json:"status" gorm:"size:16;not null;default:active"`
	Description     string     `json:"description" gorm:"type:text"`
	CostPrice       float64    `json:"cost_price" gorm:"type:decimal(15,4)"`
	Price           float64    `json:"price" gorm:"type:decimal(15,4)"`
	RetailPrice     float64    `json:"retail_price" gorm:"type:decimal(15,4)"`
	DefaultRecipeID string     `json:"default_recipe_id" gorm:"size:32;index"`
	IsComposite     bool       `json:"is_composite" gorm:"not null;default:false"`
	ImageKey        string     `json:"image_key" gorm:"size:256"`
	Specs           JSONB      `json:"specs" gorm:"type:jsonb"`
	CreatedBy       string     `json:"created_by" gorm:"size:32"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at" gorm:"index"`

	// Composite batch state. CurrentStock counts prepared servings and only
	// has meaning while the batch is inside its expiry window.
	CapacityQuantity float64    `json:"capacity_quantity" gorm:"type:decimal(15,4)"`
	CapacityUnit     string     `json:"capacity_unit" gorm:"size:16"`
	CurrentStock     int        `json:"current_stock" gorm:"not null;default:0"`
	LastPreparedAt   *time.Time `json:"last_prepared_at"`
	ExpiryHours      float64    `json:"expiry_hours" gorm:"type:decimal(10,2)"`

	DefaultRecipe *Recipe          `json:"default_recipe,omitempty" gorm:"foreignKey:DefaultRecipeID"`
	Recipes       []ProductRecipe  `json:"recipes,omitempty" gorm:"foreignKey:ProductID"`
	Children      []CompositeChild `json:"children,omitempty" gorm:"foreignKey:ProductID"`
}

func (Product) TableName() string {
	return "products"
}

const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// ProductRecipe links a product to a recipe it can be made from.
type ProductRecipe struct {
	ID        string `json:"id" gorm:"primaryKey;size:32"`
	ProductID string `json:"product_id" gorm:"size:32;not null;index"`
	RecipeID  string `json:"recipe_id" gorm:"size:32;not null;index"`

	Recipe *Recipe `json:"recipe,omitempty" gorm:"foreignKey:RecipeID"`
}

func (ProductRecipe) TableName() string {
	return "product_recipes"
}

// CompositeChild is one component of a composite product.
type CompositeChild struct {
	ID                 string  `json:"id" gorm:"primaryKey;size:32"`
	ProductID          string  `json:"product_id" gorm:"size:32;not null;index"`
	ChildProductID     string  `json:"child_product_id" gorm:"size:32;not null;index"`
	QuantityPerServing float64 `json:"quantity_per_serving" gorm:"type:decimal(15,4);not null"`
	Unit               string  `json:"unit" gorm:"size:16"`
	SellingPrice       float64 `json:"selling_price" gorm:"type:decimal(15,4)"`
	RetailPrice        float64 `json:"retail_price" gorm:"type:decimal(15,4)"`

	Child *Product `json:"child,omitempty" gorm:"foreignKey:ChildProductID"`
}

func (CompositeChild) TableName() string {
	return "composite_children"
}

// EffectiveStock reports the servable stock of a composite product at the
// given time. A batch past its expiry window reads as zero; expiration is
// derived on read, never stored.
func (p *Product) EffectiveStock(now time.Time) int {
	if !p.IsComposite || p.CurrentStock <= 0 {
		return 0
	}
	if p.LastPreparedAt == nil {
		return p.CurrentStock
	}
	if p.ExpiryHours > 0 && now.Sub(*p.LastPreparedAt).Hours() > p.ExpiryHours {
		return 0
	}
	return p.CurrentStock
}
