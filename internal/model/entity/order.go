package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a sale. Money amounts are stored as fixed-point decimals; float
// arithmetic is not acceptable for order totals.
type Order struct {
	ID        string          `json:"id" gorm:"primaryKey;size:32"`
	StoreID   string          `json:"store_id" gorm:"size:32;not null;index"`
	Code      string          `json:"code" gorm:"size:64;not null;uniqueIndex"`
	Status    string          `json:"status" gorm:"size:16;not null;default:pending"`
	Subtotal  decimal.Decimal `json:"subtotal" gorm:"type:decimal(15,2)"`
	Discount  decimal.Decimal `json:"discount" gorm:"type:decimal(15,2)"`
	Total     decimal.Decimal `json:"total" gorm:"type:decimal(15,2)"`
	Note      string          `json:"note" gorm:"size:256"`
	CreatedBy string          `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string {
	return "orders"
}

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// OrderItem is one line of an order.
type OrderItem struct {
	ID        string          `json:"id" gorm:"primaryKey;size:32"`
	OrderID   string          `json:"order_id" gorm:"size:32;not null;index"`
	ProductID string          `json:"product_id" gorm:"size:32;not null;index"`
	Name      string          `json:"name" gorm:"size:128"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:decimal(15,2)"`
	LineTotal decimal.Decimal `json:"line_total" gorm:"type:decimal(15,2)"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
