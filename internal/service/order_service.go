package service

import (
	"context"
	"fmt"
	"time"

	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/model/entity"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderItemRequest is one line of an order payload.
type OrderItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderRequest records a sale.
type CreateOrderRequest struct {
	StoreID  string             `json:"store_id" binding:"required"`
	Items    []OrderItemRequest `json:"items" binding:"required,min=1"`
	Discount string             `json:"discount"`
	Note     string             `json:"note"`
}

// OrderService records sales. Selling a composite product consumes its
// prepared batch stock.
type OrderService struct {
	repo     *repository.OrderRepository
	products *repository.ProductRepository
	logger   *zap.Logger
}

// NewOrderService creates an order service.
func NewOrderService(repo *repository.OrderRepository, products *repository.ProductRepository, logger *zap.Logger) *OrderService {
	return &OrderService{repo: repo, products: products, logger: logger}
}

// Get loads one order with its items.
func (s *OrderService) Get(ctx context.Context, id string) (*entity.Order, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns orders for a store, optionally filtered by status.
func (s *OrderService) List(ctx context.Context, storeID string, page, pageSize int, status string) ([]entity.Order, int64, error) {
	return s.repo.List(ctx, storeID, page, pageSize, status)
}

// Create records an order. Prices are taken from the products at sale time;
// composite items are checked against servable stock and depleted.
func (s *OrderService) Create(ctx context.Context, userID string, req *CreateOrderRequest) (*entity.Order, error) {
	discount := decimal.Zero
	if req.Discount != "" {
		var err error
		discount, err = decimal.NewFromString(req.Discount)
		if err != nil || discount.IsNegative() {
			return nil, fmt.Errorf("invalid discount %q", req.Discount)
		}
	}

	now := time.Now()
	order := &entity.Order{
		ID:        newID(),
		StoreID:   req.StoreID,
		Code:      fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), newID()[:8]),
		Status:    entity.OrderStatusPending,
		Discount:  discount,
		Note:      req.Note,
		CreatedBy: userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	subtotal := decimal.Zero
	type depletion struct {
		product   *entity.Product
		remaining int
	}
	var depletions []depletion

	for _, item := range req.Items {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("order item product %s: %w", item.ProductID, err)
		}
		if product.Status != entity.ProductStatusActive {
			return nil, fmt.Errorf("product %s is not active", product.Code)
		}
		if product.IsComposite {
			available := product.EffectiveStock(now)
			if item.Quantity > available {
				return nil, fmt.Errorf("insufficient servings of %s: requested %d, available %d",
					product.Code, item.Quantity, available)
			}
			depletions = append(depletions, depletion{product, available - item.Quantity})
		}

		unitPrice := decimal.NewFromFloat(product.RetailPrice)
		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		order.Items = append(order.Items, entity.OrderItem{
			ID:        newID(),
			OrderID:   order.ID,
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  item.Quantity,
			UnitPrice: unitPrice,
			LineTotal: lineTotal,
		})
		subtotal = subtotal.Add(lineTotal)
	}

	order.Subtotal = subtotal
	order.Total = subtotal.Sub(discount)
	if order.Total.IsNegative() {
		return nil, fmt.Errorf("discount %s exceeds subtotal %s", discount, subtotal)
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	for _, d := range depletions {
		if err := s.products.UpdateBatchState(ctx, d.product.ID, d.remaining, d.product.LastPreparedAt); err != nil {
			s.logger.Error("failed to deplete composite stock",
				zap.String("order_id", order.ID),
				zap.String("product_id", d.product.ID),
				zap.Error(err))
		}
	}

	return order, nil
}

// Complete marks a pending order as completed.
func (s *OrderService) Complete(ctx context.Context, id string) error {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if order.Status != entity.OrderStatusPending {
		return fmt.Errorf("order %s is %s, not pending", order.Code, order.Status)
	}
	return s.repo.UpdateStatus(ctx, id, entity.OrderStatusCompleted)
}

// Cancel marks a pending order as cancelled.
func (s *OrderService) Cancel(ctx context.Context, id string) error {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if order.Status != entity.OrderStatusPending {
		return fmt.Errorf("order %s is %s, not pending", order.Code, order.Status)
	}
	return s.repo.UpdateStatus(ctx, id, entity.OrderStatusCancelled)
}
