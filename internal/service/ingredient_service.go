package service

import (
	"context"
	"fmt"
	"time"

	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/costing"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/model/entity"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CreateIngredientRequest creates an ingredient.
type CreateIngredientRequest struct {
	StoreID      string  `json:"store_id" binding:"required"`
	Code         string  `json:"code" binding:"required"`
	Name         string  `json:"name" binding:"required"`
	Unit         string  `json:"unit" binding:"required"`
	StandardCost float64 `json:"standard_cost" binding:"min=0"`
	Description  string  `json:"description"`
}

// UpdateIngredientRequest updates ingredient master data.
type UpdateIngredientRequest struct {
	Name         string   `json:"name"`
	StandardCost *float64 `json:"standard_cost"`
	Description  string   `json:"description"`
}

// StockMovementRequest records one stock in/out/take movement.
type StockMovementRequest struct {
	Quantity  float64 `json:"quantity" binding:"required,gt=0"`
	Unit      string  `json:"unit" binding:"required"`
	UnitPrice float64 `json:"unit_price" binding:"min=0"`
	Note      string  `json:"note"`
}

// IngredientService manages ingredients and their stock. Every mutation that
// can move an ingredient's unit cost notifies the cost update pipeline.
type IngredientService struct {
	repo    *repository.IngredientRepository
	updater *costing.UpdateManager
	rdb     *redis.Client
	logger  *zap.Logger
}

// NewIngredientService creates an ingredient service.
func NewIngredientService(repo *repository.IngredientRepository, updater *costing.UpdateManager, rdb *redis.Client, logger *zap.Logger) *IngredientService {
	return &IngredientService{repo: repo, updater: updater, rdb: rdb, logger: logger}
}

func (s *IngredientService) listCacheKey(storeID string) string {
	return "ingredients:list:" + storeID
}

func (s *IngredientService) invalidateListCache(ctx context.Context, storeID string) {
	if s.rdb == nil {
		return
	}
	s.rdb.Del(ctx, s.listCacheKey(storeID))
}

// Get loads one ingredient.
func (s *IngredientService) Get(ctx context.Context, id string) (*entity.Ingredient, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns ingredients for a store.
func (s *IngredientService) List(ctx context.Context, storeID string, page, pageSize int, keyword string) ([]entity.Ingredient, int64, error) {
	return s.repo.List(ctx, storeID, page, pageSize, keyword)
}

// Create inserts an ingredient.
func (s *IngredientService) Create(ctx context.Context, userID string, req *CreateIngredientRequest) (*entity.Ingredient, error) {
	if !costing.KnownUnit(req.Unit) {
		return nil, fmt.Errorf("unknown unit %q", req.Unit)
	}

	now := time.Now()
	ingredient := &entity.Ingredient{
		ID:           newID(),
		StoreID:      req.StoreID,
		Code:         req.Code,
		Name:         req.Name,
		Unit:         req.Unit,
		StandardCost: req.StandardCost,
		Description:  req.Description,
		CreatedBy:    userID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, ingredient); err != nil {
		return nil, fmt.Errorf("create ingredient: %w", err)
	}
	s.invalidateListCache(ctx, req.StoreID)
	return ingredient, nil
}

// Update edits master data. A standard-cost change triggers the cost cascade.
func (s *IngredientService) Update(ctx context.Context, id string, req *UpdateIngredientRequest) (*entity.Ingredient, error) {
	ingredient, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	costChanged := false
	if req.Name != "" {
		ingredient.Name = req.Name
	}
	if req.Description != "" {
		ingredient.Description = req.Description
	}
	if req.StandardCost != nil && *req.StandardCost != ingredient.StandardCost {
		ingredient.StandardCost = *req.StandardCost
		costChanged = true
	}
	ingredient.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, ingredient); err != nil {
		return nil, fmt.Errorf("update ingredient: %w", err)
	}
	s.invalidateListCache(ctx, ingredient.StoreID)

	if costChanged {
		s.updater.OnIngredientChange(ctx, id)
	}
	return ingredient, nil
}

// Delete soft-deletes an ingredient.
func (s *IngredientService) Delete(ctx context.Context, id string) error {
	ingredient, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete ingredient: %w", err)
	}
	s.invalidateListCache(ctx, ingredient.StoreID)
	return nil
}

// StockIn receives stock at a purchase price and rolls the moving-average
// cost forward. The average-cost change cascades into dependent recipe costs.
func (s *IngredientService) StockIn(ctx context.Context, id, userID string, req *StockMovementRequest) (*entity.StockTransaction, error) {
	ingredient, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	qty, ok := costing.Convert(req.Quantity, req.Unit, ingredient.Unit)
	if !ok {
		return nil, fmt.Errorf("cannot convert %s to stock unit %s", req.Unit, ingredient.Unit)
	}

	// Price is per movement unit; restate it per stock unit.
	unitPrice := req.UnitPrice
	if req.Unit != ingredient.Unit && qty > 0 {
		unitPrice = req.UnitPrice * req.Quantity / qty
	}

	newStock := ingredient.StockQuantity + qty
	newAvg := unitPrice
	if ingredient.AverageCost > 0 && newStock > 0 {
		newAvg = (ingredient.StockQuantity*ingredient.AverageCost + qty*unitPrice) / newStock
	}

	if err := s.repo.UpdateStock(ctx, id, newStock, newAvg); err != nil {
		return nil, fmt.Errorf("update stock: %w", err)
	}

	tx := &entity.StockTransaction{
		ID:             newID(),
		StoreID:        ingredient.StoreID,
		IngredientID:   id,
		Type:           entity.StockTransactionIn,
		Quantity:       qty,
		Unit:           ingredient.Unit,
		UnitPrice:      unitPrice,
		ResultingStock: newStock,
		ResultingAvg:   newAvg,
		Note:           req.Note,
		PerformedBy:    userID,
		CreatedAt:      time.Now(),
	}
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		s.logger.Warn("failed to record stock transaction", zap.String("ingredient_id", id), zap.Error(err))
	}

	s.updater.OnIngredientChange(ctx, id)
	return tx, nil
}

// StockOut issues stock. The average cost is unchanged, so no cascade runs.
func (s *IngredientService) StockOut(ctx context.Context, id, userID string, req *StockMovementRequest) (*entity.StockTransaction, error) {
	ingredient, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	avail := costing.CheckAvailability(ingredient.StockQuantity, ingredient.Unit, req.Quantity, req.Unit)
	if !avail.Available {
		return nil, fmt.Errorf("stock out rejected: %s", avail.Message)
	}

	qty, _ := costing.Convert(req.Quantity, req.Unit, ingredient.Unit)
	newStock := ingredient.StockQuantity - qty
	if err := s.repo.UpdateStock(ctx, id, newStock, ingredient.AverageCost); err != nil {
		return nil, fmt.Errorf("update stock: %w", err)
	}

	tx := &entity.StockTransaction{
		ID:             newID(),
		StoreID:        ingredient.StoreID,
		IngredientID:   id,
		Type:           entity.StockTransactionOut,
		Quantity:       qty,
		Unit:           ingredient.Unit,
		ResultingStock: newStock,
		ResultingAvg:   ingredient.AverageCost,
		Note:           req.Note,
		PerformedBy:    userID,
		CreatedAt:      time.Now(),
	}
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		s.logger.Warn("failed to record stock transaction", zap.String("ingredient_id", id), zap.Error(err))
	}
	return tx, nil
}

// StockTake sets the counted on-hand quantity.
func (s *IngredientService) StockTake(ctx context.Context, id, userID string, req *StockMovementRequest) (*entity.StockTransaction, error) {
	ingredient, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	qty, ok := costing.Convert(req.Quantity, req.Unit, ingredient.Unit)
	if !ok {
		return nil, fmt.Errorf("cannot convert %s to stock unit %s", req.Unit, ingredient.Unit)
	}

	if err := s.repo.UpdateStock(ctx, id, qty, ingredient.AverageCost); err != nil {
		return nil, fmt.Errorf("update stock: %w", err)
	}

	tx := &entity.StockTransaction{
		ID:             newID(),
		StoreID:        ingredient.StoreID,
		IngredientID:   id,
		Type:           entity.StockTransactionTake,
		Quantity:       qty,
		Unit:           ingredient.Unit,
		ResultingStock: qty,
		ResultingAvg:   ingredient.AverageCost,
		Note:           req.Note,
		PerformedBy:    userID,
		CreatedAt:      time.Now(),
	}
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		s.logger.Warn("failed to record stock transaction", zap.String("ingredient_id", id), zap.Error(err))
	}
	return tx, nil
}

// Transactions returns the recent stock movement history.
func (s *IngredientService) Transactions(ctx context.Context, id string, limit int) ([]entity.StockTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListTransactions(ctx, id, limit)
}
