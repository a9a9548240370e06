package repository

import (
	"context"
	"time"

	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/model/entity"
	"gorm.io/gorm"
)

// IngredientRepository persists ingredients and their stock transactions.
type IngredientRepository struct {
	db *gorm.DB
}

// NewIngredientRepository creates an ingredient repository.
func NewIngredientRepository(db *gorm.DB) *IngredientRepository {
	return &IngredientRepository{db: db}
}

// FindByID loads an ingredient by id.
func (r *IngredientRepository) FindByID(ctx context.Context, id string) (*entity.Ingredient, error) {
	var ingredient entity.Ingredient
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&ingredient).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &ingredient, nil
}

// List returns ingredients for a store, optionally filtered by keyword.
func (r *IngredientRepository) List(ctx context.Context, storeID string, page, pageSize int, keyword string) ([]entity.Ingredient, int64, error) {
	var ingredients []entity.Ingredient
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Ingredient{}).Where("deleted_at IS NULL")
	if storeID != "" {
		query = query.Where("store_id = ?", storeID)
	}
	if keyword != "" {
		query = query.Where("name ILIKE ? OR code ILIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&ingredients).Error

	return ingredients, total, err
}

// Create inserts an ingredient.
func (r *IngredientRepository) Create(ctx context.Context, ingredient *entity.Ingredient) error {
	return r.db.WithContext(ctx).Create(ingredient).Error
}

// Update saves an ingredient.
func (r *IngredientRepository) Update(ctx context.Context, ingredient *entity.Ingredient) error {
	return r.db.WithContext(ctx).Save(ingredient).Error
}

// Delete soft-deletes an ingredient.
func (r *IngredientRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Ingredient{}).
		Where("id = ?", id).
		Update("deleted_at", time.Now()).Error
}

// UpdateStock writes the stock quantity and average cost in one statement.
func (r *IngredientRepository) UpdateStock(ctx context.Context, id string, stockQuantity, averageCost float64) error {
	return r.db.WithContext(ctx).
		Model(&entity.Ingredient{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock_quantity": stockQuantity,
			"average_cost":   averageCost,
			"updated_at":     time.Now(),
		}).Error
}

// CreateTransaction appends a stock transaction row.
func (r *IngredientRepository) CreateTransaction(ctx context.Context, tx *entity.StockTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// ListTransactions returns the most recent stock transactions for an ingredient.
func (r *IngredientRepository) ListTransactions(ctx context.Context, ingredientID string, limit int) ([]entity.StockTransaction, error) {
	var txs []entity.StockTransaction
	err := r.db.WithContext(ctx).
		Where("ingredient_id = ?", ingredientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&txs).Error
	return txs, err
}
