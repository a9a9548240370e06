package repository

import (
	"context"
	"time"

	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/model/entity"
	"gorm.io/gorm"
)

// ProductRepository persists products, recipe links and composite children.
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a product repository.
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindByID loads a product with recipe links and composite children.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).
		Preload("Recipes").
		Preload("Children").
		Preload("Children.Child").
		Where("id = ? AND deleted_at IS NULL", id).
		First(&product).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &product, nil
}

// List returns products for a store, paginated.
func (r *ProductRepository) List(ctx context.Context, storeID string, page, pageSize int, keyword string) ([]entity.Product, int64, error) {
	var products []entity.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Product{}).Where("deleted_at IS NULL")
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
		Find(&products).Error

	return products, total, err
}

// ListAll returns every non-deleted product.
func (r *ProductRepository) ListAll(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Find(&products).Error
	return products, err
}

// ListByRecipe returns products whose default recipe or linked recipe set
// includes the recipe. Second hop of the cost cascade.
func (r *ProductRepository) ListByRecipe(ctx context.Context, recipeID string) ([]entity.Product, error) {
	var products []entity.Product
	err := r.db.WithContext(ctx).
		Joins("LEFT JOIN product_recipes pr ON pr.product_id = products.id").
		Where("(products.default_recipe_id = ? OR pr.recipe_id = ?) AND products.deleted_at IS NULL", recipeID, recipeID).
		Group("products.id").
		Find(&products).Error
	return products, err
}

// ListCompositesByChild returns composite products listing the given product
// as a child. Final hop of the cost cascade.
func (r *ProductRepository) ListCompositesByChild(ctx context.Context, productID string) ([]entity.Product, error) {
	var products []entity.Product
	err := r.db.WithContext(ctx).
		Joins("JOIN composite_children cc ON cc.product_id = products.id").
		Where("cc.child_product_id = ? AND products.is_composite AND products.deleted_at IS NULL", productID).
		Group("products.id").
		Find(&products).Error
	return products, err
}

// Create inserts a product with its associations.
func (r *ProductRepository) Create(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Update saves product fields (not associations).
func (r *ProductRepository) Update(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Omit("Recipes", "Children").Save(product).Error
}

// ReplaceChildren swaps the composite child set in one transaction.
func (r *ProductRepository) ReplaceChildren(ctx context.Context, productID string, children []entity.CompositeChild) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&entity.CompositeChild{}).Error; err != nil {
			return err
		}
		if len(children) == 0 {
			return nil
		}
		return tx.Create(&children).Error
	})
}

// UpdateCostPrice persists a recomputed cost price.
func (r *ProductRepository) UpdateCostPrice(ctx context.Context, id string, costPrice float64) error {
	return r.db.WithContext(ctx).
		Model(&entity.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"cost_price": costPrice,
			"updated_at": time.Now(),
		}).Error
}

// UpdateBatchState writes composite stock and the prepared-at timestamp.
func (r *ProductRepository) UpdateBatchState(ctx context.Context, id string, currentStock int, lastPreparedAt *time.Time) error {
	return r.db.WithContext(ctx).
		Model(&entity.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_stock":    currentStock,
			"last_prepared_at": lastPreparedAt,
			"updated_at":       time.Now(),
		}).Error
}

// UpdateImageKey saves the object-storage key of the product image.
func (r *ProductRepository) UpdateImageKey(ctx context.Context, id, imageKey string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Product{}).
		Where("id = ?", id).
		Update("image_key", imageKey).Error
}

// Delete soft-deletes a product.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Product{}).
		Where("id = ?", id).
		Update("deleted_at", time.Now()).Error
}
