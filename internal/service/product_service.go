package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"time"

	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/costing"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/model/entity"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/repository"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CompositeChildRequest is one component of a composite product payload.
type CompositeChildRequest struct {
	ChildProductID     string  `json:"child_product_id" binding:"required"`
	QuantityPerServing float64 `json:"quantity_per_serving" binding:"required,gt=0"`
	Unit               string  `json:"unit"`
	SellingPrice       float64 `json:"selling_price"`
	RetailPrice        float64 `json:"retail_price"`
}

// CreateProductRequest creates a regular or composite product.
type CreateProductRequest struct {
	StoreID          string                  `json:"store_id" binding:"required"`
	Code             string                  `json:"code" binding:"required"`
	Name             string                  `json:"name" binding:"required"`
	Description      string                  `json:"description"`
	Price            float64                 `json:"price"`
	RetailPrice      float64                 `json:"retail_price"`
	DefaultRecipeID  string                  `json:"default_recipe_id"`
	RecipeIDs        []string                `json:"recipe_ids"`
	IsComposite      bool                    `json:"is_composite"`
	Children         []CompositeChildRequest `json:"children"`
	CapacityQuantity float64                 `json:"capacity_quantity"`
	CapacityUnit     string                  `json:"capacity_unit"`
	ExpiryHours      float64                 `json:"expiry_hours"`
	Specs            entity.JSONB            `json:"specs"`
}

// UpdateProductRequest edits a product. A nil Children slice leaves the
// composition untouched.
type UpdateProductRequest struct {
	Name             string                   `json:"name"`
	Description      string                   `json:"description"`
	Status           string                   `json:"status"`
	Price            *float64                 `json:"price"`
	RetailPrice      *float64                 `json:"retail_price"`
	DefaultRecipeID  *string                  `json:"default_recipe_id"`
	Children         *[]CompositeChildRequest `json:"children"`
	CapacityQuantity *float64                 `json:"capacity_quantity"`
	CapacityUnit     string                   `json:"capacity_unit"`
	ExpiryHours      *float64                 `json:"expiry_hours"`
	Specs            entity.JSONB             `json:"specs"`
}

// PrepareBatchRequest records a freshly prepared composite batch.
type PrepareBatchRequest struct {
	Servings int `json:"servings" binding:"required,gt=0"`
}

// ServeRequest consumes prepared servings of a composite product.
type ServeRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// ProductService manages products, including the composite batch lifecycle
// and the cost link back to recipes.
type ProductService struct {
	repo    *repository.ProductRepository
	calc    *costing.Calculator
	updater *costing.UpdateManager
	rdb     *redis.Client
	minio   *minio.Client
	bucket  string
	logger  *zap.Logger
}

// NewProductService creates a product service. minioClient may be nil, in
// which case image upload is disabled.
func NewProductService(repo *repository.ProductRepository, calc *costing.Calculator, updater *costing.UpdateManager, rdb *redis.Client, minioClient *minio.Client, bucket string, logger *zap.Logger) *ProductService {
	return &ProductService{
		repo:    repo,
		calc:    calc,
		updater: updater,
		rdb:     rdb,
		minio:   minioClient,
		bucket:  bucket,
		logger:  logger,
	}
}

func (s *ProductService) invalidateListCache(ctx context.Context, storeID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, "products:list:"+storeID).Err(); err != nil && err != redis.Nil {
		s.logger.Warn("failed to invalidate product list cache", zap.Error(err))
	}
}

// Get loads one product with its recipes and children.
func (s *ProductService) Get(ctx context.Context, id string) (*entity.Product, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns products for a store, served from the redis list cache when
// the first unfiltered page is requested.
func (s *ProductService) List(ctx context.Context, storeID string, page, pageSize int, keyword string) ([]entity.Product, int64, error) {
	cacheable := s.rdb != nil && keyword == "" && page == 1
	cacheKey := "products:list:" + storeID
	if cacheable {
		if raw, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var cached struct {
				Products []entity.Product `json:"products"`
				Total    int64            `json:"total"`
			}
			if json.Unmarshal([]byte(raw), &cached) == nil && len(cached.Products) <= pageSize {
				return cached.Products, cached.Total, nil
			}
		}
	}

	products, total, err := s.repo.List(ctx, storeID, page, pageSize, keyword)
	if err != nil {
		return nil, 0, err
	}

	if cacheable {
		payload, _ := json.Marshal(struct {
			Products []entity.Product `json:"products"`
			Total    int64            `json:"total"`
		}{products, total})
		if err := s.rdb.Set(ctx, cacheKey, payload, 5*time.Minute).Err(); err != nil {
			s.logger.Warn("failed to cache product list", zap.Error(err))
		}
	}
	return products, total, nil
}

// Create inserts a product and computes its initial cost price.
func (s *ProductService) Create(ctx context.Context, userID string, req *CreateProductRequest) (*entity.Product, error) {
	if req.IsComposite && req.DefaultRecipeID != "" {
		return nil, fmt.Errorf("composite product cannot have a default recipe")
	}

	now := time.Now()
	product := &entity.Product{
		ID:               newID(),
		StoreID:          req.StoreID,
		Code:             req.Code,
		Name:             req.Name,
		Status:           entity.ProductStatusActive,
		Description:      req.Description,
		Price:            req.Price,
		RetailPrice:      req.RetailPrice,
		DefaultRecipeID:  req.DefaultRecipeID,
		IsComposite:      req.IsComposite,
		Specs:            req.Specs,
		CapacityQuantity: req.CapacityQuantity,
		CapacityUnit:     req.CapacityUnit,
		ExpiryHours:      req.ExpiryHours,
		CreatedBy:        userID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	for _, recipeID := range req.RecipeIDs {
		product.Recipes = append(product.Recipes, entity.ProductRecipe{
			ID:        newID(),
			ProductID: product.ID,
			RecipeID:  recipeID,
		})
	}
	for _, child := range req.Children {
		product.Children = append(product.Children, entity.CompositeChild{
			ID:                 newID(),
			ProductID:          product.ID,
			ChildProductID:     child.ChildProductID,
			QuantityPerServing: child.QuantityPerServing,
			Unit:               child.Unit,
			SellingPrice:       child.SellingPrice,
			RetailPrice:        child.RetailPrice,
		})
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.invalidateListCache(ctx, req.StoreID)

	if req.IsComposite {
		if result, err := s.calc.CompositeCost(ctx, product.ID); err == nil {
			product.CostPrice = result.TotalCost
			// Markup-derived prices are defaults; explicit request prices win.
			if req.Price == 0 {
				product.Price = result.SuggestedPrice
			}
			if req.RetailPrice == 0 {
				product.RetailPrice = result.SuggestedRetail
			}
			if err := s.repo.Update(ctx, product); err != nil {
				s.logger.Warn("failed to persist composite cost",
					zap.String("product_id", product.ID), zap.Error(err))
			}
		}
	} else if req.DefaultRecipeID != "" {
		if result, err := s.calc.ProductCost(ctx, product.ID, ""); err == nil {
			if err := s.repo.UpdateCostPrice(ctx, product.ID, result.CostPerUnit); err == nil {
				product.CostPrice = result.CostPerUnit
			}
		}
	}

	return product, nil
}

// Update edits a product and cascades the cost recomputation.
func (s *ProductService) Update(ctx context.Context, id string, req *UpdateProductRequest) (*entity.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.Status != "" {
		product.Status = req.Status
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.RetailPrice != nil {
		product.RetailPrice = *req.RetailPrice
	}
	if req.DefaultRecipeID != nil {
		if product.IsComposite && *req.DefaultRecipeID != "" {
			return nil, fmt.Errorf("composite product cannot have a default recipe")
		}
		product.DefaultRecipeID = *req.DefaultRecipeID
	}
	if req.CapacityQuantity != nil {
		product.CapacityQuantity = *req.CapacityQuantity
	}
	if req.CapacityUnit != "" {
		product.CapacityUnit = req.CapacityUnit
	}
	if req.ExpiryHours != nil {
		product.ExpiryHours = *req.ExpiryHours
	}
	if req.Specs != nil {
		product.Specs = req.Specs
	}
	product.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if req.Children != nil {
		children := make([]entity.CompositeChild, 0, len(*req.Children))
		for _, child := range *req.Children {
			children = append(children, entity.CompositeChild{
				ID:                 newID(),
				ProductID:          id,
				ChildProductID:     child.ChildProductID,
				QuantityPerServing: child.QuantityPerServing,
				Unit:               child.Unit,
				SellingPrice:       child.SellingPrice,
				RetailPrice:        child.RetailPrice,
			})
		}
		if err := s.repo.ReplaceChildren(ctx, id, children); err != nil {
			return nil, fmt.Errorf("replace composite children: %w", err)
		}
	}

	s.invalidateListCache(ctx, product.StoreID)
	s.updater.OnProductChange(ctx, id)

	return s.repo.FindByID(ctx, id)
}

// Delete soft-deletes a product.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.invalidateListCache(ctx, product.StoreID)
	s.updater.OnProductChange(ctx, id)
	return nil
}

// Cost computes the product cost. recipeID overrides the default recipe.
func (s *ProductService) Cost(ctx context.Context, id, recipeID string) (*costing.ProductCostResult, error) {
	return s.calc.ProductCost(ctx, id, recipeID)
}

// CompositeCost computes the assembled cost of a composite product.
func (s *ProductService) CompositeCost(ctx context.Context, id string) (*costing.CompositeCostResult, error) {
	return s.calc.CompositeCost(ctx, id)
}

// SyncCostFromRecipe recomputes the product's cost price from its default
// recipe and persists it, then cascades to composites containing it.
func (s *ProductService) SyncCostFromRecipe(ctx context.Context, id string) (*costing.ProductCostResult, error) {
	result, err := s.calc.ProductCost(ctx, id, "")
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateCostPrice(ctx, id, result.CostPerUnit); err != nil {
		return nil, fmt.Errorf("persist product cost: %w", err)
	}
	s.updater.OnProductChange(ctx, id)
	return result, nil
}

// PrepareBatch records a new prepared batch of a composite product. The new
// batch replaces whatever unexpired stock remained.
func (s *ProductService) PrepareBatch(ctx context.Context, id string, req *PrepareBatchRequest) (*entity.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsComposite {
		return nil, fmt.Errorf("product %s is not composite", id)
	}
	if product.CapacityQuantity > 0 {
		maxServings := int(math.Floor(product.CapacityQuantity))
		if req.Servings > maxServings {
			return nil, fmt.Errorf("servings %d exceed batch capacity %d", req.Servings, maxServings)
		}
	}

	now := time.Now()
	if err := s.repo.UpdateBatchState(ctx, id, req.Servings, &now); err != nil {
		return nil, fmt.Errorf("record batch: %w", err)
	}
	product.CurrentStock = req.Servings
	product.LastPreparedAt = &now
	return product, nil
}

// Serve consumes prepared servings. Expired stock reads as zero, so serving
// from a stale batch fails rather than silently selling expired food.
func (s *ProductService) Serve(ctx context.Context, id string, req *ServeRequest) (*entity.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsComposite {
		return nil, fmt.Errorf("product %s is not composite", id)
	}

	now := time.Now()
	available := product.EffectiveStock(now)
	if req.Quantity > available {
		return nil, fmt.Errorf("insufficient servings: requested %d, available %d", req.Quantity, available)
	}

	remaining := available - req.Quantity
	if err := s.repo.UpdateBatchState(ctx, id, remaining, product.LastPreparedAt); err != nil {
		return nil, fmt.Errorf("update batch stock: %w", err)
	}
	product.CurrentStock = remaining
	return product, nil
}

// UploadImage stores a product image in object storage and records its key.
func (s *ProductService) UploadImage(ctx context.Context, id, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	if s.minio == nil {
		return "", fmt.Errorf("object storage not configured")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return "", err
	}

	key := fmt.Sprintf("products/%s/%s%s", id, newID(), filepath.Ext(filename))
	_, err := s.minio.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	if err := s.repo.UpdateImageKey(ctx, id, key); err != nil {
		return "", fmt.Errorf("record image key: %w", err)
	}
	return key, nil
}

// ImageURL generates a presigned download URL for a product image.
func (s *ProductService) ImageURL(ctx context.Context, id string) (string, error) {
	if s.minio == nil {
		return "", fmt.Errorf("object storage not configured")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if product.ImageKey == "" {
		return "", repository.ErrNotFound
	}
	u, err := s.minio.PresignedGetObject(ctx, s.bucket, product.ImageKey, 15*time.Minute, nil)
	if err != nil {
		return "", fmt.Errorf("presign image url: %w", err)
	}
	return u.String(), nil
}
