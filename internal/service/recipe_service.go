package service

import (
	"context"
	"fmt"
	"time"

	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/costing"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/model/entity"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/repository"
	"go.uber.org/zap"
)

// RecipeLineRequest is one ingredient line of a recipe payload.
type RecipeLineRequest struct {
	IngredientID string  `json:"ingredient_id" binding:"required"`
	AmountUsed   float64 `json:"amount_used" binding:"required,gt=0"`
	Unit         string  `json:"unit" binding:"required"`
}

// CreateRecipeRequest creates a recipe with its lines.
type CreateRecipeRequest struct {
	StoreID       string              `json:"store_id" binding:"required"`
	Code          string              `json:"code" binding:"required"`
	Name          string              `json:"name" binding:"required"`
	Description   string              `json:"description"`
	YieldQuantity float64             `json:"yield_quantity"`
	YieldUnit     string              `json:"yield_unit"`
	Ingredients   []RecipeLineRequest `json:"ingredients"`
}

// UpdateRecipeRequest edits a recipe. A nil Ingredients slice leaves the
// lines untouched; an empty one clears them.
type UpdateRecipeRequest struct {
	Name          string               `json:"name"`
	Description   string               `json:"description"`
	YieldQuantity *float64             `json:"yield_quantity"`
	YieldUnit     string               `json:"yield_unit"`
	Ingredients   *[]RecipeLineRequest `json:"ingredients"`
}

// RecipeService manages recipes. Every mutation triggers the cost cascade so
// the persisted cost per unit tracks the ingredient lines.
type RecipeService struct {
	repo    *repository.RecipeRepository
	calc    *costing.Calculator
	updater *costing.UpdateManager
	logger  *zap.Logger
}

// NewRecipeService creates a recipe service.
func NewRecipeService(repo *repository.RecipeRepository, calc *costing.Calculator, updater *costing.UpdateManager, logger *zap.Logger) *RecipeService {
	return &RecipeService{repo: repo, calc: calc, updater: updater, logger: logger}
}

// Get loads one recipe with its lines.
func (s *RecipeService) Get(ctx context.Context, id string) (*entity.Recipe, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns recipes for a store.
func (s *RecipeService) List(ctx context.Context, storeID string, page, pageSize int, keyword string) ([]entity.Recipe, int64, error) {
	return s.repo.List(ctx, storeID, page, pageSize, keyword)
}

// Create inserts a recipe and computes its initial cost.
func (s *RecipeService) Create(ctx context.Context, userID string, req *CreateRecipeRequest) (*entity.Recipe, error) {
	for _, line := range req.Ingredients {
		if !costing.KnownUnit(line.Unit) {
			return nil, fmt.Errorf("unknown unit %q for ingredient %s", line.Unit, line.IngredientID)
		}
	}

	now := time.Now()
	yieldQty := req.YieldQuantity
	if yieldQty <= 0 {
		yieldQty = 1
	}
	recipe := &entity.Recipe{
		ID:            newID(),
		StoreID:       req.StoreID,
		Code:          req.Code,
		Name:          req.Name,
		Description:   req.Description,
		YieldQuantity: yieldQty,
		YieldUnit:     req.YieldUnit,
		CreatedBy:     userID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, line := range req.Ingredients {
		recipe.Ingredients = append(recipe.Ingredients, entity.RecipeIngredient{
			ID:           newID(),
			RecipeID:     recipe.ID,
			IngredientID: line.IngredientID,
			AmountUsed:   line.AmountUsed,
			Unit:         line.Unit,
		})
	}

	if err := s.repo.Create(ctx, recipe); err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}

	// Seed the persisted cost; dependents of a brand-new recipe are created
	// later, so no cascade is needed yet.
	if result, err := s.calc.RecipeCost(ctx, recipe.ID, false); err == nil {
		if err := s.repo.UpdateCostPerUnit(ctx, recipe.ID, result.CostPerUnit); err == nil {
			recipe.CostPerUnit = result.CostPerUnit
		}
	} else {
		s.logger.Warn("initial recipe cost computation failed",
			zap.String("recipe_id", recipe.ID), zap.Error(err))
	}

	return recipe, nil
}

// Update edits a recipe and/or replaces its lines, then cascades.
func (s *RecipeService) Update(ctx context.Context, id string, req *UpdateRecipeRequest) (*entity.Recipe, error) {
	recipe, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		recipe.Name = req.Name
	}
	if req.Description != "" {
		recipe.Description = req.Description
	}
	if req.YieldQuantity != nil && *req.YieldQuantity > 0 {
		recipe.YieldQuantity = *req.YieldQuantity
	}
	if req.YieldUnit != "" {
		recipe.YieldUnit = req.YieldUnit
	}
	recipe.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, recipe); err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}

	if req.Ingredients != nil {
		lines := make([]entity.RecipeIngredient, 0, len(*req.Ingredients))
		for _, line := range *req.Ingredients {
			if !costing.KnownUnit(line.Unit) {
				return nil, fmt.Errorf("unknown unit %q for ingredient %s", line.Unit, line.IngredientID)
			}
			lines = append(lines, entity.RecipeIngredient{
				ID:           newID(),
				RecipeID:     id,
				IngredientID: line.IngredientID,
				AmountUsed:   line.AmountUsed,
				Unit:         line.Unit,
			})
		}
		if err := s.repo.ReplaceIngredients(ctx, id, lines); err != nil {
			return nil, fmt.Errorf("replace recipe lines: %w", err)
		}
	}

	// Recompute this recipe and everything derived from it.
	if result, err := s.calc.RecipeCost(ctx, id, false); err == nil {
		if err := s.repo.UpdateCostPerUnit(ctx, id, result.CostPerUnit); err == nil {
			recipe.CostPerUnit = result.CostPerUnit
		}
	}
	s.updater.OnRecipeChange(ctx, id)

	return s.repo.FindByID(ctx, id)
}

// Delete soft-deletes a recipe and cascades to dependents.
func (s *RecipeService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	s.updater.OnRecipeChange(ctx, id)
	return nil
}

// Cost computes the recipe cost, cached.
func (s *RecipeService) Cost(ctx context.Context, id string, useCache bool) (*costing.RecipeCostResult, error) {
	return s.calc.RecipeCost(ctx, id, useCache)
}

// Validate dry-runs the unit checks for one recipe.
func (s *RecipeService) Validate(ctx context.Context, id string) (*costing.RecipeValidation, error) {
	return s.calc.ValidateRecipeCost(ctx, id)
}
