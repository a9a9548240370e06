package repository

import (
	"context"
	"time"

	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/model/entity"
	"gorm.io/gorm"
)

// RecipeRepository persists recipes and their ingredient lines.
type RecipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a recipe repository.
func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// FindByID loads a recipe with its ingredient lines.
func (r *RecipeRepository) FindByID(ctx context.Context, id string) (*entity.Recipe, error) {
	var recipe entity.Recipe
	err := r.db.WithContext(ctx).
		Preload("Ingredients").
		Preload("Ingredients.Ingredient").
		Where("id = ? AND deleted_at IS NULL", id).
		First(&recipe).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &recipe, nil
}

// ListAll returns every non-deleted recipe with its lines.
func (r *RecipeRepository) ListAll(ctx context.Context) ([]entity.Recipe, error) {
	var recipes []entity.Recipe
	err := r.db.WithContext(ctx).
		Preload("Ingredients").
		Preload("Ingredients.Ingredient").
		Where("deleted_at IS NULL").
		Order("created_at ASC").
		Find(&recipes).Error
	return recipes, err
}

// ListByIngredient returns recipes with at least one line referencing the
// ingredient. This is the first hop of the cost cascade.
func (r *RecipeRepository) ListByIngredient(ctx context.Context, ingredientID string) ([]entity.Recipe, error) {
	var recipes []entity.Recipe
	err := r.db.WithContext(ctx).
		Joins("JOIN recipe_ingredients ri ON ri.recipe_id = recipes.id").
		Where("ri.ingredient_id = ? AND recipes.deleted_at IS NULL", ingredientID).
		Group("recipes.id").
		Find(&recipes).Error
	return recipes, err
}

// List returns recipes for a store, paginated.
func (r *RecipeRepository) List(ctx context.Context, storeID string, page, pageSize int, keyword string) ([]entity.Recipe, int64, error) {
	var recipes []entity.Recipe
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Recipe{}).Where("deleted_at IS NULL")
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
		Preload("Ingredients").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&recipes).Error

	return recipes, total, err
}

// Create inserts a recipe with its lines.
func (r *RecipeRepository) Create(ctx context.Context, recipe *entity.Recipe) error {
	return r.db.WithContext(ctx).Create(recipe).Error
}

// Update saves recipe fields (not lines).
func (r *RecipeRepository) Update(ctx context.Context, recipe *entity.Recipe) error {
	return r.db.WithContext(ctx).Omit("Ingredients").Save(recipe).Error
}

// ReplaceIngredients swaps the full line set of a recipe in one transaction.
func (r *RecipeRepository) ReplaceIngredients(ctx context.Context, recipeID string, lines []entity.RecipeIngredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&entity.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		return tx.Create(&lines).Error
	})
}

// UpdateCostPerUnit persists a recomputed cost per unit.
func (r *RecipeRepository) UpdateCostPerUnit(ctx context.Context, id string, costPerUnit float64) error {
	return r.db.WithContext(ctx).
		Model(&entity.Recipe{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"cost_per_unit": costPerUnit,
			"updated_at":    time.Now(),
		}).Error
}

// Delete soft-deletes a recipe.
func (r *RecipeRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Recipe{}).
		Where("id = ?", id).
		Update("deleted_at", time.Now()).Error
}
