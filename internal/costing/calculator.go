package costing

import (
	"context"
	"fmt"
	"time"

	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/model/entity"
	"go.uber.org/zap"
)

// Store access is narrowed to what costing needs so the calculator can be
// exercised against fakes.

// IngredientStore reads ingredients.
type IngredientStore interface {
	FindByID(ctx context.Context, id string) (*entity.Ingredient, error)
}

// RecipeStore reads recipes and resolves the ingredient→recipe dependency edge.
type RecipeStore interface {
	FindByID(ctx context.Context, id string) (*entity.Recipe, error)
	ListAll(ctx context.Context) ([]entity.Recipe, error)
	ListByIngredient(ctx context.Context, ingredientID string) ([]entity.Recipe, error)
}

// ProductStore reads products and resolves the recipe→product and
// product→composite dependency edges.
type ProductStore interface {
	FindByID(ctx context.Context, id string) (*entity.Product, error)
	ListByRecipe(ctx context.Context, recipeID string) ([]entity.Product, error)
	ListCompositesByChild(ctx context.Context, productID string) ([]entity.Product, error)
}

// Default markup policy applied when a composite is created without explicit
// prices.
const (
	CompositePriceMarkup  = 1.3
	CompositeRetailMarkup = 1.5
)

// IngredientCost is the resolved unit cost of an ingredient.
type IngredientCost struct {
	IngredientID string  `json:"ingredient_id"`
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	UnitCost     float64 `json:"unit_cost"`
	Source       string  `json:"source"`
}

// Unit cost sources.
const (
	CostSourceAverage  = "average"
	CostSourceStandard = "standard"
	CostSourceNone     = "none"
)

// CostBreakdownLine is one ingredient's contribution to a recipe cost.
type CostBreakdownLine struct {
	IngredientID      string  `json:"ingredient_id"`
	IngredientName    string  `json:"ingredient_name"`
	AmountUsed        float64 `json:"amount_used"`
	Unit              string  `json:"unit"`
	ConvertedAmount   float64 `json:"converted_amount"`
	UnitCost          float64 `json:"unit_cost"`
	TotalCost         float64 `json:"total_cost"`
	ConversionApplied bool    `json:"conversion_applied"`
}

// ConversionError records a unit pairing that could not be converted. The
// calculation proceeds with the raw amount; this is a warning, not a failure.
type ConversionError struct {
	IngredientID   string  `json:"ingredient_id"`
	IngredientName string  `json:"ingredient_name"`
	FromUnit       string  `json:"from_unit"`
	ToUnit         string  `json:"to_unit"`
	Amount         float64 `json:"amount"`
	Message        string  `json:"message"`
}

// RecipeCostResult is the full computed cost of a recipe.
type RecipeCostResult struct {
	RecipeID         string              `json:"recipe_id"`
	RecipeName       string              `json:"recipe_name"`
	TotalCost        float64             `json:"total_cost"`
	CostPerUnit      float64             `json:"cost_per_unit"`
	YieldQuantity    float64             `json:"yield_quantity"`
	YieldUnit        string              `json:"yield_unit"`
	CostBreakdown    []CostBreakdownLine `json:"cost_breakdown"`
	ConversionErrors []ConversionError   `json:"conversion_errors,omitempty"`
	CalculatedAt     time.Time           `json:"calculated_at"`
}

// ProductCostResult reports a product's recipe-derived cost against its
// current retail price.
type ProductCostResult struct {
	ProductID     string            `json:"product_id"`
	ProductName   string            `json:"product_name"`
	RecipeID      string            `json:"recipe_id"`
	CostPerUnit   float64           `json:"cost_per_unit"`
	RetailPrice   float64           `json:"retail_price"`
	Margin        float64           `json:"margin"`
	MarginPercent float64           `json:"margin_percent"`
	Recipe        *RecipeCostResult `json:"recipe"`
	CalculatedAt  time.Time         `json:"calculated_at"`
}

// CompositeChildCost is one child's contribution to a composite cost.
type CompositeChildCost struct {
	ChildProductID     string  `json:"child_product_id"`
	Name               string  `json:"name"`
	CostPrice          float64 `json:"cost_price"`
	QuantityPerServing float64 `json:"quantity_per_serving"`
	LineCost           float64 `json:"line_cost"`
}

// CompositeCostResult is the computed cost of a composite product.
type CompositeCostResult struct {
	ProductID       string               `json:"product_id"`
	ProductName     string               `json:"product_name"`
	TotalCost       float64              `json:"total_cost"`
	SuggestedPrice  float64              `json:"suggested_price"`
	SuggestedRetail float64              `json:"suggested_retail"`
	Children        []CompositeChildCost `json:"children"`
	CalculatedAt    time.Time            `json:"calculated_at"`
}

// Calculator derives recipe, product and composite costs, consulting and
// filling the cost cache.
type Calculator struct {
	ingredients IngredientStore
	recipes     RecipeStore
	products    ProductStore
	cache       *CostCache
	logger      *zap.Logger
}

// NewCalculator creates a calculator.
func NewCalculator(ingredients IngredientStore, recipes RecipeStore, products ProductStore, cache *CostCache, logger *zap.Logger) *Calculator {
	return &Calculator{
		ingredients: ingredients,
		recipes:     recipes,
		products:    products,
		cache:       cache,
		logger:      logger,
	}
}

// unitCostOf resolves the authoritative unit cost of an ingredient: average
// cost when present, else standard cost, else zero.
func unitCostOf(ing *entity.Ingredient) (float64, string) {
	if ing.AverageCost > 0 {
		return ing.AverageCost, CostSourceAverage
	}
	if ing.StandardCost > 0 {
		return ing.StandardCost, CostSourceStandard
	}
	return 0, CostSourceNone
}

// ingredientCost resolves an ingredient's unit cost through the cache.
func (c *Calculator) ingredientCost(ctx context.Context, id string) (*IngredientCost, error) {
	if cached, ok := c.cache.GetIngredient(id); ok {
		return cached, nil
	}
	ing, err := c.ingredients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cost, source := unitCostOf(ing)
	result := &IngredientCost{
		IngredientID: ing.ID,
		Name:         ing.Name,
		Unit:         ing.Unit,
		UnitCost:     cost,
		Source:       source,
	}
	c.cache.SetIngredient(id, result)
	return result, nil
}

// RecipeCost computes a recipe's total and per-unit cost from its ingredient
// lines. A line whose unit cannot be converted into the ingredient's stock
// unit contributes its raw amount and is reported in ConversionErrors; a line
// whose ingredient no longer exists is skipped. A missing recipe is a hard
// error.
func (c *Calculator) RecipeCost(ctx context.Context, recipeID string, useCache bool) (*RecipeCostResult, error) {
	if useCache {
		if cached, ok := c.cache.GetRecipe(recipeID); ok {
			return cached, nil
		}
	}

	recipe, err := c.recipes.FindByID(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("recipe not found: %w", err)
	}

	result := &RecipeCostResult{
		RecipeID:      recipe.ID,
		RecipeName:    recipe.Name,
		YieldQuantity: recipe.YieldQuantity,
		YieldUnit:     recipe.YieldUnit,
		CostBreakdown: make([]CostBreakdownLine, 0, len(recipe.Ingredients)),
		CalculatedAt:  time.Now(),
	}
	if result.YieldQuantity <= 0 {
		result.YieldQuantity = 1
	}

	for _, line := range recipe.Ingredients {
		ingCost, err := c.ingredientCost(ctx, line.IngredientID)
		if err != nil {
			// A dangling line must not block the whole recipe.
			c.logger.Debug("skipping unresolvable ingredient line",
				zap.String("recipe_id", recipe.ID),
				zap.String("ingredient_id", line.IngredientID),
				zap.Error(err),
			)
			continue
		}

		amount := line.AmountUsed
		applied := false
		if line.Unit != ingCost.Unit {
			if converted, ok := Convert(line.AmountUsed, line.Unit, ingCost.Unit); ok {
				amount = converted
				applied = true
			} else {
				result.ConversionErrors = append(result.ConversionErrors, ConversionError{
					IngredientID:   ingCost.IngredientID,
					IngredientName: ingCost.Name,
					FromUnit:       line.Unit,
					ToUnit:         ingCost.Unit,
					Amount:         line.AmountUsed,
					Message:        fmt.Sprintf("cannot convert %s to %s, using raw amount", line.Unit, ingCost.Unit),
				})
			}
		}

		lineCost := ingCost.UnitCost * amount
		result.TotalCost += lineCost
		result.CostBreakdown = append(result.CostBreakdown, CostBreakdownLine{
			IngredientID:      ingCost.IngredientID,
			IngredientName:    ingCost.Name,
			AmountUsed:        line.AmountUsed,
			Unit:              line.Unit,
			ConvertedAmount:   amount,
			UnitCost:          ingCost.UnitCost,
			TotalCost:         lineCost,
			ConversionApplied: applied,
		})
	}

	result.CostPerUnit = result.TotalCost / result.YieldQuantity

	if len(result.ConversionErrors) > 0 {
		c.logger.Warn("recipe cost computed with conversion errors",
			zap.String("recipe_id", recipe.ID),
			zap.Int("errors", len(result.ConversionErrors)),
		)
	}

	c.cache.SetRecipe(recipeID, result)
	return result, nil
}

// ProductCost computes a product's cost from a recipe (explicit, or the
// product's default) and reports the margin against its retail price. A
// product with no resolvable recipe is a hard error.
func (c *Calculator) ProductCost(ctx context.Context, productID, recipeID string) (*ProductCostResult, error) {
	if recipeID == "" {
		if cached, ok := c.cache.GetProduct(productID); ok {
			return cached, nil
		}
	}

	product, err := c.products.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("product not found: %w", err)
	}

	targetRecipe := recipeID
	if targetRecipe == "" {
		targetRecipe = product.DefaultRecipeID
	}
	if targetRecipe == "" {
		return nil, fmt.Errorf("product %s has no recipe to cost against", productID)
	}

	recipeResult, err := c.RecipeCost(ctx, targetRecipe, false)
	if err != nil {
		return nil, err
	}

	result := &ProductCostResult{
		ProductID:    product.ID,
		ProductName:  product.Name,
		RecipeID:     targetRecipe,
		CostPerUnit:  recipeResult.CostPerUnit,
		RetailPrice:  product.RetailPrice,
		Margin:       product.RetailPrice - recipeResult.CostPerUnit,
		Recipe:       recipeResult,
		CalculatedAt: time.Now(),
	}
	if product.RetailPrice > 0 {
		result.MarginPercent = result.Margin / product.RetailPrice * 100
	}

	if recipeID == "" {
		c.cache.SetProduct(productID, result)
	}
	return result, nil
}

// CompositeCost sums each child product's current cost price weighted by its
// quantity per serving.
func (c *Calculator) CompositeCost(ctx context.Context, productID string) (*CompositeCostResult, error) {
	if cached, ok := c.cache.GetComposite(productID); ok {
		return cached, nil
	}

	product, err := c.products.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("product not found: %w", err)
	}
	if !product.IsComposite {
		return nil, fmt.Errorf("product %s is not composite", productID)
	}

	result := &CompositeCostResult{
		ProductID:    product.ID,
		ProductName:  product.Name,
		Children:     make([]CompositeChildCost, 0, len(product.Children)),
		CalculatedAt: time.Now(),
	}

	for _, child := range product.Children {
		childProduct := child.Child
		if childProduct == nil {
			childProduct, err = c.products.FindByID(ctx, child.ChildProductID)
			if err != nil {
				c.logger.Debug("skipping unresolvable composite child",
					zap.String("product_id", productID),
					zap.String("child_id", child.ChildProductID),
					zap.Error(err),
				)
				continue
			}
		}
		lineCost := childProduct.CostPrice * child.QuantityPerServing
		result.TotalCost += lineCost
		result.Children = append(result.Children, CompositeChildCost{
			ChildProductID:     childProduct.ID,
			Name:               childProduct.Name,
			CostPrice:          childProduct.CostPrice,
			QuantityPerServing: child.QuantityPerServing,
			LineCost:           lineCost,
		})
	}

	result.SuggestedPrice = result.TotalCost * CompositePriceMarkup
	result.SuggestedRetail = result.TotalCost * CompositeRetailMarkup

	c.cache.SetComposite(productID, result)
	return result, nil
}
