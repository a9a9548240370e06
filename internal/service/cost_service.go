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

// ProfitabilityLine is one product's margin picture.
type ProfitabilityLine struct {
	ProductID     string  `json:"product_id"`
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	IsComposite   bool    `json:"is_composite"`
	CostPrice     float64 `json:"cost_price"`
	RetailPrice   float64 `json:"retail_price"`
	Margin        float64 `json:"margin"`
	MarginPercent float64 `json:"margin_percent"`
}

// ProfitabilityReport summarizes margins across a store's products.
type ProfitabilityReport struct {
	StoreID       string              `json:"store_id"`
	Products      []ProfitabilityLine `json:"products"`
	AverageMargin float64             `json:"average_margin_percent"`
	NegativeCount int                 `json:"negative_margin_count"`
	GeneratedAt   time.Time           `json:"generated_at"`
}

// IngredientImpact lists everything whose cost depends on one ingredient.
type IngredientImpact struct {
	IngredientID   string   `json:"ingredient_id"`
	IngredientName string   `json:"ingredient_name"`
	RecipeIDs      []string `json:"recipe_ids"`
	ProductIDs     []string `json:"product_ids"`
	CompositeIDs   []string `json:"composite_ids"`
}

// CostService exposes the costing pipeline diagnostics: cache statistics,
// bulk recalculation, history trends and impact analysis.
type CostService struct {
	repos   *repository.Repositories
	calc    *costing.Calculator
	cache   *costing.CostCache
	updater *costing.UpdateManager
	logger  *zap.Logger
}

// NewCostService creates a cost service.
func NewCostService(repos *repository.Repositories, calc *costing.Calculator, cache *costing.CostCache, updater *costing.UpdateManager, logger *zap.Logger) *CostService {
	return &CostService{repos: repos, calc: calc, cache: cache, updater: updater, logger: logger}
}

// CacheStats reports hit, miss and entry counts per cache partition.
func (s *CostService) CacheStats() costing.CacheStats {
	return s.cache.Stats()
}

// ClearCache flushes every cache partition.
func (s *CostService) ClearCache() {
	s.cache.ClearAll()
	s.logger.Info("cost cache cleared by request")
}

// QueueDepth reports the number of pending update tasks.
func (s *CostService) QueueDepth() int {
	return s.updater.QueueDepth()
}

// RecalculateAll flushes the cache and re-enqueues recipes for recomputation.
// With no IDs given, every recipe is recalculated.
func (s *CostService) RecalculateAll(ctx context.Context, recipeIDs []string) (int, error) {
	return s.updater.RecalculateAll(ctx, recipeIDs)
}

// Trend returns the cost history of one entity over the trailing window.
func (s *CostService) Trend(ctx context.Context, entityType, entityID string, days int) ([]entity.CostHistory, error) {
	switch entityType {
	case entity.CostEntityIngredient, entity.CostEntityRecipe, entity.CostEntityProduct, entity.CostEntityComposite:
	default:
		return nil, fmt.Errorf("unknown cost entity type %q", entityType)
	}
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)
	return s.repos.CostHistory.Trend(ctx, entityType, entityID, since)
}

// RecentHistory returns the latest cost changes across all entities.
func (s *CostService) RecentHistory(ctx context.Context, limit int) ([]entity.CostHistory, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repos.CostHistory.Recent(ctx, limit)
}

// Profitability reports the margin of every product in a store against its
// persisted cost price.
func (s *CostService) Profitability(ctx context.Context, storeID string) (*ProfitabilityReport, error) {
	products, _, err := s.repos.Product.List(ctx, storeID, 1, 1000, "")
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	report := &ProfitabilityReport{StoreID: storeID, GeneratedAt: time.Now()}
	var percentSum float64
	var percentCount int
	for _, p := range products {
		line := ProfitabilityLine{
			ProductID:   p.ID,
			Code:        p.Code,
			Name:        p.Name,
			IsComposite: p.IsComposite,
			CostPrice:   p.CostPrice,
			RetailPrice: p.RetailPrice,
			Margin:      p.RetailPrice - p.CostPrice,
		}
		if p.RetailPrice > 0 {
			line.MarginPercent = line.Margin / p.RetailPrice * 100
			percentSum += line.MarginPercent
			percentCount++
		}
		if line.Margin < 0 {
			report.NegativeCount++
		}
		report.Products = append(report.Products, line)
	}
	if percentCount > 0 {
		report.AverageMargin = percentSum / float64(percentCount)
	}
	return report, nil
}

// Impact lists the recipes, products and composites whose cost would change
// if the given ingredient's cost changed.
func (s *CostService) Impact(ctx context.Context, ingredientID string) (*IngredientImpact, error) {
	ingredient, err := s.repos.Ingredient.FindByID(ctx, ingredientID)
	if err != nil {
		return nil, err
	}

	impact := &IngredientImpact{
		IngredientID:   ingredient.ID,
		IngredientName: ingredient.Name,
	}

	recipes, err := s.repos.Recipe.ListByIngredient(ctx, ingredientID)
	if err != nil {
		return nil, fmt.Errorf("list dependent recipes: %w", err)
	}

	productSeen := make(map[string]bool)
	compositeSeen := make(map[string]bool)
	for _, recipe := range recipes {
		impact.RecipeIDs = append(impact.RecipeIDs, recipe.ID)

		products, err := s.repos.Product.ListByRecipe(ctx, recipe.ID)
		if err != nil {
			return nil, fmt.Errorf("list dependent products: %w", err)
		}
		for _, p := range products {
			if productSeen[p.ID] {
				continue
			}
			productSeen[p.ID] = true
			impact.ProductIDs = append(impact.ProductIDs, p.ID)

			composites, err := s.repos.Product.ListCompositesByChild(ctx, p.ID)
			if err != nil {
				return nil, fmt.Errorf("list dependent composites: %w", err)
			}
			for _, c := range composites {
				if compositeSeen[c.ID] {
					continue
				}
				compositeSeen[c.ID] = true
				impact.CompositeIDs = append(impact.CompositeIDs, c.ID)
			}
		}
	}
	return impact, nil
}
