package costing

import (
	"context"
	"fmt"
)

// A conversion factor this far from 1 usually means the recipe line was
// written in the wrong unit (e.g. grams where kilograms were meant).
const largeFactorThreshold = 100

// IngredientCheck is the dry-run verdict for one recipe line.
type IngredientCheck struct {
	IngredientID   string  `json:"ingredient_id"`
	IngredientName string  `json:"ingredient_name"`
	RecipeUnit     string  `json:"recipe_unit"`
	StockUnit      string  `json:"stock_unit"`
	Convertible    bool    `json:"convertible"`
	Factor         float64 `json:"factor,omitempty"`
	LargeFactor    bool    `json:"large_factor"`
}

// RecipeValidation is the result of a dry-run unit check of one recipe.
// Nothing is computed or cached.
type RecipeValidation struct {
	RecipeID string            `json:"recipe_id"`
	IsValid  bool              `json:"is_valid"`
	Warnings []string          `json:"warnings"`
	Errors   []string          `json:"errors"`
	Checks   []IngredientCheck `json:"checks"`
}

// ValidateRecipeCost checks every ingredient line of a recipe for unit
// convertibility and suspiciously large conversion factors, without mutating
// any state.
func (c *Calculator) ValidateRecipeCost(ctx context.Context, recipeID string) (*RecipeValidation, error) {
	recipe, err := c.recipes.FindByID(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("recipe not found: %w", err)
	}

	v := &RecipeValidation{
		RecipeID: recipe.ID,
		IsValid:  true,
		Warnings: []string{},
		Errors:   []string{},
		Checks:   make([]IngredientCheck, 0, len(recipe.Ingredients)),
	}

	for _, line := range recipe.Ingredients {
		ing, err := c.ingredients.FindByID(ctx, line.IngredientID)
		if err != nil {
			v.Warnings = append(v.Warnings, fmt.Sprintf("ingredient %s not found, line will be skipped", line.IngredientID))
			continue
		}

		check := IngredientCheck{
			IngredientID:   ing.ID,
			IngredientName: ing.Name,
			RecipeUnit:     line.Unit,
			StockUnit:      ing.Unit,
		}

		if line.Unit == ing.Unit {
			check.Convertible = true
			check.Factor = 1
		} else if factor, ok := ConversionFactor(line.Unit, ing.Unit); ok {
			check.Convertible = true
			check.Factor = factor
			magnitude := factor
			if magnitude < 1 && magnitude > 0 {
				magnitude = 1 / magnitude
			}
			if magnitude > largeFactorThreshold {
				check.LargeFactor = true
				v.Warnings = append(v.Warnings, fmt.Sprintf(
					"%s: conversion %s → %s has factor %g, verify the recipe unit",
					ing.Name, line.Unit, ing.Unit, factor,
				))
			}
		} else {
			v.IsValid = false
			v.Errors = append(v.Errors, fmt.Sprintf(
				"%s: cannot convert %s to %s", ing.Name, line.Unit, ing.Unit,
			))
		}

		v.Checks = append(v.Checks, check)
	}

	return v, nil
}
