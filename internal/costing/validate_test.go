package costing

import (
	"context"
	"testing"

	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/model/entity"
)

func TestValidateRecipeCost(t *testing.T) {
	ings := newFakeIngredients(
		&entity.Ingredient{ID: "ing-flour", Name: "Flour", Unit: "kg"},
		&entity.Ingredient{ID: "ing-egg", Name: "Egg", Unit: "pcs"},
		&entity.Ingredient{ID: "ing-milk", Name: "Milk", Unit: "l"},
	)
	recs := newFakeRecipes(&entity.Recipe{
		ID:   "rec-cake",
		Name: "Cake",
		Ingredients: []entity.RecipeIngredient{
			{IngredientID: "ing-flour", AmountUsed: 500, Unit: "g"},  // convertible, factor 0.001
			{IngredientID: "ing-egg", AmountUsed: 200, Unit: "g"},    // incompatible
			{IngredientID: "ing-milk", AmountUsed: 0.2, Unit: "l"},   // same unit
			{IngredientID: "ing-gone", AmountUsed: 1, Unit: "kg"},    // dangling
		},
	})
	calc, _ := newTestCalculator(ings, recs, newFakeProducts())

	v, err := calc.ValidateRecipeCost(context.Background(), "rec-cake")
	if err != nil {
		t.Fatalf("ValidateRecipeCost: %v", err)
	}

	if v.IsValid {
		t.Error("an incompatible line must mark the recipe invalid")
	}
	if len(v.Checks) != 3 {
		t.Fatalf("checks = %d, want 3 (dangling line has no check)", len(v.Checks))
	}
	if len(v.Errors) != 1 {
		t.Errorf("errors = %d, want 1", len(v.Errors))
	}

	flour := v.Checks[0]
	if !flour.Convertible || flour.Factor != 0.001 {
		t.Errorf("flour check = %+v, want convertible with factor 0.001", flour)
	}
	if !flour.LargeFactor {
		t.Error("a 1000x magnitude factor should be flagged as large")
	}

	egg := v.Checks[1]
	if egg.Convertible {
		t.Error("g → pcs must not be convertible")
	}

	milk := v.Checks[2]
	if !milk.Convertible || milk.Factor != 1 || milk.LargeFactor {
		t.Errorf("milk check = %+v, want factor 1 without flags", milk)
	}

	// dangling ingredient produces a warning
	foundWarning := false
	for _, w := range v.Warnings {
		if w != "" {
			foundWarning = true
		}
	}
	if !foundWarning {
		t.Error("expected a warning for the dangling ingredient line")
	}
}

func TestValidateRecipeCostAllValid(t *testing.T) {
	ings := newFakeIngredients(
		&entity.Ingredient{ID: "ing-a", Name: "A", Unit: "kg"},
	)
	recs := newFakeRecipes(&entity.Recipe{
		ID:   "rec-ok",
		Name: "OK",
		Ingredients: []entity.RecipeIngredient{
			{IngredientID: "ing-a", AmountUsed: 2, Unit: "kg"},
		},
	})
	calc, _ := newTestCalculator(ings, recs, newFakeProducts())

	v, err := calc.ValidateRecipeCost(context.Background(), "rec-ok")
	if err != nil {
		t.Fatalf("ValidateRecipeCost: %v", err)
	}
	if !v.IsValid || len(v.Errors) != 0 || len(v.Warnings) != 0 {
		t.Errorf("expected a clean validation, got %+v", v)
	}
}

func TestValidateRecipeCostMissingRecipe(t *testing.T) {
	calc, _ := newTestCalculator(newFakeIngredients(), newFakeRecipes(), newFakeProducts())
	if _, err := calc.ValidateRecipeCost(context.Background(), "rec-nope"); err == nil {
		t.Fatal("expected an error for a missing recipe")
	}
}
