package costing

import (
	"context"
	"testing"

	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/model/entity"
)

// fullChainFixture wires an ingredient into a recipe, the recipe into a
// product and the product into a composite.
func fullChainFixture() (*fakeIngredients, *fakeRecipes, *fakeProducts) {
	ings := newFakeIngredients(
		&entity.Ingredient{ID: "ing-chicken", StoreID: "store-1", Name: "Chicken", Unit: "kg", AverageCost: 12},
	)
	recs := newFakeRecipes(&entity.Recipe{
		ID:            "rec-bowl",
		StoreID:       "store-1",
		Name:          "Bowl",
		YieldQuantity: 4,
		CostPerUnit:   5,
		Ingredients: []entity.RecipeIngredient{
			{RecipeID: "rec-bowl", IngredientID: "ing-chicken", AmountUsed: 2, Unit: "kg"},
		},
	})
	prods := newFakeProducts(
		&entity.Product{
			ID:              "prod-bowl",
			StoreID:         "store-1",
			Name:            "Bowl",
			DefaultRecipeID: "rec-bowl",
			RetailPrice:     15,
			CostPrice:       5,
		},
		&entity.Product{
			ID:          "prod-set",
			StoreID:     "store-1",
			Name:        "Bowl Set",
			IsComposite: true,
			CostPrice:   10,
			Children: []entity.CompositeChild{
				{ProductID: "prod-set", ChildProductID: "prod-bowl", QuantityPerServing: 2},
			},
		},
	)
	return ings, recs, prods
}

func newTestManager(ings *fakeIngredients, recs *fakeRecipes, prods *fakeProducts) (*UpdateManager, *CostCache, *fakeHistory, *fakeSink) {
	cache := NewCostCache(0, 0)
	calc := NewCalculator(ings, recs, prods, cache, testLogger())
	history := &fakeHistory{}
	sink := &fakeSink{}
	m := NewUpdateManager(calc, cache, recs, prods, recs, prods, history, sink, 0, testLogger())
	return m, cache, history, sink
}

func TestCascadeIngredientToComposite(t *testing.T) {
	ings, recs, prods := fullChainFixture()
	m, _, history, sink := newTestManager(ings, recs, prods)
	ctx := context.Background()

	m.Start(ctx)
	defer m.Stop()

	m.OnIngredientChange(ctx, "ing-chicken")
	m.WaitIdle()

	// recipe: 2 kg × 12 / yield 4 = 6
	if cost, ok := recs.writtenCost("rec-bowl"); !ok || !almostEqual(cost, 6) {
		t.Errorf("recipe cost written = %v (%v), want 6", cost, ok)
	}
	// product inherits the recipe's per-unit cost
	if cost, ok := prods.writtenCost("prod-bowl"); !ok || !almostEqual(cost, 6) {
		t.Errorf("product cost written = %v (%v), want 6", cost, ok)
	}
	// composite: 2 servings × 6
	if cost, ok := prods.writtenCost("prod-set"); !ok || !almostEqual(cost, 12) {
		t.Errorf("composite cost written = %v (%v), want 12", cost, ok)
	}

	if history.count() != 3 {
		t.Errorf("history rows = %d, want 3 (recipe, product, composite)", history.count())
	}

	updated := sink.byType(EventCostUpdated)
	if len(updated) != 3 {
		t.Fatalf("cost_updated events = %d, want 3", len(updated))
	}
	for _, e := range updated {
		if e.StoreID != "store-1" {
			t.Errorf("cost_updated store filter = %q, want store-1", e.StoreID)
		}
	}
	if len(sink.byType(EventIngredientChanged)) != 1 {
		t.Error("expected exactly one ingredient_changed event")
	}
}

func TestPriorityOrder(t *testing.T) {
	ings, recs, prods := fullChainFixture()
	m, _, history, _ := newTestManager(ings, recs, prods)
	ctx := context.Background()

	// Enqueue in reverse dependency order before the worker starts. The
	// queue must still run recipe, then product, then composite.
	run := newCascade()
	m.enqueue(&UpdateTask{Type: TaskCompositeUpdate, TargetID: "prod-set", Priority: PriorityComposite, origin: run})
	m.enqueue(&UpdateTask{Type: TaskProductUpdate, TargetID: "prod-bowl", Priority: PriorityProduct, origin: run})
	m.enqueue(&UpdateTask{Type: TaskRecipeUpdate, TargetID: "rec-bowl", Priority: PriorityRecipe, origin: run})

	if m.QueueDepth() != 3 {
		t.Fatalf("queue depth = %d, want 3", m.QueueDepth())
	}

	m.Start(ctx)
	defer m.Stop()
	m.WaitIdle()

	history.mu.Lock()
	defer history.mu.Unlock()
	if len(history.rows) < 3 {
		t.Fatalf("history rows = %d, want at least 3", len(history.rows))
	}
	wantOrder := []string{entity.CostEntityRecipe, entity.CostEntityProduct, entity.CostEntityComposite}
	for i, want := range wantOrder {
		if history.rows[i].EntityType != want {
			t.Errorf("processing order[%d] = %s, want %s", i, history.rows[i].EntityType, want)
		}
	}
}

func TestDuplicateTasksCollapse(t *testing.T) {
	ings, recs, prods := fullChainFixture()
	m, _, history, _ := newTestManager(ings, recs, prods)
	ctx := context.Background()

	// The same recipe task is still waiting when the second change fires.
	m.OnIngredientChange(ctx, "ing-chicken")
	m.OnIngredientChange(ctx, "ing-chicken")

	if m.QueueDepth() != 1 {
		t.Errorf("queue depth = %d, want 1 (duplicate collapsed)", m.QueueDepth())
	}

	m.Start(ctx)
	defer m.Stop()
	m.WaitIdle()
	first := history.count()
	if first != 3 {
		t.Fatalf("history rows after first drain = %d, want 3", first)
	}

	// A change arriving after the drain is a fresh cascade and runs again.
	m.OnIngredientChange(ctx, "ing-chicken")
	m.WaitIdle()
	if history.count() != 2*first {
		t.Errorf("history rows = %d, want %d (second cascade ran)", history.count(), 2*first)
	}
}

func TestChangeDuringCascadeIsNotLost(t *testing.T) {
	ings, recs, prods := fullChainFixture()
	m, _, _, _ := newTestManager(ings, recs, prods)
	ctx := context.Background()

	// While the first cascade persists the product cost, the ingredient
	// price doubles and fires an independent change. The recipe already
	// recomputed in that cascade; the new change must enqueue it again
	// rather than leave the stale cost in place.
	var fired bool
	prods.onWrite = func(id string) {
		if id != "prod-bowl" || fired {
			return
		}
		fired = true
		ings.set(&entity.Ingredient{ID: "ing-chicken", StoreID: "store-1", Name: "Chicken", Unit: "kg", AverageCost: 24})
		m.OnIngredientChange(ctx, "ing-chicken")
	}

	m.Start(ctx)
	defer m.Stop()

	m.OnIngredientChange(ctx, "ing-chicken")
	m.WaitIdle()

	// Second cascade: 2 kg × 24 / yield 4 = 12 all the way down.
	if cost, ok := recs.writtenCost("rec-bowl"); !ok || !almostEqual(cost, 12) {
		t.Errorf("recipe cost = %v (%v), want 12", cost, ok)
	}
	if cost, ok := prods.writtenCost("prod-bowl"); !ok || !almostEqual(cost, 12) {
		t.Errorf("product cost = %v (%v), want 12", cost, ok)
	}
	if cost, ok := prods.writtenCost("prod-set"); !ok || !almostEqual(cost, 24) {
		t.Errorf("composite cost = %v (%v), want 24", cost, ok)
	}
}

func TestFailedTaskIsIsolated(t *testing.T) {
	ings, recs, prods := fullChainFixture()
	m, _, _, sink := newTestManager(ings, recs, prods)
	ctx := context.Background()

	m.Start(ctx)
	defer m.Stop()

	// One recipe does not exist; the other must still be processed.
	if _, err := m.RecalculateAll(ctx, []string{"rec-ghost", "rec-bowl"}); err != nil {
		t.Fatalf("RecalculateAll: %v", err)
	}
	m.WaitIdle()

	if cost, ok := recs.writtenCost("rec-bowl"); !ok || !almostEqual(cost, 6) {
		t.Errorf("surviving recipe cost = %v (%v), want 6", cost, ok)
	}
	failures := sink.byType(EventCostUpdateFailed)
	if len(failures) != 1 {
		t.Fatalf("cost_update_failed events = %d, want 1", len(failures))
	}
	if failures[0].Data["target_id"] != "rec-ghost" {
		t.Errorf("failed target = %v, want rec-ghost", failures[0].Data["target_id"])
	}
}

func TestCyclicCompositesTerminate(t *testing.T) {
	// Two composites listing each other as children. The visited set must
	// stop the cascade from looping.
	prods := newFakeProducts(
		&entity.Product{
			ID: "combo-a", StoreID: "store-1", Name: "Combo A", IsComposite: true, CostPrice: 3,
			Children: []entity.CompositeChild{{ProductID: "combo-a", ChildProductID: "combo-b", QuantityPerServing: 1}},
		},
		&entity.Product{
			ID: "combo-b", StoreID: "store-1", Name: "Combo B", IsComposite: true, CostPrice: 4,
			Children: []entity.CompositeChild{{ProductID: "combo-b", ChildProductID: "combo-a", QuantityPerServing: 1}},
		},
	)
	m, _, history, _ := newTestManager(newFakeIngredients(), newFakeRecipes(), prods)
	ctx := context.Background()

	m.Start(ctx)
	defer m.Stop()

	m.OnProductChange(ctx, "combo-a")
	m.WaitIdle() // terminates only if the cycle guard works

	// Each composite recomputed exactly once in this cascade.
	if history.count() != 2 {
		t.Errorf("history rows = %d, want 2", history.count())
	}
}

func TestRecalculateAllClearsCache(t *testing.T) {
	ings, recs, prods := fullChainFixture()
	m, cache, _, _ := newTestManager(ings, recs, prods)
	ctx := context.Background()

	cache.SetRecipe("rec-bowl", &RecipeCostResult{RecipeID: "rec-bowl", TotalCost: 999})

	count, err := m.RecalculateAll(ctx, nil)
	if err != nil {
		t.Fatalf("RecalculateAll: %v", err)
	}
	if count != 1 {
		t.Errorf("enqueued = %d, want 1 (every recipe)", count)
	}
	if cache.Stats().Recipes.Entries != 0 {
		t.Error("cache must be cleared before mass recalculation")
	}

	m.Start(ctx)
	defer m.Stop()
	m.WaitIdle()

	if cost, ok := recs.writtenCost("rec-bowl"); !ok || !almostEqual(cost, 6) {
		t.Errorf("recipe cost = %v (%v), want 6", cost, ok)
	}
}

func TestStopHaltsWorker(t *testing.T) {
	ings, recs, prods := fullChainFixture()
	m, _, _, _ := newTestManager(ings, recs, prods)

	m.Start(context.Background())
	m.Stop()

	// enqueue after stop is a no-op
	m.OnIngredientChange(context.Background(), "ing-chicken")
	if m.QueueDepth() != 0 {
		t.Errorf("queue depth after stop = %d, want 0", m.QueueDepth())
	}
}
