package costing

import (
	"context"
	"errors"
	"sync"

	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/model/entity"
	"go.uber.org/zap"
)

var errMissing = errors.New("record not found")

type fakeIngredients struct {
	mu   sync.Mutex
	rows map[string]*entity.Ingredient
}

func newFakeIngredients(rows ...*entity.Ingredient) *fakeIngredients {
	f := &fakeIngredients{rows: make(map[string]*entity.Ingredient)}
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return f
}

func (f *fakeIngredients) FindByID(_ context.Context, id string) (*entity.Ingredient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, errMissing
	}
	copied := *row
	return &copied, nil
}

func (f *fakeIngredients) set(row *entity.Ingredient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[row.ID] = row
}

type fakeRecipes struct {
	mu        sync.Mutex
	rows      map[string]*entity.Recipe
	costs     map[string]float64
	writeErrs map[string]error
}

func newFakeRecipes(rows ...*entity.Recipe) *fakeRecipes {
	f := &fakeRecipes{
		rows:      make(map[string]*entity.Recipe),
		costs:     make(map[string]float64),
		writeErrs: make(map[string]error),
	}
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return f
}

func (f *fakeRecipes) FindByID(_ context.Context, id string) (*entity.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, errMissing
	}
	copied := *row
	return &copied, nil
}

func (f *fakeRecipes) ListAll(_ context.Context) ([]entity.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.Recipe, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRecipes) ListByIngredient(_ context.Context, ingredientID string) ([]entity.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Recipe
	for _, r := range f.rows {
		for _, line := range r.Ingredients {
			if line.IngredientID == ingredientID {
				out = append(out, *r)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRecipes) UpdateCostPerUnit(_ context.Context, id string, costPerUnit float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.writeErrs[id]; err != nil {
		return err
	}
	f.costs[id] = costPerUnit
	if row, ok := f.rows[id]; ok {
		row.CostPerUnit = costPerUnit
	}
	return nil
}

func (f *fakeRecipes) writtenCost(id string) (float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.costs[id]
	return v, ok
}

type fakeProducts struct {
	mu      sync.Mutex
	rows    map[string]*entity.Product
	costs   map[string]float64
	onWrite func(id string)
}

func newFakeProducts(rows ...*entity.Product) *fakeProducts {
	f := &fakeProducts{
		rows:  make(map[string]*entity.Product),
		costs: make(map[string]float64),
	}
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return f
}

func (f *fakeProducts) FindByID(_ context.Context, id string) (*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, errMissing
	}
	copied := *row
	return &copied, nil
}

func (f *fakeProducts) ListByRecipe(_ context.Context, recipeID string) ([]entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Product
	for _, p := range f.rows {
		if p.DefaultRecipeID == recipeID {
			out = append(out, *p)
			continue
		}
		for _, pr := range p.Recipes {
			if pr.RecipeID == recipeID {
				out = append(out, *p)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeProducts) ListCompositesByChild(_ context.Context, productID string) ([]entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Product
	for _, p := range f.rows {
		if !p.IsComposite {
			continue
		}
		for _, child := range p.Children {
			if child.ChildProductID == productID {
				out = append(out, *p)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeProducts) UpdateCostPrice(_ context.Context, id string, costPrice float64) error {
	f.mu.Lock()
	f.costs[id] = costPrice
	if row, ok := f.rows[id]; ok {
		row.CostPrice = costPrice
		// refresh embedded child snapshots so composite sums see new costs
		for _, p := range f.rows {
			for i := range p.Children {
				if p.Children[i].ChildProductID == id && p.Children[i].Child != nil {
					copied := *row
					p.Children[i].Child = &copied
				}
			}
		}
	}
	hook := f.onWrite
	f.mu.Unlock()
	if hook != nil {
		hook(id)
	}
	return nil
}

func (f *fakeProducts) writtenCost(id string) (float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.costs[id]
	return v, ok
}

type fakeHistory struct {
	mu   sync.Mutex
	rows []entity.CostHistory
}

func (f *fakeHistory) Record(_ context.Context, h *entity.CostHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, *h)
	return nil
}

func (f *fakeHistory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type sinkEvent struct {
	Type    string
	Data    map[string]interface{}
	StoreID string
}

type fakeSink struct {
	mu     sync.Mutex
	events []sinkEvent
}

func (f *fakeSink) Publish(eventType string, data map[string]interface{}, storeID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, sinkEvent{Type: eventType, Data: data, StoreID: storeID})
}

func (f *fakeSink) byType(eventType string) []sinkEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sinkEvent
	for _, e := range f.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
