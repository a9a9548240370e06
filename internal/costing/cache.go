package costing

import (
	"sync"
	"time"
)

// Ingredient entries live longer than derived entries: an ingredient's unit
// cost only moves on explicit stock or price mutations, which invalidate it
// anyway, so the TTL is a backstop rather than the consistency mechanism.
const (
	DefaultIngredientTTL = 30 * time.Minute
	DefaultDerivedTTL    = 10 * time.Minute
)

type cacheEntry[T any] struct {
	value      T
	insertedAt time.Time
}

// partition is one expiring key/value store with hit/miss accounting.
type partition[T any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry[T]
	hits    int64
	misses  int64
}

func newPartition[T any](ttl time.Duration) *partition[T] {
	return &partition[T]{
		ttl:     ttl,
		entries: make(map[string]cacheEntry[T]),
	}
}

func (p *partition[T]) get(id string) (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var zero T
	e, ok := p.entries[id]
	if !ok {
		p.misses++
		return zero, false
	}
	if time.Since(e.insertedAt) > p.ttl {
		delete(p.entries, id)
		p.misses++
		return zero, false
	}
	p.hits++
	return e.value, true
}

func (p *partition[T]) set(id string, value T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[id] = cacheEntry[T]{value: value, insertedAt: time.Now()}
}

func (p *partition[T]) delete(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.entries, id)
}

func (p *partition[T]) flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = make(map[string]cacheEntry[T])
}

func (p *partition[T]) stats() PartitionStats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return PartitionStats{
		Entries: len(p.entries),
		Hits:    p.hits,
		Misses:  p.misses,
	}
}

// PartitionStats is a point-in-time snapshot of one cache partition.
type PartitionStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// CacheStats snapshots all partitions.
type CacheStats struct {
	Ingredients PartitionStats `json:"ingredients"`
	Recipes     PartitionStats `json:"recipes"`
	Products    PartitionStats `json:"products"`
	Composites  PartitionStats `json:"composites"`
}

// CostCache holds computed costs in four independent partitions, one per
// entity level of the dependency chain. Invalidation is deliberately coarse:
// an upstream change flushes every downstream partition wholesale, because
// the blast radius of a change is not cheaply computable from the cache
// alone, and recomputing a cold cache is cheap next to serving a stale cost.
type CostCache struct {
	ingredients *partition[*IngredientCost]
	recipes     *partition[*RecipeCostResult]
	products    *partition[*ProductCostResult]
	composites  *partition[*CompositeCostResult]
}

// NewCostCache creates a cache with the given TTLs. Non-positive values fall
// back to the defaults.
func NewCostCache(ingredientTTL, derivedTTL time.Duration) *CostCache {
	if ingredientTTL <= 0 {
		ingredientTTL = DefaultIngredientTTL
	}
	if derivedTTL <= 0 {
		derivedTTL = DefaultDerivedTTL
	}
	return &CostCache{
		ingredients: newPartition[*IngredientCost](ingredientTTL),
		recipes:     newPartition[*RecipeCostResult](derivedTTL),
		products:    newPartition[*ProductCostResult](derivedTTL),
		composites:  newPartition[*CompositeCostResult](derivedTTL),
	}
}

func (c *CostCache) GetIngredient(id string) (*IngredientCost, bool) { return c.ingredients.get(id) }
func (c *CostCache) SetIngredient(id string, v *IngredientCost)      { c.ingredients.set(id, v) }

func (c *CostCache) GetRecipe(id string) (*RecipeCostResult, bool) { return c.recipes.get(id) }
func (c *CostCache) SetRecipe(id string, v *RecipeCostResult)      { c.recipes.set(id, v) }

func (c *CostCache) GetProduct(id string) (*ProductCostResult, bool) { return c.products.get(id) }
func (c *CostCache) SetProduct(id string, v *ProductCostResult)      { c.products.set(id, v) }

func (c *CostCache) GetComposite(id string) (*CompositeCostResult, bool) { return c.composites.get(id) }
func (c *CostCache) SetComposite(id string, v *CompositeCostResult)      { c.composites.set(id, v) }

// InvalidateIngredient drops the ingredient's entry and flushes every
// derived partition.
func (c *CostCache) InvalidateIngredient(id string) {
	c.ingredients.delete(id)
	c.recipes.flush()
	c.products.flush()
	c.composites.flush()
}

// InvalidateRecipe drops the recipe's entry and flushes the product and
// composite partitions.
func (c *CostCache) InvalidateRecipe(id string) {
	c.recipes.delete(id)
	c.products.flush()
	c.composites.flush()
}

// InvalidateProduct drops the product's entries and flushes the composite
// partition.
func (c *CostCache) InvalidateProduct(id string) {
	c.products.delete(id)
	c.composites.flush()
}

// ClearAll flushes every partition.
func (c *CostCache) ClearAll() {
	c.ingredients.flush()
	c.recipes.flush()
	c.products.flush()
	c.composites.flush()
}

// Stats snapshots hit/miss counters and entry counts per partition.
func (c *CostCache) Stats() CacheStats {
	return CacheStats{
		Ingredients: c.ingredients.stats(),
		Recipes:     c.recipes.stats(),
		Products:    c.products.stats(),
		Composites:  c.composites.stats(),
	}
}
