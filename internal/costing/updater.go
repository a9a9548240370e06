package costing

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/model/entity"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskType identifies which entity level a queued recomputation targets.
type TaskType string

const (
	TaskRecipeUpdate    TaskType = "recipe_update"
	TaskProductUpdate   TaskType = "product_update"
	TaskCompositeUpdate TaskType = "composite_update"
)

// Task priorities: lower runs first. Recipes recompute before the products
// that read them, which recompute before the composites assembled from them.
const (
	PriorityRecipe    = 1
	PriorityProduct   = 2
	PriorityComposite = 3
)

// UpdateTask is one queued recomputation.
type UpdateTask struct {
	Type     TaskType `json:"type"`
	TargetID string   `json:"target_id"`
	Reason   string   `json:"reason"`
	SourceID string   `json:"source_id"`
	Priority int      `json:"priority"`

	seq    uint64
	origin *cascade
}

// cascade tracks the task identities spawned within one propagation run.
// Tasks re-entering a change entry point on completion carry their cascade
// forward, so a cyclic product graph cannot re-enqueue a node it already
// visited. Each external change starts a fresh cascade.
type cascade struct {
	visited map[string]struct{}
}

func newCascade() *cascade {
	return &cascade{visited: make(map[string]struct{})}
}

// taskQueue is a priority queue, FIFO within equal priority.
type taskQueue []*UpdateTask

func (q taskQueue) Len() int { return len(q) }
func (q taskQueue) Less(i, j int) bool {
	if q[i].Priority != q[j].Priority {
		return q[i].Priority < q[j].Priority
	}
	return q[i].seq < q[j].seq
}
func (q taskQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *taskQueue) Push(x any)   { *q = append(*q, x.(*UpdateTask)) }
func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	task := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return task
}

// RecipeWriter persists recomputed recipe costs.
type RecipeWriter interface {
	UpdateCostPerUnit(ctx context.Context, id string, costPerUnit float64) error
}

// ProductWriter persists recomputed product costs.
type ProductWriter interface {
	UpdateCostPrice(ctx context.Context, id string, costPrice float64) error
}

// HistoryWriter appends cost change rows.
type HistoryWriter interface {
	Record(ctx context.Context, h *entity.CostHistory) error
}

// EventSink receives change notifications. An empty storeID means every
// subscriber.
type EventSink interface {
	Publish(eventType string, data map[string]interface{}, storeID string)
}

// Event types published by the update manager.
const (
	EventIngredientChanged = "ingredient_changed"
	EventRecipeChanged     = "recipe_changed"
	EventProductChanged    = "product_changed"
	EventCostUpdated       = "cost_updated"
	EventCostUpdateFailed  = "cost_update_failed"
)

// UpdateManager propagates cost changes through the dependency chain
// ingredient → recipe → product → composite. Every change entry point
// invalidates the cache, enqueues recomputation tasks for direct dependents
// and notifies subscribers immediately; a single worker goroutine then drains
// the queue one task at a time. Whole-queue serialization is the concurrency
// mechanism: two updates to the same entity can never interleave.
//
// Completing a task re-enters the change entry point for its own entity, so
// a cascade expands breadth-first through the queue rather than through the
// call stack. A per-cascade visited set keeps cyclic product graphs from
// looping forever; independent external changes start fresh cascades and
// dedupe only against tasks still waiting in the queue, so a change arriving
// while an earlier cascade drains is never lost.
type UpdateManager struct {
	calc    *Calculator
	cache   *CostCache
	recipes RecipeStore
	prods   ProductStore

	recipeWriter  RecipeWriter
	productWriter ProductWriter
	history       HistoryWriter
	sink          EventSink
	logger        *zap.Logger

	taskDelay time.Duration

	mu         sync.Mutex
	cond       *sync.Cond
	queue      taskQueue
	pending    map[string]struct{}
	seq        uint64
	processing bool
	stopped    bool
	done       chan struct{}
}

// NewUpdateManager creates an update manager. Start must be called before
// change notifications will be processed.
func NewUpdateManager(
	calc *Calculator,
	cache *CostCache,
	recipes RecipeStore,
	prods ProductStore,
	recipeWriter RecipeWriter,
	productWriter ProductWriter,
	history HistoryWriter,
	sink EventSink,
	taskDelay time.Duration,
	logger *zap.Logger,
) *UpdateManager {
	m := &UpdateManager{
		calc:          calc,
		cache:         cache,
		recipes:       recipes,
		prods:         prods,
		recipeWriter:  recipeWriter,
		productWriter: productWriter,
		history:       history,
		sink:          sink,
		taskDelay:     taskDelay,
		pending:       make(map[string]struct{}),
		done:          make(chan struct{}),
		logger:        logger,
	}
	m.cond = sync.NewCond(&m.mu)
	heap.Init(&m.queue)
	return m
}

// Start launches the worker goroutine.
func (m *UpdateManager) Start(ctx context.Context) {
	go m.run(ctx)
}

// Stop drains nothing further and waits for the worker to exit.
func (m *UpdateManager) Stop() {
	m.mu.Lock()
	m.stopped = true
	m.cond.Broadcast()
	m.mu.Unlock()
	<-m.done
}

// WaitIdle blocks until the queue is empty and no task is executing.
func (m *UpdateManager) WaitIdle() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.queue) > 0 || m.processing {
		m.cond.Wait()
	}
}

// QueueDepth reports the number of pending tasks.
func (m *UpdateManager) QueueDepth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

func (m *UpdateManager) enqueue(task *UpdateTask) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	key := string(task.Type) + ":" + task.TargetID
	if _, dup := task.origin.visited[key]; dup {
		// This cascade already spawned the task; a cycle ends here.
		return
	}
	if _, queued := m.pending[key]; queued {
		// An identical task is still waiting; it will see the change when
		// it runs.
		return
	}
	task.origin.visited[key] = struct{}{}
	m.pending[key] = struct{}{}
	m.seq++
	task.seq = m.seq
	heap.Push(&m.queue, task)
	m.cond.Broadcast()
}

func (m *UpdateManager) run(ctx context.Context) {
	defer close(m.done)
	for {
		m.mu.Lock()
		for len(m.queue) == 0 && !m.stopped {
			m.cond.Wait()
		}
		if m.stopped {
			m.mu.Unlock()
			return
		}
		task := heap.Pop(&m.queue).(*UpdateTask)
		// Once a task starts executing it no longer shields later changes
		// to the same target from re-enqueueing.
		delete(m.pending, string(task.Type)+":"+task.TargetID)
		m.processing = true
		m.mu.Unlock()

		m.process(ctx, task)

		m.mu.Lock()
		m.processing = false
		m.cond.Broadcast()
		m.mu.Unlock()

		if m.taskDelay > 0 {
			time.Sleep(m.taskDelay)
		}
	}
}

// OnIngredientChange invalidates cached costs derived from the ingredient,
// queues a recomputation for every recipe using it and notifies subscribers.
func (m *UpdateManager) OnIngredientChange(ctx context.Context, ingredientID string) {
	m.onIngredientChange(ctx, ingredientID, newCascade())
}

func (m *UpdateManager) onIngredientChange(ctx context.Context, ingredientID string, run *cascade) {
	m.cache.InvalidateIngredient(ingredientID)

	recipes, err := m.recipes.ListByIngredient(ctx, ingredientID)
	if err != nil {
		m.logger.Error("failed to resolve recipes for ingredient",
			zap.String("ingredient_id", ingredientID), zap.Error(err))
	}
	for i := range recipes {
		m.enqueue(&UpdateTask{
			Type:     TaskRecipeUpdate,
			TargetID: recipes[i].ID,
			Reason:   "ingredient_changed",
			SourceID: ingredientID,
			Priority: PriorityRecipe,
			origin:   run,
		})
	}

	m.sink.Publish(EventIngredientChanged, map[string]interface{}{
		"ingredient_id":    ingredientID,
		"affected_recipes": len(recipes),
	}, m.ingredientStoreID(ctx, ingredientID))
}

// OnRecipeChange invalidates cached costs derived from the recipe, queues a
// recomputation for every product linked to it and notifies subscribers.
func (m *UpdateManager) OnRecipeChange(ctx context.Context, recipeID string) {
	m.onRecipeChange(ctx, recipeID, newCascade())
}

func (m *UpdateManager) onRecipeChange(ctx context.Context, recipeID string, run *cascade) {
	m.cache.InvalidateRecipe(recipeID)

	products, err := m.prods.ListByRecipe(ctx, recipeID)
	if err != nil {
		m.logger.Error("failed to resolve products for recipe",
			zap.String("recipe_id", recipeID), zap.Error(err))
	}
	for i := range products {
		taskType := TaskProductUpdate
		priority := PriorityProduct
		if products[i].IsComposite {
			taskType = TaskCompositeUpdate
			priority = PriorityComposite
		}
		m.enqueue(&UpdateTask{
			Type:     taskType,
			TargetID: products[i].ID,
			Reason:   "recipe_changed",
			SourceID: recipeID,
			Priority: priority,
			origin:   run,
		})
	}

	m.sink.Publish(EventRecipeChanged, map[string]interface{}{
		"recipe_id":         recipeID,
		"affected_products": len(products),
	}, "")
}

// OnProductChange invalidates cached costs derived from the product, queues a
// recomputation for every composite listing it as a child and notifies
// subscribers.
func (m *UpdateManager) OnProductChange(ctx context.Context, productID string) {
	m.onProductChange(ctx, productID, newCascade())
}

func (m *UpdateManager) onProductChange(ctx context.Context, productID string, run *cascade) {
	m.cache.InvalidateProduct(productID)

	composites, err := m.prods.ListCompositesByChild(ctx, productID)
	if err != nil {
		m.logger.Error("failed to resolve composites for product",
			zap.String("product_id", productID), zap.Error(err))
	}
	for i := range composites {
		m.enqueue(&UpdateTask{
			Type:     TaskCompositeUpdate,
			TargetID: composites[i].ID,
			Reason:   "product_changed",
			SourceID: productID,
			Priority: PriorityComposite,
			origin:   run,
		})
	}

	m.sink.Publish(EventProductChanged, map[string]interface{}{
		"product_id":          productID,
		"affected_composites": len(composites),
	}, "")
}

// RecalculateAll clears the cache and queues a recomputation of the given
// recipes, or of every recipe when none are named. Downstream products and
// composites follow through the cascade.
func (m *UpdateManager) RecalculateAll(ctx context.Context, recipeIDs []string) (int, error) {
	m.cache.ClearAll()

	if len(recipeIDs) == 0 {
		recipes, err := m.recipes.ListAll(ctx)
		if err != nil {
			return 0, err
		}
		for i := range recipes {
			recipeIDs = append(recipeIDs, recipes[i].ID)
		}
	}

	run := newCascade()
	for _, id := range recipeIDs {
		m.enqueue(&UpdateTask{
			Type:     TaskRecipeUpdate,
			TargetID: id,
			Reason:   "mass_recalculation",
			Priority: PriorityRecipe,
			origin:   run,
		})
	}
	return len(recipeIDs), nil
}

func (m *UpdateManager) process(ctx context.Context, task *UpdateTask) {
	var err error
	switch task.Type {
	case TaskRecipeUpdate:
		err = m.processRecipe(ctx, task)
	case TaskProductUpdate:
		err = m.processProduct(ctx, task)
	case TaskCompositeUpdate:
		err = m.processComposite(ctx, task)
	}
	if err != nil {
		// A failed task is isolated: report it and keep draining.
		m.logger.Error("cost update task failed",
			zap.String("type", string(task.Type)),
			zap.String("target_id", task.TargetID),
			zap.String("reason", task.Reason),
			zap.Error(err),
		)
		m.sink.Publish(EventCostUpdateFailed, map[string]interface{}{
			"type":      string(task.Type),
			"target_id": task.TargetID,
			"reason":    task.Reason,
			"error":     err.Error(),
		}, "")
	}
}

func (m *UpdateManager) processRecipe(ctx context.Context, task *UpdateTask) error {
	recipe, err := m.recipes.FindByID(ctx, task.TargetID)
	if err != nil {
		return err
	}
	oldCost := recipe.CostPerUnit

	result, err := m.calc.RecipeCost(ctx, task.TargetID, false)
	if err != nil {
		return err
	}
	if err := m.recipeWriter.UpdateCostPerUnit(ctx, task.TargetID, result.CostPerUnit); err != nil {
		return err
	}
	m.recordHistory(ctx, entity.CostEntityRecipe, recipe.ID, recipe.Name, oldCost, result.CostPerUnit, task)

	m.sink.Publish(EventCostUpdated, map[string]interface{}{
		"entity_type":    entity.CostEntityRecipe,
		"entity_id":      recipe.ID,
		"old_cost":       oldCost,
		"new_cost":       result.CostPerUnit,
		"trigger":        task.Reason,
		"trigger_source": task.SourceID,
	}, recipe.StoreID)

	// The recomputed recipe is itself a change: fan out to dependents.
	m.onRecipeChange(ctx, task.TargetID, task.origin)
	return nil
}

func (m *UpdateManager) processProduct(ctx context.Context, task *UpdateTask) error {
	product, err := m.prods.FindByID(ctx, task.TargetID)
	if err != nil {
		return err
	}
	oldCost := product.CostPrice

	result, err := m.calc.ProductCost(ctx, task.TargetID, "")
	if err != nil {
		return err
	}
	if err := m.productWriter.UpdateCostPrice(ctx, task.TargetID, result.CostPerUnit); err != nil {
		return err
	}
	m.recordHistory(ctx, entity.CostEntityProduct, product.ID, product.Name, oldCost, result.CostPerUnit, task)

	m.sink.Publish(EventCostUpdated, map[string]interface{}{
		"entity_type":    entity.CostEntityProduct,
		"entity_id":      product.ID,
		"old_cost":       oldCost,
		"new_cost":       result.CostPerUnit,
		"trigger":        task.Reason,
		"trigger_source": task.SourceID,
	}, product.StoreID)

	m.onProductChange(ctx, task.TargetID, task.origin)
	return nil
}

func (m *UpdateManager) processComposite(ctx context.Context, task *UpdateTask) error {
	product, err := m.prods.FindByID(ctx, task.TargetID)
	if err != nil {
		return err
	}
	oldCost := product.CostPrice

	// Bypass any composite entry cached before the children were updated.
	m.cache.InvalidateProduct(task.TargetID)
	result, err := m.calc.CompositeCost(ctx, task.TargetID)
	if err != nil {
		return err
	}
	if err := m.productWriter.UpdateCostPrice(ctx, task.TargetID, result.TotalCost); err != nil {
		return err
	}
	m.recordHistory(ctx, entity.CostEntityComposite, product.ID, product.Name, oldCost, result.TotalCost, task)

	m.sink.Publish(EventCostUpdated, map[string]interface{}{
		"entity_type":    entity.CostEntityComposite,
		"entity_id":      product.ID,
		"old_cost":       oldCost,
		"new_cost":       result.TotalCost,
		"trigger":        task.Reason,
		"trigger_source": task.SourceID,
	}, product.StoreID)

	m.onProductChange(ctx, task.TargetID, task.origin)
	return nil
}

func (m *UpdateManager) recordHistory(ctx context.Context, entityType, entityID, name string, oldCost, newCost float64, task *UpdateTask) {
	if m.history == nil {
		return
	}
	err := m.history.Record(ctx, &entity.CostHistory{
		ID:         uuid.New().String()[:32],
		EntityType: entityType,
		EntityID:   entityID,
		EntityName: name,
		OldCost:    oldCost,
		NewCost:    newCost,
		Reason:     task.Reason,
		SourceID:   task.SourceID,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		m.logger.Warn("failed to record cost history",
			zap.String("entity_id", entityID), zap.Error(err))
	}
}

func (m *UpdateManager) ingredientStoreID(ctx context.Context, ingredientID string) string {
	ing, err := m.calc.ingredients.FindByID(ctx, ingredientID)
	if err != nil {
		return ""
	}
	return ing.StoreID
}
