package handler

import (
	"testing"
	"time"

	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/costing"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/repository"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/service"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/sse"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/testutil"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupProductTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	cache := costing.NewCostCache(30*time.Minute, 10*time.Minute)
	calc := costing.NewCalculator(repos.Ingredient, repos.Recipe, repos.Product, cache, zap.NewNop())
	hub := sse.NewHub(zap.NewNop())
	updater := costing.NewUpdateManager(calc, cache,
		repos.Recipe, repos.Product, repos.Recipe, repos.Product,
		repos.CostHistory, hub, 0, zap.NewNop())

	svc := service.NewProductService(repos.Product, calc, updater, nil, nil, "", zap.NewNop())
	h := NewProductHandler(svc)

	r := testutil.SetupRouter()
	api := testutil.AuthGroup(r, "/api/v1")
	api.POST("/products", h.Create)
	api.GET("/products/:id", h.Get)
	return r, db
}

func TestCompositeCreateAppliesMarkupDefaults(t *testing.T) {
	r, db := setupProductTest(t)
	testutil.SeedStore(t, db, "store-001", "Main Store")
	testutil.SeedProduct(t, db, "prod-bowl", "store-001", "Bowl", 10)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(r, "POST", "/api/v1/products", map[string]interface{}{
		"store_id":     "store-001",
		"code":         "PRD-SET",
		"name":         "Bowl Set",
		"is_composite": true,
		"children": []map[string]interface{}{
			{"child_product_id": "prod-bowl", "quantity_per_serving": 2},
		},
	}, token)
	if w.Code != 201 {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["cost_price"].(float64) != 20 {
		t.Errorf("cost_price = %v, want 20 (2 x 10)", data["cost_price"])
	}
	if data["price"].(float64) != 26 {
		t.Errorf("price = %v, want 26 (markup default)", data["price"])
	}
	if data["retail_price"].(float64) != 30 {
		t.Errorf("retail_price = %v, want 30 (markup default)", data["retail_price"])
	}
}

func TestCompositeCreateKeepsExplicitPrices(t *testing.T) {
	r, db := setupProductTest(t)
	testutil.SeedStore(t, db, "store-001", "Main Store")
	testutil.SeedProduct(t, db, "prod-bowl", "store-001", "Bowl", 10)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(r, "POST", "/api/v1/products", map[string]interface{}{
		"store_id":     "store-001",
		"code":         "PRD-SET",
		"name":         "Bowl Set",
		"is_composite": true,
		"price":        40,
		"retail_price": 50,
		"children": []map[string]interface{}{
			{"child_product_id": "prod-bowl", "quantity_per_serving": 2},
		},
	}, token)
	if w.Code != 201 {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	id := data["id"].(string)
	if data["cost_price"].(float64) != 20 {
		t.Errorf("cost_price = %v, want 20", data["cost_price"])
	}
	if data["price"].(float64) != 40 {
		t.Errorf("price = %v, want the explicit 40", data["price"])
	}
	if data["retail_price"].(float64) != 50 {
		t.Errorf("retail_price = %v, want the explicit 50", data["retail_price"])
	}

	// the explicit prices are what got persisted
	w = testutil.DoRequest(r, "GET", "/api/v1/products/"+id, nil, token)
	if w.Code != 200 {
		t.Fatalf("get status = %d, body = %s", w.Code, w.Body.String())
	}
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["price"].(float64) != 40 || data["retail_price"].(float64) != 50 {
		t.Errorf("persisted price = %v retail = %v, want 40 and 50", data["price"], data["retail_price"])
	}
}

func TestCompositeCreateRejectsDefaultRecipe(t *testing.T) {
	r, db := setupProductTest(t)
	testutil.SeedStore(t, db, "store-001", "Main Store")

	w := testutil.DoRequest(r, "POST", "/api/v1/products", map[string]interface{}{
		"store_id":          "store-001",
		"code":              "PRD-BAD",
		"name":              "Bad Set",
		"is_composite":      true,
		"default_recipe_id": "rec-1",
	}, testutil.DefaultTestToken())
	if w.Code != 500 {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
