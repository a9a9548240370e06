package handler

import (
	"fmt"
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

func setupIngredientTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	cache := costing.NewCostCache(30*time.Minute, 10*time.Minute)
	calc := costing.NewCalculator(repos.Ingredient, repos.Recipe, repos.Product, cache, zap.NewNop())
	hub := sse.NewHub(zap.NewNop())
	updater := costing.NewUpdateManager(calc, cache,
		repos.Recipe, repos.Product, repos.Recipe, repos.Product,
		repos.CostHistory, hub, 0, zap.NewNop())

	svc := service.NewIngredientService(repos.Ingredient, updater, nil, zap.NewNop())
	h := NewIngredientHandler(svc)

	r := testutil.SetupRouter()
	api := testutil.AuthGroup(r, "/api/v1")
	api.GET("/ingredients", h.List)
	api.GET("/ingredients/:id", h.Get)
	api.POST("/ingredients", h.Create)
	api.PUT("/ingredients/:id", h.Update)
	api.DELETE("/ingredients/:id", h.Delete)
	api.POST("/ingredients/:id/stock-in", h.StockIn)
	api.POST("/ingredients/:id/stock-out", h.StockOut)
	api.POST("/ingredients/:id/stock-take", h.StockTake)
	api.GET("/ingredients/:id/transactions", h.Transactions)
	return r, db
}

func TestIngredientRequiresAuth(t *testing.T) {
	r, _ := setupIngredientTest(t)

	w := testutil.DoRequest(r, "GET", "/api/v1/ingredients", nil, "")
	if w.Code != 401 {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestIngredientCreateAndGet(t *testing.T) {
	r, db := setupIngredientTest(t)
	testutil.SeedStore(t, db, "store-001", "Main Store")
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(r, "POST", "/api/v1/ingredients", map[string]interface{}{
		"store_id":      "store-001",
		"code":          "ING-CHK",
		"name":          "Chicken Breast",
		"unit":          "kg",
		"standard_cost": 11.5,
	}, token)
	if w.Code != 201 {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	id := data["id"].(string)
	if data["name"] != "Chicken Breast" {
		t.Errorf("name = %v", data["name"])
	}

	w = testutil.DoRequest(r, "GET", "/api/v1/ingredients/"+id, nil, token)
	if w.Code != 200 {
		t.Fatalf("get status = %d, body = %s", w.Code, w.Body.String())
	}
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["standard_cost"].(float64) != 11.5 {
		t.Errorf("standard_cost = %v, want 11.5", data["standard_cost"])
	}
}

func TestIngredientCreateUnknownUnit(t *testing.T) {
	r, db := setupIngredientTest(t)
	testutil.SeedStore(t, db, "store-001", "Main Store")

	w := testutil.DoRequest(r, "POST", "/api/v1/ingredients", map[string]interface{}{
		"store_id": "store-001",
		"code":     "ING-X",
		"name":     "Mystery",
		"unit":     "bucket",
	}, testutil.DefaultTestToken())
	if w.Code != 500 {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestIngredientGetMissing(t *testing.T) {
	r, _ := setupIngredientTest(t)

	w := testutil.DoRequest(r, "GET", "/api/v1/ingredients/no-such-id", nil, testutil.DefaultTestToken())
	if w.Code != 404 {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if resp := testutil.ParseResponse(w); resp["code"].(float64) != 40400 {
		t.Errorf("code = %v, want 40400", resp["code"])
	}
}

func TestIngredientList(t *testing.T) {
	r, db := setupIngredientTest(t)
	testutil.SeedStore(t, db, "store-001", "Main Store")
	for i := 1; i <= 3; i++ {
		testutil.SeedIngredient(t, db, fmt.Sprintf("ing-%d", i), "store-001",
			fmt.Sprintf("Ingredient %d", i), "kg", 5, 10)
	}

	w := testutil.DoRequest(r, "GET", "/api/v1/ingredients", nil, testutil.DefaultTestToken())
	if w.Code != 200 {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	pagination := data["pagination"].(map[string]interface{})
	if pagination["total"].(float64) != 3 {
		t.Errorf("total = %v, want 3", pagination["total"])
	}
}

func TestIngredientStockFlow(t *testing.T) {
	r, db := setupIngredientTest(t)
	testutil.SeedStore(t, db, "store-001", "Main Store")
	testutil.SeedIngredient(t, db, "ing-chicken", "store-001", "Chicken", "kg", 0, 0)
	token := testutil.DefaultTestToken()

	// first receipt sets the average outright
	w := testutil.DoRequest(r, "POST", "/api/v1/ingredients/ing-chicken/stock-in", map[string]interface{}{
		"quantity": 10, "unit": "kg", "unit_price": 12,
	}, token)
	if w.Code != 200 {
		t.Fatalf("stock-in status = %d, body = %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["resulting_stock"].(float64) != 10 || data["resulting_avg"].(float64) != 12 {
		t.Errorf("after first receipt: stock = %v avg = %v, want 10 and 12",
			data["resulting_stock"], data["resulting_avg"])
	}

	// second receipt rolls the moving average
	w = testutil.DoRequest(r, "POST", "/api/v1/ingredients/ing-chicken/stock-in", map[string]interface{}{
		"quantity": 10, "unit": "kg", "unit_price": 8,
	}, token)
	if w.Code != 200 {
		t.Fatalf("stock-in status = %d, body = %s", w.Code, w.Body.String())
	}
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["resulting_stock"].(float64) != 20 || data["resulting_avg"].(float64) != 10 {
		t.Errorf("after second receipt: stock = %v avg = %v, want 20 and 10",
			data["resulting_stock"], data["resulting_avg"])
	}

	// issuing more than on hand is rejected
	w = testutil.DoRequest(r, "POST", "/api/v1/ingredients/ing-chicken/stock-out", map[string]interface{}{
		"quantity": 25, "unit": "kg",
	}, token)
	if w.Code != 400 {
		t.Errorf("oversized stock-out status = %d, want 400", w.Code)
	}

	// issue in grams against a kg stock unit
	w = testutil.DoRequest(r, "POST", "/api/v1/ingredients/ing-chicken/stock-out", map[string]interface{}{
		"quantity": 5000, "unit": "g",
	}, token)
	if w.Code != 200 {
		t.Fatalf("stock-out status = %d, body = %s", w.Code, w.Body.String())
	}
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["resulting_stock"].(float64) != 15 || data["resulting_avg"].(float64) != 10 {
		t.Errorf("after issue: stock = %v avg = %v, want 15 and 10",
			data["resulting_stock"], data["resulting_avg"])
	}

	// a count overwrites the on-hand quantity
	w = testutil.DoRequest(r, "POST", "/api/v1/ingredients/ing-chicken/stock-take", map[string]interface{}{
		"quantity": 12, "unit": "kg",
	}, token)
	if w.Code != 200 {
		t.Fatalf("stock-take status = %d, body = %s", w.Code, w.Body.String())
	}
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["resulting_stock"].(float64) != 12 {
		t.Errorf("after count: stock = %v, want 12", data["resulting_stock"])
	}

	w = testutil.DoRequest(r, "GET", "/api/v1/ingredients/ing-chicken/transactions", nil, token)
	if w.Code != 200 {
		t.Fatalf("transactions status = %d, body = %s", w.Code, w.Body.String())
	}
	txs := testutil.ParseResponse(w)["data"].([]interface{})
	if len(txs) != 4 {
		t.Errorf("transactions = %d, want 4", len(txs))
	}
}

func TestIngredientUpdateAndDelete(t *testing.T) {
	r, db := setupIngredientTest(t)
	testutil.SeedStore(t, db, "store-001", "Main Store")
	testutil.SeedIngredient(t, db, "ing-rice", "store-001", "Rice", "kg", 2, 50)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(r, "PUT", "/api/v1/ingredients/ing-rice", map[string]interface{}{
		"name": "Jasmine Rice", "standard_cost": 2.4,
	}, token)
	if w.Code != 200 {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["name"] != "Jasmine Rice" || data["standard_cost"].(float64) != 2.4 {
		t.Errorf("updated row = %v", data)
	}

	w = testutil.DoRequest(r, "DELETE", "/api/v1/ingredients/ing-rice", nil, token)
	if w.Code != 200 {
		t.Fatalf("delete status = %d, body = %s", w.Code, w.Body.String())
	}
	w = testutil.DoRequest(r, "GET", "/api/v1/ingredients/ing-rice", nil, token)
	if w.Code != 404 {
		t.Errorf("get after delete status = %d, want 404", w.Code)
	}
}
