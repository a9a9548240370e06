package handler

import (
	"testing"

	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/middleware"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/model/entity"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/repository"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/service"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/testutil"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func setupStoreTest(t *testing.T) *gin.Engine {
	t.Helper()
	db := testutil.SetupTestDB(t)

	svc := service.NewStoreService(repository.NewStoreRepository(db), zap.NewNop())
	h := NewStoreHandler(svc)

	r := testutil.SetupRouter()
	api := testutil.AuthGroup(r, "/api/v1")
	api.GET("/stores", h.List)
	api.GET("/stores/:id", h.Get)
	api.POST("/stores", middleware.RequireRole(entity.EmployeeRoleAdmin), h.Create)
	api.PUT("/stores/:id", middleware.RequireRole(entity.EmployeeRoleAdmin), h.Update)
	return r
}

func TestStoreCreateListUpdate(t *testing.T) {
	r := setupStoreTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(r, "POST", "/api/v1/stores", map[string]interface{}{
		"code": "ST-001", "name": "Downtown", "address": "1 Main St",
	}, token)
	if w.Code != 201 {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	id := data["id"].(string)
	if data["status"] != entity.StoreStatusActive {
		t.Errorf("status = %v, want active", data["status"])
	}

	w = testutil.DoRequest(r, "GET", "/api/v1/stores", nil, token)
	if w.Code != 200 {
		t.Fatalf("list status = %d, body = %s", w.Code, w.Body.String())
	}
	stores := testutil.ParseResponse(w)["data"].([]interface{})
	if len(stores) != 1 {
		t.Errorf("stores = %d, want 1", len(stores))
	}

	w = testutil.DoRequest(r, "PUT", "/api/v1/stores/"+id, map[string]interface{}{
		"status": entity.StoreStatusInactive,
	}, token)
	if w.Code != 200 {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body.String())
	}
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["status"] != entity.StoreStatusInactive {
		t.Errorf("status = %v, want inactive", data["status"])
	}

	w = testutil.DoRequest(r, "PUT", "/api/v1/stores/"+id, map[string]interface{}{
		"status": "closed-forever",
	}, token)
	if w.Code != 500 {
		t.Errorf("bad status update = %d, want 500", w.Code)
	}
}

func TestStoreCreateRequiresAdmin(t *testing.T) {
	r := setupStoreTest(t)
	staffToken := testutil.GenerateTestToken("staff-001", "Staff", entity.EmployeeRoleStaff, "store-001")

	w := testutil.DoRequest(r, "POST", "/api/v1/stores", map[string]interface{}{
		"code": "ST-002", "name": "Uptown",
	}, staffToken)
	if w.Code != 403 {
		t.Errorf("status = %d, want 403", w.Code)
	}

	w = testutil.DoRequest(r, "GET", "/api/v1/stores", nil, staffToken)
	if w.Code != 200 {
		t.Errorf("staff list status = %d, want 200", w.Code)
	}
}
