package handler

import (
	"strconv"

	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type IngredientHandler struct {
	svc *service.IngredientService
}

func NewIngredientHandler(svc *service.IngredientService) *IngredientHandler {
	return &IngredientHandler{svc: svc}
}

// List GET /ingredients
func (h *IngredientHandler) List(c *gin.Context) {
	storeID := GetStoreID(c)
	page, pageSize := GetPagination(c)
	keyword := c.Query("keyword")

	ingredients, total, err := h.svc.List(c.Request.Context(), storeID, page, pageSize, keyword)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, ListResponse{Items: ingredients, Pagination: NewPagination(page, pageSize, total)})
}

// Get GET /ingredients/:id
func (h *IngredientHandler) Get(c *gin.Context) {
	ingredient, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, ingredient)
}

// Create POST /ingredients
func (h *IngredientHandler) Create(c *gin.Context) {
	var req service.CreateIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	ingredient, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, ingredient)
}

// Update PUT /ingredients/:id
func (h *IngredientHandler) Update(c *gin.Context) {
	var req service.UpdateIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	ingredient, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, ingredient)
}

// Delete DELETE /ingredients/:id
func (h *IngredientHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, nil)
}

// StockIn POST /ingredients/:id/stock-in
func (h *IngredientHandler) StockIn(c *gin.Context) {
	var req service.StockMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	tx, err := h.svc.StockIn(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, tx)
}

// StockOut POST /ingredients/:id/stock-out
func (h *IngredientHandler) StockOut(c *gin.Context) {
	var req service.StockMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	tx, err := h.svc.StockOut(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, tx)
}

// StockTake POST /ingredients/:id/stock-take
func (h *IngredientHandler) StockTake(c *gin.Context) {
	var req service.StockMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	tx, err := h.svc.StockTake(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, tx)
}

// Transactions GET /ingredients/:id/transactions
func (h *IngredientHandler) Transactions(c *gin.Context) {
	limit := 50
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}

	txs, err := h.svc.Transactions(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, txs)
}
