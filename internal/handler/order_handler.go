package handler

import (
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// List GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	storeID := GetStoreID(c)
	page, pageSize := GetPagination(c)
	status := c.Query("status")

	orders, total, err := h.svc.List(c.Request.Context(), storeID, page, pageSize, status)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, ListResponse{Items: orders, Pagination: NewPagination(page, pageSize, total)})
}

// Get GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, order)
}

// Create POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	order, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Created(c, order)
}

// Complete POST /orders/:id/complete
func (h *OrderHandler) Complete(c *gin.Context) {
	if err := h.svc.Complete(c.Request.Context(), c.Param("id")); err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, nil)
}

// Cancel POST /orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	if err := h.svc.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, nil)
}
