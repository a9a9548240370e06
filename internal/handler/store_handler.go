package handler

import (
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type StoreHandler struct {
	svc *service.StoreService
}

func NewStoreHandler(svc *service.StoreService) *StoreHandler {
	return &StoreHandler{svc: svc}
}

// List GET /stores
func (h *StoreHandler) List(c *gin.Context) {
	stores, err := h.svc.List(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, stores)
}

// Get GET /stores/:id
func (h *StoreHandler) Get(c *gin.Context) {
	store, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, store)
}

// Create POST /stores
func (h *StoreHandler) Create(c *gin.Context) {
	var req service.CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	store, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, store)
}

// Update PUT /stores/:id
func (h *StoreHandler) Update(c *gin.Context) {
	var req service.UpdateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	store, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, store)
}
