package handler

import (
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type RecipeHandler struct {
	svc *service.RecipeService
}

func NewRecipeHandler(svc *service.RecipeService) *RecipeHandler {
	return &RecipeHandler{svc: svc}
}

// List GET /recipes
func (h *RecipeHandler) List(c *gin.Context) {
	storeID := GetStoreID(c)
	page, pageSize := GetPagination(c)
	keyword := c.Query("keyword")

	recipes, total, err := h.svc.List(c.Request.Context(), storeID, page, pageSize, keyword)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, ListResponse{Items: recipes, Pagination: NewPagination(page, pageSize, total)})
}

// Get GET /recipes/:id
func (h *RecipeHandler) Get(c *gin.Context) {
	recipe, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, recipe)
}

// Create POST /recipes
func (h *RecipeHandler) Create(c *gin.Context) {
	var req service.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	recipe, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Created(c, recipe)
}

// Update PUT /recipes/:id
func (h *RecipeHandler) Update(c *gin.Context) {
	var req service.UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	recipe, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, recipe)
}

// Delete DELETE /recipes/:id
func (h *RecipeHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, nil)
}

// Cost GET /recipes/:id/cost
func (h *RecipeHandler) Cost(c *gin.Context) {
	useCache := c.Query("refresh") != "true"

	result, err := h.svc.Cost(c.Request.Context(), c.Param("id"), useCache)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, result)
}

// Validate GET /recipes/:id/validate
func (h *RecipeHandler) Validate(c *gin.Context) {
	result, err := h.svc.Validate(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, result)
}
