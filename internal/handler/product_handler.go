package handler

import (
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	svc *service.ProductService
}

func NewProductHandler(svc *service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// List GET /products
func (h *ProductHandler) List(c *gin.Context) {
	storeID := GetStoreID(c)
	page, pageSize := GetPagination(c)
	keyword := c.Query("keyword")

	products, total, err := h.svc.List(c.Request.Context(), storeID, page, pageSize, keyword)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, ListResponse{Items: products, Pagination: NewPagination(page, pageSize, total)})
}

// Get GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, product)
}

// Create POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	product, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Created(c, product)
}

// Update PUT /products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	product, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, product)
}

// Delete DELETE /products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, nil)
}

// Cost GET /products/:id/cost
func (h *ProductHandler) Cost(c *gin.Context) {
	recipeID := c.Query("recipe_id")

	result, err := h.svc.Cost(c.Request.Context(), c.Param("id"), recipeID)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, result)
}

// CompositeCost GET /products/:id/composite-cost
func (h *ProductHandler) CompositeCost(c *gin.Context) {
	result, err := h.svc.CompositeCost(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, result)
}

// SyncCost POST /products/:id/sync-cost
func (h *ProductHandler) SyncCost(c *gin.Context) {
	result, err := h.svc.SyncCostFromRecipe(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, result)
}

// PrepareBatch POST /products/:id/prepare
func (h *ProductHandler) PrepareBatch(c *gin.Context) {
	var req service.PrepareBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	product, err := h.svc.PrepareBatch(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, product)
}

// Serve POST /products/:id/serve
func (h *ProductHandler) Serve(c *gin.Context) {
	var req service.ServeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	product, err := h.svc.Serve(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, product)
}

// UploadImage POST /products/:id/image
func (h *ProductHandler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file: "+err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		BadRequest(c, "cannot open file: "+err.Error())
		return
	}
	defer file.Close()

	key, err := h.svc.UploadImage(c.Request.Context(), c.Param("id"),
		fileHeader.Filename, file, fileHeader.Size,
		fileHeader.Header.Get("Content-Type"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"image_key": key})
}

// ImageURL GET /products/:id/image-url
func (h *ProductHandler) ImageURL(c *gin.Context) {
	url, err := h.svc.ImageURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"url": url})
}
