package handler

import (
	"errors"
	"strconv"

	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/config"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/repository"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/service"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/sse"
	"github.com/gin-gonic/gin"
)

// Handlers is the handler set for the HTTP API.
type Handlers struct {
	Auth       *AuthHandler
	Store      *StoreHandler
	Ingredient *IngredientHandler
	Recipe     *RecipeHandler
	Product    *ProductHandler
	Order      *OrderHandler
	Cost       *CostHandler
	Audit      *AuditHandler
	SSE        *SSEHandler
}

// NewHandlers creates the handler set.
func NewHandlers(svc *service.Services, hub *sse.Hub, cfg *config.Config) *Handlers {
	return &Handlers{
		Auth:       NewAuthHandler(svc.Auth),
		Store:      NewStoreHandler(svc.Store),
		Ingredient: NewIngredientHandler(svc.Ingredient),
		Recipe:     NewRecipeHandler(svc.Recipe),
		Product:    NewProductHandler(svc.Product),
		Order:      NewOrderHandler(svc.Order),
		Cost:       NewCostHandler(svc.Cost),
		Audit:      NewAuditHandler(svc.Audit),
		SSE:        NewSSEHandler(hub),
	}
}

// Response is the common response envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse wraps a paginated collection.
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// Pagination describes one page of a collection.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPagination computes the page descriptor for a total row count.
func NewPagination(page, pageSize int, total int64) *Pagination {
	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}
	return &Pagination{Page: page, PageSize: pageSize, Total: total, TotalPages: totalPages}
}

// Success writes a 200 response.
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created writes a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error writes an error response. The HTTP status is the leading three
// digits of the business code.
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest writes a 400 response.
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// Unauthorized writes a 401 response.
func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

// Forbidden writes a 403 response.
func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

// NotFound writes a 404 response.
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// InternalError writes a 500 response.
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// ServiceError maps a service error to the right response. Missing rows are
// 404s; everything else is a 500.
func ServiceError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		NotFound(c, "resource not found")
		return
	}
	InternalError(c, err.Error())
}

// GetUserID returns the authenticated user id from the request context.
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetStoreID returns the store scope: the query parameter when given,
// otherwise the token's store claim.
func GetStoreID(c *gin.Context) string {
	if storeID := c.Query("store_id"); storeID != "" {
		return storeID
	}
	storeID, _ := c.Get("store_id")
	if id, ok := storeID.(string); ok {
		return id
	}
	return ""
}

// GetPagination reads page and page_size query parameters.
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}
