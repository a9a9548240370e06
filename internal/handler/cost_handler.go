package handler

import (
	"strconv"

	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type CostHandler struct {
	svc *service.CostService
}

func NewCostHandler(svc *service.CostService) *CostHandler {
	return &CostHandler{svc: svc}
}

// CacheStats GET /costs/cache/stats
func (h *CostHandler) CacheStats(c *gin.Context) {
	Success(c, h.svc.CacheStats())
}

// ClearCache POST /costs/cache/clear
func (h *CostHandler) ClearCache(c *gin.Context) {
	h.svc.ClearCache()
	Success(c, nil)
}

// QueueDepth GET /costs/queue
func (h *CostHandler) QueueDepth(c *gin.Context) {
	Success(c, gin.H{"depth": h.svc.QueueDepth()})
}

// RecalculateAll POST /costs/recalculate
func (h *CostHandler) RecalculateAll(c *gin.Context) {
	var req struct {
		RecipeIDs []string `json:"recipe_ids"`
	}
	// body is optional; no body means recalculate everything
	c.ShouldBindJSON(&req)

	count, err := h.svc.RecalculateAll(c.Request.Context(), req.RecipeIDs)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"enqueued": count})
}

// Trend GET /costs/trend/:type/:id
func (h *CostHandler) Trend(c *gin.Context) {
	days := 30
	if d := c.Query("days"); d != "" {
		if v, err := strconv.Atoi(d); err == nil && v > 0 {
			days = v
		}
	}

	history, err := h.svc.Trend(c.Request.Context(), c.Param("type"), c.Param("id"), days)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, history)
}

// RecentHistory GET /costs/history
func (h *CostHandler) RecentHistory(c *gin.Context) {
	limit := 50
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil {
			limit = v
		}
	}

	history, err := h.svc.RecentHistory(c.Request.Context(), limit)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, history)
}

// Profitability GET /costs/profitability
func (h *CostHandler) Profitability(c *gin.Context) {
	report, err := h.svc.Profitability(c.Request.Context(), GetStoreID(c))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, report)
}

// Impact GET /costs/impact/:ingredientId
func (h *CostHandler) Impact(c *gin.Context) {
	impact, err := h.svc.Impact(c.Request.Context(), c.Param("ingredientId"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, impact)
}
