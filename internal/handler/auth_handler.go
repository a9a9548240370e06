package handler

import (
	"errors"

	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			Unauthorized(c, err.Error())
			return
		}
		InternalError(c, err.Error())
		return
	}
	Success(c, resp)
}

// Me GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	employee, err := h.svc.GetEmployee(c.Request.Context(), GetUserID(c))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, employee)
}

// ListEmployees GET /employees
func (h *AuthHandler) ListEmployees(c *gin.Context) {
	storeID := GetStoreID(c)
	page, pageSize := GetPagination(c)

	employees, total, err := h.svc.ListEmployees(c.Request.Context(), storeID, page, pageSize)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, ListResponse{Items: employees, Pagination: NewPagination(page, pageSize, total)})
}

// GetEmployee GET /employees/:id
func (h *AuthHandler) GetEmployee(c *gin.Context) {
	employee, err := h.svc.GetEmployee(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, employee)
}

// CreateEmployee POST /employees
func (h *AuthHandler) CreateEmployee(c *gin.Context) {
	var req service.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	employee, err := h.svc.CreateEmployee(c.Request.Context(), &req)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, employee)
}

// UpdateEmployee PUT /employees/:id
func (h *AuthHandler) UpdateEmployee(c *gin.Context) {
	var req service.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	employee, err := h.svc.UpdateEmployee(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, employee)
}

// DeleteEmployee DELETE /employees/:id
func (h *AuthHandler) DeleteEmployee(c *gin.Context) {
	if err := h.svc.DeleteEmployee(c.Request.Context(), c.Param("id")); err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, nil)
}
