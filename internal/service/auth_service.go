package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/config"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/middleware"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/model/entity"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when login fails. Wrong username and
// wrong password are deliberately indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid username or password")

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token and the authenticated employee.
type LoginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Employee  *entity.Employee `json:"employee"`
}

// CreateEmployeeRequest creates an employee account.
type CreateEmployeeRequest struct {
	StoreID  string `json:"store_id"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// UpdateEmployeeRequest edits an employee account.
type UpdateEmployeeRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Status   string `json:"status"`
	Password string `json:"password"`
}

// AuthService authenticates employees and manages their accounts.
type AuthService struct {
	repo   *repository.EmployeeRepository
	cfg    *config.Config
	logger *zap.Logger
}

// NewAuthService creates an auth service.
func NewAuthService(repo *repository.EmployeeRepository, cfg *config.Config, logger *zap.Logger) *AuthService {
	return &AuthService{repo: repo, cfg: cfg, logger: logger}
}

// Login verifies credentials and issues a signed token.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	employee, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find employee: %w", err)
	}
	if employee.Status != entity.EmployeeStatusActive {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	expiresAt := now.Add(s.cfg.JWT.AccessTokenExpire)
	claims := middleware.JWTClaims{
		UserID:  employee.ID,
		Name:    employee.Name,
		Role:    employee.Role,
		StoreID: employee.StoreID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.JWT.Issuer,
			Subject:   employee.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info("employee logged in",
		zap.String("employee_id", employee.ID),
		zap.String("username", employee.Username))

	return &LoginResponse{Token: token, ExpiresAt: expiresAt, Employee: employee}, nil
}

// GetEmployee loads one employee.
func (s *AuthService) GetEmployee(ctx context.Context, id string) (*entity.Employee, error) {
	return s.repo.FindByID(ctx, id)
}

// ListEmployees returns employees, optionally scoped to a store.
func (s *AuthService) ListEmployees(ctx context.Context, storeID string, page, pageSize int) ([]entity.Employee, int64, error) {
	return s.repo.List(ctx, storeID, page, pageSize)
}

// CreateEmployee registers an employee account.
func (s *AuthService) CreateEmployee(ctx context.Context, req *CreateEmployeeRequest) (*entity.Employee, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = entity.EmployeeRoleStaff
	}
	now := time.Now()
	employee := &entity.Employee{
		ID:           newID(),
		StoreID:      req.StoreID,
		Username:     req.Username,
		PasswordHash: string(hash),
		Name:         req.Name,
		Email:        req.Email,
		Role:         role,
		Status:       entity.EmployeeStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, employee); err != nil {
		return nil, fmt.Errorf("create employee: %w", err)
	}
	return employee, nil
}

// UpdateEmployee edits an employee account.
func (s *AuthService) UpdateEmployee(ctx context.Context, id string, req *UpdateEmployeeRequest) (*entity.Employee, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		employee.Name = req.Name
	}
	if req.Email != "" {
		employee.Email = req.Email
	}
	if req.Role != "" {
		employee.Role = req.Role
	}
	if req.Status != "" {
		employee.Status = req.Status
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		employee.PasswordHash = string(hash)
	}
	employee.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, employee); err != nil {
		return nil, fmt.Errorf("update employee: %w", err)
	}
	return employee, nil
}

// DeleteEmployee soft-deletes an employee account.
func (s *AuthService) DeleteEmployee(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
