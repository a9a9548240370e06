package service

import (
	"context"
	"fmt"
	"time"

	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/model/entity"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/repository"
	"go.uber.org/zap"
)

// CreateStoreRequest creates a store.
type CreateStoreRequest struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// UpdateStoreRequest updates store master data.
type UpdateStoreRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Status  string `json:"status"`
}

// StoreService manages stores.
type StoreService struct {
	repo   *repository.StoreRepository
	logger *zap.Logger
}

// NewStoreService creates a store service.
func NewStoreService(repo *repository.StoreRepository, logger *zap.Logger) *StoreService {
	return &StoreService{repo: repo, logger: logger}
}

// List returns all stores.
func (s *StoreService) List(ctx context.Context) ([]entity.Store, error) {
	return s.repo.List(ctx)
}

// Get loads one store.
func (s *StoreService) Get(ctx context.Context, id string) (*entity.Store, error) {
	return s.repo.FindByID(ctx, id)
}

// Create inserts a store.
func (s *StoreService) Create(ctx context.Context, req *CreateStoreRequest) (*entity.Store, error) {
	now := time.Now()
	store := &entity.Store{
		ID:        newID(),
		Code:      req.Code,
		Name:      req.Name,
		Address:   req.Address,
		Phone:     req.Phone,
		Status:    entity.StoreStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, store); err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	return store, nil
}

// Update edits store master data.
func (s *StoreService) Update(ctx context.Context, id string, req *UpdateStoreRequest) (*entity.Store, error) {
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		store.Name = req.Name
	}
	if req.Address != "" {
		store.Address = req.Address
	}
	if req.Phone != "" {
		store.Phone = req.Phone
	}
	if req.Status != "" {
		if req.Status != entity.StoreStatusActive && req.Status != entity.StoreStatusInactive {
			return nil, fmt.Errorf("unknown store status %q", req.Status)
		}
		store.Status = req.Status
	}
	store.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, store); err != nil {
		return nil, fmt.Errorf("update store: %w", err)
	}
	return store, nil
}
