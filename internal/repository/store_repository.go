package repository

import (
	"context"

	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/model/entity"
	"gorm.io/gorm"
)

// StoreRepository persists stores.
type StoreRepository struct {
	db *gorm.DB
}

// NewStoreRepository creates a store repository.
func NewStoreRepository(db *gorm.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

// FindByID loads a store by id.
func (r *StoreRepository) FindByID(ctx context.Context, id string) (*entity.Store, error) {
	var store entity.Store
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&store).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &store, nil
}

// List returns all non-deleted stores.
func (r *StoreRepository) List(ctx context.Context) ([]entity.Store, error) {
	var stores []entity.Store
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Order("name ASC").
		Find(&stores).Error
	return stores, err
}

// Create inserts a store.
func (r *StoreRepository) Create(ctx context.Context, store *entity.Store) error {
	return r.db.WithContext(ctx).Create(store).Error
}

// Update saves a store.
func (r *StoreRepository) Update(ctx context.Context, store *entity.Store) error {
	return r.db.WithContext(ctx).Save(store).Error
}
