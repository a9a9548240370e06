package repository

import (
	"context"
	"time"

	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/model/entity"
	"gorm.io/gorm"
)

// CostHistoryRepository persists the append-only derived-cost change log.
type CostHistoryRepository struct {
	db *gorm.DB
}

// NewCostHistoryRepository creates a cost history repository.
func NewCostHistoryRepository(db *gorm.DB) *CostHistoryRepository {
	return &CostHistoryRepository{db: db}
}

// Record appends one cost change row.
func (r *CostHistoryRepository) Record(ctx context.Context, h *entity.CostHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

// Trend returns cost changes for one entity since the given time, oldest first.
func (r *CostHistoryRepository) Trend(ctx context.Context, entityType, entityID string, since time.Time) ([]entity.CostHistory, error) {
	var rows []entity.CostHistory
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ? AND created_at >= ?", entityType, entityID, since).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// Recent returns the latest cost changes across all entities.
func (r *CostHistoryRepository) Recent(ctx context.Context, limit int) ([]entity.CostHistory, error) {
	var rows []entity.CostHistory
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
