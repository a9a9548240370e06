package repository

import (
	"context"
	"time"

	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/model/entity"
	"gorm.io/gorm"
)

// EmployeeRepository persists back-office users.
type EmployeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository creates an employee repository.
func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// FindByID loads an employee by id.
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*entity.Employee, error) {
	var employee entity.Employee
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&employee).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &employee, nil
}

// FindByUsername loads an employee by login name.
func (r *EmployeeRepository) FindByUsername(ctx context.Context, username string) (*entity.Employee, error) {
	var employee entity.Employee
	err := r.db.WithContext(ctx).
		Where("username = ? AND deleted_at IS NULL", username).
		First(&employee).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &employee, nil
}

// List returns employees, optionally scoped to a store.
func (r *EmployeeRepository) List(ctx context.Context, storeID string, page, pageSize int) ([]entity.Employee, int64, error) {
	var employees []entity.Employee
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Employee{}).Where("deleted_at IS NULL")
	if storeID != "" {
		query = query.Where("store_id = ?", storeID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&employees).Error

	return employees, total, err
}

// Create inserts an employee.
func (r *EmployeeRepository) Create(ctx context.Context, employee *entity.Employee) error {
	return r.db.WithContext(ctx).Create(employee).Error
}

// Update saves an employee.
func (r *EmployeeRepository) Update(ctx context.Context, employee *entity.Employee) error {
	return r.db.WithContext(ctx).Save(employee).Error
}

// Delete soft-deletes an employee.
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Employee{}).
		Where("id = ?", id).
		Update("deleted_at", time.Now()).Error
}
