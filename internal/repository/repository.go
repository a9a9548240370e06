package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Repositories bundles all repositories sharing one database handle.
type Repositories struct {
	Store       *StoreRepository
	Ingredient  *IngredientRepository
	Recipe      *RecipeRepository
	Product     *ProductRepository
	Employee    *EmployeeRepository
	Order       *OrderRepository
	CostHistory *CostHistoryRepository
}

// NewRepositories creates the repository set.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Store:       NewStoreRepository(db),
		Ingredient:  NewIngredientRepository(db),
		Recipe:      NewRecipeRepository(db),
		Product:     NewProductRepository(db),
		Employee:    NewEmployeeRepository(db),
		Order:       NewOrderRepository(db),
		CostHistory: NewCostHistoryRepository(db),
	}
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
