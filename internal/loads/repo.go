package loads

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/freightlink-backend/internal/repo"
	"github.com/angelmondragon/freightlink-backend/pkg/db/models"
)

// TruckRepository reads carrier trucks.
type TruckRepository interface {
	WithTx(tx *gorm.DB) TruckRepository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Truck, error)
}

type truckRepository struct {
	repo.Base
}

// NewTruckRepository binds a truck repository to db.
func NewTruckRepository(db *gorm.DB) TruckRepository {
	return &truckRepository{Base: repo.NewBase(db)}
}

func (r *truckRepository) WithTx(tx *gorm.DB) TruckRepository {
	if tx == nil {
		return r
	}
	return &truckRepository{Base: repo.NewBase(tx)}
}

func (r *truckRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Truck, error) {
	var truck models.Truck
	if err := r.DB(ctx).Where("id = ?", id).First(&truck).Error; err != nil {
		return nil, err
	}
	return &truck, nil
}
