package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Truck belongs to a carrier organization and is assigned to loads.
type Truck struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrganizationID uuid.UUID `gorm:"column:organization_id;type:uuid;not null"`
	PlateNumber    string    `gorm:"column:plate_number;not null"`
	IsActive       bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (t *Truck) BeforeCreate(*gorm.DB) error {
	ensureID(&t.ID)
	return nil
}
