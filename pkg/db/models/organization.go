package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/freightlink-backend/pkg/enums"
)

// Organization is a shipper, carrier, or the platform operator itself.
type Organization struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	Name      string                 `gorm:"column:name;not null"`
	Type      enums.OrganizationType `gorm:"column:type;type:text;not null"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Organization) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}
