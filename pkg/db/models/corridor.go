package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/freightlink-backend/pkg/enums"
)

// Corridor prices trips between two regions. PricePerKm and PromoFlag /
// PromoDiscountPct are the legacy single-party fields; the Shipper* and
// Carrier* fields take precedence when set.
type Corridor struct {
	ID                uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	Name              string                  `gorm:"column:name;not null"`
	OriginRegion      enums.Region            `gorm:"column:origin_region;type:text;not null"`
	DestinationRegion enums.Region            `gorm:"column:destination_region;type:text;not null"`
	Direction         enums.CorridorDirection `gorm:"column:direction;type:text;not null;default:'ONE_WAY'"`
	DistanceKm        decimal.Decimal         `gorm:"column:distance_km;type:numeric(12,3);not null"`

	PricePerKm       decimal.Decimal  `gorm:"column:price_per_km;type:numeric(12,4);not null;default:0"`
	PromoFlag        bool             `gorm:"column:promo_flag;not null;default:false"`
	PromoDiscountPct *decimal.Decimal `gorm:"column:promo_discount_pct;type:numeric(5,2)"`

	ShipperPricePerKm       *decimal.Decimal `gorm:"column:shipper_price_per_km;type:numeric(12,4)"`
	ShipperPromoFlag        *bool            `gorm:"column:shipper_promo_flag"`
	ShipperPromoDiscountPct *decimal.Decimal `gorm:"column:shipper_promo_discount_pct;type:numeric(5,2)"`
	CarrierPricePerKm       *decimal.Decimal `gorm:"column:carrier_price_per_km;type:numeric(12,4)"`
	CarrierPromoFlag        *bool            `gorm:"column:carrier_promo_flag"`
	CarrierPromoDiscountPct *decimal.Decimal `gorm:"column:carrier_promo_discount_pct;type:numeric(5,2)"`

	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Corridor) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
