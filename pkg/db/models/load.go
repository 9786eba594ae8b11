package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/freightlink-backend/pkg/enums"
)

// Load is a shipment posted by a shipper and hauled by a carrier's truck.
type Load struct {
	ID                    uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	ShipperOrganizationID uuid.UUID        `gorm:"column:shipper_organization_id;type:uuid;not null"`
	CarrierOrganizationID *uuid.UUID       `gorm:"column:carrier_organization_id;type:uuid"`
	AssignedTruckID       *uuid.UUID       `gorm:"column:assigned_truck_id;type:uuid"`
	PickupCity            string           `gorm:"column:pickup_city;not null"`
	PickupRegion          *string          `gorm:"column:pickup_region"`
	DeliveryCity          string           `gorm:"column:delivery_city;not null"`
	DeliveryRegion        *string          `gorm:"column:delivery_region"`
	Status                enums.LoadStatus `gorm:"column:status;type:text;not null;default:'POSTED'"`

	CorridorID      *uuid.UUID       `gorm:"column:corridor_id;type:uuid"`
	EstimatedTripKm *decimal.Decimal `gorm:"column:estimated_trip_km;type:numeric(12,3)"`
	ActualTripKm    *decimal.Decimal `gorm:"column:actual_trip_km;type:numeric(12,3)"`

	ShipperServiceFee    decimal.Decimal        `gorm:"column:shipper_service_fee;type:numeric(14,2);not null;default:0"`
	CarrierServiceFee    decimal.Decimal        `gorm:"column:carrier_service_fee;type:numeric(14,2);not null;default:0"`
	ServiceFeeEtb        decimal.Decimal        `gorm:"column:service_fee_etb;type:numeric(14,2);not null;default:0"`
	ShipperFeeStatus     enums.FeeStatus        `gorm:"column:shipper_fee_status;type:text;not null;default:'PENDING'"`
	CarrierFeeStatus     enums.FeeStatus        `gorm:"column:carrier_fee_status;type:text;not null;default:'PENDING'"`
	ShipperFeeDeductedAt *time.Time             `gorm:"column:shipper_fee_deducted_at"`
	CarrierFeeDeductedAt *time.Time             `gorm:"column:carrier_fee_deducted_at"`
	ShipperFeeRefundedAt *time.Time             `gorm:"column:shipper_fee_refunded_at"`
	CarrierFeeRefundedAt *time.Time             `gorm:"column:carrier_fee_refunded_at"`
	SettlementStatus     enums.SettlementStatus `gorm:"column:settlement_status;type:text;not null;default:'PENDING'"`
	SettledAt            *time.Time             `gorm:"column:settled_at"`
	DisputeReason        *string                `gorm:"column:dispute_reason"`

	PODSubmitted   bool       `gorm:"column:pod_submitted;not null;default:false"`
	PODSubmittedAt *time.Time `gorm:"column:pod_submitted_at"`
	PODVerified    bool       `gorm:"column:pod_verified;not null;default:false"`
	PODVerifiedAt  *time.Time `gorm:"column:pod_verified_at"`
	PODVerifiedBy  *uuid.UUID `gorm:"column:pod_verified_by;type:uuid"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (l *Load) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}

// FeeStatusFor returns the fee status of the given party.
func (l *Load) FeeStatusFor(party enums.Party) enums.FeeStatus {
	if party == enums.PartyCarrier {
		return l.CarrierFeeStatus
	}
	return l.ShipperFeeStatus
}

// FeesSettled reports whether neither party's fee is still pending.
func (l *Load) FeesSettled() bool {
	return l.ShipperFeeStatus.IsSettled() && l.CarrierFeeStatus.IsSettled()
}
