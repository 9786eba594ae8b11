package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/freightlink-backend/pkg/enums"
)

// ServiceFeeDeductedEvent is emitted once per party when its wallet is debited.
type ServiceFeeDeductedEvent struct {
	LoadID         uuid.UUID       `json:"load_id"`
	Party          enums.Party     `json:"party"`
	OrganizationID uuid.UUID       `json:"organization_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	JournalEntryID uuid.UUID       `json:"journal_entry_id"`
	BalanceAfter   decimal.Decimal `json:"balance_after"`
}

// ServiceFeesWaivedEvent is emitted when a load settles without fees.
type ServiceFeesWaivedEvent struct {
	LoadID uuid.UUID   `json:"load_id"`
	Reason string      `json:"reason"`
	Party  enums.Party `json:"party,omitempty"`
}

// ServiceFeeRefundedEvent mirrors ServiceFeeDeductedEvent for the refund path.
type ServiceFeeRefundedEvent struct {
	LoadID         uuid.UUID       `json:"load_id"`
	Party          enums.Party     `json:"party"`
	OrganizationID uuid.UUID       `json:"organization_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	JournalEntryID uuid.UUID       `json:"journal_entry_id"`
	Reason         string          `json:"reason,omitempty"`
}

// SettlementStatusChangedEvent covers PAID, DISPUTE and dispute resolution.
type SettlementStatusChangedEvent struct {
	LoadID   uuid.UUID              `json:"load_id"`
	Previous enums.SettlementStatus `json:"previous"`
	Current  enums.SettlementStatus `json:"current"`
	Reason   string                 `json:"reason,omitempty"`
	At       time.Time              `json:"at"`
}

// InsufficientFundsEvent lets downstream notifiers nudge an organization to top up.
type InsufficientFundsEvent struct {
	LoadID         uuid.UUID       `json:"load_id"`
	Party          enums.Party     `json:"party"`
	OrganizationID uuid.UUID       `json:"organization_id"`
	Required       decimal.Decimal `json:"required"`
	Available      decimal.Decimal `json:"available"`
}

// CorridorAssignedEvent records the corridor and estimated fees stored on a load.
type CorridorAssignedEvent struct {
	LoadID     uuid.UUID       `json:"load_id"`
	CorridorID uuid.UUID       `json:"corridor_id"`
	ShipperFee decimal.Decimal `json:"shipper_fee"`
	CarrierFee decimal.Decimal `json:"carrier_fee"`
	TotalFee   decimal.Decimal `json:"total_fee"`
}

// CorridorChangedEvent is emitted on admin create/update.
type CorridorChangedEvent struct {
	CorridorID        uuid.UUID    `json:"corridor_id"`
	OriginRegion      enums.Region `json:"origin_region"`
	DestinationRegion enums.Region `json:"destination_region"`
	IsActive          bool         `json:"is_active"`
}

// LoadStatusChangedEvent is emitted for every lifecycle transition.
type LoadStatusChangedEvent struct {
	LoadID   uuid.UUID        `json:"load_id"`
	Previous enums.LoadStatus `json:"previous"`
	Current  enums.LoadStatus `json:"current"`
}

// LoadAssignedEvent is emitted when a truck is assigned to a load.
type LoadAssignedEvent struct {
	LoadID                uuid.UUID  `json:"load_id"`
	TruckID               uuid.UUID  `json:"truck_id"`
	CarrierOrganizationID uuid.UUID  `json:"carrier_organization_id"`
	CorridorID            *uuid.UUID `json:"corridor_id,omitempty"`
}

// PODEvent covers POD submission and verification.
type PODEvent struct {
	LoadID uuid.UUID `json:"load_id"`
	UserID uuid.UUID `json:"user_id"`
	At     time.Time `json:"at"`
}
