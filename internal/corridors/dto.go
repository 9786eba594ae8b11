package corridors

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/freightlink-backend/internal/authz"
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
)

const (
	errLoadNotFound       = "load not found"
	errFeesAlreadyHandled = "Service fees already processed for this load"
	errNoCorridor         = "No matching corridor found for this route"
)

// AssignCorridorInput identifies the load whose corridor should be resolved.
// EstimatedTripKm, when set, is used instead of asking the route estimator.
type AssignCorridorInput struct {
	LoadID          uuid.UUID
	EstimatedTripKm *decimal.Decimal
	Actor           authz.Actor
}

// AssignResult reports the corridor and estimated fees stored on a load.
// Business failures are carried in Error with Success false.
type AssignResult struct {
	Success    bool
	CorridorID *uuid.UUID
	DistanceKm decimal.Decimal
	ShipperFee decimal.Decimal
	CarrierFee decimal.Decimal
	TotalFee   decimal.Decimal
	Error      string
}

func (r *AssignResult) NotFound() bool {
	return r != nil && r.Error == errLoadNotFound
}

// PartyPricing is the optional dual-party pricing block of a corridor.
type PartyPricing struct {
	PricePerKm       *decimal.Decimal
	PromoFlag        *bool
	PromoDiscountPct *decimal.Decimal
}

// CreateCorridorInput carries an admin corridor definition.
type CreateCorridorInput struct {
	Name              string
	OriginRegion      enums.Region
	DestinationRegion enums.Region
	Direction         enums.CorridorDirection
	DistanceKm        decimal.Decimal
	PricePerKm        decimal.Decimal
	PromoFlag         bool
	PromoDiscountPct  *decimal.Decimal
	Shipper           PartyPricing
	Carrier           PartyPricing
	Actor             authz.Actor
}

// UpdateCorridorInput is a partial update; nil fields are left untouched.
type UpdateCorridorInput struct {
	ID                uuid.UUID
	Name              *string
	Direction         *enums.CorridorDirection
	DistanceKm        *decimal.Decimal
	PricePerKm        *decimal.Decimal
	PromoFlag         *bool
	PromoDiscountPct  *decimal.Decimal
	Shipper           *PartyPricing
	Carrier           *PartyPricing
	IsActive          *bool
	Actor             authz.Actor
}
