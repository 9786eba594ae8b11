package fees

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/freightlink-backend/pkg/db/models"
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
	"github.com/angelmondragon/freightlink-backend/pkg/money"
)

// RatesForCorridor resolves the per-party rates of a corridor. Dual-party
// fields win over the legacy single-party ones; the carrier has no legacy
// price so an unset carrier price means no carrier fee.
func RatesForCorridor(c *models.Corridor) (shipper Rate, carrier Rate) {
	if c == nil {
		return Rate{}, Rate{}
	}
	legacyPct := money.FromPtr(c.PromoDiscountPct)

	shipper = Rate{
		PricePerKm: c.PricePerKm,
		PromoFlag:  c.PromoFlag,
		PromoPct:   legacyPct,
	}
	if c.ShipperPricePerKm != nil {
		shipper.PricePerKm = *c.ShipperPricePerKm
	}
	if c.ShipperPromoFlag != nil {
		shipper.PromoFlag = *c.ShipperPromoFlag
	}
	if c.ShipperPromoDiscountPct != nil {
		shipper.PromoPct = *c.ShipperPromoDiscountPct
	}

	carrier = Rate{
		PricePerKm: money.FromPtr(c.CarrierPricePerKm),
		PromoFlag:  c.PromoFlag,
		PromoPct:   legacyPct,
	}
	if c.CarrierPromoFlag != nil {
		carrier.PromoFlag = *c.CarrierPromoFlag
	}
	if c.CarrierPromoDiscountPct != nil {
		carrier.PromoPct = *c.CarrierPromoDiscountPct
	}
	return shipper, carrier
}

// TripDistanceKm picks actual, then estimated, then corridor distance.
// Unset or non-positive load distances are skipped.
func TripDistanceKm(load *models.Load, c *models.Corridor) decimal.Decimal {
	if load != nil {
		if load.ActualTripKm != nil && load.ActualTripKm.IsPositive() {
			return *load.ActualTripKm
		}
		if load.EstimatedTripKm != nil && load.EstimatedTripKm.IsPositive() {
			return *load.EstimatedTripKm
		}
	}
	if c == nil {
		return decimal.Zero
	}
	return c.DistanceKm
}

// ForLoad is the single fee computation shared by settlement, the wallet
// pre-flight and corridor assignment.
func ForLoad(load *models.Load, c *models.Corridor) DualBreakdown {
	shipper, carrier := RatesForCorridor(c)
	return CalculateDual(TripDistanceKm(load, c), shipper, carrier)
}

// PartyFee returns the final fee owed by party.
func (d DualBreakdown) PartyFee(party enums.Party) decimal.Decimal {
	if party == enums.PartyCarrier {
		return d.Carrier.FinalFee
	}
	return d.Shipper.FinalFee
}
