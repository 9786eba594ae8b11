package corridors

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/freightlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/freightlink-backend/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

func validateCreate(input *CreateCorridorInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.OriginRegion.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid origin region")
	}
	if !input.DestinationRegion.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid destination region")
	}
	if input.Direction == "" {
		input.Direction = enums.CorridorDirectionOneWay
	}
	if !input.Direction.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid corridor direction")
	}
	if !input.DistanceKm.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "distance must be positive")
	}
	if input.PricePerKm.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price per km must not be negative")
	}
	if err := validatePct("promo discount", input.PromoDiscountPct); err != nil {
		return err
	}
	if err := validateParty("shipper", input.Shipper); err != nil {
		return err
	}
	return validateParty("carrier", input.Carrier)
}

func validateParty(party string, pricing PartyPricing) error {
	if pricing.PricePerKm != nil && pricing.PricePerKm.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, party+" price per km must not be negative")
	}
	return validatePct(party+" promo discount", pricing.PromoDiscountPct)
}

func validatePct(field string, pct *decimal.Decimal) error {
	if pct == nil {
		return nil
	}
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return pkgerrors.New(pkgerrors.CodeValidation, field+" must be between 0 and 100")
	}
	return nil
}

func buildUpdates(input UpdateCorridorInput) (map[string]any, error) {
	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must not be empty")
		}
		updates["name"] = name
	}
	if input.Direction != nil {
		if !input.Direction.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid corridor direction")
		}
		updates["direction"] = *input.Direction
	}
	if input.DistanceKm != nil {
		if !input.DistanceKm.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "distance must be positive")
		}
		updates["distance_km"] = *input.DistanceKm
	}
	if input.PricePerKm != nil {
		if input.PricePerKm.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price per km must not be negative")
		}
		updates["price_per_km"] = *input.PricePerKm
	}
	if input.PromoFlag != nil {
		updates["promo_flag"] = *input.PromoFlag
	}
	if input.PromoDiscountPct != nil {
		if err := validatePct("promo discount", input.PromoDiscountPct); err != nil {
			return nil, err
		}
		updates["promo_discount_pct"] = *input.PromoDiscountPct
	}
	if err := partyUpdates(updates, "shipper", input.Shipper); err != nil {
		return nil, err
	}
	if err := partyUpdates(updates, "carrier", input.Carrier); err != nil {
		return nil, err
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	return updates, nil
}

func partyUpdates(updates map[string]any, party string, pricing *PartyPricing) error {
	if pricing == nil {
		return nil
	}
	if err := validateParty(party, *pricing); err != nil {
		return err
	}
	if pricing.PricePerKm != nil {
		updates[party+"_price_per_km"] = *pricing.PricePerKm
	}
	if pricing.PromoFlag != nil {
		updates[party+"_promo_flag"] = *pricing.PromoFlag
	}
	if pricing.PromoDiscountPct != nil {
		updates[party+"_promo_discount_pct"] = *pricing.PromoDiscountPct
	}
	return nil
}
