package fees

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/freightlink-backend/pkg/db/models"
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
)

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func bp(b bool) *bool {
	return &b
}

func TestRatesForCorridorLegacyOnly(t *testing.T) {
	c := &models.Corridor{PricePerKm: d("4"), PromoFlag: true, PromoDiscountPct: dp("10")}
	shipper, carrier := RatesForCorridor(c)

	requireDec(t, "4", shipper.PricePerKm)
	require.True(t, shipper.PromoFlag)
	requireDec(t, "10", shipper.PromoPct)
	require.True(t, carrier.PricePerKm.IsZero())
}

func TestRatesForCorridorDualOverridesLegacy(t *testing.T) {
	c := &models.Corridor{
		PricePerKm:              d("4"),
		PromoFlag:               true,
		PromoDiscountPct:        dp("10"),
		ShipperPricePerKm:       dp("5"),
		ShipperPromoFlag:        bp(false),
		CarrierPricePerKm:       dp("3"),
		CarrierPromoDiscountPct: dp("20"),
	}
	shipper, carrier := RatesForCorridor(c)

	requireDec(t, "5", shipper.PricePerKm)
	require.False(t, shipper.PromoFlag)
	requireDec(t, "3", carrier.PricePerKm)
	require.True(t, carrier.PromoFlag)
	requireDec(t, "20", carrier.PromoPct)

	s, cr := RatesForCorridor(nil)
	require.Equal(t, Rate{}, s)
	require.Equal(t, Rate{}, cr)
}

func TestTripDistancePrecedence(t *testing.T) {
	c := &models.Corridor{DistanceKm: d("120")}

	requireDec(t, "120", TripDistanceKm(&models.Load{}, c))
	requireDec(t, "110", TripDistanceKm(&models.Load{EstimatedTripKm: dp("110")}, c))
	requireDec(t, "105.5", TripDistanceKm(&models.Load{EstimatedTripKm: dp("110"), ActualTripKm: dp("105.5")}, c))
	requireDec(t, "110", TripDistanceKm(&models.Load{EstimatedTripKm: dp("110"), ActualTripKm: dp("0")}, c))
	requireDec(t, "0", TripDistanceKm(nil, nil))
}

func TestForLoad(t *testing.T) {
	c := &models.Corridor{
		DistanceKm:        d("100"),
		ShipperPricePerKm: dp("5"),
		CarrierPricePerKm: dp("3"),
	}
	got := ForLoad(&models.Load{}, c)
	requireDec(t, "500", got.PartyFee(enums.PartyShipper))
	requireDec(t, "300", got.PartyFee(enums.PartyCarrier))
	requireDec(t, "800", got.TotalPlatformFee)
}
