// Package fees computes per-party service fees from corridor pricing.
package fees

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/freightlink-backend/pkg/money"
)

// Breakdown is the rounded fee for a single party.
type Breakdown struct {
	BaseFee  decimal.Decimal `json:"baseFee"`
	Discount decimal.Decimal `json:"discount"`
	FinalFee decimal.Decimal `json:"finalFee"`
}

// Rate is the per-km price and promo applied to one party.
type Rate struct {
	PricePerKm decimal.Decimal
	PromoFlag  bool
	PromoPct   decimal.Decimal
}

// DualBreakdown holds both parties' fees and their sum.
type DualBreakdown struct {
	Shipper          Breakdown       `json:"shipper"`
	Carrier          Breakdown       `json:"carrier"`
	TotalPlatformFee decimal.Decimal `json:"totalPlatformFee"`
}

// Waived reports whether the fee rounds to zero.
func (b Breakdown) Waived() bool {
	return !b.FinalFee.IsPositive()
}

// Calculate applies rate and promo to distanceKm. The final fee is rounded
// from the unrounded discounted amount and the discount is base minus final,
// so FinalFee == BaseFee - Discount always holds.
func Calculate(distanceKm decimal.Decimal, rate Rate) Breakdown {
	if distanceKm.IsNegative() || !rate.PricePerKm.IsPositive() {
		return Breakdown{BaseFee: decimal.Zero, Discount: decimal.Zero, FinalFee: decimal.Zero}
	}

	raw := distanceKm.Mul(rate.PricePerKm)
	base := money.Round2(raw)
	final := base

	pct := money.ClampPercent(rate.PromoPct)
	if rate.PromoFlag && pct.IsPositive() {
		final = money.Round2(raw.Sub(money.Percent(raw, pct)))
	}

	return Breakdown{
		BaseFee:  base,
		Discount: base.Sub(final),
		FinalFee: final,
	}
}

// CalculateDual runs Calculate independently for each party.
func CalculateDual(distanceKm decimal.Decimal, shipper, carrier Rate) DualBreakdown {
	s := Calculate(distanceKm, shipper)
	c := Calculate(distanceKm, carrier)
	return DualBreakdown{
		Shipper:          s,
		Carrier:          c,
		TotalPlatformFee: s.FinalFee.Add(c.FinalFee),
	}
}

// CalculateFeePreview is the float entry point used by HTTP previews.
// NaN and infinite inputs degrade to a zero fee.
func CalculateFeePreview(distanceKm, pricePerKm float64, promoFlag bool, promoPct float64) Breakdown {
	return Calculate(money.FromFloat(distanceKm), Rate{
		PricePerKm: money.FromFloat(pricePerKm),
		PromoFlag:  promoFlag,
		PromoPct:   money.FromFloat(promoPct),
	})
}

// PreviewRate is the float form of Rate.
type PreviewRate struct {
	PricePerKm float64
	PromoFlag  bool
	PromoPct   float64
}

func (p PreviewRate) decimal() Rate {
	return Rate{
		PricePerKm: money.FromFloat(p.PricePerKm),
		PromoFlag:  p.PromoFlag,
		PromoPct:   money.FromFloat(p.PromoPct),
	}
}

// CalculateDualPartyFeePreview is the float entry point for dual-party previews.
func CalculateDualPartyFeePreview(distanceKm float64, shipper, carrier PreviewRate) DualBreakdown {
	return CalculateDual(money.FromFloat(distanceKm), shipper.decimal(), carrier.decimal())
}
