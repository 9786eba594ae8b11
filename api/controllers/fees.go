package controllers

import (
	"net/http"

	"github.com/angelmondragon/freightlink-backend/api/responses"
	"github.com/angelmondragon/freightlink-backend/api/validators"
	"github.com/angelmondragon/freightlink-backend/internal/fees"
	"github.com/angelmondragon/freightlink-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/freightlink-backend/pkg/errors"
	"github.com/angelmondragon/freightlink-backend/pkg/logger"
	"github.com/angelmondragon/freightlink-backend/pkg/money"
)

type feePreviewRequest struct {
	DistanceKm float64 `json:"distanceKm" validate:"gte=0"`
	PricePerKm float64 `json:"pricePerKm"`
	PromoFlag  bool    `json:"promoFlag"`
	PromoPct   float64 `json:"promoPct" validate:"gte=0,lte=100"`
}

type partyRateRequest struct {
	PricePerKm float64 `json:"pricePerKm"`
	PromoFlag  bool    `json:"promoFlag"`
	PromoPct   float64 `json:"promoPct" validate:"gte=0,lte=100"`
}

func (p partyRateRequest) rate() fees.PreviewRate {
	return fees.PreviewRate{PricePerKm: p.PricePerKm, PromoFlag: p.PromoFlag, PromoPct: p.PromoPct}
}

type dualFeePreviewRequest struct {
	DistanceKm float64          `json:"distanceKm" validate:"gte=0"`
	Shipper    partyRateRequest `json:"shipper"`
	Carrier    partyRateRequest `json:"carrier"`
}

func checkPreviewDistance(cfg config.SettlementConfig, distanceKm float64) error {
	limit := cfg.MaxPreviewKm()
	if limit.IsPositive() && money.FromFloat(distanceKm).GreaterThan(limit) {
		return pkgerrors.New(pkgerrors.CodeValidation, "distance exceeds preview limit").
			WithDetails(map[string]any{"distanceKm": "must be at most " + limit.String()})
	}
	return nil
}

// FeePreview returns the single-party fee for a hypothetical trip.
func FeePreview(cfg config.SettlementConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req feePreviewRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := checkPreviewDistance(cfg, req.DistanceKm); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		breakdown := fees.CalculateFeePreview(req.DistanceKm, req.PricePerKm, req.PromoFlag, req.PromoPct)
		responses.WriteSuccess(w, presentBreakdown(breakdown))
	}
}

func DualFeePreview(cfg config.SettlementConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dualFeePreviewRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := checkPreviewDistance(cfg, req.DistanceKm); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		breakdown := fees.CalculateDualPartyFeePreview(req.DistanceKm, req.Shipper.rate(), req.Carrier.rate())
		responses.WriteSuccess(w, presentDual(breakdown))
	}
}
