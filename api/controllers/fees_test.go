package controllers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/freightlink-backend/pkg/config"
	"github.com/angelmondragon/freightlink-backend/pkg/logger"
)

func previewConfig() config.SettlementConfig {
	return config.SettlementConfig{Currency: "ETB", MaxPreviewDistance: "5000"}
}

func TestFeePreview(t *testing.T) {
	handler := FeePreview(previewConfig(), logger.Nop())

	w := serve(handler, newRequest(http.MethodPost, "/api/v1/fees/preview",
		`{"distanceKm":100.333,"pricePerKm":2.5}`, nil))
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeData[breakdownView](t, w)
	require.Equal(t, 250.83, got.BaseFee)
	require.Equal(t, 250.83, got.FinalFee)
	require.Zero(t, got.Discount)

	w = serve(handler, newRequest(http.MethodPost, "/api/v1/fees/preview",
		`{"distanceKm":100,"pricePerKm":5,"promoFlag":true,"promoPct":10}`, nil))
	require.Equal(t, http.StatusOK, w.Code)
	got = decodeData[breakdownView](t, w)
	require.Equal(t, 500.0, got.BaseFee)
	require.Equal(t, 50.0, got.Discount)
	require.Equal(t, 450.0, got.FinalFee)

	w = serve(handler, newRequest(http.MethodPost, "/api/v1/fees/preview",
		`{"distanceKm":100,"pricePerKm":-1}`, nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Zero(t, decodeData[breakdownView](t, w).FinalFee)
}

func TestFeePreviewRejectsBadInput(t *testing.T) {
	handler := FeePreview(previewConfig(), logger.Nop())
	cases := map[string]string{
		"negative distance": `{"distanceKm":-1,"pricePerKm":5}`,
		"promo above 100":   `{"distanceKm":10,"pricePerKm":5,"promoPct":120}`,
		"over limit":        `{"distanceKm":6000,"pricePerKm":5}`,
		"unknown field":     `{"distanceKm":10,"rate":5}`,
		"not json":          `distance=10`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := serve(handler, newRequest(http.MethodPost, "/api/v1/fees/preview", body, nil))
			require.Equal(t, http.StatusBadRequest, w.Code)
			require.Equal(t, "VALIDATION_ERROR", decodeAPIError(t, w).Code)
		})
	}
}

func TestDualFeePreview(t *testing.T) {
	handler := DualFeePreview(previewConfig(), logger.Nop())
	w := serve(handler, newRequest(http.MethodPost, "/api/v1/fees/preview/dual",
		`{"distanceKm":100,"shipper":{"pricePerKm":5},"carrier":{"pricePerKm":3}}`, nil))
	require.Equal(t, http.StatusOK, w.Code)

	got := decodeData[dualBreakdownView](t, w)
	require.Equal(t, 500.0, got.Shipper.FinalFee)
	require.Equal(t, 300.0, got.Carrier.FinalFee)
	require.Equal(t, 800.0, got.TotalPlatformFee)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Env = "test"

	w := serve(HealthReady(cfg, logger.Nop(), map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{}}),
		newRequest(http.MethodGet, "/health/ready", "", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "test", w.Header().Get("X-FreightLink-Env"))

	w = serve(HealthReady(cfg, logger.Nop(), map[string]Pinger{"redis": stubPinger{err: errors.New("down")}}),
		newRequest(http.MethodGet, "/health/ready", "", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Equal(t, "DEPENDENCY_ERROR", decodeAPIError(t, w).Code)
}
