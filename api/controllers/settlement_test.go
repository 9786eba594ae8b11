package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/freightlink-backend/internal/authz"
	"github.com/angelmondragon/freightlink-backend/internal/settlement"
	"github.com/angelmondragon/freightlink-backend/pkg/db/models"
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/freightlink-backend/pkg/errors"
	"github.com/angelmondragon/freightlink-backend/pkg/logger"
)

type stubSettlement struct {
	deduct    *settlement.DeductResult
	refund    *settlement.RefundResult
	load      *models.Load
	journal   []models.JournalEntry
	err       error
	gotLoadID uuid.UUID
	gotActor  authz.Actor
	gotReason string
}

func (s *stubSettlement) DeductServiceFee(_ context.Context, loadID uuid.UUID, actor authz.Actor) (*settlement.DeductResult, error) {
	s.gotLoadID, s.gotActor = loadID, actor
	return s.deduct, s.err
}

func (s *stubSettlement) RefundServiceFee(_ context.Context, loadID uuid.UUID, actor authz.Actor, reason string) (*settlement.RefundResult, error) {
	s.gotLoadID, s.gotActor, s.gotReason = loadID, actor, reason
	return s.refund, s.err
}

func (s *stubSettlement) OpenDispute(_ context.Context, loadID uuid.UUID, actor authz.Actor, reason string) (*models.Load, error) {
	s.gotLoadID, s.gotActor, s.gotReason = loadID, actor, reason
	return s.load, s.err
}

func (s *stubSettlement) ResolveDispute(_ context.Context, loadID uuid.UUID, actor authz.Actor) (*models.Load, error) {
	s.gotLoadID, s.gotActor = loadID, actor
	return s.load, s.err
}

func (s *stubSettlement) JournalForLoad(_ context.Context, loadID uuid.UUID) ([]models.JournalEntry, error) {
	s.gotLoadID = loadID
	return s.journal, s.err
}

func settlementReq(loadID uuid.UUID, path, body string) *http.Request {
	return asActor(newRequest(http.MethodPost, path, body, map[string]string{"loadId": loadID.String()}), adminActor())
}

func TestAdminDeductServiceFeeSuccess(t *testing.T) {
	loadID := uuid.New()
	svc := &stubSettlement{deduct: &settlement.DeductResult{
		Success:          true,
		ShipperFee:       decimal.NewFromInt(500),
		CarrierFee:       decimal.NewFromInt(300),
		TotalPlatformFee: decimal.NewFromInt(800),
		Details: settlement.Details{
			Shipper: settlement.PartyDetail{Fee: decimal.NewFromInt(500), Status: enums.FeeStatusDeducted},
			Carrier: settlement.PartyDetail{Fee: decimal.NewFromInt(300), WalletDeducted: true, Status: enums.FeeStatusDeducted},
		},
	}}

	w := serve(AdminDeductServiceFee(svc, logger.Nop()), settlementReq(loadID, "/deduct", ""))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, loadID, svc.gotLoadID)
	require.Equal(t, enums.RoleAdmin, svc.gotActor.Role)

	got := decodeData[deductResultView](t, w)
	require.True(t, got.Success)
	require.Equal(t, 800.0, got.TotalPlatformFee)
	require.True(t, got.Details.Carrier.WalletDeducted)
	require.Equal(t, enums.FeeStatusDeducted, got.Details.Shipper.Status)
}

func TestAdminDeductServiceFeeFailures(t *testing.T) {
	loadID := uuid.New()
	cases := []struct {
		name   string
		stub   *stubSettlement
		status int
		code   string
	}{
		{
			name:   "already deducted",
			stub:   &stubSettlement{deduct: &settlement.DeductResult{Error: "Service fees already deducted"}},
			status: http.StatusBadRequest,
			code:   "BUSINESS_RULE_VIOLATION",
		},
		{
			name:   "missing load",
			stub:   &stubSettlement{deduct: &settlement.DeductResult{Error: "load not found"}},
			status: http.StatusNotFound,
			code:   "NOT_FOUND",
		},
		{
			name:   "storage fault",
			stub:   &stubSettlement{err: pkgerrors.New(pkgerrors.CodeInternal, "tx aborted")},
			status: http.StatusInternalServerError,
			code:   "INTERNAL_ERROR",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(AdminDeductServiceFee(tc.stub, logger.Nop()), settlementReq(loadID, "/deduct", ""))
			require.Equal(t, tc.status, w.Code)
			apiErr := decodeAPIError(t, w)
			require.Equal(t, tc.code, apiErr.Code)
			if tc.code == "BUSINESS_RULE_VIOLATION" {
				require.Contains(t, apiErr.Message, "already deducted")
				details := apiErr.Details.(map[string]any)
				require.Equal(t, false, details["success"])
			}
		})
	}
}

func TestAdminDeductServiceFeeRequiresActor(t *testing.T) {
	req := newRequest(http.MethodPost, "/deduct", "", map[string]string{"loadId": uuid.NewString()})
	w := serve(AdminDeductServiceFee(&stubSettlement{}, logger.Nop()), req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	req = asActor(newRequest(http.MethodPost, "/deduct", "", map[string]string{"loadId": "nope"}), adminActor())
	w = serve(AdminDeductServiceFee(&stubSettlement{}, logger.Nop()), req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRefundServiceFee(t *testing.T) {
	loadID := uuid.New()
	svc := &stubSettlement{refund: &settlement.RefundResult{
		Success:       true,
		ShipperRefund: decimal.NewFromInt(500),
		TotalRefunded: decimal.NewFromInt(500),
		Shipper:       settlement.RefundPartyDetail{Amount: decimal.NewFromInt(500), Refunded: true, Status: enums.FeeStatusRefunded},
	}}

	w := serve(AdminRefundServiceFee(svc, logger.Nop()), settlementReq(loadID, "/refund", `{"reason":"  duplicate charge "}`))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "duplicate charge", svc.gotReason)
	got := decodeData[refundResultView](t, w)
	require.True(t, got.Shipper.Refunded)
	require.Equal(t, 500.0, got.TotalRefunded)

	svc = &stubSettlement{refund: &settlement.RefundResult{Success: true}}
	w = serve(AdminRefundServiceFee(svc, logger.Nop()), settlementReq(loadID, "/refund", ""))
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, svc.gotReason)
}

func TestAdminRefundServiceFeeNothingToRefund(t *testing.T) {
	svc := &stubSettlement{refund: &settlement.RefundResult{Error: "no deducted service fee to refund"}}
	w := serve(AdminRefundServiceFee(svc, logger.Nop()), settlementReq(uuid.New(), "/refund", ""))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "BUSINESS_RULE_VIOLATION", decodeAPIError(t, w).Code)
}

func TestAdminDisputeHandlers(t *testing.T) {
	loadID := uuid.New()
	reason := "damaged cargo"
	svc := &stubSettlement{load: &models.Load{ID: loadID, SettlementStatus: enums.SettlementStatusDispute, DisputeReason: &reason}}

	w := serve(AdminOpenDispute(svc, logger.Nop()), settlementReq(loadID, "/dispute", `{"reason":"damaged cargo"}`))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, reason, svc.gotReason)
	require.Equal(t, enums.SettlementStatusDispute, decodeData[loadView](t, w).SettlementStatus)

	w = serve(AdminOpenDispute(svc, logger.Nop()), settlementReq(loadID, "/dispute", `{"reason":"x","extra":1}`))
	require.Equal(t, http.StatusBadRequest, w.Code)

	svc.load = &models.Load{ID: loadID, SettlementStatus: enums.SettlementStatusPending}
	w = serve(AdminResolveDispute(svc, logger.Nop()), settlementReq(loadID, "/resolve", ""))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, enums.SettlementStatusPending, decodeData[loadView](t, w).SettlementStatus)

	svc.err = pkgerrors.New(pkgerrors.CodeStateConflict, "settlement is not under dispute")
	w = serve(AdminResolveDispute(svc, logger.Nop()), settlementReq(loadID, "/resolve", ""))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAdminLoadJournal(t *testing.T) {
	loadID := uuid.New()
	party := enums.PartyShipper
	accountID := uuid.New()
	svc := &stubSettlement{journal: []models.JournalEntry{{
		ID:        uuid.New(),
		EntryType: enums.JournalEntryServiceFeeDeduction,
		LoadID:    &loadID,
		Party:     &party,
		Amount:    decimal.RequireFromString("500.25"),
		Currency:  "ETB",
		Lines: []models.JournalLine{{
			AccountID:    accountID,
			Direction:    enums.JournalLineDebit,
			Amount:       decimal.RequireFromString("500.25"),
			BalanceAfter: decimal.RequireFromString("499.75"),
		}},
	}}}

	req := asActor(newRequest(http.MethodGet, "/journal", "", map[string]string{"loadId": loadID.String()}), adminActor())
	w := serve(AdminLoadJournal(svc, logger.Nop()), req)
	require.Equal(t, http.StatusOK, w.Code)

	got := decodeData[[]journalEntryView](t, w)
	require.Len(t, got, 1)
	require.Equal(t, 500.25, got[0].Amount)
	require.Equal(t, accountID, got[0].Lines[0].AccountID)
	require.Equal(t, 499.75, got[0].Lines[0].BalanceAfter)
}
