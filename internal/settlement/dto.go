package settlement

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/freightlink-backend/pkg/enums"
)

const (
	errLoadNotFound        = "load not found"
	errAlreadyDeducted     = "Service fees already deducted"
	errNoCorridorWaived    = "No matching corridor - service fees waived"
	errUnderDispute        = "Settlement is under dispute"
	errWalletNotFound      = "wallet not found"
	errInsufficientBalance = "insufficient balance"
	errNothingToRefund     = "no deducted service fee to refund"
	errPlatformShort       = "insufficient platform balance"
	errDeductionFailed     = "Service fee deduction failed"
	errRefundFailed        = "Service fee refund failed"
)

// PartyDetail reports what happened to one party's fee.
type PartyDetail struct {
	Fee            decimal.Decimal
	WalletDeducted bool
	Status         enums.FeeStatus
	Error          string
}

// Details groups the per-party outcomes.
type Details struct {
	Shipper PartyDetail
	Carrier PartyDetail
}

func (d *Details) For(party enums.Party) *PartyDetail {
	if party == enums.PartyCarrier {
		return &d.Carrier
	}
	return &d.Shipper
}

// DeductResult is returned for every business outcome of a deduction.
// Infrastructure failures are returned as errors instead.
type DeductResult struct {
	Success          bool
	ShipperFee       decimal.Decimal
	CarrierFee       decimal.Decimal
	TotalPlatformFee decimal.Decimal
	Details          Details
	Error            string
}

// NotFound reports whether the load did not exist.
func (r *DeductResult) NotFound() bool {
	return r != nil && r.Error == errLoadNotFound
}

// RefundPartyDetail reports what happened to one party's refund.
type RefundPartyDetail struct {
	Amount   decimal.Decimal
	Refunded bool
	Status   enums.FeeStatus
	Error    string
}

// RefundResult mirrors DeductResult for the refund path.
type RefundResult struct {
	Success       bool
	ShipperRefund decimal.Decimal
	CarrierRefund decimal.Decimal
	TotalRefunded decimal.Decimal
	Shipper       RefundPartyDetail
	Carrier       RefundPartyDetail
	Error         string
}

func (r *RefundResult) NotFound() bool {
	return r != nil && r.Error == errLoadNotFound
}

func (r *RefundResult) detail(party enums.Party) *RefundPartyDetail {
	if party == enums.PartyCarrier {
		return &r.Carrier
	}
	return &r.Shipper
}
