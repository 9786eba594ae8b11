package controllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/freightlink-backend/internal/corridors"
	"github.com/angelmondragon/freightlink-backend/internal/fees"
	"github.com/angelmondragon/freightlink-backend/internal/settlement"
	"github.com/angelmondragon/freightlink-backend/internal/wallets"
	"github.com/angelmondragon/freightlink-backend/pkg/db/models"
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
	"github.com/angelmondragon/freightlink-backend/pkg/money"
)

type breakdownView struct {
	BaseFee  float64 `json:"baseFee"`
	Discount float64 `json:"discount"`
	FinalFee float64 `json:"finalFee"`
}

func presentBreakdown(b fees.Breakdown) breakdownView {
	return breakdownView{
		BaseFee:  money.Float(b.BaseFee),
		Discount: money.Float(b.Discount),
		FinalFee: money.Float(b.FinalFee),
	}
}

type dualBreakdownView struct {
	Shipper          breakdownView `json:"shipper"`
	Carrier          breakdownView `json:"carrier"`
	TotalPlatformFee float64       `json:"totalPlatformFee"`
}

func presentDual(b fees.DualBreakdown) dualBreakdownView {
	return dualBreakdownView{
		Shipper:          presentBreakdown(b.Shipper),
		Carrier:          presentBreakdown(b.Carrier),
		TotalPlatformFee: money.Float(b.TotalPlatformFee),
	}
}

func floatPtr(value *decimal.Decimal) *float64 {
	if value == nil {
		return nil
	}
	f := money.Float(*value)
	return &f
}

type partyPricingView struct {
	PricePerKm       *float64 `json:"pricePerKm,omitempty"`
	PromoFlag        *bool    `json:"promoFlag,omitempty"`
	PromoDiscountPct *float64 `json:"promoDiscountPct,omitempty"`
}

type corridorView struct {
	ID                uuid.UUID               `json:"id"`
	Name              string                  `json:"name"`
	OriginRegion      enums.Region            `json:"originRegion"`
	DestinationRegion enums.Region            `json:"destinationRegion"`
	Direction         enums.CorridorDirection `json:"direction"`
	DistanceKm        float64                 `json:"distanceKm"`
	PricePerKm        float64                 `json:"pricePerKm"`
	PromoFlag         bool                    `json:"promoFlag"`
	PromoDiscountPct  *float64                `json:"promoDiscountPct,omitempty"`
	Shipper           partyPricingView        `json:"shipper"`
	Carrier           partyPricingView        `json:"carrier"`
	IsActive          bool                    `json:"isActive"`
	CreatedAt         time.Time               `json:"createdAt"`
	UpdatedAt         time.Time               `json:"updatedAt"`
}

func presentCorridor(c *models.Corridor) corridorView {
	return corridorView{
		ID:                c.ID,
		Name:              c.Name,
		OriginRegion:      c.OriginRegion,
		DestinationRegion: c.DestinationRegion,
		Direction:         c.Direction,
		DistanceKm:        money.Float(c.DistanceKm),
		PricePerKm:        money.Float(c.PricePerKm),
		PromoFlag:         c.PromoFlag,
		PromoDiscountPct:  floatPtr(c.PromoDiscountPct),
		Shipper: partyPricingView{
			PricePerKm:       floatPtr(c.ShipperPricePerKm),
			PromoFlag:        c.ShipperPromoFlag,
			PromoDiscountPct: floatPtr(c.ShipperPromoDiscountPct),
		},
		Carrier: partyPricingView{
			PricePerKm:       floatPtr(c.CarrierPricePerKm),
			PromoFlag:        c.CarrierPromoFlag,
			PromoDiscountPct: floatPtr(c.CarrierPromoDiscountPct),
		},
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type corridorPageView struct {
	Items      []corridorView `json:"items"`
	NextCursor string         `json:"nextCursor,omitempty"`
}

type loadView struct {
	ID                    uuid.UUID              `json:"id"`
	Status                enums.LoadStatus       `json:"status"`
	ShipperOrganizationID uuid.UUID              `json:"shipperOrganizationId"`
	CarrierOrganizationID *uuid.UUID             `json:"carrierOrganizationId,omitempty"`
	AssignedTruckID       *uuid.UUID             `json:"assignedTruckId,omitempty"`
	PickupCity            string                 `json:"pickupCity"`
	PickupRegion          *string                `json:"pickupRegion,omitempty"`
	DeliveryCity          string                 `json:"deliveryCity"`
	DeliveryRegion        *string                `json:"deliveryRegion,omitempty"`
	CorridorID            *uuid.UUID             `json:"corridorId,omitempty"`
	EstimatedTripKm       *float64               `json:"estimatedTripKm,omitempty"`
	ActualTripKm          *float64               `json:"actualTripKm,omitempty"`
	ShipperServiceFee     float64                `json:"shipperServiceFee"`
	CarrierServiceFee     float64                `json:"carrierServiceFee"`
	ServiceFeeEtb         float64                `json:"serviceFeeEtb"`
	ShipperFeeStatus      enums.FeeStatus        `json:"shipperFeeStatus"`
	CarrierFeeStatus      enums.FeeStatus        `json:"carrierFeeStatus"`
	SettlementStatus      enums.SettlementStatus `json:"settlementStatus"`
	SettledAt             *time.Time             `json:"settledAt,omitempty"`
	DisputeReason         *string                `json:"disputeReason,omitempty"`
	PODSubmitted          bool                   `json:"podSubmitted"`
	PODSubmittedAt        *time.Time             `json:"podSubmittedAt,omitempty"`
	PODVerified           bool                   `json:"podVerified"`
	PODVerifiedAt         *time.Time             `json:"podVerifiedAt,omitempty"`
	UpdatedAt             time.Time              `json:"updatedAt"`
}

func presentLoad(l *models.Load) *loadView {
	if l == nil {
		return nil
	}
	return &loadView{
		ID:                    l.ID,
		Status:                l.Status,
		ShipperOrganizationID: l.ShipperOrganizationID,
		CarrierOrganizationID: l.CarrierOrganizationID,
		AssignedTruckID:       l.AssignedTruckID,
		PickupCity:            l.PickupCity,
		PickupRegion:          l.PickupRegion,
		DeliveryCity:          l.DeliveryCity,
		DeliveryRegion:        l.DeliveryRegion,
		CorridorID:            l.CorridorID,
		EstimatedTripKm:       floatPtr(l.EstimatedTripKm),
		ActualTripKm:          floatPtr(l.ActualTripKm),
		ShipperServiceFee:     money.Float(l.ShipperServiceFee),
		CarrierServiceFee:     money.Float(l.CarrierServiceFee),
		ServiceFeeEtb:         money.Float(l.ServiceFeeEtb),
		ShipperFeeStatus:      l.ShipperFeeStatus,
		CarrierFeeStatus:      l.CarrierFeeStatus,
		SettlementStatus:      l.SettlementStatus,
		SettledAt:             l.SettledAt,
		DisputeReason:         l.DisputeReason,
		PODSubmitted:          l.PODSubmitted,
		PODSubmittedAt:        l.PODSubmittedAt,
		PODVerified:           l.PODVerified,
		PODVerifiedAt:         l.PODVerifiedAt,
		UpdatedAt:             l.UpdatedAt,
	}
}

type assignCorridorView struct {
	Success    bool       `json:"success"`
	CorridorID *uuid.UUID `json:"corridorId,omitempty"`
	DistanceKm float64    `json:"distanceKm"`
	ShipperFee float64    `json:"shipperFee"`
	CarrierFee float64    `json:"carrierFee"`
	TotalFee   float64    `json:"totalFee"`
	Error      string     `json:"error,omitempty"`
}

func presentAssignCorridor(r *corridors.AssignResult) *assignCorridorView {
	if r == nil {
		return nil
	}
	return &assignCorridorView{
		Success:    r.Success,
		CorridorID: r.CorridorID,
		DistanceKm: money.Float(r.DistanceKm),
		ShipperFee: money.Float(r.ShipperFee),
		CarrierFee: money.Float(r.CarrierFee),
		TotalFee:   money.Float(r.TotalFee),
		Error:      r.Error,
	}
}

type tripCheckView struct {
	Valid          bool     `json:"valid"`
	Errors         []string `json:"errors"`
	ShipperFee     float64  `json:"shipperFee"`
	CarrierFee     float64  `json:"carrierFee"`
	ShipperBalance float64  `json:"shipperBalance"`
	CarrierBalance float64  `json:"carrierBalance"`
}

func presentTripCheck(c *wallets.TripCheck) *tripCheckView {
	if c == nil {
		return nil
	}
	errs := c.Errors
	if errs == nil {
		errs = []string{}
	}
	return &tripCheckView{
		Valid:          c.Valid,
		Errors:         errs,
		ShipperFee:     money.Float(c.ShipperFee),
		CarrierFee:     money.Float(c.CarrierFee),
		ShipperBalance: money.Float(c.ShipperBalance),
		CarrierBalance: money.Float(c.CarrierBalance),
	}
}

type partyDeductionView struct {
	Fee            float64         `json:"fee"`
	WalletDeducted bool            `json:"walletDeducted"`
	Status         enums.FeeStatus `json:"status"`
	Error          string          `json:"error,omitempty"`
}

type deductResultView struct {
	Success          bool    `json:"success"`
	ShipperFee       float64 `json:"shipperFee"`
	CarrierFee       float64 `json:"carrierFee"`
	TotalPlatformFee float64 `json:"totalPlatformFee"`
	Details          struct {
		Shipper partyDeductionView `json:"shipper"`
		Carrier partyDeductionView `json:"carrier"`
	} `json:"details"`
	Error string `json:"error,omitempty"`
}

func presentPartyDeduction(d settlement.PartyDetail) partyDeductionView {
	return partyDeductionView{
		Fee:            money.Float(d.Fee),
		WalletDeducted: d.WalletDeducted,
		Status:         d.Status,
		Error:          d.Error,
	}
}

func presentDeduct(r *settlement.DeductResult) *deductResultView {
	if r == nil {
		return nil
	}
	view := &deductResultView{
		Success:          r.Success,
		ShipperFee:       money.Float(r.ShipperFee),
		CarrierFee:       money.Float(r.CarrierFee),
		TotalPlatformFee: money.Float(r.TotalPlatformFee),
		Error:            r.Error,
	}
	view.Details.Shipper = presentPartyDeduction(r.Details.Shipper)
	view.Details.Carrier = presentPartyDeduction(r.Details.Carrier)
	return view
}

type partyRefundView struct {
	Amount   float64         `json:"amount"`
	Refunded bool            `json:"refunded"`
	Status   enums.FeeStatus `json:"status"`
	Error    string          `json:"error,omitempty"`
}

type refundResultView struct {
	Success       bool            `json:"success"`
	ShipperRefund float64         `json:"shipperRefund"`
	CarrierRefund float64         `json:"carrierRefund"`
	TotalRefunded float64         `json:"totalRefunded"`
	Shipper       partyRefundView `json:"shipper"`
	Carrier       partyRefundView `json:"carrier"`
	Error         string          `json:"error,omitempty"`
}

func presentPartyRefund(d settlement.RefundPartyDetail) partyRefundView {
	return partyRefundView{
		Amount:   money.Float(d.Amount),
		Refunded: d.Refunded,
		Status:   d.Status,
		Error:    d.Error,
	}
}

func presentRefund(r *settlement.RefundResult) *refundResultView {
	if r == nil {
		return nil
	}
	return &refundResultView{
		Success:       r.Success,
		ShipperRefund: money.Float(r.ShipperRefund),
		CarrierRefund: money.Float(r.CarrierRefund),
		TotalRefunded: money.Float(r.TotalRefunded),
		Shipper:       presentPartyRefund(r.Shipper),
		Carrier:       presentPartyRefund(r.Carrier),
		Error:         r.Error,
	}
}

type journalLineView struct {
	AccountID    uuid.UUID                  `json:"accountId"`
	Direction    enums.JournalLineDirection `json:"direction"`
	Amount       float64                    `json:"amount"`
	BalanceAfter float64                    `json:"balanceAfter"`
}

type journalEntryView struct {
	ID          uuid.UUID              `json:"id"`
	EntryType   enums.JournalEntryType `json:"entryType"`
	Party       *enums.Party           `json:"party,omitempty"`
	Amount      float64                `json:"amount"`
	Currency    string                 `json:"currency"`
	Description string                 `json:"description"`
	Lines       []journalLineView      `json:"lines"`
	CreatedAt   time.Time              `json:"createdAt"`
}

func presentJournal(entries []models.JournalEntry) []journalEntryView {
	out := make([]journalEntryView, 0, len(entries))
	for _, entry := range entries {
		lines := make([]journalLineView, 0, len(entry.Lines))
		for _, line := range entry.Lines {
			lines = append(lines, journalLineView{
				AccountID:    line.AccountID,
				Direction:    line.Direction,
				Amount:       money.Float(line.Amount),
				BalanceAfter: money.Float(line.BalanceAfter),
			})
		}
		out = append(out, journalEntryView{
			ID:          entry.ID,
			EntryType:   entry.EntryType,
			Party:       entry.Party,
			Amount:      money.Float(entry.Amount),
			Currency:    entry.Currency,
			Description: entry.Description,
			Lines:       lines,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return out
}

type accountView struct {
	ID          uuid.UUID         `json:"id"`
	AccountType enums.AccountType `json:"accountType"`
	Balance     float64           `json:"balance"`
	Currency    string            `json:"currency"`
	IsActive    bool              `json:"isActive"`
}

func presentAccounts(accounts []models.FinancialAccount) []accountView {
	out := make([]accountView, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, accountView{
			ID:          a.ID,
			AccountType: a.AccountType,
			Balance:     money.Float(a.Balance),
			Currency:    a.Currency,
			IsActive:    a.IsActive,
		})
	}
	return out
}
