package settlement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/freightlink-backend/internal/authz"
	"github.com/angelmondragon/freightlink-backend/internal/corridors"
	"github.com/angelmondragon/freightlink-backend/internal/fees"
	"github.com/angelmondragon/freightlink-backend/internal/journal"
	"github.com/angelmondragon/freightlink-backend/internal/repo"
	"github.com/angelmondragon/freightlink-backend/internal/wallets"
	"github.com/angelmondragon/freightlink-backend/pkg/db/models"
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/freightlink-backend/pkg/errors"
	"github.com/angelmondragon/freightlink-backend/pkg/logger"
	"github.com/angelmondragon/freightlink-backend/pkg/metrics"
	"github.com/angelmondragon/freightlink-backend/pkg/outbox"
	"github.com/angelmondragon/freightlink-backend/pkg/outbox/payloads"
)

const txAttempts = 3

type txRunner interface {
	WithRetryableTx(ctx context.Context, attempts int, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service settles service fees for loads.
type Service interface {
	DeductServiceFee(ctx context.Context, loadID uuid.UUID, actor authz.Actor) (*DeductResult, error)
	RefundServiceFee(ctx context.Context, loadID uuid.UUID, actor authz.Actor, reason string) (*RefundResult, error)
	OpenDispute(ctx context.Context, loadID uuid.UUID, actor authz.Actor, reason string) (*models.Load, error)
	ResolveDispute(ctx context.Context, loadID uuid.UUID, actor authz.Actor) (*models.Load, error)
	JournalForLoad(ctx context.Context, loadID uuid.UUID) ([]models.JournalEntry, error)
}

// ServiceParams groups the orchestrator's collaborators.
type ServiceParams struct {
	Loads     repo.LoadRepository
	Wallets   wallets.Repository
	Corridors corridors.Resolver
	Journal   journal.Service
	Tx        txRunner
	Outbox    outboxPublisher
	Metrics   *metrics.SettlementMetrics
	Logger    *logger.Logger
	Currency  string
	Clock     func() time.Time
}

type service struct {
	loads     repo.LoadRepository
	wallets   wallets.Repository
	corridors corridors.Resolver
	journal   journal.Service
	tx        txRunner
	outbox    outboxPublisher
	metrics   *metrics.SettlementMetrics
	logg      *logger.Logger
	currency  string
	now       func() time.Time
}

// NewService wires the settlement orchestrator. Metrics and Clock are optional.
func NewService(params ServiceParams) (Service, error) {
	if params.Loads == nil {
		return nil, fmt.Errorf("load repository required")
	}
	if params.Wallets == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if params.Corridors == nil {
		return nil, fmt.Errorf("corridor resolver required")
	}
	if params.Journal == nil {
		return nil, fmt.Errorf("journal service required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	currency := strings.ToUpper(strings.TrimSpace(params.Currency))
	if currency == "" {
		currency = "ETB"
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		loads:     params.Loads,
		wallets:   params.Wallets,
		corridors: params.Corridors,
		journal:   params.Journal,
		tx:        params.Tx,
		outbox:    params.Outbox,
		metrics:   params.Metrics,
		logg:      params.Logger,
		currency:  currency,
		now:       func() time.Time { return clock().UTC() },
	}, nil
}

// DeductServiceFee charges both parties of a load. Each party is settled in
// its own transaction so one party's shortfall never blocks the other.
func (s *service) DeductServiceFee(ctx context.Context, loadID uuid.UUID, actor authz.Actor) (*DeductResult, error) {
	if loadID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "load id required")
	}
	started := time.Now()
	defer func() { s.metrics.ObserveDuration("deduct", time.Since(started)) }()
	ctx = s.logg.WithLoadID(ctx, loadID.String())

	load, err := s.loads.FindByID(ctx, loadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &DeductResult{Error: errLoadNotFound}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lookup failed")
	}
	if load.FeesSettled() {
		return &DeductResult{Error: errAlreadyDeducted}, nil
	}
	if load.SettlementStatus == enums.SettlementStatusDispute {
		return &DeductResult{Error: errUnderDispute}, nil
	}

	corridor, err := s.corridors.ResolveForLoad(ctx, load)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "corridor lookup failed")
	}
	if corridor == nil {
		return s.waiveAll(ctx, loadID, actor)
	}

	result := &DeductResult{}
	var failures []string
	settled := 0
	for _, party := range enums.Parties {
		detail := result.Details.For(party)
		outcome, err := s.deductParty(ctx, partyCharge{
			loadID: loadID,
			party:  party,
			actor:  actor,
		})
		if err != nil {
			s.logg.Error(ctx, fmt.Sprintf("%s service fee deduction failed", party), err)
			return nil, err
		}
		*detail = outcome.detail
		if outcome.settledNow {
			result.Success = true
		}
		if detail.Status != enums.FeeStatusPending {
			settled++
		}
		if detail.Error != "" {
			failures = append(failures, fmt.Sprintf("%s: %s", party, detail.Error))
		}
	}
	result.ShipperFee = result.Details.Shipper.Fee
	result.CarrierFee = result.Details.Carrier.Fee
	result.TotalPlatformFee = result.ShipperFee.Add(result.CarrierFee)

	switch {
	case result.Success:
	case len(failures) == 0 && settled == len(enums.Parties):
		// another caller settled every party between the first read and the locks
		result.Error = errAlreadyDeducted
	case result.Details.Shipper.Error == errUnderDispute || result.Details.Carrier.Error == errUnderDispute:
		result.Error = errUnderDispute
	case len(failures) > 0:
		result.Error = fmt.Sprintf("%s (%s)", errDeductionFailed, strings.Join(failures, "; "))
	default:
		result.Error = errDeductionFailed
	}
	return result, nil
}

type partyCharge struct {
	loadID uuid.UUID
	party  enums.Party
	actor  authz.Actor
}

type partyOutcome struct {
	detail     PartyDetail
	settledNow bool
}

func (s *service) deductParty(ctx context.Context, charge partyCharge) (partyOutcome, error) {
	var outcome partyOutcome
	err := s.tx.WithRetryableTx(ctx, txAttempts, func(tx *gorm.DB) error {
		outcome = partyOutcome{detail: PartyDetail{Fee: decimal.Zero, Status: enums.FeeStatusPending}}

		loads := s.loads.WithTx(tx)
		load, err := loads.FindByIDForUpdate(ctx, charge.loadID)
		if err != nil {
			return err
		}
		if status := load.FeeStatusFor(charge.party); status != enums.FeeStatusPending {
			outcome.detail.Fee = partyFee(load, charge.party)
			outcome.detail.Status = status
			outcome.detail.WalletDeducted = status == enums.FeeStatusDeducted
			return nil
		}
		if load.SettlementStatus == enums.SettlementStatusDispute {
			outcome.detail.Error = errUnderDispute
			return nil
		}

		corridor, err := s.corridors.ResolveForLoadTx(ctx, tx, load)
		if err != nil {
			return fmt.Errorf("corridor lookup: %w", err)
		}
		fee := decimal.Zero
		if corridor != nil {
			fee = fees.ForLoad(load, corridor).PartyFee(charge.party)
		}
		outcome.detail.Fee = fee
		now := s.now()

		if !fee.IsPositive() {
			applyPartyStatus(load, charge.party, enums.FeeStatusWaived, decimal.Zero)
			updates := partyUpdates(charge.party, enums.FeeStatusWaived, decimal.Zero, now)
			s.settleIfComplete(load, updates, now)
			if err := loads.Update(ctx, load.ID, updates); err != nil {
				return err
			}
			outcome.detail.Status = enums.FeeStatusWaived
			outcome.settledNow = true
			return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventServiceFeesWaived,
				AggregateType: enums.AggregateLoad,
				AggregateID:   load.ID,
				Actor:         charge.actor.Ref(),
				Data: payloads.ServiceFeesWaivedEvent{
					LoadID: load.ID,
					Party:  charge.party,
					Reason: waiveReason(corridor),
				},
			})
		}

		orgID, ok := payerOrganization(load, charge.party)
		if !ok {
			outcome.detail.Error = errWalletNotFound
			return nil
		}
		walletRepo := s.wallets.WithTx(tx)
		wallet, err := walletRepo.FindByOrgAndTypeForUpdate(ctx, orgID, charge.party.WalletType())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				outcome.detail.Error = errWalletNotFound
				return nil
			}
			return err
		}
		if wallet.Balance.LessThan(fee) {
			outcome.detail.Error = errInsufficientBalance
			return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventInsufficientWalletFund,
				AggregateType: enums.AggregateLoad,
				AggregateID:   load.ID,
				Actor:         charge.actor.Ref(),
				Data: payloads.InsufficientFundsEvent{
					LoadID:         load.ID,
					Party:          charge.party,
					OrganizationID: orgID,
					Required:       fee,
					Available:      wallet.Balance,
				},
			})
		}
		platform, err := walletRepo.FindPlatformForUpdate(ctx)
		if err != nil {
			return fmt.Errorf("platform revenue account: %w", err)
		}

		payerAfter := wallet.Balance.Sub(fee)
		platformAfter := platform.Balance.Add(fee)
		if err := walletRepo.UpdateBalance(ctx, wallet.ID, payerAfter); err != nil {
			return err
		}
		if err := walletRepo.UpdateBalance(ctx, platform.ID, platformAfter); err != nil {
			return err
		}

		loadID := load.ID
		party := charge.party
		entry, err := s.journal.Record(ctx, tx, journal.RecordInput{
			EntryType:       enums.JournalEntryServiceFeeDeduction,
			LoadID:          &loadID,
			Party:           &party,
			Amount:          fee,
			Currency:        s.currency,
			Description:     fmt.Sprintf("%s service fee for %s to %s", partyTitle(charge.party), load.PickupCity, load.DeliveryCity),
			Metadata:        chargeMetadata(load, corridor),
			CreatedByUserID: charge.actor.UserPtr(),
			Lines: []journal.LineInput{
				{AccountID: wallet.ID, Direction: enums.JournalLineDebit, Amount: fee, BalanceAfter: payerAfter},
				{AccountID: platform.ID, Direction: enums.JournalLineCredit, Amount: fee, BalanceAfter: platformAfter},
			},
		})
		if err != nil {
			return err
		}

		applyPartyStatus(load, charge.party, enums.FeeStatusDeducted, fee)
		updates := partyUpdates(charge.party, enums.FeeStatusDeducted, fee, now)
		s.settleIfComplete(load, updates, now)
		if err := loads.Update(ctx, load.ID, updates); err != nil {
			return err
		}

		outcome.detail.Status = enums.FeeStatusDeducted
		outcome.detail.WalletDeducted = true
		outcome.settledNow = true
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventServiceFeeDeducted,
			AggregateType: enums.AggregateLoad,
			AggregateID:   load.ID,
			Actor:         charge.actor.Ref(),
			Data: payloads.ServiceFeeDeductedEvent{
				LoadID:         load.ID,
				Party:          charge.party,
				OrganizationID: orgID,
				Amount:         fee,
				Currency:       s.currency,
				JournalEntryID: entry.ID,
				BalanceAfter:   payerAfter,
			},
		})
	})
	if err != nil {
		return partyOutcome{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deduct service fee")
	}
	s.recordDeduction(ctx, charge, outcome)
	return outcome, nil
}

func (s *service) recordDeduction(ctx context.Context, charge partyCharge, outcome partyOutcome) {
	party := charge.party.String()
	detail := outcome.detail
	switch {
	case detail.Error == errInsufficientBalance:
		s.metrics.IncOutcome(party, "insufficient_funds")
	case detail.Error == errWalletNotFound:
		s.metrics.IncOutcome(party, "wallet_not_found")
	case !outcome.settledNow:
		return
	case detail.WalletDeducted:
		s.metrics.IncOutcome(party, string(enums.FeeStatusDeducted))
		s.metrics.AddAmount(party, string(enums.JournalEntryServiceFeeDeduction), detail.Fee)
	default:
		s.metrics.IncOutcome(party, string(detail.Status))
	}
	if detail.Error != "" {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"party": party,
			"fee":   detail.Fee.String(),
		})
		s.logg.Warn(logCtx, "service fee not deducted: "+detail.Error)
	}
}

func waiveReason(corridor *models.Corridor) string {
	if corridor == nil {
		return "no matching corridor"
	}
	return "zero fee"
}

// waiveAll settles a load that matches no corridor: both pending fees become
// WAIVED and no wallet is touched.
func (s *service) waiveAll(ctx context.Context, loadID uuid.UUID, actor authz.Actor) (*DeductResult, error) {
	var result *DeductResult
	err := s.tx.WithRetryableTx(ctx, txAttempts, func(tx *gorm.DB) error {
		loads := s.loads.WithTx(tx)
		load, err := loads.FindByIDForUpdate(ctx, loadID)
		if err != nil {
			return err
		}
		if load.FeesSettled() {
			result = &DeductResult{Error: errAlreadyDeducted}
			return nil
		}
		now := s.now()
		updates := map[string]any{}
		for _, party := range enums.Parties {
			if load.FeeStatusFor(party) != enums.FeeStatusPending {
				continue
			}
			applyPartyStatus(load, party, enums.FeeStatusWaived, decimal.Zero)
			for k, v := range partyUpdates(party, enums.FeeStatusWaived, decimal.Zero, now) {
				updates[k] = v
			}
		}
		s.settleIfComplete(load, updates, now)
		if err := loads.Update(ctx, load.ID, updates); err != nil {
			return err
		}
		result = &DeductResult{
			Success:          true,
			ShipperFee:       decimal.Zero,
			CarrierFee:       decimal.Zero,
			TotalPlatformFee: decimal.Zero,
			Details: Details{
				Shipper: PartyDetail{Fee: decimal.Zero, Status: load.ShipperFeeStatus},
				Carrier: PartyDetail{Fee: decimal.Zero, Status: load.CarrierFeeStatus},
			},
			Error: errNoCorridorWaived,
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventServiceFeesWaived,
			AggregateType: enums.AggregateLoad,
			AggregateID:   load.ID,
			Actor:         actor.Ref(),
			Data: payloads.ServiceFeesWaivedEvent{
				LoadID: load.ID,
				Reason: "no matching corridor",
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "waive service fees")
	}
	if result.Success {
		for _, party := range enums.Parties {
			s.metrics.IncOutcome(party.String(), string(enums.FeeStatusWaived))
		}
		s.logg.Info(ctx, "service fees waived, no matching corridor")
	}
	return result, nil
}

// settleIfComplete marks the load PAID once neither party is pending. A load
// under dispute keeps its settlement status.
func (s *service) settleIfComplete(load *models.Load, updates map[string]any, now time.Time) {
	updates["service_fee_etb"] = deductedTotal(load)
	if !load.FeesSettled() || load.SettlementStatus == enums.SettlementStatusDispute {
		return
	}
	if load.SettlementStatus != enums.SettlementStatusPaid {
		updates["settlement_status"] = enums.SettlementStatusPaid
		updates["settled_at"] = now
		load.SettlementStatus = enums.SettlementStatusPaid
	}
}

func (s *service) JournalForLoad(ctx context.Context, loadID uuid.UUID) ([]models.JournalEntry, error) {
	if _, err := s.loads.FindByID(ctx, loadID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, errLoadNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lookup failed")
	}
	return s.journal.ListByLoad(ctx, loadID)
}
