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
	"github.com/angelmondragon/freightlink-backend/internal/journal"
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/freightlink-backend/pkg/errors"
	"github.com/angelmondragon/freightlink-backend/pkg/outbox"
	"github.com/angelmondragon/freightlink-backend/pkg/outbox/payloads"
)

// RefundServiceFee reverses every DEDUCTED party fee of the load. Each party
// is refunded at most once, in its own transaction.
func (s *service) RefundServiceFee(ctx context.Context, loadID uuid.UUID, actor authz.Actor, reason string) (*RefundResult, error) {
	if loadID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "load id required")
	}
	started := time.Now()
	defer func() { s.metrics.ObserveDuration("refund", time.Since(started)) }()
	ctx = s.logg.WithLoadID(ctx, loadID.String())
	reason = strings.TrimSpace(reason)

	load, err := s.loads.FindByID(ctx, loadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &RefundResult{Error: errLoadNotFound}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lookup failed")
	}

	result := &RefundResult{
		ShipperRefund: decimal.Zero,
		CarrierRefund: decimal.Zero,
		TotalRefunded: decimal.Zero,
		Shipper:       RefundPartyDetail{Amount: decimal.Zero, Status: load.ShipperFeeStatus},
		Carrier:       RefundPartyDetail{Amount: decimal.Zero, Status: load.CarrierFeeStatus},
	}
	candidates := 0
	var failures []string
	for _, party := range enums.Parties {
		if load.FeeStatusFor(party) != enums.FeeStatusDeducted {
			continue
		}
		candidates++
		detail, err := s.refundParty(ctx, loadID, party, actor, reason)
		if err != nil {
			s.logg.Error(ctx, fmt.Sprintf("%s service fee refund failed", party), err)
			return nil, err
		}
		*result.detail(party) = detail
		if detail.Refunded {
			result.Success = true
			result.TotalRefunded = result.TotalRefunded.Add(detail.Amount)
			if party == enums.PartyCarrier {
				result.CarrierRefund = detail.Amount
			} else {
				result.ShipperRefund = detail.Amount
			}
		}
		if detail.Error != "" {
			failures = append(failures, fmt.Sprintf("%s: %s", party, detail.Error))
		}
	}
	switch {
	case candidates == 0:
		result.Error = errNothingToRefund
	case !result.Success && len(failures) > 0:
		result.Error = fmt.Sprintf("%s (%s)", errRefundFailed, strings.Join(failures, "; "))
	case !result.Success:
		result.Error = errNothingToRefund
	}
	return result, nil
}

func (s *service) refundParty(ctx context.Context, loadID uuid.UUID, party enums.Party, actor authz.Actor, reason string) (RefundPartyDetail, error) {
	var detail RefundPartyDetail
	err := s.tx.WithRetryableTx(ctx, txAttempts, func(tx *gorm.DB) error {
		detail = RefundPartyDetail{Amount: decimal.Zero}

		loads := s.loads.WithTx(tx)
		load, err := loads.FindByIDForUpdate(ctx, loadID)
		if err != nil {
			return err
		}
		detail.Status = load.FeeStatusFor(party)
		if detail.Status != enums.FeeStatusDeducted {
			return nil
		}
		amount := partyFee(load, party)
		detail.Amount = amount

		orgID, ok := payerOrganization(load, party)
		if !ok {
			detail.Error = errWalletNotFound
			return nil
		}
		walletRepo := s.wallets.WithTx(tx)
		wallet, err := walletRepo.FindByOrgAndTypeForUpdate(ctx, orgID, party.WalletType())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				detail.Error = errWalletNotFound
				return nil
			}
			return err
		}
		platform, err := walletRepo.FindPlatformForUpdate(ctx)
		if err != nil {
			return fmt.Errorf("platform revenue account: %w", err)
		}
		if platform.Balance.LessThan(amount) {
			detail.Error = errPlatformShort
			return nil
		}

		payerAfter := wallet.Balance.Add(amount)
		platformAfter := platform.Balance.Sub(amount)
		if err := walletRepo.UpdateBalance(ctx, wallet.ID, payerAfter); err != nil {
			return err
		}
		if err := walletRepo.UpdateBalance(ctx, platform.ID, platformAfter); err != nil {
			return err
		}

		description := fmt.Sprintf("%s service fee refund for %s to %s", partyTitle(party), load.PickupCity, load.DeliveryCity)
		metadata := map[string]any{"refund_of": string(enums.JournalEntryServiceFeeDeduction)}
		if reason != "" {
			metadata["reason"] = reason
		}
		entryLoadID := load.ID
		entryParty := party
		entry, err := s.journal.Record(ctx, tx, journal.RecordInput{
			EntryType:       enums.JournalEntryServiceFeeRefund,
			LoadID:          &entryLoadID,
			Party:           &entryParty,
			Amount:          amount,
			Currency:        s.currency,
			Description:     description,
			Metadata:        metadata,
			CreatedByUserID: actor.UserPtr(),
			Lines: []journal.LineInput{
				{AccountID: platform.ID, Direction: enums.JournalLineDebit, Amount: amount, BalanceAfter: platformAfter},
				{AccountID: wallet.ID, Direction: enums.JournalLineCredit, Amount: amount, BalanceAfter: payerAfter},
			},
		})
		if err != nil {
			return err
		}

		now := s.now()
		applyPartyStatus(load, party, enums.FeeStatusRefunded, amount)
		updates := partyUpdates(party, enums.FeeStatusRefunded, amount, now)
		updates["service_fee_etb"] = deductedTotal(load)
		if err := loads.Update(ctx, load.ID, updates); err != nil {
			return err
		}

		detail.Status = enums.FeeStatusRefunded
		detail.Refunded = true
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventServiceFeeRefunded,
			AggregateType: enums.AggregateLoad,
			AggregateID:   load.ID,
			Actor:         actor.Ref(),
			Data: payloads.ServiceFeeRefundedEvent{
				LoadID:         load.ID,
				Party:          party,
				OrganizationID: orgID,
				Amount:         amount,
				Currency:       s.currency,
				JournalEntryID: entry.ID,
				Reason:         reason,
			},
		})
	})
	if err != nil {
		return RefundPartyDetail{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "refund service fee")
	}
	switch {
	case detail.Refunded:
		s.metrics.IncOutcome(party.String(), string(enums.FeeStatusRefunded))
		s.metrics.AddAmount(party.String(), string(enums.JournalEntryServiceFeeRefund), detail.Amount)
	case detail.Error != "":
		s.metrics.IncOutcome(party.String(), "refund_failed")
		s.logg.Warn(s.logg.WithField(ctx, "party", party.String()), "service fee not refunded: "+detail.Error)
	}
	return detail, nil
}
