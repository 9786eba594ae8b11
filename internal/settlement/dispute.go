package settlement

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/freightlink-backend/internal/authz"
	"github.com/angelmondragon/freightlink-backend/pkg/db/models"
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/freightlink-backend/pkg/errors"
	"github.com/angelmondragon/freightlink-backend/pkg/outbox"
	"github.com/angelmondragon/freightlink-backend/pkg/outbox/payloads"
)

// OpenDispute moves a PENDING or PAID settlement into DISPUTE. Deductions are
// refused while the dispute is open.
func (s *service) OpenDispute(ctx context.Context, loadID uuid.UUID, actor authz.Actor, reason string) (*models.Load, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dispute reason is required")
	}
	return s.transitionSettlement(ctx, loadID, actor, func(load *models.Load) (enums.SettlementStatus, map[string]any, error) {
		if load.SettlementStatus == enums.SettlementStatusDispute {
			return "", nil, pkgerrors.New(pkgerrors.CodeStateConflict, "settlement is already under dispute")
		}
		return enums.SettlementStatusDispute, map[string]any{"dispute_reason": reason}, nil
	}, enums.EventSettlementDisputed, reason)
}

// ResolveDispute closes a dispute. The load returns to PAID when both fees are
// settled and to PENDING otherwise so deduction can resume.
func (s *service) ResolveDispute(ctx context.Context, loadID uuid.UUID, actor authz.Actor) (*models.Load, error) {
	return s.transitionSettlement(ctx, loadID, actor, func(load *models.Load) (enums.SettlementStatus, map[string]any, error) {
		if load.SettlementStatus != enums.SettlementStatusDispute {
			return "", nil, pkgerrors.New(pkgerrors.CodeStateConflict, "settlement is not under dispute")
		}
		next := enums.SettlementStatusPending
		updates := map[string]any{"dispute_reason": nil}
		if load.FeesSettled() {
			next = enums.SettlementStatusPaid
			updates["settled_at"] = s.now()
		}
		return next, updates, nil
	}, enums.EventSettlementResolved, "")
}

type settlementTransition func(load *models.Load) (enums.SettlementStatus, map[string]any, error)

func (s *service) transitionSettlement(ctx context.Context, loadID uuid.UUID, actor authz.Actor, next settlementTransition, eventType enums.OutboxEventType, reason string) (*models.Load, error) {
	if loadID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "load id required")
	}
	ctx = s.logg.WithLoadID(ctx, loadID.String())

	var updated *models.Load
	err := s.tx.WithRetryableTx(ctx, txAttempts, func(tx *gorm.DB) error {
		loads := s.loads.WithTx(tx)
		load, err := loads.FindByIDForUpdate(ctx, loadID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, errLoadNotFound)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lookup failed")
		}
		previous := load.SettlementStatus
		status, updates, err := next(load)
		if err != nil {
			return err
		}
		updates["settlement_status"] = status
		if err := loads.Update(ctx, load.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update settlement status")
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateLoad,
			AggregateID:   load.ID,
			Actor:         actor.Ref(),
			Data: payloads.SettlementStatusChangedEvent{
				LoadID:   load.ID,
				Previous: previous,
				Current:  status,
				Reason:   reason,
				At:       s.now(),
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit settlement event")
		}
		updated, err = loads.FindByID(ctx, load.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload load")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithField(ctx, "settlement_status", string(updated.SettlementStatus)), "settlement status changed")
	return updated, nil
}
