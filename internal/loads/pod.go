package loads

import (
	"context"
	"time"

	"github.com/angelmondragon/freightlink-backend/internal/authz"
	"github.com/angelmondragon/freightlink-backend/pkg/db/models"
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/freightlink-backend/pkg/errors"
	"github.com/angelmondragon/freightlink-backend/pkg/visibility"
)

// SubmitPOD records the carrier's proof of delivery and moves the load to DELIVERED.
func (s *service) SubmitPOD(ctx context.Context, input PODInput) (*models.Load, error) {
	if err := authz.Require(input.Actor.Role, authz.CapSubmitPOD); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return s.transition(ctx, input.LoadID, input.Actor, func(load *models.Load, side visibility.LoadSide) (map[string]any, error) {
		if side != visibility.SideCarrier {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the assigned carrier may submit proof of delivery")
		}
		if load.PODSubmitted {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "proof of delivery already submitted")
		}
		if !load.Status.CanTransitionTo(enums.LoadStatusDelivered) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "load is not in transit")
		}
		return map[string]any{
			"pod_submitted":    true,
			"pod_submitted_at": now,
			"status":           enums.LoadStatusDelivered,
		}, nil
	}, podEvent(enums.EventPODSubmitted, input.LoadID, input.Actor, now))
}

// VerifyPOD completes a delivered load and, when enabled, settles its service
// fees. A settlement failure never undoes the verification.
func (s *service) VerifyPOD(ctx context.Context, input PODInput) (*VerifyPODResult, error) {
	if err := authz.Require(input.Actor.Role, authz.CapVerifyPOD); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	load, err := s.transition(ctx, input.LoadID, input.Actor, func(load *models.Load, side visibility.LoadSide) (map[string]any, error) {
		if side != visibility.SideShipper && side != visibility.SideAdmin {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the shipper or an admin may verify proof of delivery")
		}
		if !load.PODSubmitted {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "proof of delivery not submitted")
		}
		if load.PODVerified {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "proof of delivery already verified")
		}
		if !load.Status.CanTransitionTo(enums.LoadStatusCompleted) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "load is not delivered")
		}
		updates := map[string]any{
			"pod_verified":    true,
			"pod_verified_at": now,
			"status":          enums.LoadStatusCompleted,
		}
		if input.Actor.UserPtr() != nil {
			updates["pod_verified_by"] = input.Actor.UserID
		}
		return updates, nil
	}, podEvent(enums.EventPODVerified, input.LoadID, input.Actor, now))
	if err != nil {
		return nil, err
	}

	result := &VerifyPODResult{Load: load}
	if !s.deductOnVerify {
		return result, nil
	}
	deduction, err := s.settlement.DeductServiceFee(ctx, load.ID, input.Actor)
	if err != nil {
		s.logg.Error(s.logg.WithLoadID(ctx, load.ID.String()), "settlement after POD verification failed", err)
		result.SettlementError = "service fee settlement deferred"
		return result, nil
	}
	result.Settlement = deduction
	if refreshed, err := s.find(ctx, s.loads, load.ID); err == nil {
		result.Load = refreshed
	}
	return result, nil
}
