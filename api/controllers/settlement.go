package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/freightlink-backend/api/responses"
	"github.com/angelmondragon/freightlink-backend/api/validators"
	"github.com/angelmondragon/freightlink-backend/internal/authz"
	"github.com/angelmondragon/freightlink-backend/internal/settlement"
	"github.com/angelmondragon/freightlink-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/freightlink-backend/pkg/errors"
	"github.com/angelmondragon/freightlink-backend/pkg/logger"
)

type settlementService interface {
	DeductServiceFee(ctx context.Context, loadID uuid.UUID, actor authz.Actor) (*settlement.DeductResult, error)
	RefundServiceFee(ctx context.Context, loadID uuid.UUID, actor authz.Actor, reason string) (*settlement.RefundResult, error)
	OpenDispute(ctx context.Context, loadID uuid.UUID, actor authz.Actor, reason string) (*models.Load, error)
	ResolveDispute(ctx context.Context, loadID uuid.UUID, actor authz.Actor) (*models.Load, error)
	JournalForLoad(ctx context.Context, loadID uuid.UUID) ([]models.JournalEntry, error)
}

type reasonRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type settlementTarget struct {
	actor  authz.Actor
	loadID uuid.UUID
}

func settlementRequest(r *http.Request) (settlementTarget, error) {
	actor, err := actorFromRequest(r)
	if err != nil {
		return settlementTarget{}, err
	}
	loadID, err := validators.URLParamUUID(r, "loadId")
	if err != nil {
		return settlementTarget{}, err
	}
	return settlementTarget{actor: actor, loadID: loadID}, nil
}

// AdminDeductServiceFee manually triggers settlement for a load.
func AdminDeductServiceFee(svc settlementService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, errServiceUnavailable))
			return
		}
		target, err := settlementRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.DeductServiceFee(r.Context(), target.loadID, target.actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view := presentDeduct(result)
		if !result.Success {
			responses.WriteError(r.Context(), logg, w, resultFailure(result.NotFound(), result.Error, view))
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func AdminRefundServiceFee(svc settlementService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, errServiceUnavailable))
			return
		}
		target, err := settlementRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req reasonRequest
		if err := validators.DecodeOptionalJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.RefundServiceFee(r.Context(), target.loadID, target.actor, strings.TrimSpace(req.Reason))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view := presentRefund(result)
		if !result.Success {
			responses.WriteError(r.Context(), logg, w, resultFailure(result.NotFound(), result.Error, view))
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func AdminOpenDispute(svc settlementService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, errServiceUnavailable))
			return
		}
		target, err := settlementRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req reasonRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		load, err := svc.OpenDispute(r.Context(), target.loadID, target.actor, strings.TrimSpace(req.Reason))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, presentLoad(load))
	}
}

func AdminResolveDispute(svc settlementService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, errServiceUnavailable))
			return
		}
		target, err := settlementRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		load, err := svc.ResolveDispute(r.Context(), target.loadID, target.actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, presentLoad(load))
	}
}

// AdminLoadJournal lists the journal entries recorded against a load.
func AdminLoadJournal(svc settlementService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, errServiceUnavailable))
			return
		}
		loadID, err := validators.URLParamUUID(r, "loadId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entries, err := svc.JournalForLoad(r.Context(), loadID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, presentJournal(entries))
	}
}
