package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/freightlink-backend/api/responses"
	"github.com/angelmondragon/freightlink-backend/api/validators"
	"github.com/angelmondragon/freightlink-backend/internal/authz"
	"github.com/angelmondragon/freightlink-backend/internal/loads"
	"github.com/angelmondragon/freightlink-backend/pkg/db/models"
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/freightlink-backend/pkg/errors"
	"github.com/angelmondragon/freightlink-backend/pkg/logger"
)

type loadLifecycle interface {
	Get(ctx context.Context, loadID uuid.UUID, actor authz.Actor) (*models.Load, error)
	AssignTruck(ctx context.Context, input loads.AssignTruckInput) (*loads.AssignTruckResult, error)
	UpdateStatus(ctx context.Context, input loads.UpdateStatusInput) (*models.Load, error)
	SubmitPOD(ctx context.Context, input loads.PODInput) (*models.Load, error)
	VerifyPOD(ctx context.Context, input loads.PODInput) (*loads.VerifyPODResult, error)
}

type assignTruckRequest struct {
	TruckID   string  `json:"truckId" validate:"required,uuid"`
	CarrierID *string `json:"carrierId" validate:"omitempty,uuid"`
}

type updateStatusRequest struct {
	Status enums.LoadStatus `json:"status" validate:"required"`
}

type assignTruckView struct {
	Load        *loadView           `json:"load"`
	WalletCheck *tripCheckView      `json:"walletCheck,omitempty"`
	Corridor    *assignCorridorView `json:"corridor,omitempty"`
}

type verifyPODView struct {
	Load            *loadView         `json:"load"`
	Settlement      *deductResultView `json:"settlement,omitempty"`
	SettlementError string            `json:"settlementError,omitempty"`
}

func loadRequest(r *http.Request) (authz.Actor, uuid.UUID, error) {
	actor, err := actorFromRequest(r)
	if err != nil {
		return authz.Actor{}, uuid.Nil, err
	}
	loadID, err := validators.URLParamUUID(r, "loadId")
	if err != nil {
		return authz.Actor{}, uuid.Nil, err
	}
	return actor, loadID, nil
}

func GetLoad(svc loadLifecycle, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, errServiceUnavailable))
			return
		}
		actor, loadID, err := loadRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		load, err := svc.Get(r.Context(), loadID, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, presentLoad(load))
	}
}

// AssignTruck books a carrier truck on a posted load after the wallet check.
func AssignTruck(svc loadLifecycle, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, errServiceUnavailable))
			return
		}
		actor, loadID, err := loadRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req assignTruckRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := loads.AssignTruckInput{
			LoadID:  loadID,
			TruckID: uuid.MustParse(req.TruckID),
			Actor:   actor,
		}
		if req.CarrierID != nil {
			carrierID := uuid.MustParse(*req.CarrierID)
			input.CarrierOrganizationID = &carrierID
		}

		result, err := svc.AssignTruck(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, assignTruckView{
			Load:        presentLoad(result.Load),
			WalletCheck: presentTripCheck(result.WalletCheck),
			Corridor:    presentAssignCorridor(result.Corridor),
		})
	}
}

func UpdateLoadStatus(svc loadLifecycle, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, errServiceUnavailable))
			return
		}
		actor, loadID, err := loadRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		load, err := svc.UpdateStatus(r.Context(), loads.UpdateStatusInput{LoadID: loadID, Status: req.Status, Actor: actor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, presentLoad(load))
	}
}

func SubmitPOD(svc loadLifecycle, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, errServiceUnavailable))
			return
		}
		actor, loadID, err := loadRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		load, err := svc.SubmitPOD(r.Context(), loads.PODInput{LoadID: loadID, Actor: actor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, presentLoad(load))
	}
}

// VerifyPOD completes the load. The settlement outcome is reported alongside
// and never turns a completed verification into an error.
func VerifyPOD(svc loadLifecycle, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, errServiceUnavailable))
			return
		}
		actor, loadID, err := loadRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.VerifyPOD(r.Context(), loads.PODInput{LoadID: loadID, Actor: actor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, verifyPODView{
			Load:            presentLoad(result.Load),
			Settlement:      presentDeduct(result.Settlement),
			SettlementError: result.SettlementError,
		})
	}
}
