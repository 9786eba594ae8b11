package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/freightlink-backend/api/responses"
	"github.com/angelmondragon/freightlink-backend/api/validators"
	"github.com/angelmondragon/freightlink-backend/internal/authz"
	"github.com/angelmondragon/freightlink-backend/internal/corridors"
	"github.com/angelmondragon/freightlink-backend/pkg/db/models"
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/freightlink-backend/pkg/errors"
	"github.com/angelmondragon/freightlink-backend/pkg/logger"
	"github.com/angelmondragon/freightlink-backend/pkg/pagination"
)

type corridorAssigner interface {
	AssignCorridorToLoad(ctx context.Context, input corridors.AssignCorridorInput) (*corridors.AssignResult, error)
}

type corridorAdmin interface {
	Create(ctx context.Context, input corridors.CreateCorridorInput) (*models.Corridor, error)
	Update(ctx context.Context, input corridors.UpdateCorridorInput) (*models.Corridor, error)
	Deactivate(ctx context.Context, id uuid.UUID, actor authz.Actor) (*models.Corridor, error)
	List(ctx context.Context, filter corridors.ListFilter, params pagination.Params) (pagination.Page[models.Corridor], error)
}

type partyPricingRequest struct {
	PricePerKm       *decimal.Decimal `json:"pricePerKm"`
	PromoFlag        *bool            `json:"promoFlag"`
	PromoDiscountPct *decimal.Decimal `json:"promoDiscountPct"`
}

func (p *partyPricingRequest) pricing() corridors.PartyPricing {
	if p == nil {
		return corridors.PartyPricing{}
	}
	return corridors.PartyPricing{
		PricePerKm:       p.PricePerKm,
		PromoFlag:        p.PromoFlag,
		PromoDiscountPct: p.PromoDiscountPct,
	}
}

type createCorridorRequest struct {
	Name              string                  `json:"name" validate:"required,max=120"`
	OriginRegion      enums.Region            `json:"originRegion" validate:"required,region"`
	DestinationRegion enums.Region            `json:"destinationRegion" validate:"required,region"`
	Direction         enums.CorridorDirection `json:"direction" validate:"omitempty,corridor_direction"`
	DistanceKm        decimal.Decimal         `json:"distanceKm"`
	PricePerKm        decimal.Decimal         `json:"pricePerKm"`
	PromoFlag         bool                    `json:"promoFlag"`
	PromoDiscountPct  *decimal.Decimal        `json:"promoDiscountPct"`
	Shipper           *partyPricingRequest    `json:"shipper"`
	Carrier           *partyPricingRequest    `json:"carrier"`
}

type updateCorridorRequest struct {
	Name             *string                  `json:"name" validate:"omitempty,min=1,max=120"`
	Direction        *enums.CorridorDirection `json:"direction" validate:"omitempty,corridor_direction"`
	DistanceKm       *decimal.Decimal         `json:"distanceKm"`
	PricePerKm       *decimal.Decimal         `json:"pricePerKm"`
	PromoFlag        *bool                    `json:"promoFlag"`
	PromoDiscountPct *decimal.Decimal         `json:"promoDiscountPct"`
	Shipper          *partyPricingRequest     `json:"shipper"`
	Carrier          *partyPricingRequest     `json:"carrier"`
	IsActive         *bool                    `json:"isActive"`
}

// AssignLoadCorridor resolves the corridor for a load and stores its fees.
func AssignLoadCorridor(svc corridorAssigner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, errServiceUnavailable))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		loadID, err := validators.URLParamUUID(r, "loadId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AssignCorridorToLoad(r.Context(), corridors.AssignCorridorInput{LoadID: loadID, Actor: actor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view := presentAssignCorridor(result)
		if !result.Success {
			responses.WriteError(r.Context(), logg, w, resultFailure(result.NotFound(), result.Error, view))
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func AdminListCorridors(svc corridorAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, errServiceUnavailable))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter, err := corridorFilterFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), filter, pagination.Params{Limit: limit, Cursor: r.URL.Query().Get("cursor")})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view := corridorPageView{Items: make([]corridorView, 0, len(page.Items)), NextCursor: page.NextCursor}
		for i := range page.Items {
			view.Items = append(view.Items, presentCorridor(&page.Items[i]))
		}
		responses.WriteSuccess(w, view)
	}
}

func corridorFilterFromQuery(r *http.Request) (corridors.ListFilter, error) {
	var filter corridors.ListFilter
	query := r.URL.Query()
	if raw := query.Get("originRegion"); raw != "" {
		region, err := enums.ParseRegion(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid originRegion")
		}
		filter.OriginRegion = &region
	}
	if raw := query.Get("destinationRegion"); raw != "" {
		region, err := enums.ParseRegion(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid destinationRegion")
		}
		filter.DestinationRegion = &region
	}
	active, err := validators.ParseQueryBool(r, "isActive")
	if err != nil {
		return filter, err
	}
	filter.IsActive = active
	return filter, nil
}

func AdminCreateCorridor(svc corridorAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, errServiceUnavailable))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req createCorridorRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		corridor, err := svc.Create(r.Context(), corridors.CreateCorridorInput{
			Name:              req.Name,
			OriginRegion:      req.OriginRegion,
			DestinationRegion: req.DestinationRegion,
			Direction:         req.Direction,
			DistanceKm:        req.DistanceKm,
			PricePerKm:        req.PricePerKm,
			PromoFlag:         req.PromoFlag,
			PromoDiscountPct:  req.PromoDiscountPct,
			Shipper:           req.Shipper.pricing(),
			Carrier:           req.Carrier.pricing(),
			Actor:             actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, presentCorridor(corridor))
	}
}

func AdminUpdateCorridor(svc corridorAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, errServiceUnavailable))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		corridorID, err := validators.URLParamUUID(r, "corridorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateCorridorRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := corridors.UpdateCorridorInput{
			ID:               corridorID,
			Name:             req.Name,
			Direction:        req.Direction,
			DistanceKm:       req.DistanceKm,
			PricePerKm:       req.PricePerKm,
			PromoFlag:        req.PromoFlag,
			PromoDiscountPct: req.PromoDiscountPct,
			IsActive:         req.IsActive,
			Actor:            actor,
		}
		if req.Shipper != nil {
			pricing := req.Shipper.pricing()
			input.Shipper = &pricing
		}
		if req.Carrier != nil {
			pricing := req.Carrier.pricing()
			input.Carrier = &pricing
		}

		corridor, err := svc.Update(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, presentCorridor(corridor))
	}
}

func AdminDeactivateCorridor(svc corridorAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, errServiceUnavailable))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		corridorID, err := validators.URLParamUUID(r, "corridorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		corridor, err := svc.Deactivate(r.Context(), corridorID, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, presentCorridor(corridor))
	}
}
