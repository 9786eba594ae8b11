package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/freightlink-backend/api/responses"
	"github.com/angelmondragon/freightlink-backend/api/validators"
	"github.com/angelmondragon/freightlink-backend/internal/authz"
	"github.com/angelmondragon/freightlink-backend/internal/wallets"
	"github.com/angelmondragon/freightlink-backend/pkg/db/models"
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/freightlink-backend/pkg/errors"
	"github.com/angelmondragon/freightlink-backend/pkg/logger"
)

type walletReader interface {
	ValidateWalletBalancesForTrip(ctx context.Context, loadID, carrierOrgID uuid.UUID) (*wallets.TripCheck, error)
	Balance(ctx context.Context, orgID uuid.UUID) ([]models.FinancialAccount, error)
}

type loadFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Load, error)
}

// LoadWalletCheck runs the pre-assignment balance check.
func LoadWalletCheck(svc walletReader, loads loadFinder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || loads == nil {
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
		carrierID, err := validators.ParseQueryUUID(r, "carrierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		load, err := loads.FindByID(r.Context(), loadID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "load not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lookup failed"))
			return
		}
		view, err := walletCheckScope(load, actor, carrierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		check, err := svc.ValidateWalletBalancesForTrip(r.Context(), loadID, view.carrierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if check.NotFound() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, check.Errors[0]))
			return
		}
		out := presentTripCheck(check)
		switch view.side {
		case enums.PartyShipper:
			out.CarrierBalance = 0
		case enums.PartyCarrier:
			out.ShipperBalance = 0
		}
		responses.WriteSuccess(w, out)
	}
}

type walletCheckView struct {
	carrierID uuid.UUID
	side      enums.Party
}

// walletCheckScope decides which carrier is checked for the caller. Admins
// check anyone. The load's shipper may name any carrier. Carriers and
// dispatchers only check their own organization, on open loads or loads they
// already haul.
func walletCheckScope(load *models.Load, actor authz.Actor, carrierID uuid.UUID) (walletCheckView, error) {
	if actor.Role.IsAdmin() {
		return walletCheckView{carrierID: carrierID}, nil
	}
	if actor.OrganizationID == nil {
		return walletCheckView{}, pkgerrors.New(pkgerrors.CodeForbidden, "organization context required")
	}
	org := *actor.OrganizationID
	if load.ShipperOrganizationID == org {
		return walletCheckView{carrierID: carrierID, side: enums.PartyShipper}, nil
	}
	assigned := load.CarrierOrganizationID != nil && *load.CarrierOrganizationID == org
	if !assigned && load.Status != enums.LoadStatusPosted {
		return walletCheckView{}, pkgerrors.New(pkgerrors.CodeNotFound, "load not found")
	}
	if carrierID != uuid.Nil && carrierID != org {
		return walletCheckView{}, pkgerrors.New(pkgerrors.CodeForbidden, "cannot check another carrier's wallet")
	}
	return walletCheckView{carrierID: org, side: enums.PartyCarrier}, nil
}

// MyWallet lists the caller organization's accounts.
func MyWallet(svc walletReader, logg *logger.Logger) http.HandlerFunc {
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
		if actor.OrganizationID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "organization context required"))
			return
		}
		accounts, err := svc.Balance(r.Context(), *actor.OrganizationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, presentAccounts(accounts))
	}
}
