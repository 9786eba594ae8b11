package visibility

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/freightlink-backend/pkg/db/models"
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/freightlink-backend/pkg/errors"
)

// LoadVisibilityInput drives the shared participant checks for load-scoped requests.
type LoadVisibilityInput struct {
	Load           *models.Load
	Role           enums.Role
	OrganizationID *uuid.UUID
}

// LoadSide reports which side of the load the caller's organization is on.
type LoadSide string

const (
	SideNone    LoadSide = ""
	SideAdmin   LoadSide = "admin"
	SideShipper LoadSide = "shipper"
	SideCarrier LoadSide = "carrier"
)

// EnsureLoadParticipant rejects callers that neither administer nor take part
// in the load. Non-participants get NOT_FOUND so load ids do not leak.
func EnsureLoadParticipant(input LoadVisibilityInput) (LoadSide, error) {
	if input.Load == nil {
		return SideNone, pkgerrors.New(pkgerrors.CodeNotFound, "load not found")
	}
	if input.Role.IsAdmin() {
		return SideAdmin, nil
	}
	if input.OrganizationID == nil {
		return SideNone, pkgerrors.New(pkgerrors.CodeForbidden, "organization context required")
	}
	org := *input.OrganizationID
	if input.Load.ShipperOrganizationID == org {
		return SideShipper, nil
	}
	if input.Load.CarrierOrganizationID != nil && *input.Load.CarrierOrganizationID == org {
		return SideCarrier, nil
	}
	return SideNone, pkgerrors.New(pkgerrors.CodeNotFound, "load not found")
}

// EnsureShipperOrAdmin requires the caller to own the load as shipper or be an admin.
func EnsureShipperOrAdmin(input LoadVisibilityInput) error {
	side, err := EnsureLoadParticipant(input)
	if err != nil {
		return err
	}
	if side != SideShipper && side != SideAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the shipper or an admin may perform this action")
	}
	return nil
}
