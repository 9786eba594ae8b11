// Package authz maps roles to the closed set of capabilities the API checks.
package authz

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/freightlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/freightlink-backend/pkg/errors"
	"github.com/angelmondragon/freightlink-backend/pkg/outbox"
)

// Capability is a single permission checked by handlers and services.
type Capability string

const (
	CapPreviewFees        Capability = "fees:preview"
	CapAssignCorridor     Capability = "corridors:assign"
	CapManageCorridors    Capability = "corridors:manage"
	CapCheckWallets       Capability = "wallets:check"
	CapReadWallet         Capability = "wallets:read"
	CapAssignTruck        Capability = "loads:assign"
	CapUpdateLoadStatus   Capability = "loads:update_status"
	CapSubmitPOD          Capability = "pod:submit"
	CapVerifyPOD          Capability = "pod:verify"
	CapDeductServiceFee   Capability = "settlement:deduct"
	CapRefundServiceFee   Capability = "settlement:refund"
	CapManageDisputes     Capability = "settlement:dispute"
	CapReadSettlementBook Capability = "settlement:read"
)

var allRoles = []enums.Role{
	enums.RoleShipper,
	enums.RoleCarrier,
	enums.RoleDispatcher,
	enums.RoleAdmin,
	enums.RoleSuperAdmin,
}

var admins = []enums.Role{enums.RoleAdmin, enums.RoleSuperAdmin}

var grants = map[Capability][]enums.Role{
	CapPreviewFees:        allRoles,
	CapAssignCorridor:     {enums.RoleShipper, enums.RoleDispatcher, enums.RoleAdmin, enums.RoleSuperAdmin},
	CapManageCorridors:    admins,
	CapCheckWallets:       allRoles,
	CapReadWallet:         {enums.RoleShipper, enums.RoleCarrier, enums.RoleDispatcher, enums.RoleAdmin, enums.RoleSuperAdmin},
	CapAssignTruck:        {enums.RoleCarrier, enums.RoleDispatcher, enums.RoleAdmin, enums.RoleSuperAdmin},
	CapUpdateLoadStatus:   allRoles,
	CapSubmitPOD:          {enums.RoleCarrier, enums.RoleDispatcher},
	CapVerifyPOD:          {enums.RoleShipper, enums.RoleAdmin, enums.RoleSuperAdmin},
	CapDeductServiceFee:   admins,
	CapRefundServiceFee:   admins,
	CapManageDisputes:     admins,
	CapReadSettlementBook: admins,
}

// IsValid reports whether the capability is known.
func (c Capability) IsValid() bool {
	_, ok := grants[c]
	return ok
}

// Can reports whether role holds capability. Unknown roles and capabilities
// are denied.
func Can(role enums.Role, capability Capability) bool {
	for _, granted := range grants[capability] {
		if granted == role {
			return true
		}
	}
	return false
}

// Require returns a FORBIDDEN error when role lacks capability.
func Require(role enums.Role, capability Capability) error {
	if Can(role, capability) {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions").
		WithDetails(map[string]any{"capability": capability})
}

// Actor is the authenticated caller a service acts on behalf of.
type Actor struct {
	UserID         uuid.UUID
	OrganizationID *uuid.UUID
	Role           enums.Role
}

// System is the actor used by background jobs.
var System = Actor{Role: enums.RoleSuperAdmin}

// Ref converts the actor into the outbox envelope reference.
func (a Actor) Ref() *outbox.ActorRef {
	return &outbox.ActorRef{
		UserID:         a.UserID,
		OrganizationID: a.OrganizationID,
		Role:           string(a.Role),
	}
}

// UserPtr returns the user id, or nil for the system actor.
func (a Actor) UserPtr() *uuid.UUID {
	if a.UserID == uuid.Nil {
		return nil
	}
	id := a.UserID
	return &id
}
