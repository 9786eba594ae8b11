package loads

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/freightlink-backend/internal/authz"
	"github.com/angelmondragon/freightlink-backend/internal/corridors"
	"github.com/angelmondragon/freightlink-backend/internal/settlement"
	"github.com/angelmondragon/freightlink-backend/internal/wallets"
	"github.com/angelmondragon/freightlink-backend/pkg/db/models"
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
)

// AssignTruckInput assigns a carrier truck to a posted load. Admins must name
// the carrier; carriers and dispatchers act for their own organization.
type AssignTruckInput struct {
	LoadID                uuid.UUID
	TruckID               uuid.UUID
	CarrierOrganizationID *uuid.UUID
	Actor                 authz.Actor
}

// AssignTruckResult carries the assigned load with the pre-flight outcomes.
type AssignTruckResult struct {
	Load        *models.Load
	WalletCheck *wallets.TripCheck
	Corridor    *corridors.AssignResult
}

type UpdateStatusInput struct {
	LoadID uuid.UUID
	Status enums.LoadStatus
	Actor  authz.Actor
}

type PODInput struct {
	LoadID uuid.UUID
	Actor  authz.Actor
}

// VerifyPODResult reports the completed load and, when settlement ran, its
// outcome. SettlementError is set when the deduction could not run; the
// settlement sweep retries those loads.
type VerifyPODResult struct {
	Load            *models.Load
	Settlement      *settlement.DeductResult
	SettlementError string
}
