package loads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/freightlink-backend/internal/authz"
	"github.com/angelmondragon/freightlink-backend/internal/corridors"
	"github.com/angelmondragon/freightlink-backend/internal/repo"
	"github.com/angelmondragon/freightlink-backend/internal/settlement"
	"github.com/angelmondragon/freightlink-backend/internal/wallets"
	"github.com/angelmondragon/freightlink-backend/pkg/db/models"
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/freightlink-backend/pkg/errors"
	"github.com/angelmondragon/freightlink-backend/pkg/logger"
	"github.com/angelmondragon/freightlink-backend/pkg/outbox"
	"github.com/angelmondragon/freightlink-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/freightlink-backend/pkg/visibility"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type corridorAssigner interface {
	AssignCorridorToLoad(ctx context.Context, input corridors.AssignCorridorInput) (*corridors.AssignResult, error)
}

type walletChecker interface {
	ValidateWalletBalancesForTrip(ctx context.Context, loadID, carrierOrgID uuid.UUID) (*wallets.TripCheck, error)
}

type feeSettler interface {
	DeductServiceFee(ctx context.Context, loadID uuid.UUID, actor authz.Actor) (*settlement.DeductResult, error)
}

// Service drives the load lifecycle up to POD verification.
type Service interface {
	Get(ctx context.Context, loadID uuid.UUID, actor authz.Actor) (*models.Load, error)
	AssignTruck(ctx context.Context, input AssignTruckInput) (*AssignTruckResult, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Load, error)
	SubmitPOD(ctx context.Context, input PODInput) (*models.Load, error)
	VerifyPOD(ctx context.Context, input PODInput) (*VerifyPODResult, error)
}

// ServiceParams groups the lifecycle collaborators.
type ServiceParams struct {
	Loads          repo.LoadRepository
	Trucks         TruckRepository
	Corridors      corridorAssigner
	Wallets        walletChecker
	Settlement     feeSettler
	Tx             txRunner
	Outbox         outboxPublisher
	Logger         *logger.Logger
	DeductOnVerify bool
}

type service struct {
	loads          repo.LoadRepository
	trucks         TruckRepository
	corridors      corridorAssigner
	wallets        walletChecker
	settlement     feeSettler
	tx             txRunner
	outbox         outboxPublisher
	logg           *logger.Logger
	deductOnVerify bool
}

func NewService(params ServiceParams) (Service, error) {
	if params.Loads == nil {
		return nil, fmt.Errorf("load repository required")
	}
	if params.Trucks == nil {
		return nil, fmt.Errorf("truck repository required")
	}
	if params.Corridors == nil {
		return nil, fmt.Errorf("corridor service required")
	}
	if params.Wallets == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if params.Settlement == nil {
		return nil, fmt.Errorf("settlement service required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		loads:          params.Loads,
		trucks:         params.Trucks,
		corridors:      params.Corridors,
		wallets:        params.Wallets,
		settlement:     params.Settlement,
		tx:             params.Tx,
		outbox:         params.Outbox,
		logg:           params.Logger,
		deductOnVerify: params.DeductOnVerify,
	}, nil
}

func (s *service) Get(ctx context.Context, loadID uuid.UUID, actor authz.Actor) (*models.Load, error) {
	load, err := s.find(ctx, s.loads, loadID)
	if err != nil {
		return nil, err
	}
	if _, err := visibility.EnsureLoadParticipant(visibilityInput(load, actor)); err != nil {
		return nil, err
	}
	return load, nil
}

func (s *service) AssignTruck(ctx context.Context, input AssignTruckInput) (*AssignTruckResult, error) {
	if err := authz.Require(input.Actor.Role, authz.CapAssignTruck); err != nil {
		return nil, err
	}
	if input.LoadID == uuid.Nil || input.TruckID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "load id and truck id required")
	}
	carrierID, err := carrierFor(input)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithLoadID(ctx, input.LoadID.String())

	load, err := s.find(ctx, s.loads, input.LoadID)
	if err != nil {
		return nil, err
	}
	if load.Status != enums.LoadStatusPosted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "load is not open for assignment")
	}
	truck, err := s.trucks.FindByID(ctx, input.TruckID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "truck not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "truck lookup failed")
	}
	if truck.OrganizationID != carrierID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "truck does not belong to carrier")
	}
	if !truck.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "truck is not active")
	}

	check, err := s.wallets.ValidateWalletBalancesForTrip(ctx, load.ID, carrierID)
	if err != nil {
		return nil, err
	}
	if !check.Valid {
		return nil, pkgerrors.New(pkgerrors.CodeBusinessRule, "wallet balance check failed").
			WithDetails(map[string]any{"errors": check.Errors})
	}

	corridorResult, err := s.corridors.AssignCorridorToLoad(ctx, corridors.AssignCorridorInput{
		LoadID:          load.ID,
		EstimatedTripKm: check.EstimatedTripKm,
		Actor:           input.Actor,
	})
	if err != nil {
		return nil, err
	}
	if !corridorResult.Success {
		s.logg.Warn(s.logg.WithField(ctx, "reason", corridorResult.Error), "load assigned without corridor pricing")
	}

	var assigned *models.Load
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		loads := s.loads.WithTx(tx)
		current, err := s.lock(ctx, loads, load.ID)
		if err != nil {
			return err
		}
		if current.Status != enums.LoadStatusPosted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "load is not open for assignment")
		}
		if err := loads.Update(ctx, current.ID, map[string]any{
			"assigned_truck_id":       truck.ID,
			"carrier_organization_id": carrierID,
			"status":                  enums.LoadStatusAssigned,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign truck")
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventLoadAssigned,
			AggregateType: enums.AggregateLoad,
			AggregateID:   current.ID,
			Actor:         input.Actor.Ref(),
			Data: payloads.LoadAssignedEvent{
				LoadID:                current.ID,
				TruckID:               truck.ID,
				CarrierOrganizationID: carrierID,
				CorridorID:            corridorResult.CorridorID,
			},
		}); err != nil {
			return err
		}
		assigned, err = s.find(ctx, loads, current.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &AssignTruckResult{Load: assigned, WalletCheck: check, Corridor: corridorResult}, nil
}

func carrierFor(input AssignTruckInput) (uuid.UUID, error) {
	if input.Actor.Role.IsAdmin() {
		if input.CarrierOrganizationID == nil || *input.CarrierOrganizationID == uuid.Nil {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "carrier organization id required")
		}
		return *input.CarrierOrganizationID, nil
	}
	if input.Actor.OrganizationID == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "organization context required")
	}
	if input.CarrierOrganizationID != nil && *input.CarrierOrganizationID != *input.Actor.OrganizationID {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot assign for another carrier")
	}
	return *input.Actor.OrganizationID, nil
}

// UpdateStatus applies a manual lifecycle transition. DELIVERED and COMPLETED
// are reached only through POD submission and verification.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Load, error) {
	if err := authz.Require(input.Actor.Role, authz.CapUpdateLoadStatus); err != nil {
		return nil, err
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid load status %q", input.Status))
	}
	if input.Status == enums.LoadStatusDelivered || input.Status == enums.LoadStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "use proof of delivery to deliver or complete a load")
	}
	return s.transition(ctx, input.LoadID, input.Actor, func(load *models.Load, side visibility.LoadSide) (map[string]any, error) {
		if !load.Status.CanTransitionTo(input.Status) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move load from %s to %s", load.Status, input.Status))
		}
		return map[string]any{"status": input.Status}, nil
	})
}

type transitionFunc func(load *models.Load, side visibility.LoadSide) (map[string]any, error)

// transition locks the load, checks the caller takes part in it, applies the
// updates from next and emits a status change event.
func (s *service) transition(ctx context.Context, loadID uuid.UUID, actor authz.Actor, next transitionFunc, extra ...outbox.DomainEvent) (*models.Load, error) {
	if loadID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "load id required")
	}
	ctx = s.logg.WithLoadID(ctx, loadID.String())

	var updated *models.Load
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		loads := s.loads.WithTx(tx)
		load, err := s.lock(ctx, loads, loadID)
		if err != nil {
			return err
		}
		side, err := visibility.EnsureLoadParticipant(visibilityInput(load, actor))
		if err != nil {
			return err
		}
		previous := load.Status
		updates, err := next(load, side)
		if err != nil {
			return err
		}
		if err := loads.Update(ctx, load.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update load")
		}
		updated, err = s.find(ctx, loads, load.ID)
		if err != nil {
			return err
		}
		events := append([]outbox.DomainEvent{}, extra...)
		if updated.Status != previous {
			events = append(events, outbox.DomainEvent{
				EventType:     enums.EventLoadStatusChanged,
				AggregateType: enums.AggregateLoad,
				AggregateID:   load.ID,
				Data: payloads.LoadStatusChangedEvent{
					LoadID:   load.ID,
					Previous: previous,
					Current:  updated.Status,
				},
			})
		}
		for _, event := range events {
			event.AggregateID = load.ID
			event.Actor = actor.Ref()
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) find(ctx context.Context, loads repo.LoadRepository, id uuid.UUID) (*models.Load, error) {
	load, err := loads.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "load not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lookup failed")
	}
	return load, nil
}

func (s *service) lock(ctx context.Context, loads repo.LoadRepository, id uuid.UUID) (*models.Load, error) {
	load, err := loads.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "load not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lookup failed")
	}
	return load, nil
}

func visibilityInput(load *models.Load, actor authz.Actor) visibility.LoadVisibilityInput {
	return visibility.LoadVisibilityInput{
		Load:           load,
		Role:           actor.Role,
		OrganizationID: actor.OrganizationID,
	}
}

func podEvent(eventType enums.OutboxEventType, loadID uuid.UUID, actor authz.Actor, at time.Time) outbox.DomainEvent {
	return outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateLoad,
		AggregateID:   loadID,
		Data:          payloads.PODEvent{LoadID: loadID, UserID: actor.UserID, At: at},
	}
}
