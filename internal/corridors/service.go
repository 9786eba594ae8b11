package corridors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/freightlink-backend/internal/authz"
	"github.com/angelmondragon/freightlink-backend/internal/fees"
	"github.com/angelmondragon/freightlink-backend/internal/repo"
	"github.com/angelmondragon/freightlink-backend/pkg/db"
	"github.com/angelmondragon/freightlink-backend/pkg/db/models"
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/freightlink-backend/pkg/errors"
	"github.com/angelmondragon/freightlink-backend/pkg/logger"
	"github.com/angelmondragon/freightlink-backend/pkg/maps"
	"github.com/angelmondragon/freightlink-backend/pkg/outbox"
	"github.com/angelmondragon/freightlink-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/freightlink-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Resolver finds the corridor that prices a load. Wallet checks and the
// settlement orchestrator share it so every caller sees the same corridor.
type Resolver interface {
	Match(ctx context.Context, origin, destination string) (*models.Corridor, error)
	ResolveForLoad(ctx context.Context, load *models.Load) (*models.Corridor, error)
	ResolveForLoadTx(ctx context.Context, tx *gorm.DB, load *models.Load) (*models.Corridor, error)
	EstimateTripKm(ctx context.Context, load *models.Load) *decimal.Decimal
}

// Service exposes corridor matching, load assignment and admin management.
type Service interface {
	Resolver
	AssignCorridorToLoad(ctx context.Context, input AssignCorridorInput) (*AssignResult, error)
	Create(ctx context.Context, input CreateCorridorInput) (*models.Corridor, error)
	Update(ctx context.Context, input UpdateCorridorInput) (*models.Corridor, error)
	Deactivate(ctx context.Context, id uuid.UUID, actor authz.Actor) (*models.Corridor, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[models.Corridor], error)
}

type service struct {
	repo      Repository
	loads     repo.LoadRepository
	tx        txRunner
	outbox    outboxPublisher
	estimator maps.RouteEstimator
	logg      *logger.Logger
}

// NewService wires the corridor service. estimator may be nil.
func NewService(corridorRepo Repository, loads repo.LoadRepository, tx txRunner, outbox outboxPublisher, estimator maps.RouteEstimator, logg *logger.Logger) (Service, error) {
	if corridorRepo == nil {
		return nil, fmt.Errorf("corridor repository required")
	}
	if loads == nil {
		return nil, fmt.Errorf("load repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      corridorRepo,
		loads:     loads,
		tx:        tx,
		outbox:    outbox,
		estimator: estimator,
		logg:      logg,
	}, nil
}

// Match returns the first active corridor for the region pair. Unknown
// regions and missing corridors yield (nil, nil).
func (s *service) Match(ctx context.Context, origin, destination string) (*models.Corridor, error) {
	return match(ctx, s.repo, enums.Region(origin), enums.Region(destination))
}

func match(ctx context.Context, r Repository, origin, destination enums.Region) (*models.Corridor, error) {
	if !origin.IsValid() || !destination.IsValid() {
		return nil, nil
	}
	corridor, err := r.FindActiveRoute(ctx, origin, destination)
	if err == nil {
		return corridor, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	corridor, err = r.FindActiveReverse(ctx, origin, destination)
	if err == nil {
		return corridor, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

func (s *service) ResolveForLoad(ctx context.Context, load *models.Load) (*models.Corridor, error) {
	return resolveForLoad(ctx, s.repo, load)
}

func (s *service) ResolveForLoadTx(ctx context.Context, tx *gorm.DB, load *models.Load) (*models.Corridor, error) {
	return resolveForLoad(ctx, s.repo.WithTx(tx), load)
}

// resolveForLoad prefers the corridor stored on the load while it is active,
// then matches on the load's regions.
func resolveForLoad(ctx context.Context, r Repository, load *models.Load) (*models.Corridor, error) {
	if load == nil {
		return nil, nil
	}
	if load.CorridorID != nil {
		corridor, err := r.FindActiveByID(ctx, *load.CorridorID)
		if err == nil {
			return corridor, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	origin, ok := enums.ResolveRegion(load.PickupRegion, load.PickupCity)
	if !ok {
		return nil, nil
	}
	destination, ok := enums.ResolveRegion(load.DeliveryRegion, load.DeliveryCity)
	if !ok {
		return nil, nil
	}
	return match(ctx, r, origin, destination)
}

func (s *service) AssignCorridorToLoad(ctx context.Context, input AssignCorridorInput) (*AssignResult, error) {
	if input.LoadID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "load id required")
	}
	ctx = s.logg.WithLoadID(ctx, input.LoadID.String())

	load, err := s.loads.FindByID(ctx, input.LoadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &AssignResult{Error: errLoadNotFound}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lookup failed")
	}
	if !pendingFees(load) {
		return &AssignResult{Error: errFeesAlreadyHandled}, nil
	}

	estimated := input.EstimatedTripKm
	if estimated == nil || !estimated.IsPositive() || !needsEstimate(load) {
		estimated = s.EstimateTripKm(ctx, load)
	}
	if estimated != nil {
		load.EstimatedTripKm = estimated
	}

	corridor, err := s.ResolveForLoad(ctx, load)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "corridor lookup failed")
	}

	var result *AssignResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		loads := s.loads.WithTx(tx)
		current, err := loads.FindByIDForUpdate(ctx, input.LoadID)
		if err != nil {
			return err
		}
		if !pendingFees(current) {
			result = &AssignResult{Error: errFeesAlreadyHandled}
			return nil
		}

		updates := map[string]any{}
		if estimated != nil && needsEstimate(current) {
			current.EstimatedTripKm = estimated
			updates["estimated_trip_km"] = *estimated
		}
		if corridor == nil {
			result = &AssignResult{Error: errNoCorridor}
			return loads.Update(ctx, current.ID, updates)
		}

		breakdown := fees.ForLoad(current, corridor)
		updates["corridor_id"] = corridor.ID
		updates["shipper_service_fee"] = breakdown.Shipper.FinalFee
		updates["carrier_service_fee"] = breakdown.Carrier.FinalFee
		updates["service_fee_etb"] = breakdown.TotalPlatformFee
		if err := loads.Update(ctx, current.ID, updates); err != nil {
			return err
		}

		corridorID := corridor.ID
		result = &AssignResult{
			Success:    true,
			CorridorID: &corridorID,
			DistanceKm: fees.TripDistanceKm(current, corridor),
			ShipperFee: breakdown.Shipper.FinalFee,
			CarrierFee: breakdown.Carrier.FinalFee,
			TotalFee:   breakdown.TotalPlatformFee,
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCorridorAssigned,
			AggregateType: enums.AggregateLoad,
			AggregateID:   current.ID,
			Actor:         input.Actor.Ref(),
			Data: payloads.CorridorAssignedEvent{
				LoadID:     current.ID,
				CorridorID: corridor.ID,
				ShipperFee: breakdown.Shipper.FinalFee,
				CarrierFee: breakdown.Carrier.FinalFee,
				TotalFee:   breakdown.TotalPlatformFee,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "assign corridor")
	}
	return result, nil
}

// EstimateTripKm asks the route estimator for a distance when the load has
// none. Failures are logged and nil is returned so the corridor distance
// applies. The load is not modified.
func (s *service) EstimateTripKm(ctx context.Context, load *models.Load) *decimal.Decimal {
	if s.estimator == nil || load == nil || !needsEstimate(load) {
		return nil
	}
	km, err := s.estimator.DrivingDistanceKm(ctx, load.PickupCity, load.DeliveryCity)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "route distance estimate unavailable")
		return nil
	}
	if !km.IsPositive() {
		return nil
	}
	return &km
}

func needsEstimate(load *models.Load) bool {
	if load.ActualTripKm != nil && load.ActualTripKm.IsPositive() {
		return false
	}
	return load.EstimatedTripKm == nil || !load.EstimatedTripKm.IsPositive()
}

func pendingFees(load *models.Load) bool {
	return load.ShipperFeeStatus == enums.FeeStatusPending && load.CarrierFeeStatus == enums.FeeStatusPending
}

func (s *service) Create(ctx context.Context, input CreateCorridorInput) (*models.Corridor, error) {
	if err := validateCreate(&input); err != nil {
		return nil, err
	}
	corridor := &models.Corridor{
		Name:                    strings.TrimSpace(input.Name),
		OriginRegion:            input.OriginRegion,
		DestinationRegion:       input.DestinationRegion,
		Direction:               input.Direction,
		DistanceKm:              input.DistanceKm,
		PricePerKm:              input.PricePerKm,
		PromoFlag:               input.PromoFlag,
		PromoDiscountPct:        input.PromoDiscountPct,
		ShipperPricePerKm:       input.Shipper.PricePerKm,
		ShipperPromoFlag:        input.Shipper.PromoFlag,
		ShipperPromoDiscountPct: input.Shipper.PromoDiscountPct,
		CarrierPricePerKm:       input.Carrier.PricePerKm,
		CarrierPromoFlag:        input.Carrier.PromoFlag,
		CarrierPromoDiscountPct: input.Carrier.PromoDiscountPct,
		IsActive:                true,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, corridor); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "corridor name already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create corridor")
		}
		return s.emitChanged(ctx, tx, enums.EventCorridorCreated, corridor, input.Actor)
	})
	if err != nil {
		return nil, err
	}
	return corridor, nil
}

func (s *service) Update(ctx context.Context, input UpdateCorridorInput) (*models.Corridor, error) {
	if input.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "corridor id required")
	}
	updates, err := buildUpdates(input)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	var corridor *models.Corridor
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		if err := r.Update(ctx, input.ID, updates); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "corridor not found")
			}
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "corridor name already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update corridor")
		}
		updated, err := r.FindByID(ctx, input.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload corridor")
		}
		corridor = updated
		return s.emitChanged(ctx, tx, enums.EventCorridorUpdated, corridor, input.Actor)
	})
	if err != nil {
		return nil, err
	}
	return corridor, nil
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID, actor authz.Actor) (*models.Corridor, error) {
	inactive := false
	return s.Update(ctx, UpdateCorridorInput{ID: id, IsActive: &inactive, Actor: actor})
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[models.Corridor], error) {
	rows, err := s.repo.List(ctx, filter, params)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidCursor) {
			return pagination.Page[models.Corridor]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		return pagination.Page[models.Corridor]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list corridors")
	}
	return pagination.BuildPage(rows, params.Limit, func(c models.Corridor) pagination.Cursor {
		return pagination.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
	}), nil
}

func (s *service) emitChanged(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, corridor *models.Corridor, actor authz.Actor) error {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateCorridor,
		AggregateID:   corridor.ID,
		Actor:         actor.Ref(),
		Data: payloads.CorridorChangedEvent{
			CorridorID:        corridor.ID,
			OriginRegion:      corridor.OriginRegion,
			DestinationRegion: corridor.DestinationRegion,
			IsActive:          corridor.IsActive,
		},
	})
}
