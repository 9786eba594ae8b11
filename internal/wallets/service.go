package wallets

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/freightlink-backend/internal/corridors"
	"github.com/angelmondragon/freightlink-backend/internal/fees"
	"github.com/angelmondragon/freightlink-backend/internal/repo"
	"github.com/angelmondragon/freightlink-backend/pkg/db/models"
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/freightlink-backend/pkg/errors"
	"github.com/angelmondragon/freightlink-backend/pkg/logger"
)

const errLoadNotFound = "load not found"

// TripCheck is the outcome of a pre-assignment balance check.
type TripCheck struct {
	Valid          bool
	Errors         []string
	ShipperFee     decimal.Decimal
	CarrierFee     decimal.Decimal
	ShipperBalance decimal.Decimal
	CarrierBalance decimal.Decimal
	// EstimatedTripKm is the route estimate the fees were priced with, if any.
	EstimatedTripKm *decimal.Decimal
}

// NotFound reports whether the checked load did not exist.
func (c *TripCheck) NotFound() bool {
	return c != nil && len(c.Errors) == 1 && c.Errors[0] == errLoadNotFound
}

// Service reads wallets. It never mutates balances.
type Service interface {
	ValidateWalletBalancesForTrip(ctx context.Context, loadID, carrierOrgID uuid.UUID) (*TripCheck, error)
	Balance(ctx context.Context, orgID uuid.UUID) ([]models.FinancialAccount, error)
}

type service struct {
	repo      Repository
	loads     repo.LoadRepository
	corridors corridors.Resolver
	logg      *logger.Logger
}

// NewService wires the wallet validator.
func NewService(walletRepo Repository, loads repo.LoadRepository, resolver corridors.Resolver, logg *logger.Logger) (Service, error) {
	if walletRepo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if loads == nil {
		return nil, fmt.Errorf("load repository required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("corridor resolver required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: walletRepo, loads: loads, corridors: resolver, logg: logg}, nil
}

// ValidateWalletBalancesForTrip computes the fees the orchestrator would charge
// and compares them against current balances. A load without a trip distance
// is priced with the route estimate corridor assignment would store. A missing
// wallet reads as zero.
// carrierOrgID may be uuid.Nil, in which case the load's assigned carrier is used.
func (s *service) ValidateWalletBalancesForTrip(ctx context.Context, loadID, carrierOrgID uuid.UUID) (*TripCheck, error) {
	if loadID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "load id required")
	}
	load, err := s.loads.FindByID(ctx, loadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &TripCheck{Errors: []string{errLoadNotFound}}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lookup failed")
	}
	if carrierOrgID == uuid.Nil && load.CarrierOrganizationID != nil {
		carrierOrgID = *load.CarrierOrganizationID
	}

	corridor, err := s.corridors.ResolveForLoad(ctx, load)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "corridor lookup failed")
	}
	check := &TripCheck{
		ShipperFee: decimal.Zero,
		CarrierFee: decimal.Zero,
	}
	if corridor != nil {
		if estimated := s.corridors.EstimateTripKm(ctx, load); estimated != nil {
			load.EstimatedTripKm = estimated
			check.EstimatedTripKm = estimated
		}
		breakdown := fees.ForLoad(load, corridor)
		check.ShipperFee = breakdown.Shipper.FinalFee
		check.CarrierFee = breakdown.Carrier.FinalFee
	}

	shipperBalance, shipperFound, err := s.balanceOf(ctx, load.ShipperOrganizationID, enums.AccountTypeShipperWallet)
	if err != nil {
		return nil, err
	}
	check.ShipperBalance = shipperBalance
	if check.ShipperFee.IsPositive() {
		check.Errors = append(check.Errors, shortfall(enums.PartyShipper, shipperFound, check.ShipperFee, shipperBalance)...)
	}

	carrierBalance, carrierFound := decimal.Zero, false
	if carrierOrgID != uuid.Nil {
		carrierBalance, carrierFound, err = s.balanceOf(ctx, carrierOrgID, enums.AccountTypeCarrierWallet)
		if err != nil {
			return nil, err
		}
	}
	check.CarrierBalance = carrierBalance
	if check.CarrierFee.IsPositive() {
		check.Errors = append(check.Errors, shortfall(enums.PartyCarrier, carrierFound, check.CarrierFee, carrierBalance)...)
	}

	check.Valid = len(check.Errors) == 0
	if !check.Valid {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"load_id":     loadID.String(),
			"shipper_fee": check.ShipperFee.String(),
			"carrier_fee": check.CarrierFee.String(),
		})
		s.logg.Warn(logCtx, "wallet balance check failed")
	}
	return check, nil
}

func (s *service) balanceOf(ctx context.Context, orgID uuid.UUID, accountType enums.AccountType) (decimal.Decimal, bool, error) {
	account, err := s.repo.FindByOrgAndType(ctx, orgID, accountType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "wallet lookup failed")
	}
	return account.Balance, true, nil
}

var partyLabel = map[enums.Party]string{
	enums.PartyShipper: "Shipper",
	enums.PartyCarrier: "Carrier",
}

func shortfall(party enums.Party, found bool, fee, balance decimal.Decimal) []string {
	if !found {
		return []string{fmt.Sprintf("%s wallet not found", partyLabel[party])}
	}
	if balance.LessThan(fee) {
		return []string{fmt.Sprintf("Insufficient %s wallet balance. Required: %s ETB, Available: %s ETB",
			party, fee.StringFixed(2), balance.StringFixed(2))}
	}
	return nil
}

// Balance lists the organization's accounts.
func (s *service) Balance(ctx context.Context, orgID uuid.UUID) ([]models.FinancialAccount, error) {
	if orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id required")
	}
	accounts, err := s.repo.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wallets")
	}
	return accounts, nil
}
