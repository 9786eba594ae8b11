package loads

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/freightlink-backend/internal/corridors"
	"github.com/angelmondragon/freightlink-backend/internal/repo"
	"github.com/angelmondragon/freightlink-backend/internal/wallets"
	"github.com/angelmondragon/freightlink-backend/pkg/db/dbtest"
	"github.com/angelmondragon/freightlink-backend/pkg/db/models"
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/freightlink-backend/pkg/errors"
	"github.com/angelmondragon/freightlink-backend/pkg/logger"
	"github.com/angelmondragon/freightlink-backend/pkg/outbox"
)

type countingEstimator struct {
	km    decimal.Decimal
	calls int
}

func (c *countingEstimator) DrivingDistanceKm(context.Context, string, string) (decimal.Decimal, error) {
	c.calls++
	return c.km, nil
}

// The wallet check and the corridor assignment price the same route estimate.
func TestAssignTruckChecksWalletsAgainstRouteEstimate(t *testing.T) {
	client := dbtest.Open(t)
	conn := client.DB()
	ctx := context.Background()
	emitter := outbox.NewService(outbox.NewRepository(conn), nil)
	loadRepo := repo.NewLoadRepository(conn)

	estimator := &countingEstimator{km: decimal.NewFromInt(400)}
	corridorSvc, err := corridors.NewService(corridors.NewRepository(conn), loadRepo, client, emitter, estimator, logger.Nop())
	require.NoError(t, err)
	walletSvc, err := wallets.NewService(wallets.NewRepository(conn), loadRepo, corridorSvc, logger.Nop())
	require.NoError(t, err)

	f := fixture{client: client}
	f.shipper = dbtest.Organization(t, conn, enums.OrganizationTypeShipper)
	f.carrier = dbtest.Organization(t, conn, enums.OrganizationTypeCarrier)
	f.truck = dbtest.Truck(t, conn, f.carrier.ID)
	svc, err := NewService(ServiceParams{
		Loads:      loadRepo,
		Trucks:     NewTruckRepository(conn),
		Corridors:  corridorSvc,
		Wallets:    walletSvc,
		Settlement: &stubSettler{},
		Tx:         client,
		Outbox:     emitter,
		Logger:     logger.Nop(),
	})
	require.NoError(t, err)

	dbtest.Corridor(t, conn, enums.RegionAddisAbaba, enums.RegionOromia, func(c *models.Corridor) {
		c.ShipperPricePerKm = dbtest.Dec("5")
		c.CarrierPricePerKm = dbtest.Dec("0")
	})
	wallet := dbtest.Wallet(t, conn, f.shipper.ID, enums.AccountTypeShipperWallet, "600")
	load := f.load(t, enums.LoadStatusPosted, nil)
	input := AssignTruckInput{LoadID: load.ID, TruckID: f.truck.ID, Actor: f.carrierActor()}

	_, err = svc.AssignTruck(ctx, input)
	requireCode(t, err, pkgerrors.CodeBusinessRule)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, []string{
		"Insufficient shipper wallet balance. Required: 2000.00 ETB, Available: 600.00 ETB",
	}, typed.Details().(map[string]any)["errors"])

	var stored models.Load
	require.NoError(t, conn.First(&stored, "id = ?", load.ID).Error)
	require.Equal(t, enums.LoadStatusPosted, stored.Status)
	require.Nil(t, stored.EstimatedTripKm)

	require.NoError(t, conn.Model(&models.FinancialAccount{}).Where("id = ?", wallet.ID).
		Update("balance", *dbtest.Dec("2500")).Error)

	result, err := svc.AssignTruck(ctx, input)
	require.NoError(t, err)
	require.Equal(t, enums.LoadStatusAssigned, result.Load.Status)
	require.Equal(t, "2000", result.WalletCheck.ShipperFee.String())
	require.True(t, result.Corridor.Success)
	require.Equal(t, "2000", result.Corridor.ShipperFee.String())
	require.Equal(t, 2, estimator.calls, "assignment reuses the estimate the wallet check priced")

	require.NoError(t, conn.First(&stored, "id = ?", load.ID).Error)
	require.NotNil(t, stored.EstimatedTripKm)
	require.Equal(t, "400", stored.EstimatedTripKm.String())
	require.Equal(t, "2000", stored.ShipperServiceFee.String())
}
