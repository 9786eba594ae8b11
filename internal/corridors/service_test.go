package corridors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/freightlink-backend/internal/authz"
	"github.com/angelmondragon/freightlink-backend/internal/repo"
	"github.com/angelmondragon/freightlink-backend/pkg/db"
	"github.com/angelmondragon/freightlink-backend/pkg/db/dbtest"
	"github.com/angelmondragon/freightlink-backend/pkg/db/models"
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/freightlink-backend/pkg/errors"
	"github.com/angelmondragon/freightlink-backend/pkg/logger"
	"github.com/angelmondragon/freightlink-backend/pkg/maps"
	"github.com/angelmondragon/freightlink-backend/pkg/outbox"
	"github.com/angelmondragon/freightlink-backend/pkg/pagination"
)

type fixture struct {
	client  *db.Client
	svc     Service
	outbox  *outbox.Repository
	shipper models.Organization
}

type stubEstimator struct {
	km    decimal.Decimal
	err   error
	calls int
}

func (s *stubEstimator) DrivingDistanceKm(context.Context, string, string) (decimal.Decimal, error) {
	s.calls++
	return s.km, s.err
}

func newFixture(t *testing.T, estimator *stubEstimator) fixture {
	t.Helper()
	client := dbtest.Open(t)
	conn := client.DB()
	outboxRepo := outbox.NewRepository(conn)

	var est maps.RouteEstimator
	if estimator != nil {
		est = estimator
	}
	svc, err := NewService(NewRepository(conn), repo.NewLoadRepository(conn), client, outbox.NewService(outboxRepo, nil), est, logger.Nop())
	require.NoError(t, err)
	return fixture{
		client:  client,
		svc:     svc,
		outbox:  outboxRepo,
		shipper: dbtest.Organization(t, conn, enums.OrganizationTypeShipper),
	}
}

func dualRates(shipper, carrier string) func(*models.Corridor) {
	return func(c *models.Corridor) {
		c.ShipperPricePerKm = dbtest.Dec(shipper)
		c.CarrierPricePerKm = dbtest.Dec(carrier)
	}
}

func TestMatch(t *testing.T) {
	f := newFixture(t, nil)
	conn := f.client.DB()
	ctx := context.Background()

	oneWay := dbtest.Corridor(t, conn, enums.RegionAddisAbaba, enums.RegionOromia, nil)
	dbtest.Corridor(t, conn, enums.RegionAmhara, enums.RegionTigray, func(c *models.Corridor) {
		c.Direction = enums.CorridorDirectionBidirectional
	})
	dbtest.Corridor(t, conn, enums.RegionSomali, enums.RegionDjibouti, func(c *models.Corridor) {
		c.Direction = enums.CorridorDirectionRoundTrip
	})
	dbtest.Corridor(t, conn, enums.RegionSidama, enums.RegionOromia, func(c *models.Corridor) {
		c.IsActive = false
	})

	got, err := f.svc.Match(ctx, "Addis Ababa", "Oromia")
	require.NoError(t, err)
	require.Equal(t, oneWay.ID, got.ID)

	got, err = f.svc.Match(ctx, "Oromia", "Addis Ababa")
	require.NoError(t, err)
	require.Nil(t, got, "one-way corridors do not match in reverse")

	got, err = f.svc.Match(ctx, "Tigray", "Amhara")
	require.NoError(t, err)
	require.NotNil(t, got, "bidirectional corridors match in reverse")

	got, err = f.svc.Match(ctx, "Djibouti", "Somali")
	require.NoError(t, err)
	require.Nil(t, got, "round-trip corridors are forward only")

	got, err = f.svc.Match(ctx, "Sidama", "Oromia")
	require.NoError(t, err)
	require.Nil(t, got, "inactive corridors never match")

	got, err = f.svc.Match(ctx, "addis ababa", "Oromia")
	require.NoError(t, err)
	require.Nil(t, got, "matching is case-sensitive")
}

func TestMatchPrefersOldestCorridor(t *testing.T) {
	f := newFixture(t, nil)
	conn := f.client.DB()
	first := dbtest.Corridor(t, conn, enums.RegionAddisAbaba, enums.RegionOromia, func(c *models.Corridor) {
		c.CreatedAt = time.Now().Add(-time.Hour)
	})
	dbtest.Corridor(t, conn, enums.RegionAddisAbaba, enums.RegionOromia, nil)

	got, err := f.svc.Match(context.Background(), "Addis Ababa", "Oromia")
	require.NoError(t, err)
	require.Equal(t, first.ID, got.ID)
}

func TestResolveForLoad(t *testing.T) {
	f := newFixture(t, nil)
	conn := f.client.DB()
	ctx := context.Background()

	byRegion := dbtest.Corridor(t, conn, enums.RegionAddisAbaba, enums.RegionOromia, nil)
	stored := dbtest.Corridor(t, conn, enums.RegionAmhara, enums.RegionTigray, nil)
	inactive := dbtest.Corridor(t, conn, enums.RegionAfar, enums.RegionDjibouti, func(c *models.Corridor) { c.IsActive = false })

	t.Run("city fallback", func(t *testing.T) {
		got, err := f.svc.ResolveForLoad(ctx, &models.Load{PickupCity: "Addis Ababa", DeliveryCity: "Adama"})
		require.NoError(t, err)
		require.Equal(t, byRegion.ID, got.ID)
	})
	t.Run("explicit region wins", func(t *testing.T) {
		region := "Amhara"
		dest := "Tigray"
		got, err := f.svc.ResolveForLoad(ctx, &models.Load{PickupCity: "Addis Ababa", PickupRegion: &region, DeliveryCity: "Adama", DeliveryRegion: &dest})
		require.NoError(t, err)
		require.Equal(t, stored.ID, got.ID)
	})
	t.Run("stored corridor wins", func(t *testing.T) {
		got, err := f.svc.ResolveForLoad(ctx, &models.Load{CorridorID: &stored.ID, PickupCity: "Addis Ababa", DeliveryCity: "Adama"})
		require.NoError(t, err)
		require.Equal(t, stored.ID, got.ID)
	})
	t.Run("inactive stored corridor falls back to regions", func(t *testing.T) {
		got, err := f.svc.ResolveForLoad(ctx, &models.Load{CorridorID: &inactive.ID, PickupCity: "Addis Ababa", DeliveryCity: "Adama"})
		require.NoError(t, err)
		require.Equal(t, byRegion.ID, got.ID)
	})
	t.Run("unknown city", func(t *testing.T) {
		got, err := f.svc.ResolveForLoad(ctx, &models.Load{PickupCity: "Atlantis", DeliveryCity: "Adama"})
		require.NoError(t, err)
		require.Nil(t, got)
	})
	t.Run("invalid explicit region", func(t *testing.T) {
		bogus := "Narnia"
		got, err := f.svc.ResolveForLoad(ctx, &models.Load{PickupCity: "Addis Ababa", PickupRegion: &bogus, DeliveryCity: "Adama"})
		require.NoError(t, err)
		require.Nil(t, got)
	})
}

func TestAssignCorridorToLoad(t *testing.T) {
	f := newFixture(t, nil)
	conn := f.client.DB()
	ctx := context.Background()
	corridor := dbtest.Corridor(t, conn, enums.RegionAddisAbaba, enums.RegionOromia, dualRates("5", "3"))
	load := dbtest.Load(t, conn, f.shipper.ID, nil)

	res, err := f.svc.AssignCorridorToLoad(ctx, AssignCorridorInput{LoadID: load.ID, Actor: authz.System})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, corridor.ID, *res.CorridorID)
	require.True(t, decimal.NewFromInt(500).Equal(res.ShipperFee))
	require.True(t, decimal.NewFromInt(300).Equal(res.CarrierFee))
	require.True(t, decimal.NewFromInt(800).Equal(res.TotalFee))

	var stored models.Load
	require.NoError(t, conn.First(&stored, "id = ?", load.ID).Error)
	require.Equal(t, corridor.ID, *stored.CorridorID)
	require.True(t, decimal.NewFromInt(800).Equal(stored.ServiceFeeEtb))
	require.Equal(t, enums.FeeStatusPending, stored.ShipperFeeStatus)

	events, err := f.outbox.ListByAggregate(ctx, enums.AggregateLoad, load.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, enums.EventCorridorAssigned, events[0].EventType)
}

func TestAssignCorridorToLoadBusinessFailures(t *testing.T) {
	f := newFixture(t, nil)
	conn := f.client.DB()
	ctx := context.Background()

	res, err := f.svc.AssignCorridorToLoad(ctx, AssignCorridorInput{LoadID: uuid.New()})
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, errLoadNotFound, res.Error)

	noRoute := dbtest.Load(t, conn, f.shipper.ID, nil)
	res, err = f.svc.AssignCorridorToLoad(ctx, AssignCorridorInput{LoadID: noRoute.ID})
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, errNoCorridor, res.Error)

	dbtest.Corridor(t, conn, enums.RegionAddisAbaba, enums.RegionOromia, dualRates("5", "3"))
	settled := dbtest.Load(t, conn, f.shipper.ID, func(l *models.Load) {
		l.ShipperFeeStatus = enums.FeeStatusDeducted
	})
	res, err = f.svc.AssignCorridorToLoad(ctx, AssignCorridorInput{LoadID: settled.ID})
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, errFeesAlreadyHandled, res.Error)

	_, err = f.svc.AssignCorridorToLoad(ctx, AssignCorridorInput{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestAssignCorridorUsesRouteEstimate(t *testing.T) {
	estimator := &stubEstimator{km: decimal.RequireFromString("87.5")}
	f := newFixture(t, estimator)
	conn := f.client.DB()
	ctx := context.Background()
	dbtest.Corridor(t, conn, enums.RegionAddisAbaba, enums.RegionOromia, dualRates("2", "0"))

	load := dbtest.Load(t, conn, f.shipper.ID, nil)
	res, err := f.svc.AssignCorridorToLoad(ctx, AssignCorridorInput{LoadID: load.ID})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "175", res.ShipperFee.String())
	require.Equal(t, 1, estimator.calls)

	var stored models.Load
	require.NoError(t, conn.First(&stored, "id = ?", load.ID).Error)
	require.NotNil(t, stored.EstimatedTripKm)
	require.True(t, decimal.RequireFromString("87.5").Equal(*stored.EstimatedTripKm))

	actual := dbtest.Load(t, conn, f.shipper.ID, func(l *models.Load) { l.ActualTripKm = dbtest.Dec("50") })
	res, err = f.svc.AssignCorridorToLoad(ctx, AssignCorridorInput{LoadID: actual.ID})
	require.NoError(t, err)
	require.Equal(t, "100", res.ShipperFee.String())
	require.Equal(t, 1, estimator.calls, "loads with a distance skip the estimator")
}

func TestAssignCorridorReusesSuppliedEstimate(t *testing.T) {
	estimator := &stubEstimator{km: decimal.NewFromInt(999)}
	f := newFixture(t, estimator)
	conn := f.client.DB()
	dbtest.Corridor(t, conn, enums.RegionAddisAbaba, enums.RegionOromia, dualRates("5", "0"))
	load := dbtest.Load(t, conn, f.shipper.ID, nil)

	res, err := f.svc.AssignCorridorToLoad(context.Background(), AssignCorridorInput{
		LoadID:          load.ID,
		EstimatedTripKm: dbtest.Dec("400"),
	})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "2000", res.ShipperFee.String())
	require.Zero(t, estimator.calls)

	var stored models.Load
	require.NoError(t, conn.First(&stored, "id = ?", load.ID).Error)
	require.NotNil(t, stored.EstimatedTripKm)
	require.Equal(t, "400", stored.EstimatedTripKm.String())
}

func TestAssignCorridorFallsBackWhenEstimatorFails(t *testing.T) {
	estimator := &stubEstimator{err: errors.New("quota exceeded")}
	f := newFixture(t, estimator)
	conn := f.client.DB()
	dbtest.Corridor(t, conn, enums.RegionAddisAbaba, enums.RegionOromia, dualRates("1", "0"))
	load := dbtest.Load(t, conn, f.shipper.ID, nil)

	res, err := f.svc.AssignCorridorToLoad(context.Background(), AssignCorridorInput{LoadID: load.ID})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "100", res.ShipperFee.String())
}

func TestCorridorAdminLifecycle(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	admin := authz.Actor{UserID: uuid.New(), Role: enums.RoleAdmin}

	created, err := f.svc.Create(ctx, CreateCorridorInput{
		Name:              "Addis - Djibouti",
		OriginRegion:      enums.RegionAddisAbaba,
		DestinationRegion: enums.RegionDjibouti,
		DistanceKm:        decimal.NewFromInt(910),
		PricePerKm:        decimal.RequireFromString("1.5"),
		Shipper:           PartyPricing{PricePerKm: dbtest.Dec("2")},
		Actor:             admin,
	})
	require.NoError(t, err)
	require.Equal(t, enums.CorridorDirectionOneWay, created.Direction)
	require.True(t, created.IsActive)

	_, err = f.svc.Create(ctx, CreateCorridorInput{
		Name:              "Addis - Djibouti",
		OriginRegion:      enums.RegionAddisAbaba,
		DestinationRegion: enums.RegionDjibouti,
		DistanceKm:        decimal.NewFromInt(910),
		Actor:             admin,
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	bidi := enums.CorridorDirectionBidirectional
	updated, err := f.svc.Update(ctx, UpdateCorridorInput{
		ID:        created.ID,
		Direction: &bidi,
		Carrier:   &PartyPricing{PricePerKm: dbtest.Dec("0.75")},
		Actor:     admin,
	})
	require.NoError(t, err)
	require.Equal(t, bidi, updated.Direction)
	require.True(t, decimal.RequireFromString("0.75").Equal(*updated.CarrierPricePerKm))

	deactivated, err := f.svc.Deactivate(ctx, created.ID, admin)
	require.NoError(t, err)
	require.False(t, deactivated.IsActive)

	active := true
	page, err := f.svc.List(ctx, ListFilter{IsActive: &active}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Empty(t, page.Items)

	events, err := f.outbox.ListByAggregate(ctx, enums.AggregateCorridor, created.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)

	_, err = f.svc.Update(ctx, UpdateCorridorInput{ID: uuid.New(), IsActive: &active})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = f.svc.Update(ctx, UpdateCorridorInput{ID: created.ID})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t, nil)
	base := CreateCorridorInput{
		Name:              "x",
		OriginRegion:      enums.RegionAddisAbaba,
		DestinationRegion: enums.RegionOromia,
		DistanceKm:        decimal.NewFromInt(10),
	}
	cases := map[string]func(*CreateCorridorInput){
		"name":        func(in *CreateCorridorInput) { in.Name = " " },
		"origin":      func(in *CreateCorridorInput) { in.OriginRegion = "Mars" },
		"destination": func(in *CreateCorridorInput) { in.DestinationRegion = "oromia" },
		"direction":   func(in *CreateCorridorInput) { in.Direction = "SIDEWAYS" },
		"distance":    func(in *CreateCorridorInput) { in.DistanceKm = decimal.Zero },
		"price":       func(in *CreateCorridorInput) { in.PricePerKm = decimal.NewFromInt(-1) },
		"promo":       func(in *CreateCorridorInput) { in.PromoDiscountPct = dbtest.Dec("101") },
		"carrier":     func(in *CreateCorridorInput) { in.Carrier.PricePerKm = dbtest.Dec("-2") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := base
			mutate(&in)
			_, err := f.svc.Create(context.Background(), in)
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}
}

func TestListPaginates(t *testing.T) {
	f := newFixture(t, nil)
	conn := f.client.DB()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		createdAt := base.Add(time.Duration(i) * time.Minute)
		dbtest.Corridor(t, conn, enums.RegionAddisAbaba, enums.RegionOromia, func(c *models.Corridor) {
			c.CreatedAt = createdAt
		})
	}
	dbtest.Corridor(t, conn, enums.RegionAmhara, enums.RegionOromia, nil)

	origin := enums.RegionAddisAbaba
	first, err := f.svc.List(context.Background(), ListFilter{OriginRegion: &origin}, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := f.svc.List(context.Background(), ListFilter{OriginRegion: &origin}, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	require.Empty(t, second.NextCursor)
}

type failingListRepo struct {
	Repository
	err error
}

func (r failingListRepo) List(context.Context, ListFilter, pagination.Params) ([]models.Corridor, error) {
	return nil, r.err
}

func TestListErrorCodes(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.List(context.Background(), ListFilter{}, pagination.Params{Limit: 2, Cursor: "not-base64!!"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	conn := f.client.DB()
	svc, err := NewService(failingListRepo{Repository: NewRepository(conn), err: errors.New("connection reset")},
		repo.NewLoadRepository(conn), f.client, outbox.NewService(f.outbox, nil), nil, logger.Nop())
	require.NoError(t, err)
	_, err = svc.List(context.Background(), ListFilter{}, pagination.Params{Limit: 2})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency), "got %v", err)
}
