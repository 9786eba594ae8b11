// Package dbtest opens throwaway sqlite databases with the full schema applied.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/freightlink-backend/pkg/db"
	"github.com/angelmondragon/freightlink-backend/pkg/db/models"
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
	"github.com/angelmondragon/freightlink-backend/pkg/migrate"
)

// PlatformAccountID is the revenue account seeded by the migrations.
var PlatformAccountID = uuid.MustParse("00000000-0000-0000-0000-00000000f001")

// Open returns a migrated in-memory database private to the calling test.
func Open(t *testing.T) *db.Client {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	client, err := db.OpenSQLite(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	sqlDB, err := client.SQL()
	require.NoError(t, err)
	require.NoError(t, migrate.Up(context.Background(), sqlDB, "sqlite3"))
	return client
}

// Organization inserts an organization of the given type.
func Organization(t *testing.T, conn *gorm.DB, orgType enums.OrganizationType) models.Organization {
	t.Helper()
	org := models.Organization{Name: string(orgType) + " " + uuid.NewString()[:8], Type: orgType}
	require.NoError(t, conn.Create(&org).Error)
	return org
}

// Wallet inserts a wallet for the organization with the given balance.
func Wallet(t *testing.T, conn *gorm.DB, orgID uuid.UUID, accountType enums.AccountType, balance string) models.FinancialAccount {
	t.Helper()
	account := models.FinancialAccount{
		OrganizationID: &orgID,
		AccountType:    accountType,
		Balance:        decimal.RequireFromString(balance),
		Currency:       "ETB",
		IsActive:       true,
	}
	require.NoError(t, conn.Create(&account).Error)
	return account
}

// Truck inserts an active truck owned by the carrier.
func Truck(t *testing.T, conn *gorm.DB, carrierID uuid.UUID) models.Truck {
	t.Helper()
	truck := models.Truck{OrganizationID: carrierID, PlateNumber: "ET-" + uuid.NewString()[:6], IsActive: true}
	require.NoError(t, conn.Create(&truck).Error)
	return truck
}

// Corridor inserts an active corridor; mutate may adjust it before insert.
func Corridor(t *testing.T, conn *gorm.DB, origin, destination enums.Region, mutate func(*models.Corridor)) models.Corridor {
	t.Helper()
	corridor := models.Corridor{
		Name:              string(origin) + " - " + string(destination) + " " + uuid.NewString()[:6],
		OriginRegion:      origin,
		DestinationRegion: destination,
		Direction:         enums.CorridorDirectionOneWay,
		DistanceKm:        decimal.NewFromInt(100),
		PricePerKm:        decimal.Zero,
		IsActive:          true,
	}
	if mutate != nil {
		mutate(&corridor)
	}
	require.NoError(t, conn.Create(&corridor).Error)
	if !corridor.IsActive {
		require.NoError(t, conn.Model(&corridor).Update("is_active", false).Error)
	}
	return corridor
}

// Load inserts a posted load for the shipper; mutate may adjust it before insert.
func Load(t *testing.T, conn *gorm.DB, shipperID uuid.UUID, mutate func(*models.Load)) models.Load {
	t.Helper()
	load := models.Load{
		ShipperOrganizationID: shipperID,
		PickupCity:            "Addis Ababa",
		DeliveryCity:          "Adama",
		Status:                enums.LoadStatusPosted,
		ShipperFeeStatus:      enums.FeeStatusPending,
		CarrierFeeStatus:      enums.FeeStatusPending,
		SettlementStatus:      enums.SettlementStatusPending,
	}
	if mutate != nil {
		mutate(&load)
	}
	require.NoError(t, conn.Create(&load).Error)
	return load
}

// Dec parses a decimal literal.
func Dec(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}
