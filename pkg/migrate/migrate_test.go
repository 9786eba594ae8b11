package migrate

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	require.NoError(t, ValidateEmbedded())
}

func TestSettlementMigrationsCarryGuards(t *testing.T) {
	checks := map[string][]string{
		"*_create_loads.sql": {
			"CREATE TABLE IF NOT EXISTS loads",
			"shipper_fee_status TEXT NOT NULL DEFAULT 'PENDING'",
			"settlement_status TEXT NOT NULL DEFAULT 'PENDING'",
			"DROP TABLE IF EXISTS loads",
		},
		"*_create_financial_accounts.sql": {
			"CHECK (balance >= 0)",
			"ux_financial_accounts_org_type",
			"'PLATFORM_REVENUE'",
		},
		"*_create_journal_entries.sql": {
			"CHECK (amount > 0)",
			"REFERENCES financial_accounts(id)",
		},
	}

	for pattern, subs := range checks {
		matches, err := fs.Glob(embeddedMigrations, embeddedDir+"/"+pattern)
		require.NoError(t, err)
		require.Len(t, matches, 1, pattern)

		data, err := fs.ReadFile(embeddedMigrations, matches[0])
		require.NoError(t, err)
		for _, sub := range subs {
			assert.Contains(t, string(data), sub, matches[0])
		}
	}
}

func TestUpAppliesOnSQLite(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Up(context.Background(), sqlDB, Dialect("sqlite")))

	var platformAccounts int64
	require.NoError(t, conn.Table("financial_accounts").Where("account_type = ?", "PLATFORM_REVENUE").Count(&platformAccounts).Error)
	assert.EqualValues(t, 1, platformAccounts)
}

func TestCreateSQLMigrationAndValidateDir(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add Corridor Notes!")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_add_corridor_notes.sql"))
	require.NoError(t, ValidateDir(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	assert.Error(t, ValidateDir(dir))
}

func TestCreateSQLMigrationOrdersAfterExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20300101000000_create_loads.sql"),
		[]byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	now := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	path, err := createSQLMigration(dir, "add dispute reason", now)
	require.NoError(t, err)
	assert.Equal(t, "20300101000001_add_dispute_reason.sql", filepath.Base(path))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "-- +goose Up")
	assert.Contains(t, string(body), "-- +goose Down")

	_, err = createSQLMigration(dir, "Create Loads", now)
	require.ErrorContains(t, err, "already exists")

	_, err = createSQLMigration(dir, "!!!", now)
	require.Error(t, err)
	require.NoError(t, ValidateDir(dir))
}

func TestDialect(t *testing.T) {
	assert.Equal(t, "sqlite3", Dialect("SQLite"))
	assert.Equal(t, "postgres", Dialect("postgres"))
	assert.Equal(t, "postgres", Dialect(""))
}
