package migrate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agrogas/agrogas-backend/pkg/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	require.NoError(t, ValidateEmbedded())
}

func TestOrdersMigrationContainsConstraints(t *testing.T) {
	data, err := embedded.ReadFile("migrations/postgres/20250301090300_create_orders.sql")
	require.NoError(t, err)
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"total_price NUMERIC(12,2) NOT NULL",
		"FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE",
		"CHECK (qty_kg > 0)",
		"DROP TABLE IF EXISTS order_items",
	}
	for _, sub := range checks {
		require.Contains(t, content, sub)
	}
}

func TestRunUpAndDownOnSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:migrate_%s?mode=memory&cache=shared", uuid.NewString())), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	ctx := context.Background()
	require.NoError(t, Run(ctx, sqlDB, DialectSQLite, "up"))

	for _, table := range []string{"records", "users", "pricing_configs", "orders", "order_items"} {
		require.True(t, conn.Migrator().HasTable(table), "missing table %s", table)
	}

	require.NoError(t, MigrateToVersion(ctx, sqlDB, DialectSQLite, "20250301090100"))
	require.False(t, conn.Migrator().HasTable("orders"))
	require.True(t, conn.Migrator().HasTable("users"))
}

func TestRunRejectsUnknownDialect(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:migrate_%s?mode=memory&cache=shared", uuid.NewString())), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)

	err = Run(context.Background(), sqlDB, "mysql", "up")
	require.ErrorContains(t, err, "unsupported migration dialect")
}

func TestDialectFor(t *testing.T) {
	require.Equal(t, DialectSQLite, DialectFor(config.DBConfig{Driver: "sqlite"}))
	require.Equal(t, DialectPostgres, DialectFor(config.DBConfig{Driver: "postgres"}))
}

func TestCreateSQLMigrationWritesEveryDialect(t *testing.T) {
	root := t.TempDir()
	now := time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)

	paths, err := CreateSQLMigration(root, "Add Record Notes!", now)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(root, DialectPostgres, "20260504103000_add_record_notes.sql"),
		filepath.Join(root, DialectSQLite, "20260504103000_add_record_notes.sql"),
	}, paths)

	pg, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	require.Contains(t, string(pg), "-- +goose StatementBegin")

	lite, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	require.Contains(t, string(lite), "-- +goose Down")
	require.NotContains(t, string(lite), "StatementBegin")

	for _, dialect := range Dialects {
		require.NoError(t, ValidateDir(filepath.Join(root, dialect)))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, DialectSQLite, "bad-name.sql"), []byte("x"), 0o644))
	require.Error(t, ValidateDir(filepath.Join(root, DialectSQLite)))
}

func TestCreateSQLMigrationLeavesNothingOnConflict(t *testing.T) {
	root := t.TempDir()
	now := time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)

	sqliteDir := filepath.Join(root, DialectSQLite)
	require.NoError(t, os.MkdirAll(sqliteDir, 0o755))
	taken := filepath.Join(sqliteDir, "20260504103000_add_notes.sql")
	require.NoError(t, os.WriteFile(taken, []byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	_, err := CreateSQLMigration(root, "add notes", now)
	require.ErrorContains(t, err, "already exists")
	require.NoFileExists(t, filepath.Join(root, DialectPostgres, "20260504103000_add_notes.sql"))
	require.FileExists(t, taken)

	_, err = CreateSQLMigration(root, "  !! ", now)
	require.Error(t, err)
}
