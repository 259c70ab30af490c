// Package dbtest opens throwaway SQLite databases carrying the full schema.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/agrogas/agrogas-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open returns an isolated in-memory database. The pool is capped at one
// connection so transactions serialize the way they do against a real file.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:agrogas_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return conn
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// MustCreateRecord inserts a record with the given mass and revenue estimate.
// available_kg starts equal to mass.
func MustCreateRecord(t testing.TB, conn *gorm.DB, mass, revenue float64) *models.Record {
	t.Helper()
	rec := &models.Record{
		FarmerName:      "Asha",
		Location:        "Nashik",
		Phone:           "9876500000",
		MassKg:          Ptr(mass),
		AvailableKg:     Ptr(mass),
		MassSource:      "measured",
		RevenueEstimate: Ptr(revenue),
	}
	if err := conn.Create(rec).Error; err != nil {
		t.Fatalf("create record: %v", err)
	}
	return rec
}

// ReloadRecord reads the current state of a record.
func ReloadRecord(t testing.TB, conn *gorm.DB, id int64) models.Record {
	t.Helper()
	var rec models.Record
	if err := conn.First(&rec, "id = ?", id).Error; err != nil {
		t.Fatalf("reload record %d: %v", id, err)
	}
	return rec
}
