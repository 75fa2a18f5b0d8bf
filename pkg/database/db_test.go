package database

import (
	"testing"

	"go.uber.org/zap"

	"github.com/MRsanjuedit/FPMS-Backend/config"
)

type migrateFixture struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func TestNewDB_SQLiteAutoMigrate(t *testing.T) {
	cfg := &config.DatabaseConfig{Driver: "sqlite"}
	db, err := NewDB(cfg, "error", zap.NewNop())
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	if got := sqlDB.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("expected sqlite pool capped at 1, got %d", got)
	}

	if err := Migrate(db, "sqlite", zap.NewNop(), &migrateFixture{}); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if !db.Migrator().HasTable(&migrateFixture{}) {
		t.Error("expected fixture table to exist")
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(entries)%2 != 0 || len(entries) == 0 {
		t.Errorf("expected paired up/down migrations, got %d files", len(entries))
	}
}
