package database

import (
	"fmt"
	"log"
	"strings"

	"github.com/igreja-retiro/retiro-api/internal/config"
	"github.com/igreja-retiro/retiro-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func Connect(cfg *config.Config) *gorm.DB {
	dsn := cfg.DatabasePath
	if cfg.DatabaseDriver == "postgres" {
		dsn = cfg.DatabaseDSN
	}

	db, err := Open(cfg.DatabaseDriver, dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto Migrate
	if err := Migrate(db); err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}

	return db
}

// Open connects to a sqlite file (or ":memory:") or a postgres DSN.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Every connection to an in-memory sqlite database is a new, empty database.
	if dialector.Name() == "sqlite" && strings.Contains(dsn, ":memory:") {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Church{},
		&models.Registrant{},
		&models.RegistrantHistory{},
		&models.User{},
		&models.APIKey{},
	)
}
