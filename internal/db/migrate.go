package db

import (
	"fmt"                        // Error wrapping
	"pollopollo/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus"

	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library
)

// Models lists every table owned by the service, in no particular order
var Models = []any{
	&domain.User{},
	&domain.UserRole{},
	&domain.Producer{},
	&domain.Receiver{},
	&domain.Product{},
	&domain.Application{},
	&domain.Contract{},
	&domain.Donor{},
	&domain.ByteExchangeRate{},
}

// Open connects to MySQL using the given DSN
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

// AutoMigrate creates tables, foreign keys and indexes, then makes sure the single
// exchange rate row exists
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	// FirstOrCreate keeps an existing rate untouched
	rate := domain.ByteExchangeRate{ID: 1}
	if err := db.Where(domain.ByteExchangeRate{ID: 1}).FirstOrCreate(&rate).Error; err != nil {
		return fmt.Errorf("seed exchange rate: %w", err)
	}
	return nil
}

// Migrate performs automatic migration for the database schema
func Migrate(dsn string) {
	db, err := Open(dsn) // Open a connection to the database
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Log fatal error if connection fails
	}
	if err := AutoMigrate(db); err != nil {
		logrus.Fatalf("migration failed: %v", err) // Log fatal error if migration fails
	}
	logrus.Info("Migration completed.") // Log successful migration
}
