package main

import (
	"pollopollo/internal/config" // Custom import path (Config)
	"pollopollo/internal/db"     // Custom import path (Database)

	"github.com/sirupsen/logrus"
)

// Main entry point for migration
func main() {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	db.Migrate(cfg.MySQLDSN())
}
