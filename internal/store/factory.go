package store

import (
	"database/sql"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"fieldtel/internal/config"
)

// NewRepository selects the store backend from configuration. Exactly one
// of mongoDB/sqlDB must be non-nil, matching the configured driver.
func NewRepository(cfg config.DatabaseConfig, mongoDB *mongo.Database, sqlDB *sql.DB) (Repository, error) {
	switch cfg.Driver {
	case "", "mongodb":
		if mongoDB == nil {
			return nil, fmt.Errorf("mongodb driver selected but no database connection provided")
		}
		return NewMongoDBRepository(mongoDB), nil
	case "postgres":
		if sqlDB == nil {
			return nil, fmt.Errorf("postgres driver selected but no database connection provided")
		}
		return NewPostgresRepository(sqlDB), nil
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Driver)
	}
}
