package db

import (
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

func EnsureSchema(d *gorm.DB, schema string) error {
	return d.Exec("CREATE SCHEMA IF NOT EXISTS " + pq.QuoteIdentifier(schema)).Error
}

// Migrate creates the schema (when set) and the tables for models. The server
// never calls it; tables are expected to exist already.
func Migrate(d *gorm.DB, schema string, models ...any) error {
	if schema != "" {
		if err := EnsureSchema(d, schema); err != nil {
			return fmt.Errorf("failed to ensure schema %s: %w", schema, err)
		}
	}

	if err := d.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to auto-migrate tables: %w", err)
	}
	return nil
}
