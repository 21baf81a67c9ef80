package db

import (
	"github.com/fiesta-dev/fiesta/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens a postgres-backed gorm handle. The handle is passed
// explicitly to everything that needs it; there is no package-level
// connection.
func Connect(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

// Migrate creates any missing tables for the domain models.
func Migrate(conn *gorm.DB) error {
	tables := []interface{}{
		&models.User{},
		&models.Party{},
		&models.Participation{},
		&models.Item{},
		&models.Notification{},
	}

	migrator := conn.Migrator()

	for _, table := range tables {
		if !migrator.HasTable(table) {
			if err := conn.AutoMigrate(table); err != nil {
				return err
			}
		}
	}

	return nil
}
