package database

import "jobcrm/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Order matters for AutoMigrate: referenced tables come first.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Profile{},
		&models.Company{},
		&models.Position{},
		&models.Application{},
		&models.Event{},
	}
}
