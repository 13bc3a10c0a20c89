package domain

import "gorm.io/gorm"

// MigrateDatabase func - Auto-migrate database schema
func MigrateDatabase(db *gorm.DB) error {
	if db == nil {
		return ErrInitialization
	}
	return db.AutoMigrate(&SessionRecord{})
}
