// Package persistence provides GORM-backed storage implementations.
package persistence

import (
	"github.com/raglet/raglet/internal/database"
)

// AutoMigrate runs GORM auto migration for all models.
func AutoMigrate(db database.Database) error {
	return db.GORM().AutoMigrate(
		&DocumentModel{},
		&ChunkModel{},
		&JobModel{},
	)
}
