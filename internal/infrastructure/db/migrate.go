package db

import (
	"juvenat-admin/internal/domain/requisition"
	"juvenat-admin/internal/domain/stock"

	"gorm.io/gorm"
)

// Migrate creates the tables owned by this service on a local development
// database. The hosted backend manages its own schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&requisition.Requisition{}, &stock.Stock{})
}
