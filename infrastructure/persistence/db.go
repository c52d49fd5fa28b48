package persistence

import (
	"fmt"

	"github.com/praxisops/praxis/internal/database"
)

// AutoMigrate creates or updates every table the stores depend on.
func AutoMigrate(db database.Database) error {
	models := []any{
		&EntryModel{},
		&RunModel{},
		&ServiceModel{},
		&IncidentModel{},
		&ActionModel{},
		&JobModel{},
		&LogModel{},
		&AuditModel{},
		&ScanModel{},
		&WaiverModel{},
		&BookModel{},
	}
	if err := db.GORM().AutoMigrate(models...); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
