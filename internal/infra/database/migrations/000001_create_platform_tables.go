package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/failedemails-report/internal/repository"
	"gorm.io/gorm"
)

func createPlatformTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_platform_tables",
		Migrate: func(tx *gorm.DB) error {
			// Existing platform tables are left untouched.
			for _, model := range []any{
				&repository.UserModel{},
				&repository.LogEntryModel{},
				&repository.ConfigPluginModel{},
			} {
				if tx.Migrator().HasTable(model) {
					continue
				}
				if err := tx.Migrator().CreateTable(model); err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return nil
		},
	}
}
