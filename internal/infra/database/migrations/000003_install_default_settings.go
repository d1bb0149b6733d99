package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/failedemails-report/internal/repository"
	"github.com/kursadbilgin/failedemails-report/internal/settings"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func installDefaultSettings() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000003_install_default_settings",
		Migrate: func(tx *gorm.DB) error {
			for _, def := range settings.Definitions() {
				value := def.DefaultString()
				row := repository.ConfigPluginModel{Plugin: def.Plugin, Name: def.Name, Value: &value}
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			for _, def := range settings.Definitions() {
				if err := tx.Where("plugin = ? AND name = ?", def.Plugin, def.Name).
					Delete(&repository.ConfigPluginModel{}).Error; err != nil {
					return err
				}
			}
			return nil
		},
	}
}
