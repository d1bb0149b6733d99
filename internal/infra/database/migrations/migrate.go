package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// Migrate prepares a database for the report: it creates the platform
// tables when they do not exist yet (standalone and development
// databases), adds the event lookup index and installs default settings.
func Migrate(db *gorm.DB) error {
	options := *gormigrate.DefaultOptions
	options.TableName = db.NamingStrategy.TableName("report_failedemails_migrations")

	m := gormigrate.New(db, &options, []*gormigrate.Migration{
		createPlatformTables(),
		createEventNameIndex(),
		installDefaultSettings(),
	})

	return m.Migrate()
}
