package models

type Model interface{}

// Migrator is satisfied by *gorm.DB and the repos wrapper.
type Migrator interface {
	AutoMigrate(...interface{}) error
}

var models = []Model{}

func AutoMigrate(db Migrator) error {
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			return err
		}
	}
	return nil
}

func registerForAutomigration(m Model) {
	models = append(models, m)
}
