package database

import (
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/jevonc/portfolio-backend/models"
)

func Migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "20250105_create_projects_table",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Project{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(string(models.KindProject))
			},
		},
		{
			ID: "20250112_create_achievements_table",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Achievement{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(string(models.KindAchievement))
			},
		},
	}
}

// Migrate applies every pending migration.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, Migrations())
	if err := m.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// RollbackLast reverts the most recently applied migration.
func RollbackLast(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, Migrations())
	if err := m.RollbackLast(); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}
