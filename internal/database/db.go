package database

import (
	"fmt"

	"smartstore-backend/internal/catalog"
	"smartstore-backend/internal/config"
	"smartstore-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var DB *gorm.DB

func Init(cfg *config.Config, log *zap.Logger) error {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	if err := Migrate(DB, log); err != nil {
		return err
	}

	log.Info("database connected, migrations complete")
	return nil
}

// Migrate creates the schema, moves legacy branch assignments and seeds the
// category rows.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	err := db.AutoMigrate(
		&models.Branch{},
		&models.User{},
		&models.ProductCategory{},
		&models.Product{},
		&models.BranchProductOrder{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := backfillUserBranches(db, log); err != nil {
		return err
	}
	return seedCategories(db)
}

// backfillUserBranches turns the legacy users.store_location value into a
// user_branches row when the user has no branch assignment yet. The legacy
// value may hold either a branch id or a branch code.
func backfillUserBranches(db *gorm.DB, log *zap.Logger) error {
	var users []models.User
	err := db.Preload("Branches").
		Where("store_location IS NOT NULL AND store_location <> ''").
		Find(&users).Error
	if err != nil {
		return fmt.Errorf("load legacy users: %w", err)
	}

	for i := range users {
		u := &users[i]
		if len(u.Branches) > 0 {
			continue
		}

		var branch models.Branch
		if err := db.Where("id = ? OR code = ?", *u.StoreLocation, *u.StoreLocation).First(&branch).Error; err != nil {
			log.Warn("legacy store location does not match a branch",
				zap.Uint("user_id", u.ID),
				zap.String("store_location", *u.StoreLocation))
			continue
		}
		if err := db.Model(u).Association("Branches").Append(&branch); err != nil {
			return fmt.Errorf("assign branch %s to user %d: %w", branch.ID, u.ID, err)
		}
		log.Info("legacy store location migrated",
			zap.Uint("user_id", u.ID),
			zap.String("branch_id", branch.ID))
	}
	return nil
}

// seedCategories makes sure every canonical slug has a category row; existing
// display names are left alone.
func seedCategories(db *gorm.DB) error {
	for i, slug := range catalog.SlugOrder() {
		labels := catalog.DefaultLabels(slug)
		displayName := string(slug)
		if len(labels) > 0 {
			displayName = labels[0]
		}

		cat := models.ProductCategory{Slug: string(slug), DisplayName: displayName, SortOrder: i}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"sort_order"}),
		}).Create(&cat).Error
		if err != nil {
			return fmt.Errorf("seed category %s: %w", slug, err)
		}
	}
	return nil
}
