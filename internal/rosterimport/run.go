package rosterimport

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Config struct {
	DatabaseURL        string
	DistrictsCSV       string
	RepresentativesCSV string
	Source             string
	Wipe               bool
}

// Run imports a district catalog and representative roster into the
// database, upserting on the stable keys. With Wipe it truncates first,
// which is how a new electoral cycle replaces the old one.
func Run(cfg Config) error {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	districts, err := ParseDistricts(cfg.DistrictsCSV)
	if err != nil {
		return fmt.Errorf("parse districts: %w", err)
	}
	reps, err := ParseRepresentatives(cfg.RepresentativesCSV)
	if err != nil {
		return fmt.Errorf("parse representatives: %w", err)
	}

	now := time.Now().UTC()
	for i := range reps {
		reps[i].Source = cfg.Source
		reps[i].LastSynced = now
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if cfg.Wipe {
			if err := tx.Exec(`TRUNCATE districts.representatives, districts.districts`).Error; err != nil {
				return fmt.Errorf("wipe: %w", err)
			}
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).CreateInBatches(districts, 500).Error; err != nil {
			return fmt.Errorf("upsert districts: %w", err)
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			UpdateAll: true,
		}).CreateInBatches(reps, 500).Error; err != nil {
			return fmt.Errorf("upsert representatives: %w", err)
		}

		log.Printf("imported %d districts, %d representatives", len(districts), len(reps))
		return nil
	})
}
