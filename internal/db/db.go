package db

import (
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/barbergrid/api/internal/config"
	"github.com/barbergrid/api/internal/models"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get sql.DB")
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.Barbershop{},
		&models.User{},
		&models.Service{},
		&models.StaffService{},
		&models.WeeklyRule{},
		&models.DateException{},
		&models.Client{},
		&models.Appointment{},
		&models.AuditLog{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate")
	}

	// Store-level backstop for the at-most-one booking guarantee: no two
	// occupying appointments of one staff member may overlap, whatever the
	// application layer does. Violations surface as SQLSTATE 23P01.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		log.Warn().Err(err).Msg("btree_gist unavailable, overlap backstop disabled")
	} else if err := ensureOverlapConstraint(db); err != nil {
		log.Warn().Err(err).Msg("overlap backstop not installed")
	}

	// One exception per owner and date, enforced by the store as well.
	// COALESCE folds shop-level rows (NULL staff_id) into one key.
	if err := db.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS idx_exception_owner_date
        ON date_exceptions (barbershop_id, COALESCE(staff_id, 0), date)
    `).Error; err != nil {
		log.Warn().Err(err).Msg("exception uniqueness index not installed")
	}

	return db
}

// ensureOverlapConstraint adds the exclusion constraint once; ALTER TABLE has
// no IF NOT EXISTS form, so presence is checked in the catalog first.
func ensureOverlapConstraint(db *gorm.DB) error {
	var present bool
	if err := db.Raw(
		`SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'appointments_no_overlap')`,
	).Scan(&present).Error; err != nil {
		return err
	}
	if present {
		return nil
	}

	return db.Exec(`
        ALTER TABLE appointments
        ADD CONSTRAINT appointments_no_overlap
        EXCLUDE USING gist (
            staff_id WITH =,
            date WITH =,
            int4range(start_minute, end_minute) WITH &&
        )
        WHERE (status IN ('scheduled', 'confirmed', 'in_progress', 'completed'))
    `).Error
}
