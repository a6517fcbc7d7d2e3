package database

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/config"
	"github.com/sangkips/tableside-api/internal/domain/entity"
	"github.com/sangkips/tableside-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Info("connected to PostgreSQL", zap.String("host", cfg.Host), zap.String("database", cfg.Name))
	return db, nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info", "debug":
		return logger.Info
	default:
		return logger.Warn
	}
}

// AutoMigrate runs GORM auto-migration for all entities and creates the
// bill number sequence
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")

	err := db.AutoMigrate(
		&entity.Outlet{},
		&entity.Table{},

		&entity.Order{},
		&entity.OrderLine{},

		&entity.Customer{},
		&entity.Bill{},
		&entity.BillLine{},
		&entity.DuePayment{},

		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := db.Exec("CREATE SEQUENCE IF NOT EXISTS bill_number_seq START 1").Error; err != nil {
		return fmt.Errorf("failed to create bill number sequence: %w", err)
	}

	log.Info("database migrations completed")
	return nil
}

// SeedOutlet builds the outlet described by cfg. It returns nil when no
// outlet is configured.
func SeedOutlet(cfg config.SeedConfig) (*entity.Outlet, error) {
	slug := cfg.Slug()
	if slug == "" {
		return nil, nil
	}
	name := cfg.OutletName
	if name == "" {
		name = slug
	}
	outlet := &entity.Outlet{Name: name, Slug: slug}
	if cfg.OutletTaxPercent != "" {
		pct, err := decimal.NewFromString(cfg.OutletTaxPercent)
		if err != nil {
			return nil, fmt.Errorf("invalid OUTLET_TAX_PERCENT: %w", err)
		}
		outlet.Settings.DefaultTaxPercent = &pct
	}
	return outlet, nil
}

// SeedTable builds the n-th dining table of an outlet
func SeedTable(outletID uuid.UUID, n int) entity.Table {
	return entity.Table{
		OutletID: outletID,
		Label:    fmt.Sprintf("T%d", n),
		Capacity: 4,
		Status:   enum.TableStatusAvailable,
	}
}

// SeedDefaultData creates the configured outlet and its dining tables when
// they do not exist yet
func SeedDefaultData(db *gorm.DB, cfg config.SeedConfig, log *zap.Logger) error {
	seed, err := SeedOutlet(cfg)
	if err != nil {
		return err
	}
	if seed == nil {
		log.Info("OUTLET_SLUG not set, skipping seed")
		return nil
	}

	var outlet entity.Outlet
	if err := db.Where("slug = ?", seed.Slug).First(&outlet).Error; err != nil {
		outlet = *seed
		if err := db.Create(&outlet).Error; err != nil {
			return fmt.Errorf("failed to create outlet: %w", err)
		}
		log.Info("outlet created", zap.String("slug", outlet.Slug), zap.String("outlet_id", outlet.ID.String()))
	}

	var existing int64
	db.Model(&entity.Table{}).Where("outlet_id = ?", outlet.ID).Count(&existing)
	for i := int(existing) + 1; i <= cfg.TableCount; i++ {
		table := SeedTable(outlet.ID, i)
		if err := db.Create(&table).Error; err != nil {
			log.Warn("failed to create table", zap.String("label", table.Label), zap.Error(err))
		}
	}

	log.Info("default data seeding completed")
	return nil
}
