package storage

import (
	"errors"
	"fmt"

	"pasr-server/models"

	"github.com/kataras/golog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Store is the relational store. Every method takes the request context.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}
	return db, nil
}

// Migrate creates the schema, the PostGIS extension and one GiST index per
// listing table over the location expression used by FindNear.
func Migrate(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS postgis").Error; err != nil {
		return fmt.Errorf("enable postgis: %w", err)
	}

	err := db.AutoMigrate(
		&models.Customer{}, // listings, reviews and audit rows reference customers
		&models.Provider{},
		&models.Shop{},
		&models.Item{},
		&models.Product{},
		&models.Review{},
		&models.AvailabilityCalendar{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, kind := range []models.ListingKind{models.ProviderListing, models.ShopListing, models.ProductListing} {
		stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_location ON %s USING GIST ((%s))",
			kind.Table(), kind.Table(), locationExpr)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create %s spatial index: %w", kind.Table(), err)
		}
	}

	golog.Info("database migrations complete")
	return nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
