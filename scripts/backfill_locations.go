package main

import (
	"context"
	"errors"
	"flag"
	"time"

	"pasr-server/config"
	"pasr-server/services"
	"pasr-server/storage"

	"github.com/kataras/golog"
)

// Runs the schema migration, then geocodes the profile address of customers
// that have no coordinates yet.
func main() {
	limit := flag.Int("limit", 200, "maximum customers to backfill")
	migrateOnly := flag.Bool("migrate-only", false, "only run the schema migration")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		golog.Fatalf("config: %v", err)
	}
	golog.SetLevel(cfg.LogLevel)

	db, err := storage.Connect(cfg.DBConnectionString)
	if err != nil {
		golog.Fatalf("database: %v", err)
	}
	if err := storage.Migrate(db); err != nil {
		golog.Fatalf("migrate: %v", err)
	}
	golog.Info("schema migrated")
	if *migrateOnly {
		return
	}

	store := storage.NewStore(db)
	geocoder := services.NewMapbox(cfg.MapToken, cfg.MapboxBaseURL)
	ctx := context.Background()

	customers, err := store.CustomersWithoutLocation(ctx, *limit)
	if err != nil {
		golog.Fatalf("load customers: %v", err)
	}

	var updated, skipped int
	for _, c := range customers {
		reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		res, err := geocoder.Forward(reqCtx, c.Address)
		if err == nil {
			pincode := c.Pincode
			if pincode == "" {
				pincode = res.Postcode
			}
			err = store.UpdateProfileLocation(reqCtx, c.ID, c.Address, pincode, res.Point)
		}
		cancel()

		switch {
		case errors.Is(err, services.ErrGeocodeNoMatch):
			golog.Warnf("no match for customer %s address %q", c.ID, c.Address)
			skipped++
		case err != nil:
			golog.Errorf("backfill customer %s: %v", c.ID, err)
			skipped++
		default:
			updated++
		}
	}
	golog.Infof("backfill completed: %d updated, %d skipped", updated, skipped)
}
