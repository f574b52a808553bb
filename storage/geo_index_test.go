package storage

import (
	"strings"
	"testing"

	"pasr-server/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// dryRun builds statements against a postgres dialector without a connection.
func dryRun(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost", PreferSimpleProtocol: true}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open dry run db: %v", err)
	}
	return db
}

func TestNearScopeWithPoint(t *testing.T) {
	db := dryRun(t)
	point := models.GeoPoint{Longitude: 77.2, Latitude: 28.6}

	var providers []models.Provider
	stmt := db.Scopes(nearScope(NearQuery{
		Kind:         models.ProviderListing,
		Point:        &point,
		RadiusMeters: 10000,
		Category:     "Caterings",
		VerifiedOnly: true,
	})).Find(&providers).Statement

	sql := stmt.SQL.String()
	for _, want := range []string{"verified = ", `"categories" = `, "ST_DWithin(", "ORDER BY ST_Distance(", "), id"} {
		if !strings.Contains(sql, want) {
			t.Errorf("expected %q in %s", want, sql)
		}
	}
	if got := len(stmt.Vars); got != 7 {
		t.Errorf("expected 7 bind vars, got %d: %v", got, stmt.Vars)
	}
}

func TestNearScopeWithoutPoint(t *testing.T) {
	db := dryRun(t)

	var shops []models.Shop
	sql := db.Scopes(nearScope(NearQuery{
		Kind:     models.ShopListing,
		Category: "Grocery",
	})).Find(&shops).Statement.SQL.String()

	if strings.Contains(sql, "ST_DWithin") {
		t.Errorf("unexpected spatial predicate in %s", sql)
	}
	if !strings.Contains(sql, `"category" = `) {
		t.Errorf("expected category filter in %s", sql)
	}
	if !strings.Contains(sql, "ORDER BY id") {
		t.Errorf("expected id ordering in %s", sql)
	}
}

func TestNearScopeOpenNowExcludesShopsWithoutHours(t *testing.T) {
	db := dryRun(t)

	var shops []models.Shop
	stmt := db.Scopes(nearScope(NearQuery{
		Kind:   models.ShopListing,
		OpenAt: "09:30",
	})).Find(&shops).Statement
	sql := stmt.SQL.String()

	for _, want := range []string{
		"opening_time <> '' AND closing_time <> ''",
		"opening_time <= $1",
		"closing_time >= $2",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("expected %q in %s", want, sql)
		}
	}
	if len(stmt.Vars) != 2 || stmt.Vars[0] != "09:30" || stmt.Vars[1] != "09:30" {
		t.Errorf("expected the time of day bound on both sides, got %v", stmt.Vars)
	}
}

func TestNearScopeOpenNowOnlyForShops(t *testing.T) {
	db := dryRun(t)

	var providers []models.Provider
	sql := db.Scopes(nearScope(NearQuery{
		Kind:   models.ProviderListing,
		OpenAt: "09:30",
	})).Find(&providers).Statement.SQL.String()

	if strings.Contains(sql, "opening_time") {
		t.Errorf("unexpected open-now filter for providers in %s", sql)
	}
}
