package storage

import (
	"context"

	"pasr-server/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// locationExpr must match the GiST index expression created in Migrate,
// otherwise the planner cannot use the index.
const locationExpr = "ST_SetSRID(ST_MakePoint(longitude, latitude), 4326)::geography"

const originExpr = "ST_SetSRID(ST_MakePoint(?, ?), 4326)::geography"

// NearQuery is a fully resolved proximity lookup. A nil Point means no
// spatial predicate at all.
type NearQuery struct {
	Kind         models.ListingKind
	Point        *models.GeoPoint
	RadiusMeters float64
	Category     string
	VerifiedOnly bool
	// OpenAt is an "HH:MM" time of day. Only applied to shops.
	OpenAt string
}

// FindNear loads listings matching q into dest, a pointer to a slice of the
// listing model for q.Kind. Results are nearest first, ties by id.
func (s *Store) FindNear(ctx context.Context, q NearQuery, dest interface{}) error {
	return s.db.WithContext(ctx).Preload("Owner").Scopes(nearScope(q)).Find(dest).Error
}

func nearScope(q NearQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.VerifiedOnly {
			db = db.Where("verified = ?", true)
		}
		if q.Category != "" {
			db = db.Where(clause.Eq{Column: clause.Column{Name: q.Kind.CategoryColumn()}, Value: q.Category})
		}
		if q.Kind == models.ShopListing && q.OpenAt != "" {
			db = db.Where("opening_time <> '' AND closing_time <> '' AND opening_time <= ? AND closing_time >= ?", q.OpenAt, q.OpenAt)
		}
		if q.Kind == models.ProductListing {
			db = db.Where("hide_listing = ?", false)
		}
		if q.Point == nil {
			return db.Order("id")
		}

		lng, lat := q.Point.Longitude, q.Point.Latitude
		db = db.Where("ST_DWithin("+locationExpr+", "+originExpr+", ?)", lng, lat, q.RadiusMeters)
		return db.Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:                "ST_Distance(" + locationExpr + ", " + originExpr + "), id",
			Vars:               []interface{}{lng, lat},
			WithoutParentheses: true,
		}})
	}
}
