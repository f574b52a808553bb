package services

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"pasr-server/models"
	"pasr-server/storage"
)

const (
	DefaultRadiusKm = 10.0

	ProviderMaxRadiusKm = 10.0
	ShopMaxRadiusKm     = 10.0
	ProductMaxRadiusKm  = 10.0
)

// Category values that mean "no category filter".
const (
	AllShopsCategory = "All Shops"
	AllItemsCategory = "All Items"
)

// Fallback chooses what a discovery endpoint returns when no point could be
// resolved for the request.
type Fallback int

const (
	// FallbackEmpty returns no results.
	FallbackEmpty Fallback = iota
	// FallbackUnfiltered drops the spatial predicate and keeps the category
	// and verification filters.
	FallbackUnfiltered
)

// ListingIndex is the spatial lookup backing discovery.
type ListingIndex interface {
	FindNear(ctx context.Context, q storage.NearQuery, dest interface{}) error
}

type DiscoveryQuery struct {
	Kind     models.ListingKind
	Category string
	Point    *models.GeoPoint
	// RadiusKm <= 0 selects DefaultRadiusKm.
	RadiusKm float64
	// OpenNow restricts shops to those open at the current time of day.
	OpenNow bool
	// IncludeUnverified is for admin views only.
	IncludeUnverified bool
	WhenUnresolved    Fallback
}

// Discovery turns discovery requests into bounded index lookups.
type Discovery struct {
	index ListingIndex
	zone  *time.Location
	now   func() time.Time
}

func NewDiscovery(index ListingIndex, zone *time.Location) *Discovery {
	return &Discovery{index: index, zone: zone, now: time.Now}
}

func MaxRadiusKm(kind models.ListingKind) float64 {
	switch kind {
	case models.ShopListing:
		return ShopMaxRadiusKm
	case models.ProductListing:
		return ProductMaxRadiusKm
	default:
		return ProviderMaxRadiusKm
	}
}

// EffectiveRadiusKm applies the default and the per-kind maximum.
func EffectiveRadiusKm(kind models.ListingKind, requested float64) float64 {
	if requested <= 0 || math.IsNaN(requested) {
		requested = DefaultRadiusKm
	}
	return math.Min(requested, MaxRadiusKm(kind))
}

// ParseRadiusKm reads a "range" parameter. Anything unusable yields 0, which
// EffectiveRadiusKm turns into the default.
func ParseRadiusKm(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, -1) || v <= 0 {
		return 0
	}
	return v
}

// NormalizeCategory clears the per-kind "all" sentinel.
func NormalizeCategory(kind models.ListingKind, category string) string {
	category = strings.TrimSpace(category)
	switch {
	case kind == models.ShopListing && category == AllShopsCategory:
		return ""
	case kind == models.ProductListing && category == AllItemsCategory:
		return ""
	}
	return category
}

// TimeOfDay returns the current "HH:MM" in the discovery zone.
func (d *Discovery) TimeOfDay() string {
	return d.now().In(d.zone).Format("15:04")
}

// Build resolves q into an index lookup. The second result is false when
// the request must produce an empty result without touching the index.
func (d *Discovery) Build(q DiscoveryQuery) (storage.NearQuery, bool) {
	nq := storage.NearQuery{
		Kind:         q.Kind,
		Category:     NormalizeCategory(q.Kind, q.Category),
		VerifiedOnly: !q.IncludeUnverified,
	}
	if q.OpenNow && q.Kind == models.ShopListing {
		nq.OpenAt = d.TimeOfDay()
	}

	if q.Point == nil || !q.Point.Valid() {
		return nq, q.WhenUnresolved == FallbackUnfiltered
	}

	p := *q.Point
	nq.Point = &p
	nq.RadiusMeters = EffectiveRadiusKm(q.Kind, q.RadiusKm) * 1000
	return nq, true
}

// Find runs q and loads the matches into dest, a pointer to a slice of the
// listing model for q.Kind. dest is left untouched when the query resolves
// to the empty result.
func (d *Discovery) Find(ctx context.Context, q DiscoveryQuery, dest interface{}) error {
	nq, ok := d.Build(q)
	if !ok {
		return nil
	}
	return d.index.FindNear(ctx, nq, dest)
}
