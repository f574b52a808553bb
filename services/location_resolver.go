package services

import (
	"math"
	"strconv"
	"strings"

	"pasr-server/models"
)

// LocationSource says which input produced a resolved point.
type LocationSource int

const (
	SourceNone LocationSource = iota
	SourceQuery
	SourceSession
	SourceProfile
)

func (s LocationSource) String() string {
	switch s {
	case SourceQuery:
		return "query"
	case SourceSession:
		return "session"
	case SourceProfile:
		return "profile"
	default:
		return "unresolved"
	}
}

// LocationInputs are the candidate points for one request, in raw form.
type LocationInputs struct {
	QueryLatitude  string
	QueryLongitude string
	Session        *models.GeoPoint
	Profile        *models.GeoPoint
}

// ResolveLocation picks the effective point for a request. Explicit query
// coordinates win over the session point, which wins over the profile
// point. A source is skipped entirely unless both of its coordinates are
// usable. Returns SourceNone when nothing qualifies.
func ResolveLocation(in LocationInputs) (models.GeoPoint, LocationSource) {
	lat, latOK := ParseCoordinate(in.QueryLatitude)
	lng, lngOK := ParseCoordinate(in.QueryLongitude)
	if latOK && lngOK {
		if p, ok := models.NewGeoPoint(lng, lat); ok {
			return p, SourceQuery
		}
	}
	if in.Session != nil && in.Session.Valid() {
		return *in.Session, SourceSession
	}
	if in.Profile != nil && in.Profile.Valid() {
		return *in.Profile, SourceProfile
	}
	return models.GeoPoint{}, SourceNone
}

// ParseCoordinate parses a decimal coordinate, rejecting blanks and
// non-finite values.
func ParseCoordinate(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
