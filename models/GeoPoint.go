package models

import "math"

// GeoPoint is a WGS84 coordinate pair. It is never stored on its own, only
// as the location of an owning entity.
type GeoPoint struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// NewGeoPoint returns the point and whether it is structurally valid.
func NewGeoPoint(lng, lat float64) (GeoPoint, bool) {
	p := GeoPoint{Longitude: lng, Latitude: lat}
	return p, p.Valid()
}

func (p GeoPoint) Valid() bool {
	if math.IsNaN(p.Longitude) || math.IsInf(p.Longitude, 0) {
		return false
	}
	if math.IsNaN(p.Latitude) || math.IsInf(p.Latitude, 0) {
		return false
	}
	return p.Longitude >= -180 && p.Longitude <= 180 && p.Latitude >= -90 && p.Latitude <= 90
}

// Coordinates returns the point in GeoJSON order: [longitude, latitude].
func (p GeoPoint) Coordinates() [2]float64 {
	return [2]float64{p.Longitude, p.Latitude}
}

// DistanceMeters is the great-circle distance between p and q.
func (p GeoPoint) DistanceMeters(q GeoPoint) float64 {
	const earthRadius = 6371000.0
	dLat := (q.Latitude - p.Latitude) * math.Pi / 180
	dLon := (q.Longitude - p.Longitude) * math.Pi / 180
	la1 := p.Latitude * math.Pi / 180
	la2 := q.Latitude * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(la1)*math.Cos(la2)
	return earthRadius * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Coordinates is the location column pair embedded in every listing. The
// spatial index is an expression index over these two columns.
type Coordinates struct {
	Longitude float64 `json:"longitude" gorm:"not null"`
	Latitude  float64 `json:"latitude" gorm:"not null"`
}

func (c Coordinates) Point() GeoPoint {
	return GeoPoint{Longitude: c.Longitude, Latitude: c.Latitude}
}

func CoordinatesOf(p GeoPoint) Coordinates {
	return Coordinates{Longitude: p.Longitude, Latitude: p.Latitude}
}
