package models

import (
	"math"
	"testing"
)

func TestNewGeoPointBounds(t *testing.T) {
	tests := []struct {
		lng, lat float64
		valid    bool
	}{
		{77.59, 12.97, true},
		{180, -90, true},
		{180.01, 0, false},
		{0, 90.5, false},
		{math.NaN(), 0, false},
		{0, math.Inf(1), false},
	}
	for _, tt := range tests {
		if _, ok := NewGeoPoint(tt.lng, tt.lat); ok != tt.valid {
			t.Errorf("NewGeoPoint(%v, %v) valid = %v, want %v", tt.lng, tt.lat, ok, tt.valid)
		}
	}
}

func TestDistanceMeters(t *testing.T) {
	bengaluru := GeoPoint{Longitude: 77.5946, Latitude: 12.9716}
	if d := bengaluru.DistanceMeters(bengaluru); d != 0 {
		t.Fatalf("expected zero distance to self, got %v", d)
	}

	// One degree of latitude is about 111.2 km.
	north := GeoPoint{Longitude: 77.5946, Latitude: 13.9716}
	if d := bengaluru.DistanceMeters(north); math.Abs(d-111195) > 100 {
		t.Fatalf("expected about 111195m, got %v", d)
	}
}
