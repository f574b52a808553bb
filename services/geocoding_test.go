package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pasr-server/models"
)

const mapboxFeature = `{"features":[{
	"place_name":"Civil Lines, Jaipur, Rajasthan 302006, India",
	"geometry":{"type":"Point","coordinates":[75.7873,26.9124]},
	"context":[{"id":"locality.1","text":"Civil Lines"},{"id":"postcode.99","text":"302006"}]
}]}`

func TestMapboxForward(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/geocoding/v5/mapbox.places/") || !strings.HasSuffix(r.URL.Path, ".json") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("access_token") != "tok" || r.URL.Query().Get("limit") != "1" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, mapboxFeature)
	}))
	defer srv.Close()

	res, err := NewMapbox("tok", srv.URL).Forward(context.Background(), "Civil Lines, Jaipur")
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if res.Point != (models.GeoPoint{Longitude: 75.7873, Latitude: 26.9124}) {
		t.Errorf("unexpected point %+v", res.Point)
	}
	if res.Postcode != "302006" {
		t.Errorf("expected postcode from context, got %q", res.Postcode)
	}
	if res.PlaceName == "" {
		t.Error("expected place name")
	}
}

func TestMapboxReverseQueryOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/75.7873,26.9124.json") {
			t.Errorf("expected lon,lat query, got %s", r.URL.Path)
		}
		fmt.Fprint(w, mapboxFeature)
	}))
	defer srv.Close()

	if _, err := NewMapbox("tok", srv.URL).Reverse(context.Background(), models.GeoPoint{Longitude: 75.7873, Latitude: 26.9124}); err != nil {
		t.Fatalf("Reverse: %v", err)
	}
}

func TestMapboxNoMatchAndFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "nowhere") {
			fmt.Fprint(w, `{"features":[]}`)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"Not Authorized - Invalid Token"}`)
	}))
	defer srv.Close()

	m := NewMapbox("tok", srv.URL)
	if _, err := m.Forward(context.Background(), "nowhere"); !errors.Is(err, ErrGeocodeNoMatch) {
		t.Fatalf("expected ErrGeocodeNoMatch, got %v", err)
	}
	_, err := m.Forward(context.Background(), "somewhere")
	if err == nil || errors.Is(err, ErrGeocodeNoMatch) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}
