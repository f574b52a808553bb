package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pasr-server/models"
)

var ErrGeocodeNoMatch = errors.New("geocoder found no match")

type GeocodeResult struct {
	Point     models.GeoPoint `json:"point"`
	PlaceName string          `json:"placeName"`
	Postcode  string          `json:"postcode"`
}

type Geocoder interface {
	Forward(ctx context.Context, address string) (GeocodeResult, error)
	Reverse(ctx context.Context, p models.GeoPoint) (GeocodeResult, error)
}

// Mapbox talks to the Mapbox places geocoding endpoint.
type Mapbox struct {
	token   string
	baseURL string
	http    *http.Client
}

func NewMapbox(token, baseURL string) *Mapbox {
	return &Mapbox{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type mapboxResponse struct {
	Features []struct {
		PlaceName string `json:"place_name"`
		Geometry  struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Context []struct {
			ID   string `json:"id"`
			Text string `json:"text"`
		} `json:"context"`
	} `json:"features"`
	Message string `json:"message"`
}

func (m *Mapbox) Forward(ctx context.Context, address string) (GeocodeResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return GeocodeResult{}, ErrGeocodeNoMatch
	}
	return m.lookup(ctx, address)
}

func (m *Mapbox) Reverse(ctx context.Context, p models.GeoPoint) (GeocodeResult, error) {
	query := strconv.FormatFloat(p.Longitude, 'f', -1, 64) + "," + strconv.FormatFloat(p.Latitude, 'f', -1, 64)
	return m.lookup(ctx, query)
}

func (m *Mapbox) lookup(ctx context.Context, query string) (GeocodeResult, error) {
	params := url.Values{}
	params.Set("access_token", m.token)
	params.Set("limit", "1")
	endpoint := m.baseURL + "/geocoding/v5/mapbox.places/" + url.PathEscape(query) + ".json?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return GeocodeResult{}, err
	}
	resp, err := m.http.Do(req)
	if err != nil {
		return GeocodeResult{}, fmt.Errorf("mapbox geocode: %w", err)
	}
	defer resp.Body.Close()

	var body mapboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return GeocodeResult{}, fmt.Errorf("mapbox geocode: status %d: decode: %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return GeocodeResult{}, fmt.Errorf("mapbox geocode: status %d: %s", resp.StatusCode, body.Message)
	}
	if len(body.Features) == 0 {
		return GeocodeResult{}, ErrGeocodeNoMatch
	}

	f := body.Features[0]
	if len(f.Geometry.Coordinates) < 2 {
		return GeocodeResult{}, ErrGeocodeNoMatch
	}
	point, ok := models.NewGeoPoint(f.Geometry.Coordinates[0], f.Geometry.Coordinates[1])
	if !ok {
		return GeocodeResult{}, fmt.Errorf("mapbox geocode: invalid coordinates %v", f.Geometry.Coordinates)
	}

	result := GeocodeResult{Point: point, PlaceName: f.PlaceName}
	for _, c := range f.Context {
		if strings.HasPrefix(c.ID, "postcode") {
			result.Postcode = c.Text
			break
		}
	}
	return result, nil
}
