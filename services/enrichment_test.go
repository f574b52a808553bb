package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"pasr-server/models"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type stubGeocoder struct {
	result GeocodeResult
	err    error
	calls  int
}

func (s *stubGeocoder) Forward(ctx context.Context, address string) (GeocodeResult, error) {
	s.calls++
	return s.result, s.err
}

func (s *stubGeocoder) Reverse(ctx context.Context, p models.GeoPoint) (GeocodeResult, error) {
	s.calls++
	return s.result, s.err
}

type profileUpdate struct {
	id      uuid.UUID
	address string
	pincode string
	point   models.GeoPoint
}

type recordingProfiles struct {
	updates []profileUpdate
}

func (r *recordingProfiles) UpdateProfileLocation(ctx context.Context, id uuid.UUID, address, pincode string, p models.GeoPoint) error {
	r.updates = append(r.updates, profileUpdate{id, address, pincode, p})
	return nil
}

func TestProfileEnrichTaskRoundTrip(t *testing.T) {
	geo := &stubGeocoder{result: GeocodeResult{PlaceName: "MG Road, Pune", Postcode: "411001"}}
	profiles := &recordingProfiles{}
	enricher := NewProfileEnricher(geo, profiles)

	customer := uuid.New()
	point := models.GeoPoint{Longitude: 73.8567, Latitude: 18.5204}
	task, err := NewProfileEnrichTask(customer, point)
	if err != nil {
		t.Fatalf("NewProfileEnrichTask: %v", err)
	}
	if task.Type() != TypeProfileEnrich {
		t.Fatalf("unexpected task type %s", task.Type())
	}

	if err := enricher.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("ProcessTask: %v", err)
	}
	if len(profiles.updates) != 1 {
		t.Fatalf("expected one profile update, got %d", len(profiles.updates))
	}
	got := profiles.updates[0]
	if got.id != customer || got.address != "MG Road, Pune" || got.pincode != "411001" || got.point != point {
		t.Fatalf("unexpected update %+v", got)
	}
}

func TestProfileEnrichSwallowsGeocoderFailure(t *testing.T) {
	geo := &stubGeocoder{err: errors.New("mapbox down")}
	profiles := &recordingProfiles{}
	enricher := NewProfileEnricher(geo, profiles)

	task, _ := NewProfileEnrichTask(uuid.New(), models.GeoPoint{Longitude: 1, Latitude: 1})
	if err := enricher.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("failure must be swallowed, got %v", err)
	}
	if len(profiles.updates) != 0 {
		t.Fatal("profile must not be touched when geocoding fails")
	}
}

func TestProfileEnrichRejectsBadPayload(t *testing.T) {
	enricher := NewProfileEnricher(&stubGeocoder{}, &recordingProfiles{})

	bad, _ := json.Marshal(ProfileEnrichPayload{CustomerID: uuid.New(), Longitude: 500, Latitude: 1})
	for _, payload := range [][]byte{[]byte("{"), bad} {
		err := enricher.ProcessTask(context.Background(), asynq.NewTask(TypeProfileEnrich, payload))
		if !errors.Is(err, asynq.SkipRetry) {
			t.Errorf("expected SkipRetry for %s, got %v", payload, err)
		}
	}
}
