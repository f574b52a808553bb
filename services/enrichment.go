package services

import (
	"context"
	"encoding/json"
	"fmt"

	"pasr-server/models"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/kataras/golog"
)

const (
	TypeProfileEnrich = "profile:enrich"
	EnrichmentQueue   = "enrichment"
)

type ProfileEnrichPayload struct {
	CustomerID uuid.UUID `json:"customerID"`
	Longitude  float64   `json:"lon"`
	Latitude   float64   `json:"lat"`
}

func NewProfileEnrichTask(customerID uuid.UUID, p models.GeoPoint) (*asynq.Task, error) {
	payload, err := json.Marshal(ProfileEnrichPayload{CustomerID: customerID, Longitude: p.Longitude, Latitude: p.Latitude})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeProfileEnrich, payload, asynq.Queue(EnrichmentQueue), asynq.MaxRetry(0)), nil
}

// Enqueuer schedules profile enrichment after a location share.
type Enqueuer interface {
	EnqueueProfileEnrich(ctx context.Context, customerID uuid.UUID, p models.GeoPoint) error
}

type TaskQueue struct {
	client *asynq.Client
}

func NewTaskQueue(client *asynq.Client) *TaskQueue {
	return &TaskQueue{client: client}
}

func (q *TaskQueue) EnqueueProfileEnrich(ctx context.Context, customerID uuid.UUID, p models.GeoPoint) error {
	task, err := NewProfileEnrichTask(customerID, p)
	if err != nil {
		return err
	}
	if _, err := q.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue %s: %w", TypeProfileEnrich, err)
	}
	return nil
}

type ProfileStore interface {
	UpdateProfileLocation(ctx context.Context, id uuid.UUID, address, pincode string, p models.GeoPoint) error
}

// ProfileEnricher reverse-geocodes a shared point and stores the address,
// point and postal code on the customer's profile.
type ProfileEnricher struct {
	geocoder Geocoder
	profiles ProfileStore
}

func NewProfileEnricher(geocoder Geocoder, profiles ProfileStore) *ProfileEnricher {
	return &ProfileEnricher{geocoder: geocoder, profiles: profiles}
}

func (e *ProfileEnricher) Enrich(ctx context.Context, customerID uuid.UUID, p models.GeoPoint) error {
	res, err := e.geocoder.Reverse(ctx, p)
	if err != nil {
		return fmt.Errorf("reverse geocode: %w", err)
	}
	if err := e.profiles.UpdateProfileLocation(ctx, customerID, res.PlaceName, res.Postcode, p); err != nil {
		return fmt.Errorf("update profile %s: %w", customerID, err)
	}
	return nil
}

// ProcessTask implements asynq.Handler. Enrichment is best effort, so
// failures are logged and the task is not retried.
func (e *ProfileEnricher) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload ProfileEnrichPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", TypeProfileEnrich, err, asynq.SkipRetry)
	}
	p, ok := models.NewGeoPoint(payload.Longitude, payload.Latitude)
	if !ok || payload.CustomerID == uuid.Nil {
		return fmt.Errorf("invalid %s payload: %w", TypeProfileEnrich, asynq.SkipRetry)
	}

	if err := e.Enrich(ctx, payload.CustomerID, p); err != nil {
		golog.Warnf("profile enrichment for %s failed: %v", payload.CustomerID, err)
		return nil
	}
	golog.Debugf("profile enriched for %s", payload.CustomerID)
	return nil
}

// NewEnrichmentMux routes background tasks to their handlers.
func NewEnrichmentMux(enricher *ProfileEnricher) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeProfileEnrich, enricher)
	return mux
}
