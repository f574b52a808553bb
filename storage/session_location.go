package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pasr-server/models"

	"github.com/go-redis/redis/v8"
)

const sessionLocationPrefix = "pasr:session-location:"

// SessionLocations keeps the last browser-reported point of each session.
// Entries expire together with the session cookie.
type SessionLocations struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionLocations(client *redis.Client, ttl time.Duration) *SessionLocations {
	return &SessionLocations{client: client, ttl: ttl}
}

func sessionLocationKey(sid string) string {
	return sessionLocationPrefix + sid
}

func (s *SessionLocations) Save(ctx context.Context, sid string, p models.GeoPoint) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, sessionLocationKey(sid), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session location: %w", err)
	}
	return nil
}

// Load returns nil without error when the session has no stored point.
func (s *SessionLocations) Load(ctx context.Context, sid string) (*models.GeoPoint, error) {
	raw, err := s.client.Get(ctx, sessionLocationKey(sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session location: %w", err)
	}
	var p models.GeoPoint
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode session location: %w", err)
	}
	return &p, nil
}

func (s *SessionLocations) Delete(ctx context.Context, sid string) error {
	return s.client.Del(ctx, sessionLocationKey(sid)).Err()
}
