package services

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"pasr-server/models"
	"pasr-server/storage"

	"github.com/google/uuid"
)

type memoryCalendars struct {
	calendars map[uuid.UUID]*models.AvailabilityCalendar
	upserts   int
}

func newMemoryCalendars() *memoryCalendars {
	return &memoryCalendars{calendars: map[uuid.UUID]*models.AvailabilityCalendar{}}
}

func (m *memoryCalendars) FindCalendar(ctx context.Context, listingID uuid.UUID) (*models.AvailabilityCalendar, error) {
	cal, ok := m.calendars[listingID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cal, nil
}

func (m *memoryCalendars) UpsertCalendar(ctx context.Context, listingID uuid.UUID, days []models.Day, editor *uuid.UUID) (*models.AvailabilityCalendar, error) {
	m.upserts++
	cal, ok := m.calendars[listingID]
	if !ok {
		cal = &models.AvailabilityCalendar{ID: uuid.New(), ListingID: listingID}
		m.calendars[listingID] = cal
	}
	cal.SetDays(days)
	cal.UpdatedBy = editor
	return cal, nil
}

func day(date string, status models.DayStatus) models.Day {
	return models.Day{Date: date, Status: status}
}

func TestNormalizeDaysDeduplicatesLastWins(t *testing.T) {
	got, err := NormalizeDays(json.RawMessage(`[
		{"date":"2026-03-10","status":"free"},
		{"date":"2026-03-10","status":"busy"}
	]`), CalendarHorizonYear)
	if err != nil {
		t.Fatalf("NormalizeDays: %v", err)
	}
	want := []models.Day{day("2026-03-10", models.DayBusy)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNormalizeDaysHorizon(t *testing.T) {
	got, err := NormalizeDays(json.RawMessage(`[
		{"date":"2025-12-31","status":"busy"},
		{"date":"2026-01-01","status":"free"},
		{"date":"2027-01-01","status":"busy"}
	]`), CalendarHorizonYear)
	if err != nil {
		t.Fatalf("NormalizeDays: %v", err)
	}
	want := []models.Day{day("2026-01-01", models.DayFree)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNormalizeDaysDropsInvalidElements(t *testing.T) {
	got, err := NormalizeDays(json.RawMessage(`[
		{"date":"2026-02-30","status":"free"},
		{"date":"2026-2-3","status":"free"},
		{"date":"2026-04-01","status":"maybe"},
		{"date":"2026-04-02"},
		{"status":"busy"},
		"2026-04-03",
		null,
		42,
		{"date":20260405,"status":"busy"},
		{"date":"2026-04-06","status":"busy","note":"wedding"}
	]`), CalendarHorizonYear)
	if err != nil {
		t.Fatalf("NormalizeDays: %v", err)
	}
	want := []models.Day{day("2026-04-06", models.DayBusy)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNormalizeDaysSortedUnique(t *testing.T) {
	got, err := NormalizeDays(json.RawMessage(`[
		{"date":"2026-12-01","status":"free"},
		{"date":"2026-01-15","status":"busy"},
		{"date":"2026-06-30","status":"free"},
		{"date":"2026-01-15","status":"free"},
		{"date":"2026-06-01","status":"busy"}
	]`), CalendarHorizonYear)
	if err != nil {
		t.Fatalf("NormalizeDays: %v", err)
	}
	seen := map[string]bool{}
	for i, d := range got {
		if seen[d.Date] {
			t.Fatalf("duplicate date %s", d.Date)
		}
		seen[d.Date] = true
		if i > 0 && got[i-1].Date >= d.Date {
			t.Fatalf("days not strictly ascending: %v", got)
		}
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 days, got %v", got)
	}
}

func TestNormalizeDaysRejectsNonArray(t *testing.T) {
	for _, raw := range []string{``, `null`, `{"date":"2026-01-01","status":"free"}`, `"[]"`, `[{"date":`} {
		if _, err := NormalizeDays(json.RawMessage(raw), CalendarHorizonYear); !errors.Is(err, ErrDaysNotArray) {
			t.Errorf("%q: expected ErrDaysNotArray, got %v", raw, err)
		}
	}
	got, err := NormalizeDays(json.RawMessage(` [] `), CalendarHorizonYear)
	if err != nil || len(got) != 0 {
		t.Fatalf("empty array should clear the calendar, got %v %v", got, err)
	}
}

func TestMergeCreatesCalendarLazily(t *testing.T) {
	store := newMemoryCalendars()
	engine := NewAvailabilityEngine(store)
	listing := uuid.New()
	editor := uuid.New()

	days, err := engine.Days(context.Background(), listing.String())
	if err != nil || len(days) != 0 {
		t.Fatalf("expected empty days before first edit, got %v %v", days, err)
	}

	cal, err := engine.Merge(context.Background(), listing.String(), json.RawMessage(`[
		{"date":"2026-03-10","status":"free"},
		{"date":"2026-03-10","status":"busy"},
		{"date":"2025-12-31","status":"busy"},
		{"date":"2026-01-01","status":"free"}
	]`), &editor)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	want := []models.Day{day("2026-01-01", models.DayFree), day("2026-03-10", models.DayBusy)}
	if !reflect.DeepEqual(cal.DayList(), want) {
		t.Fatalf("expected %v, got %v", want, cal.DayList())
	}
	if cal.UpdatedBy == nil || *cal.UpdatedBy != editor {
		t.Fatalf("expected editor to be recorded")
	}

	days, _ = engine.Days(context.Background(), listing.String())
	if !reflect.DeepEqual(days, want) {
		t.Fatalf("read path returned %v", days)
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	store := newMemoryCalendars()
	engine := NewAvailabilityEngine(store)
	listing := uuid.New().String()
	input := json.RawMessage(`[{"date":"2026-05-02","status":"busy"},{"date":"2026-05-01","status":"free"}]`)

	first, err := engine.Merge(context.Background(), listing, input, nil)
	if err != nil {
		t.Fatalf("first merge: %v", err)
	}
	firstDays := first.DayList()
	second, err := engine.Merge(context.Background(), listing, input, nil)
	if err != nil {
		t.Fatalf("second merge: %v", err)
	}
	if !reflect.DeepEqual(firstDays, second.DayList()) {
		t.Fatalf("merge not idempotent: %v vs %v", firstDays, second.DayList())
	}
	if len(store.calendars) != 1 {
		t.Fatalf("expected one calendar per listing, got %d", len(store.calendars))
	}
}

func TestMergeRejectsBeforeWriting(t *testing.T) {
	store := newMemoryCalendars()
	engine := NewAvailabilityEngine(store)

	if _, err := engine.Merge(context.Background(), "not-a-uuid", json.RawMessage(`[]`), nil); !errors.Is(err, ErrInvalidListingID) {
		t.Fatalf("expected ErrInvalidListingID, got %v", err)
	}
	if _, err := engine.Merge(context.Background(), uuid.New().String(), json.RawMessage(`{"days":[]}`), nil); !errors.Is(err, ErrDaysNotArray) {
		t.Fatalf("expected ErrDaysNotArray, got %v", err)
	}
	if store.upserts != 0 {
		t.Fatalf("expected no writes, got %d", store.upserts)
	}
}
