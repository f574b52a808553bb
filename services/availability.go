package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"pasr-server/models"
	"pasr-server/storage"

	"github.com/google/uuid"
)

// CalendarHorizonYear is the only year a calendar may hold days for.
const CalendarHorizonYear = 2026

var (
	ErrInvalidListingID = errors.New("invalid listing id")
	ErrDaysNotArray     = errors.New("days must be an array")
)

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type CalendarStore interface {
	FindCalendar(ctx context.Context, listingID uuid.UUID) (*models.AvailabilityCalendar, error)
	UpsertCalendar(ctx context.Context, listingID uuid.UUID, days []models.Day, editor *uuid.UUID) (*models.AvailabilityCalendar, error)
}

// AvailabilityEngine is the only writer of availability calendars.
type AvailabilityEngine struct {
	store       CalendarStore
	horizonYear int
}

func NewAvailabilityEngine(store CalendarStore) *AvailabilityEngine {
	return &AvailabilityEngine{store: store, horizonYear: CalendarHorizonYear}
}

func ParseListingID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrInvalidListingID
	}
	return id, nil
}

// Merge normalizes proposed and replaces the listing's calendar with the
// result, creating the calendar on first use. Concurrent merges are last
// write wins.
func (e *AvailabilityEngine) Merge(ctx context.Context, listingID string, proposed json.RawMessage, editor *uuid.UUID) (*models.AvailabilityCalendar, error) {
	id, err := ParseListingID(listingID)
	if err != nil {
		return nil, err
	}
	days, err := NormalizeDays(proposed, e.horizonYear)
	if err != nil {
		return nil, err
	}
	cal, err := e.store.UpsertCalendar(ctx, id, days, editor)
	if err != nil {
		return nil, fmt.Errorf("merge calendar %s: %w", id, err)
	}
	return cal, nil
}

// Days returns the stored days of a listing, or an empty list when it has
// no calendar yet.
func (e *AvailabilityEngine) Days(ctx context.Context, listingID string) ([]models.Day, error) {
	id, err := ParseListingID(listingID)
	if err != nil {
		return nil, err
	}
	cal, err := e.store.FindCalendar(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return []models.Day{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load calendar %s: %w", id, err)
	}
	return cal.DayList(), nil
}

// NormalizeDays validates a raw JSON day list. Elements with an invalid date
// or status are dropped, later entries for the same date replace earlier
// ones, dates outside horizonYear are dropped and the result is sorted by
// date.
func NormalizeDays(raw json.RawMessage, horizonYear int) ([]models.Day, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, ErrDaysNotArray
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, ErrDaysNotArray
	}

	prefix := fmt.Sprintf("%04d-", horizonYear)
	byDate := make(map[string]models.DayStatus, len(elems))
	for _, elem := range elems {
		var fields map[string]interface{}
		if err := json.Unmarshal(elem, &fields); err != nil || fields == nil {
			continue
		}
		date := coerceString(fields["date"])
		status := models.DayStatus(coerceString(fields["status"]))
		if !IsCalendarDate(date) || !status.Valid() {
			continue
		}
		if !strings.HasPrefix(date, prefix) {
			continue
		}
		byDate[date] = status
	}

	days := make([]models.Day, 0, len(byDate))
	for date, status := range byDate {
		days = append(days, models.Day{Date: date, Status: status})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days, nil
}

// IsCalendarDate reports whether s is a real date written as YYYY-MM-DD.
func IsCalendarDate(s string) bool {
	if !isoDate.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// coerceString turns a decoded JSON value into the string form a client
// would have meant. Missing and falsy values become empty.
func coerceString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return ""
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
