package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DayStatus string

const (
	DayFree DayStatus = "free"
	DayBusy DayStatus = "busy"
)

func (s DayStatus) Valid() bool {
	return s == DayFree || s == DayBusy
}

type Day struct {
	Date   string    `json:"date"`
	Status DayStatus `json:"status"`
}

// AvailabilityCalendar holds the per-day availability of one listing. Days
// are kept sorted by date with at most one entry per date.
type AvailabilityCalendar struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	ListingID uuid.UUID      `json:"listingID" gorm:"type:uuid;not null;uniqueIndex"`
	Days      datatypes.JSON `json:"days" gorm:"type:jsonb;not null"`
	UpdatedBy *uuid.UUID     `json:"updatedBy" gorm:"type:uuid"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (c *AvailabilityCalendar) BeforeCreate(tx *gorm.DB) error {
	newID(&c.ID)
	return nil
}

func (c *AvailabilityCalendar) DayList() []Day {
	days := []Day{}
	if c == nil || len(c.Days) == 0 {
		return days
	}
	if err := json.Unmarshal(c.Days, &days); err != nil {
		return []Day{}
	}
	return days
}

func (c *AvailabilityCalendar) SetDays(days []Day) {
	if days == nil {
		days = []Day{}
	}
	b, _ := json.Marshal(days)
	c.Days = datatypes.JSON(b)
}

func (c *AvailabilityCalendar) MarshalJSON() ([]byte, error) {
	type Alias AvailabilityCalendar
	return json.Marshal(&struct {
		Days []Day `json:"days"`
		*Alias
	}{
		Days:  c.DayList(),
		Alias: (*Alias)(c),
	})
}
