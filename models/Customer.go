package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Customer struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string    `json:"name" gorm:"size:100;not null"`
	Username     string    `json:"username" gorm:"size:10;not null;uniqueIndex"` // 10-digit phone handle
	EmailAddress string    `json:"emailAddress" gorm:"size:255"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Address      string    `json:"address" gorm:"size:300;not null"`
	Pincode      string    `json:"pincode" gorm:"size:12"`

	// Profile location. Both are nil until the address has been geocoded.
	Longitude *float64 `json:"longitude"`
	Latitude  *float64 `json:"latitude"`

	Verified   bool   `json:"verified" gorm:"default:false;index"`
	VerifiedBy string `json:"verifiedBy" gorm:"size:60"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	newID(&c.ID)
	return nil
}

// ProfilePoint returns the persisted profile location, if it is present and
// structurally valid.
func (c *Customer) ProfilePoint() (GeoPoint, bool) {
	if c == nil || c.Longitude == nil || c.Latitude == nil {
		return GeoPoint{}, false
	}
	return NewGeoPoint(*c.Longitude, *c.Latitude)
}

func (c *Customer) SetProfilePoint(p GeoPoint) {
	lng, lat := p.Longitude, p.Latitude
	c.Longitude = &lng
	c.Latitude = &lat
}
