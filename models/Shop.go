package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Shop struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerID         uuid.UUID `json:"ownerID" gorm:"type:uuid;not null;index"`
	Owner           *Customer `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	ShopName        string    `json:"shopName" gorm:"size:50;not null"`
	ShopDescription string    `json:"shopDescription" gorm:"size:500"`
	Category        string    `json:"category" gorm:"size:64;not null;index"`
	Location        string    `json:"location" gorm:"size:300;not null"`
	Coordinates

	// Opening hours as zero-padded "HH:MM" in the discovery time zone.
	// Empty means the shop has not configured them.
	OpeningTime string `json:"openingTime" gorm:"size:5"`
	ClosingTime string `json:"closingTime" gorm:"size:5"`

	Images     datatypes.JSON `json:"images" gorm:"type:jsonb"`
	Items      []Item         `json:"items,omitempty" gorm:"foreignKey:ShopID"`
	Verified   bool           `json:"verified" gorm:"default:false;index"`
	VerifiedBy string         `json:"verifiedBy" gorm:"size:60"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Shop) BeforeCreate(tx *gorm.DB) error {
	newID(&s.ID)
	return nil
}

func (s *Shop) ListingID() uuid.UUID    { return s.ID }
func (s *Shop) ListingOwner() uuid.UUID { return s.OwnerID }
func (s *Shop) Kind() ListingKind       { return ShopListing }

func (s *Shop) MarshalJSON() ([]byte, error) {
	type Alias Shop
	return json.Marshal(&struct {
		Images []Image `json:"images"`
		*Alias
	}{
		Images: DecodeImages(s.Images),
		Alias:  (*Alias)(s),
	})
}

type Item struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ShopID        uuid.UUID `json:"shopID" gorm:"type:uuid;not null;index"`
	Name          string    `json:"name" gorm:"size:100;not null"`
	Price         float64   `json:"price" gorm:"not null"`
	Quantity      int       `json:"quantity" gorm:"not null"`
	ItemCategory  string    `json:"itemCategory" gorm:"size:64"`
	ImageURL      string    `json:"imageURL"`
	ImageFilename string    `json:"imageFilename"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (i *Item) BeforeCreate(tx *gorm.DB) error {
	newID(&i.ID)
	return nil
}
