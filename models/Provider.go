package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProviderCategories is the fixed category enumeration for service providers.
var ProviderCategories = []string{
	"Home Service",
	"Others",
	"Farming Vehicles",
	"Four Wheelers",
	"HMV (Bus)",
	"Three Wheelers",
	"Caterings",
	"Filming",
	"Decoration",
	"DJ and Tent",
	"Band Party",
	"Heavy Equipments",
}

type Provider struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerID     uuid.UUID `json:"ownerID" gorm:"type:uuid;not null;index"`
	Owner       *Customer `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Categories  string    `json:"categories" gorm:"size:64;not null;index"`
	Company     string    `json:"company" gorm:"size:50;not null"`
	Description string    `json:"description" gorm:"size:200"`
	Experience  int       `json:"experience" gorm:"default:1"`
	PhoneNumber string    `json:"phoneNumber" gorm:"size:15"`
	Location    string    `json:"location" gorm:"size:300;not null"` // address text
	Coordinates

	Images     datatypes.JSON `json:"images" gorm:"type:jsonb"`
	Verified   bool           `json:"verified" gorm:"default:false;index"`
	VerifiedBy string         `json:"verifiedBy" gorm:"size:60"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *Provider) BeforeCreate(tx *gorm.DB) error {
	newID(&p.ID)
	return nil
}

func (p *Provider) ListingID() uuid.UUID    { return p.ID }
func (p *Provider) ListingOwner() uuid.UUID { return p.OwnerID }
func (p *Provider) Kind() ListingKind       { return ProviderListing }

func (p *Provider) MarshalJSON() ([]byte, error) {
	type Alias Provider
	return json.Marshal(&struct {
		Images []Image `json:"images"`
		*Alias
	}{
		Images: DecodeImages(p.Images),
		Alias:  (*Alias)(p),
	})
}

func IsProviderCategory(category string) bool {
	for _, c := range ProviderCategories {
		if c == category {
			return true
		}
	}
	return false
}
