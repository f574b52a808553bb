package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Product struct {
	ID                 uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerID            uuid.UUID `json:"ownerID" gorm:"type:uuid;not null;index"`
	Owner              *Customer `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Categories         string    `json:"categories" gorm:"size:64;not null;index"`
	ProductName        string    `json:"productName" gorm:"size:50;not null"`
	ProductDescription string    `json:"productDescription" gorm:"size:500"`
	Price              float64   `json:"price" gorm:"not null"`
	Quantity           int       `json:"quantity" gorm:"not null"`
	Location           string    `json:"location" gorm:"size:300;not null"`
	Coordinates

	Images      datatypes.JSON `json:"images" gorm:"type:jsonb"`
	Verified    bool           `json:"verified" gorm:"default:false;index"`
	VerifiedBy  string         `json:"verifiedBy" gorm:"size:60"`
	HideListing bool           `json:"hideListing" gorm:"default:false"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	newID(&p.ID)
	return nil
}

func (p *Product) ListingID() uuid.UUID    { return p.ID }
func (p *Product) ListingOwner() uuid.UUID { return p.OwnerID }
func (p *Product) Kind() ListingKind       { return ProductListing }

func (p *Product) MarshalJSON() ([]byte, error) {
	type Alias Product
	return json.Marshal(&struct {
		Images []Image `json:"images"`
		*Alias
	}{
		Images: DecodeImages(p.Images),
		Alias:  (*Alias)(p),
	})
}
