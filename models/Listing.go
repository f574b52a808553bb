package models

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ListingKind string

const (
	ProviderListing ListingKind = "provider"
	ShopListing     ListingKind = "shop"
	ProductListing  ListingKind = "product"
)

// Table is the relation holding listings of this kind.
func (k ListingKind) Table() string {
	switch k {
	case ShopListing:
		return "shops"
	case ProductListing:
		return "products"
	default:
		return "providers"
	}
}

// CategoryColumn names the column the category filter applies to.
func (k ListingKind) CategoryColumn() string {
	if k == ShopListing {
		return "category"
	}
	return "categories"
}

func (k ListingKind) Label() string {
	switch k {
	case ShopListing:
		return "Shop"
	case ProductListing:
		return "Product"
	default:
		return "Provider"
	}
}

// Listing is what the ownership guard, the cascade and discovery need from
// any listing.
type Listing interface {
	ListingID() uuid.UUID
	ListingOwner() uuid.UUID
	Kind() ListingKind
	Point() GeoPoint
}

// Image is a reference to an image held by the external image store.
type Image struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

func EncodeImages(images []Image) datatypes.JSON {
	if images == nil {
		images = []Image{}
	}
	b, _ := json.Marshal(images)
	return datatypes.JSON(b)
}

func DecodeImages(raw datatypes.JSON) []Image {
	images := []Image{}
	if len(raw) == 0 {
		return images
	}
	if err := json.Unmarshal(raw, &images); err != nil {
		return []Image{}
	}
	return images
}

func newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
