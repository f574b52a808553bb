package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Review struct {
	ID          uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	ListingKind ListingKind `json:"listingKind" gorm:"size:16;not null;index:idx_reviews_listing"`
	ListingID   uuid.UUID   `json:"listingID" gorm:"type:uuid;not null;index:idx_reviews_listing"`
	AuthorID    uuid.UUID   `json:"authorID" gorm:"type:uuid;not null;index"`
	Author      *Customer   `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Comment     string      `json:"comment" gorm:"size:300;not null"`
	Ratings     int         `json:"ratings" gorm:"not null;check:ratings >= 1 AND ratings <= 5"`
	CreatedAt   time.Time   `json:"createdAt"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	newID(&r.ID)
	return nil
}
