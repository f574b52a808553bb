package storage

import (
	"context"
	"fmt"

	"pasr-server/models"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

func (s *Store) FindCalendar(ctx context.Context, listingID uuid.UUID) (*models.AvailabilityCalendar, error) {
	var cal models.AvailabilityCalendar
	if err := s.db.WithContext(ctx).First(&cal, "listing_id = ?", listingID).Error; err != nil {
		return nil, translate(err)
	}
	return &cal, nil
}

// UpsertCalendar creates the listing's calendar or replaces its days
// wholesale in one statement, then returns the stored row.
func (s *Store) UpsertCalendar(ctx context.Context, listingID uuid.UUID, days []models.Day, editor *uuid.UUID) (*models.AvailabilityCalendar, error) {
	cal := models.AvailabilityCalendar{ListingID: listingID, UpdatedBy: editor}
	cal.SetDays(days)

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "listing_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"days", "updated_by", "updated_at"}),
	}).Create(&cal).Error
	if err != nil {
		return nil, fmt.Errorf("upsert calendar: %w", translate(err))
	}
	return s.FindCalendar(ctx, listingID)
}

func (s *Store) DeleteCalendar(ctx context.Context, listingID uuid.UUID) error {
	return s.db.WithContext(ctx).Where("listing_id = ?", listingID).Delete(&models.AvailabilityCalendar{}).Error
}
